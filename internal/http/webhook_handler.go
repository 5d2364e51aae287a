package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
	"github.com/velora/storefront/internal/domain"
	"github.com/velora/storefront/internal/events"
)

const maxWebhookBodyBytes = 65536

type PaymentConfirmer interface {
	MarkPaidBySession(ctx context.Context, sessionID, payerEmail string, amount float64) (*domain.Order, error)
}

type PaidPublisher interface {
	PublishPaid(ctx context.Context, event events.PaidEvent) error
}

// WebhookHandler receives payment processor callbacks. Signature verification
// is the only authentication on this route.
type WebhookHandler struct {
	orders    PaymentConfirmer
	publisher PaidPublisher
	secret    string
	timeout   time.Duration
}

func NewWebhookHandler(orders PaymentConfirmer, publisher PaidPublisher, secret string, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		orders:    orders,
		publisher: publisher,
		secret:    secret,
		timeout:   timeout,
	}
}

func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload", "failed to read body")
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		respondError(w, http.StatusBadRequest, "invalid_signature", "signature verification failed")
		return
	}

	if event.Type != "checkout.session.completed" {
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payload", "malformed session object")
		return
	}

	var payerEmail string
	if session.CustomerDetails != nil {
		payerEmail = session.CustomerDetails.Email
	}
	amount := float64(session.AmountTotal) / 100

	order, err := h.orders.MarkPaidBySession(ctx, session.ID, payerEmail, amount)
	if err != nil {
		log.Printf("failed to mark order paid for session %s: %v", session.ID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to record payment")
		return
	}

	// Best effort: a lost event leaves a stale cart, never a lost payment.
	if order.UserID != "" {
		if err := h.publisher.PublishPaid(ctx, events.PaidEvent{
			OrderID:     order.ID.String(),
			UserID:      order.UserID,
			TotalAmount: order.TotalAmount,
		}); err != nil {
			log.Printf("failed to publish paid event for order %s: %v", order.ID, err)
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
