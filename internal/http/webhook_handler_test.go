package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/velora/storefront/internal/domain"
	"github.com/velora/storefront/internal/events"
)

const testWebhookSecret = "whsec_test_secret"

type confirmerMock struct {
	order *domain.Order
	err   error

	gotSessionID string
	gotEmail     string
	gotAmount    float64
}

func (m *confirmerMock) MarkPaidBySession(ctx context.Context, sessionID, payerEmail string, amount float64) (*domain.Order, error) {
	m.gotSessionID = sessionID
	m.gotEmail = payerEmail
	m.gotAmount = amount
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

type publisherMock struct {
	published []events.PaidEvent
	err       error
}

func (m *publisherMock) PublishPaid(ctx context.Context, event events.PaidEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, event)
	return nil
}

// signPayload produces a Stripe-Signature header value for the given payload,
// the same scheme the processor uses: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", at.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func completedSessionPayload(sessionID, email string, amountTotal int64) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"%s","amount_total":%d,"customer_details":{"email":"%s"}}}}`,
		sessionID, amountTotal, email))
}

func TestHandleWebhook_CompletedSessionMarksPaid(t *testing.T) {
	orderID := uuid.New()
	confirmer := &confirmerMock{
		order: &domain.Order{ID: orderID, UserID: "u1", TotalAmount: 2500, Status: domain.OrderStatusPaid},
	}
	publisher := &publisherMock{}
	handler := NewWebhookHandler(confirmer, publisher, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_123", "buyer@example.com", 250000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected status code %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	if confirmer.gotSessionID != "cs_123" {
		t.Errorf("Expected session id 'cs_123', got '%s'", confirmer.gotSessionID)
	}
	if confirmer.gotEmail != "buyer@example.com" {
		t.Errorf("Expected payer email, got '%s'", confirmer.gotEmail)
	}
	if confirmer.gotAmount != 2500 {
		t.Errorf("Expected amount 2500, got %f", confirmer.gotAmount)
	}

	if len(publisher.published) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.published))
	}
	if publisher.published[0].UserID != "u1" {
		t.Errorf("Expected event user_id 'u1', got '%s'", publisher.published[0].UserID)
	}
	if publisher.published[0].OrderID != orderID.String() {
		t.Errorf("Expected event order_id %s, got %s", orderID, publisher.published[0].OrderID)
	}
}

func TestHandleWebhook_InvalidSignature(t *testing.T) {
	confirmer := &confirmerMock{}
	handler := NewWebhookHandler(confirmer, &publisherMock{}, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_123", "", 1000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, "whsec_wrong_secret", time.Now()))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
	if confirmer.gotSessionID != "" {
		t.Error("Expected no persistence on invalid signature")
	}
}

func TestHandleWebhook_MissingSignature(t *testing.T) {
	confirmer := &confirmerMock{}
	handler := NewWebhookHandler(confirmer, &publisherMock{}, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_123", "", 1000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestHandleWebhook_IgnoresOtherEventTypes(t *testing.T) {
	confirmer := &confirmerMock{}
	handler := NewWebhookHandler(confirmer, &publisherMock{}, testWebhookSecret, 5*time.Second)

	payload := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{}}}`)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if confirmer.gotSessionID != "" {
		t.Error("Expected no persistence for unrelated event types")
	}
}

func TestHandleWebhook_ConfirmFailure(t *testing.T) {
	confirmer := &confirmerMock{err: errors.New("db down")}
	publisher := &publisherMock{}
	handler := NewWebhookHandler(confirmer, publisher, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_123", "", 1000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusInternalServerError {
		t.Errorf("Expected status code %d, got %d", http.StatusInternalServerError, recorder.Code)
	}
	if len(publisher.published) != 0 {
		t.Error("Expected no event published when confirmation fails")
	}
}

func TestHandleWebhook_PublishFailureStillOK(t *testing.T) {
	confirmer := &confirmerMock{
		order: &domain.Order{ID: uuid.New(), UserID: "u1", Status: domain.OrderStatusPaid},
	}
	publisher := &publisherMock{err: errors.New("broker unreachable")}
	handler := NewWebhookHandler(confirmer, publisher, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_123", "", 1000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	handler.HandleWebhook(recorder, request)

	// The payment is recorded; losing the cart-clear event is acceptable.
	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
}

func TestHandleWebhook_NoUserIDSkipsPublish(t *testing.T) {
	confirmer := &confirmerMock{
		order: &domain.Order{ID: uuid.New(), Status: domain.OrderStatusPaid},
	}
	publisher := &publisherMock{}
	handler := NewWebhookHandler(confirmer, publisher, testWebhookSecret, 5*time.Second)

	payload := completedSessionPayload("cs_recovered", "buyer@example.com", 5000)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/webhooks/payment", bytes.NewReader(payload))
	request.Header.Set("Stripe-Signature", signPayload(payload, testWebhookSecret, time.Now()))

	handler.HandleWebhook(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("Expected status code %d, got %d", http.StatusOK, recorder.Code)
	}
	if len(publisher.published) != 0 {
		t.Error("Expected no event for a recovered order without a session user")
	}
}
