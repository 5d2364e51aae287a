package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/velora/storefront/internal/checkout"
	"github.com/velora/storefront/internal/domain"
	"github.com/velora/storefront/internal/repository"
)

type OrderSubmitter interface {
	SubmitOrder(ctx context.Context, userID string, draft *domain.OrderDraft) (*checkout.Result, error)
}

type OrderReader interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
}

type OrdersHandler struct {
	gateway OrderSubmitter
	orders  OrderReader
	timeout time.Duration
}

func NewOrdersHandler(gateway OrderSubmitter, orders OrderReader, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		gateway: gateway,
		orders:  orders,
		timeout: timeout,
	}
}

type SubmitOrderRequestDTO struct {
	Customer      domain.Customer      `json:"customer"`
	Items         []SubmitOrderItemDTO `json:"items"`
	Amount        float64              `json:"amount"`
	PaymentMethod string               `json:"payment_method"`
}

type SubmitOrderItemDTO struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"qty"`
	Size     string  `json:"size"`
}

type SubmitOrderResponseDTO struct {
	OK         bool   `json:"ok"`
	OrderID    string `json:"order_id"`
	SessionURL string `json:"sessionUrl,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

type OrderResponseDTO struct {
	ID            string             `json:"id"`
	CustomerName  string             `json:"customer_name"`
	CustomerEmail string             `json:"customer_email"`
	Phone         string             `json:"phone"`
	Address       string             `json:"address"`
	PaymentMethod string             `json:"payment_method"`
	Status        string             `json:"status"`
	TotalAmount   float64            `json:"total_amount"`
	Currency      string             `json:"currency"`
	Items         []domain.OrderItem `json:"items"`
	Reference     string             `json:"reference,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

func (h *OrdersHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req SubmitOrderRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	draft := &domain.OrderDraft{
		Customer:      req.Customer,
		Amount:        req.Amount,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	for _, it := range req.Items {
		draft.Items = append(draft.Items, domain.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Size:      it.Size,
		})
	}

	result, err := h.gateway.SubmitOrder(ctx, userID, draft)
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidPaymentMethod) {
			respondError(w, http.StatusBadRequest, "invalid_payment_method", "unsupported payment method")
			return
		}
		if errors.Is(err, checkout.ErrEmptyOrder) {
			respondError(w, http.StatusBadRequest, "empty_order", "order has no items and no amount")
			return
		}
		log.Printf("[%s] order submission failed: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit order")
		return
	}

	respondJSON(w, http.StatusOK, SubmitOrderResponseDTO{
		OK:         true,
		OrderID:    result.OrderID.String(),
		SessionURL: result.SessionURL,
		Reference:  result.Reference,
	})
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	orders, err := h.orders.ListOrdersByUserID(ctx, userID)
	if err != nil {
		log.Printf("[%s] list orders failed: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load orders")
		return
	}

	resp := make([]OrderResponseDTO, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, toOrderDTO(order))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a UUID")
		return
	}

	order, err := h.orders.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		log.Printf("[%s] get order failed: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load order")
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func toOrderDTO(order *domain.Order) OrderResponseDTO {
	return OrderResponseDTO{
		ID:            order.ID.String(),
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		Phone:         order.Phone,
		Address:       order.Address,
		PaymentMethod: string(order.PaymentMethod),
		Status:        string(order.Status),
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
		Items:         order.Items,
		Reference:     order.Reference,
		CreatedAt:     order.CreatedAt,
	}
}
