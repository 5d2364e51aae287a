package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/domain"
	"github.com/velora/storefront/internal/pricing"
)

type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID, productID, size string, quantity int) error
	UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID, size string) error
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartService
	catalog pricing.Catalog
	timeout time.Duration
}

func NewCartHandler(carts CartService, catalog pricing.Catalog, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		catalog: catalog,
		timeout: timeout,
	}
}

type AddLineRequestDTO struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Size     string `json:"size"`
	Quantity int    `json:"quantity"`
}

// CartViewDTO is the reconciled cart: lines joined against the current
// catalog snapshot, so prices reflect the catalog at display time.
type CartViewDTO struct {
	Items    []pricing.PricedLine `json:"items"`
	Subtotal float64              `json:"subtotal"`
	Count    int                  `json:"count"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	h.respondCartView(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	var req AddLineRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	if err := h.carts.AddLine(ctx, userID, req.ProductID, req.Size, req.Quantity); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to add item")
		return
	}

	h.respondCartView(ctx, w, userID, http.StatusCreated)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// Quantity <= 0 removes the line entirely.
	if err := h.carts.UpdateQuantity(ctx, userID, productID, req.Size, req.Quantity); err != nil {
		if errors.Is(err, cart.ErrLineNotFound) || errors.Is(err, cart.ErrCartNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "line not found in cart")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update quantity")
		return
	}

	h.respondCartView(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	size := r.URL.Query().Get("size")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	if err := h.carts.RemoveLine(ctx, userID, productID, size); err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "cart not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to remove item")
		return
	}

	h.respondCartView(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}

	if err := h.carts.Clear(ctx, userID); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to clear cart")
		return
	}

	h.respondCartView(ctx, w, userID, http.StatusOK)
}

func (h *CartHandler) respondCartView(ctx context.Context, w http.ResponseWriter, userID string, status int) {
	c, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load cart")
		return
	}

	respondJSON(w, status, CartViewDTO{
		Items:    pricing.PriceLines(c.Lines, h.catalog),
		Subtotal: pricing.Subtotal(c.Lines, h.catalog),
		Count:    c.ItemCount(),
	})
}
