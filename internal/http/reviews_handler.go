package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/velora/storefront/internal/domain"
)

type ReviewStore interface {
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	CreateReview(ctx context.Context, review *domain.Review) error
}

type ReviewsHandler struct {
	reviews ReviewStore
	timeout time.Duration
}

func NewReviewsHandler(reviews ReviewStore, timeout time.Duration) *ReviewsHandler {
	return &ReviewsHandler{
		reviews: reviews,
		timeout: timeout,
	}
}

type CreateReviewRequestDTO struct {
	ProductID string `json:"product_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

func (h *ReviewsHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	reviews, err := h.reviews.ListReviews(ctx, r.URL.Query().Get("product_id"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load reviews")
		return
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	respondJSON(w, http.StatusOK, reviews)
}

func (h *ReviewsHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req CreateReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" || req.UserName == "" {
		respondError(w, http.StatusBadRequest, "missing_fields", "product_id and user_name are required")
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		respondError(w, http.StatusBadRequest, "invalid_rating", "rating must be between 1 and 5")
		return
	}

	review := &domain.Review{
		ProductID: req.ProductID,
		UserName:  req.UserName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := h.reviews.CreateReview(ctx, review); err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to save review")
		return
	}

	respondJSON(w, http.StatusCreated, review)
}
