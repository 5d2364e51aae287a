package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the full storefront surface. The webhook route sits
// outside the session middleware; its only authentication is the processor
// signature.
func NewRouter(
	cartHandler *CartHandler,
	catalogHandler *CatalogHandler,
	reviewsHandler *ReviewsHandler,
	ordersHandler *OrdersHandler,
	webhookHandler *WebhookHandler,
	requestTimeout time.Duration,
) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/webhooks/payment", webhookHandler.HandleWebhook)

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware)

			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/banner", catalogHandler.GetBanner)

			r.Get("/reviews", reviewsHandler.ListReviews)
			r.Post("/reviews", reviewsHandler.CreateReview)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", ordersHandler.SubmitOrder)
				r.Get("/", ordersHandler.ListOrders)
				r.Get("/{order_id}", ordersHandler.GetOrder)
			})
		})
	})

	return r
}
