package http

import (
	"context"
	"net/http"
	"time"

	"github.com/velora/storefront/internal/domain"
)

// ProductCatalog is the in-memory snapshot the storefront reads from.
type ProductCatalog interface {
	List() []domain.Product
}

type BannerSource interface {
	LatestBanner(ctx context.Context) (*domain.Banner, error)
}

type CatalogHandler struct {
	catalog ProductCatalog
	banners BannerSource
	timeout time.Duration
}

func NewCatalogHandler(catalog ProductCatalog, banners BannerSource, timeout time.Duration) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		banners: banners,
		timeout: timeout,
	}
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.List()
	if products == nil {
		products = []domain.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

// GetBanner returns the latest featured banner, or a null body when none is
// configured. The storefront treats null as "hide the banner slot".
func (h *CatalogHandler) GetBanner(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	banner, err := h.banners.LatestBanner(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load banner")
		return
	}

	respondJSON(w, http.StatusOK, banner)
}
