package cart

import (
	"context"
	"errors"

	"github.com/velora/storefront/internal/domain"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrLineNotFound = errors.New("line not found in cart")
)

// Repository defines cart persistence. Lines are keyed by (product_id, size);
// the implementation must never store a line with quantity <= 0.
type Repository interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddLine(ctx context.Context, userID string, line domain.CartLine) error
	SetLineQuantity(ctx context.Context, userID, productID, size string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID, size string) error
	DeleteCart(ctx context.Context, userID string) error
}
