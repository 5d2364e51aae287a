package checkout

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/velora/storefront/internal/domain"
	"github.com/velora/storefront/internal/pricing"
)

type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
}

// Gateway is the single validated entry point for order submission. It
// recomputes the authoritative total from catalog prices and dispatches on
// the payment method: hosted card session, or a generated manual reference.
type Gateway struct {
	catalog  pricing.Catalog
	sessions SessionCreator
	orders   OrderStore
	currency string
}

func NewGateway(catalog pricing.Catalog, sessions SessionCreator, orders OrderStore, currency string) *Gateway {
	return &Gateway{
		catalog:  catalog,
		sessions: sessions,
		orders:   orders,
		currency: currency,
	}
}

type Result struct {
	OrderID    uuid.UUID
	SessionURL string // card orders: processor redirect URL
	Reference  string // manual orders: JC-XXXXXXX
}

func (g *Gateway) SubmitOrder(ctx context.Context, userID string, draft *domain.OrderDraft) (*Result, error) {
	switch draft.PaymentMethod {
	case domain.PaymentMethodCard, domain.PaymentMethodJazzCash:
	default:
		return nil, ErrInvalidPaymentMethod
	}

	if len(draft.Items) == 0 && draft.Amount <= 0 {
		return nil, ErrEmptyOrder
	}

	items, total := g.reconcile(draft)

	order := &domain.Order{
		ID:            uuid.New(),
		UserID:        userID,
		CustomerName:  draft.Customer.Name,
		CustomerEmail: draft.Customer.Email,
		Phone:         draft.Customer.Phone,
		Address:       draft.Customer.Address,
		PaymentMethod: draft.PaymentMethod,
		Status:        domain.OrderStatusPending,
		TotalAmount:   total,
		Currency:      g.currency,
		Items:         items,
	}

	if draft.PaymentMethod == domain.PaymentMethodCard {
		return g.submitCard(ctx, order, draft.Amount)
	}
	return g.submitManual(ctx, order, draft.Amount)
}

// reconcile joins the draft items against the catalog at submission time.
// Prices come from the catalog, never from the client; items missing from the
// catalog keep displaying in the order but price as zero.
func (g *Gateway) reconcile(draft *domain.OrderDraft) ([]domain.OrderItem, float64) {
	items := make([]domain.OrderItem, 0, len(draft.Items))
	var total float64

	for _, it := range draft.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}

		item := domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Size:      it.Size,
			Quantity:  qty,
		}
		if p, ok := g.catalog.Lookup(it.ProductID); ok {
			item.Name = p.Name
			item.Price = p.Price
			total += p.Price * float64(qty)
		}
		items = append(items, item)
	}

	return items, total
}

func (g *Gateway) submitCard(ctx context.Context, order *domain.Order, declaredAmount float64) (*Result, error) {
	lines := make([]SessionLine, 0, len(order.Items))
	for _, item := range order.Items {
		unitAmount := toMinorUnits(item.Price)
		if unitAmount <= 0 {
			continue
		}
		name := item.Name
		if name == "" {
			name = "Product"
		}
		lines = append(lines, SessionLine{
			Name:       name,
			UnitAmount: unitAmount,
			Quantity:   int64(item.Quantity),
		})
	}

	// No itemized breakdown: charge a single synthetic line derived from the
	// declared amount.
	if len(lines) == 0 {
		lines = append(lines, SessionLine{
			Name:       "Order",
			UnitAmount: toMinorUnits(declaredAmount),
			Quantity:   1,
		})
		order.TotalAmount = declaredAmount
	}

	sess, err := g.sessions.CreateSession(ctx, order.CustomerEmail, lines)
	if err != nil {
		return nil, fmt.Errorf("payment session: %w", err)
	}

	order.SessionID = sess.ID
	// If this insert fails the session exists but is not linked to an order;
	// the webhook upsert recovers the paid state later.
	if err := g.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	return &Result{OrderID: order.ID, SessionURL: sess.URL}, nil
}

func (g *Gateway) submitManual(ctx context.Context, order *domain.Order, declaredAmount float64) (*Result, error) {
	if len(order.Items) == 0 {
		order.TotalAmount = math.Round(declaredAmount)
	}

	order.Reference = NewReference()
	if err := g.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	return &Result{OrderID: order.ID, Reference: order.Reference}, nil
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
