package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodJazzCash PaymentMethod = "jazzcash"
)

type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Size      string  `json:"size,omitempty"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderDraft is the client-composed order before the gateway accepts it.
// The declared Amount is advisory only; authoritative totals are recomputed
// from catalog prices at submission time.
type OrderDraft struct {
	Customer      Customer
	Items         []OrderItem
	Amount        float64
	PaymentMethod PaymentMethod
}

type Order struct {
	ID            uuid.UUID
	UserID        string
	CustomerName  string
	CustomerEmail string
	Phone         string
	Address       string
	PaymentMethod PaymentMethod
	Status        OrderStatus
	TotalAmount   float64
	Currency      string
	Items         []OrderItem
	Reference     string // manual payment reference, empty for card orders
	SessionID     string // payment session id, empty for manual orders
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
