package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// CartService is the slice of the cart ledger the poller needs.
type CartService interface {
	Clear(ctx context.Context, userID string) error
}

// Poller consumes paid-order events and empties the session's cart, the
// server-side counterpart of the storefront clearing its local cart after a
// successful checkout.
type Poller struct {
	carts  CartService
	reader *kafka.Reader
}

func NewPoller(carts CartService, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    paidTopic,
		GroupID:  "storefront-cart-clear",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{carts: carts, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		m, err := p.reader.ReadMessage(ctx)
		if err != nil {
			log.Printf("error reading message: %v", err)
			continue
		}
		p.handleMessage(ctx, m.Value)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing reader: %v", err)
	}
}

func (p *Poller) handleMessage(ctx context.Context, value []byte) {
	var event PaidEvent
	if err := json.Unmarshal(value, &event); err != nil {
		log.Printf("error parsing paid event: %v", err)
		return
	}
	if event.UserID == "" {
		log.Println("paid event missing user_id")
		return
	}

	if err := p.carts.Clear(ctx, event.UserID); err != nil {
		log.Printf("failed to clear cart for user %s: %v", event.UserID, err)
	}
}
