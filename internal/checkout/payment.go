package checkout

import "context"

// SessionLine is one line item of a hosted payment session. UnitAmount is in
// minor currency units.
type SessionLine struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type Session struct {
	ID  string
	URL string
}

// SessionCreator creates a hosted payment session at the external processor.
// Consumers define this interface, not the Stripe implementation.
type SessionCreator interface {
	CreateSession(ctx context.Context, customerEmail string, lines []SessionLine) (*Session, error)
}
