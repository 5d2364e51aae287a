package checkout

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerSessions wraps a SessionCreator with a circuit breaker so a degraded
// payment processor fails fast instead of holding request slots open.
type BreakerSessions struct {
	inner SessionCreator
	cb    *gobreaker.CircuitBreaker[*Session]
}

func NewBreakerSessions(inner SessionCreator) *BreakerSessions {
	cb := gobreaker.NewCircuitBreaker[*Session](gobreaker.Settings{
		Name:        "payment-sessions",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &BreakerSessions{inner: inner, cb: cb}
}

func (b *BreakerSessions) CreateSession(ctx context.Context, customerEmail string, lines []SessionLine) (*Session, error) {
	return b.cb.Execute(func() (*Session, error) {
		return b.inner.CreateSession(ctx, customerEmail, lines)
	})
}
