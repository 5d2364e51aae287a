package checkout

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
)

// StripeSessions implements SessionCreator against the Stripe Checkout API.
type StripeSessions struct {
	currency   string
	successURL string
	cancelURL  string
}

func NewStripeSessions(secretKey, currency, publicBaseURL string) *StripeSessions {
	stripe.Key = secretKey
	return &StripeSessions{
		currency:   currency,
		successURL: publicBaseURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  publicBaseURL + "/cancel",
	}
}

func (s *StripeSessions) CreateSession(ctx context.Context, customerEmail string, lines []SessionLine) (*Session, error) {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, l := range lines {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(l.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripe.String(s.successURL),
		CancelURL:          stripe.String(s.cancelURL),
	}
	if customerEmail != "" {
		params.CustomerEmail = stripe.String(customerEmail)
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}
