package checkout

import "errors"

var (
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrEmptyOrder           = errors.New("order has no items and no amount, nothing to submit")
)
