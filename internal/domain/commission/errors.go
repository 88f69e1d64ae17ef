package commission

import "errors"

var (
	ErrPaymentNotFound = errors.New("payment not found")
	ErrNotEligible     = errors.New("payment has not been paid")
	ErrInvalidFilter   = errors.New("invalid commission filter")
)
