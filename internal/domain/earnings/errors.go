package earnings

import "errors"

var (
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientPending = errors.New("payout exceeds pending earnings")
	ErrPartnerNotFound     = errors.New("partner not found")
	ErrNoCredit            = errors.New("payment was never credited")
)
