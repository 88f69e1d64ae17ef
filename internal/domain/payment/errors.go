package payment

import "errors"

var (
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrBookingRequired     = errors.New("booking id is required")
	ErrForbidden           = errors.New("payment belongs to another user")
	ErrNotRefundable       = errors.New("only succeeded payments can be refunded")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrProcessorDisabled   = errors.New("payment processor is not configured")
)

// ProcessorError is a failure reported by the payment processor. Code and
// DeclineCode carry the processor's machine codes.
type ProcessorError struct {
	Code        string
	DeclineCode string
	Message     string
	HTTPStatus  int
}

func (e *ProcessorError) Error() string {
	if e.DeclineCode != "" {
		return "processor: " + e.Code + " (" + e.DeclineCode + "): " + e.Message
	}
	return "processor: " + e.Code + ": " + e.Message
}

// UserMessage is the French text shown to the payer.
func (e *ProcessorError) UserMessage() string {
	return DeclineMessage(e.Code)
}
