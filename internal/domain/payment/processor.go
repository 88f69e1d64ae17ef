package payment

import "context"

// IntentRequest is what the orchestrator asks the processor to create.
// Amount is already in minor units.
type IntentRequest struct {
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	CustomerID     string            `json:"customer,omitempty"`
	Description    string            `json:"description,omitempty"`
	ReceiptEmail   string            `json:"receipt_email,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	IdempotencyKey string            `json:"-"`
}

// Intent is the processor's view of a payment intent.
type Intent struct {
	ID               string            `json:"id"`
	ClientSecret     string            `json:"client_secret"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	PaymentMethodID  string            `json:"payment_method,omitempty"`
	CustomerID       string            `json:"customer,omitempty"`
	ReceiptURL       string            `json:"receipt_url,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	LastErrorCode    string            `json:"-"`
	LastDeclineCode  string            `json:"-"`
	LastErrorMessage string            `json:"-"`
}

type RefundResult struct {
	ID              string `json:"id"`
	PaymentIntentID string `json:"payment_intent"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// WebhookEvent is a verified processor notification reduced to what the
// orchestrator acts on.
type WebhookEvent struct {
	ID       string
	Type     string
	Intent   *Intent
	IntentID string
	Refunded bool
	// RefundedMinor is the charge's refunded total in minor units.
	RefundedMinor int64
}

// Processor is the payment provider boundary. Card data never crosses it;
// confirmation takes a tokenized payment method id.
type Processor interface {
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
	ConfirmIntent(ctx context.Context, intentID, paymentMethodID, receiptEmail string) (*Intent, error)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
	// Refund takes minor units; 0 means the full charge, negatives are invalid.
	Refund(ctx context.Context, intentID string, amount int64) (*RefundResult, error)
	ParseWebhook(payload []byte, signature string) (*WebhookEvent, error)
}
