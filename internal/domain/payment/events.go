package payment

import "time"

// Routing keys published on the payments exchange.
const (
	EventCreated   = "payment.created"
	EventSucceeded = "payment.succeeded"
	EventFailed    = "payment.failed"
	EventRefunded  = "payment.refunded"
)

// Event is the JSON body of every payment.* message.
type Event struct {
	PaymentID       string    `json:"payment_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	BookingID       string    `json:"booking_id"`
	UserID          string    `json:"user_id"`
	PartnerID       string    `json:"partner_id,omitempty"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	AdminCommission string    `json:"admin_commission"`
	PartnerAmount   string    `json:"partner_amount"`
	RefundedAmount  string    `json:"refunded_amount,omitempty"`
	Status          Status    `json:"status"`
	ServiceName     string    `json:"service_name,omitempty"`
	FailureReason   string    `json:"failure_reason,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

func eventFor(p *Payment, at time.Time) Event {
	evt := Event{
		PaymentID:       p.ID,
		PaymentIntentID: p.PaymentIntentID,
		BookingID:       p.BookingID,
		UserID:          p.UserID,
		PartnerID:       p.PartnerID,
		Amount:          p.Amount.StringFixed(2),
		Currency:        p.Currency,
		AdminCommission: p.AdminCommission.StringFixed(2),
		PartnerAmount:   p.PartnerAmount.StringFixed(2),
		Status:          p.Status,
		ServiceName:     p.ServiceName,
		FailureReason:   p.FailureReason,
		OccurredAt:      at,
	}
	if p.Status == StatusRefunded {
		evt.RefundedAmount = p.RefundedAmount.StringFixed(2)
	}
	return evt
}
