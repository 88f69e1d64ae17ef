package earnings

import (
	"context"
	"encoding/json"
	"errors"

	"maroctour/internal/domain/currency"
	"maroctour/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// PaymentEventKeys are the routing keys the ledger consumer binds.
var PaymentEventKeys = []string{payment.EventSucceeded, payment.EventRefunded}

// HandlePaymentEvent credits partners on payment.succeeded and reverses the
// refunded share of the credit on payment.refunded. Events that can never
// apply are dropped; other errors requeue.
func (s *Service) HandlePaymentEvent(ctx context.Context, key string, body []byte) error {
	var evt payment.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		s.loggerf("level=warn msg=\"payment event dropped\" key=%s err=%v", key, err)
		return nil
	}

	switch key {
	case payment.EventSucceeded:
		if evt.PartnerID == "" {
			return nil
		}
		amount, err := decimal.NewFromString(evt.PartnerAmount)
		if err != nil {
			s.loggerf("level=warn msg=\"payment event dropped\" key=%s payment_id=%s err=%v", key, evt.PaymentID, err)
			return nil
		}
		_, _, err = s.Credit(ctx, evt.PartnerID, evt.PaymentID, amount, evt.Currency)
		return s.settle(key, evt, err)
	case payment.EventRefunded:
		_, _, err := s.Reverse(ctx, evt.PaymentID, refundedShare(evt))
		return s.settle(key, evt, err)
	}
	return nil
}

// refundedShare is refunded_amount / amount, capped at 1. Events without a
// refunded amount are full refunds.
func refundedShare(evt payment.Event) decimal.Decimal {
	one := decimal.NewFromInt(1)
	if evt.RefundedAmount == "" {
		return one
	}
	refunded, err := decimal.NewFromString(evt.RefundedAmount)
	if err != nil {
		return one
	}
	total, err := decimal.NewFromString(evt.Amount)
	if err != nil || !total.IsPositive() || refunded.GreaterThanOrEqual(total) {
		return one
	}
	if !refunded.IsPositive() {
		return decimal.Zero
	}
	return refunded.DivRound(total, 8)
}

func (s *Service) settle(key string, evt payment.Event, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPartnerNotFound), errors.Is(err, ErrNoCredit),
		errors.Is(err, ErrInvalidAmount), errors.Is(err, currency.ErrUnsupportedCurrency):
		s.loggerf("level=warn msg=\"earnings event skipped\" key=%s payment_id=%s partner_id=%s err=%v", key, evt.PaymentID, evt.PartnerID, err)
		return nil
	}
	return err
}
