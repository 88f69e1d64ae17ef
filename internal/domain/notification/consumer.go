package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"maroctour/internal/domain/currency"
	"maroctour/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// PaymentEventKeys are the routing keys the consumer binds.
var PaymentEventKeys = []string{payment.EventSucceeded, payment.EventFailed, payment.EventRefunded}

// HandlePaymentEvent turns a payment event into notifications for the payer
// and, on success, the partner. It satisfies mq.HandlerFunc; a returned
// error requeues the delivery.
func (s *Service) HandlePaymentEvent(ctx context.Context, key string, body []byte) error {
	var evt payment.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		// a malformed body will never decode; drop it
		s.loggerf("level=warn msg=\"payment event dropped\" key=%s err=%v", key, err)
		return nil
	}

	service := evt.ServiceName
	if service == "" {
		service = "votre réservation"
	}
	data := map[string]any{
		"payment_id":        evt.PaymentID,
		"payment_intent_id": evt.PaymentIntentID,
		"booking_id":        evt.BookingID,
	}

	switch key {
	case payment.EventSucceeded:
		if _, err := s.Create(ctx, evt.UserID, TypePaymentSucceeded, "Paiement confirmé",
			fmt.Sprintf("Votre paiement de %s pour %s a été accepté.", money(evt.Amount, evt.Currency), service), data); err != nil {
			return err
		}
		if evt.PartnerID != "" {
			if _, err := s.Create(ctx, evt.PartnerID, TypeBookingPaid, "Nouvelle réservation payée",
				fmt.Sprintf("Une réservation pour %s a été payée. Montant partenaire : %s.", service, money(evt.PartnerAmount, evt.Currency)), data); err != nil {
				return err
			}
		}
	case payment.EventFailed:
		if _, err := s.Create(ctx, evt.UserID, TypePaymentFailed, "Échec du paiement",
			fmt.Sprintf("Le paiement pour %s n'a pas abouti.", service), data); err != nil {
			return err
		}
	case payment.EventRefunded:
		if _, err := s.Create(ctx, evt.UserID, TypePaymentRefunded, "Remboursement effectué",
			fmt.Sprintf("Votre paiement de %s a été remboursé.", money(evt.Amount, evt.Currency)), data); err != nil {
			return err
		}
	}
	return nil
}

func money(amount, code string) string {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return amount + " " + code
	}
	return currency.Format(d, code)
}
