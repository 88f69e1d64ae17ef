package payment

import "maroctour/internal/pkg/messages"

// MapProcessorStatus converts a processor intent status to ours.
// requires_payment_method and unknown values map to pending.
func MapProcessorStatus(s string) Status {
	switch s {
	case "succeeded":
		return StatusSucceeded
	case "canceled":
		return StatusCanceled
	case "processing", "requires_confirmation", "requires_action", "requires_capture":
		return StatusProcessing
	}
	return StatusPending
}

// canTransition guards status writes. Refunded is terminal and only a
// succeeded payment can be refunded; a succeeded payment never goes back.
func canTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusRefunded:
		return false
	case StatusSucceeded:
		return to == StatusRefunded
	}
	return to != StatusRefunded
}

// DeclineMessage maps a processor error code to the message shown to payers.
// Decline codes are ignored: a card_declined error always gets the declined
// message, whatever the issuer's reason.
func DeclineMessage(code string) string {
	switch code {
	case "card_declined":
		return messages.PaymentCardDeclined
	case "expired_card":
		return messages.PaymentExpiredCard
	case "insufficient_funds":
		return messages.PaymentInsufficient
	}
	return messages.PaymentGenericFailure
}
