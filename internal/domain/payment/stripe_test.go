package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80/webhook"
)

const testWebhookSecret = "whsec_test_secret"

func signed(payload string) (string, []byte) {
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload: []byte(payload),
		Secret:  testWebhookSecret,
	})
	return sp.Header, sp.Payload
}

func TestStripeParseWebhook_PaymentIntent(t *testing.T) {
	p := NewStripeProcessor("sk_test_unused", testWebhookSecret)
	header, body := signed(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.payment_failed",
		"data": {"object": {
			"id": "pi_123",
			"object": "payment_intent",
			"amount": 45000,
			"currency": "mad",
			"status": "requires_payment_method",
			"payment_method": "pm_abc",
			"last_payment_error": {"code": "card_declined", "decline_code": "insufficient_funds", "message": "Your card has insufficient funds."}
		}}
	}`)

	evt, err := p.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "payment_intent.payment_failed", evt.Type)
	assert.Equal(t, "pi_123", evt.IntentID)
	require.NotNil(t, evt.Intent)
	assert.Equal(t, "MAD", evt.Intent.Currency)
	assert.Equal(t, "pm_abc", evt.Intent.PaymentMethodID)
	assert.Equal(t, "card_declined", evt.Intent.LastErrorCode)
	assert.Equal(t, "insufficient_funds", evt.Intent.LastDeclineCode)
}

func TestStripeParseWebhook_ChargeRefunded(t *testing.T) {
	p := NewStripeProcessor("sk_test_unused", testWebhookSecret)
	header, body := signed(`{
		"id": "evt_2",
		"object": "event",
		"type": "charge.refunded",
		"data": {"object": {"id": "ch_1", "object": "charge", "payment_intent": "pi_456", "refunded": true}}
	}`)

	evt, err := p.ParseWebhook(body, header)
	require.NoError(t, err)
	assert.Equal(t, "pi_456", evt.IntentID)
	assert.True(t, evt.Refunded)
}

func TestStripeParseWebhook_Rejects(t *testing.T) {
	p := NewStripeProcessor("sk_test_unused", testWebhookSecret)
	_, body := signed(`{"id":"evt_3","object":"event","type":"payment_intent.succeeded","data":{"object":{}}}`)

	_, err := p.ParseWebhook(body, "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = NewStripeProcessor("sk_test_unused", "").ParseWebhook(body, "")
	assert.ErrorIs(t, err, ErrProcessorDisabled)
}

func TestStripeRefund_RejectsNegativeAmount(t *testing.T) {
	p := NewStripeProcessor("sk_test_unused", testWebhookSecret)
	_, err := p.Refund(context.Background(), "pi_1", -500)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}
