package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/client"
	"github.com/stripe/stripe-go/v80/webhook"
)

// StripeProcessor implements Processor on top of the Stripe API.
type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

func NewStripeProcessor(secretKey, webhookSecret string) *StripeProcessor {
	return &StripeProcessor{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
	}
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.Amount),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: req.Metadata,
	}
	params.Context = ctx
	if req.CustomerID != "" {
		params.Customer = stripe.String(req.CustomerID)
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	if req.ReceiptEmail != "" {
		params.ReceiptEmail = stripe.String(req.ReceiptEmail)
	}
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := p.api.PaymentIntents.New(params)
	if err != nil {
		return nil, convertStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProcessor) ConfirmIntent(ctx context.Context, intentID, paymentMethodID, receiptEmail string) (*Intent, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(paymentMethodID),
	}
	params.Context = ctx
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	params.AddExpand("latest_charge")

	pi, err := p.api.PaymentIntents.Confirm(intentID, params)
	if err != nil {
		return nil, convertStripeError(err)
	}
	return intentFromStripe(pi), nil
}

func (p *StripeProcessor) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	params.AddExpand("latest_charge")

	pi, err := p.api.PaymentIntents.Get(intentID, params)
	if err != nil {
		return nil, convertStripeError(err)
	}
	return intentFromStripe(pi), nil
}

// Refund refunds the intent; amount 0 refunds the full charge and a
// negative amount is rejected before reaching the processor.
func (p *StripeProcessor) Refund(ctx context.Context, intentID string, amount int64) (*RefundResult, error) {
	if amount < 0 {
		return nil, ErrInvalidAmount
	}
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(intentID),
	}
	params.Context = ctx
	if amount > 0 {
		params.Amount = stripe.Int64(amount)
	}

	r, err := p.api.Refunds.New(params)
	if err != nil {
		return nil, convertStripeError(err)
	}
	return &RefundResult{
		ID:              r.ID,
		PaymentIntentID: intentID,
		Amount:          r.Amount,
		Currency:        strings.ToUpper(string(r.Currency)),
		Status:          string(r.Status),
	}, nil
}

func (p *StripeProcessor) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if p.webhookSecret == "" {
		return nil, ErrProcessorDisabled
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}

	switch {
	case strings.HasPrefix(out.Type, "payment_intent."):
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("decode payment intent: %w", err)
		}
		out.Intent = intentFromStripe(&pi)
		out.IntentID = pi.ID
	case out.Type == "charge.refunded":
		var ch stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &ch); err != nil {
			return nil, fmt.Errorf("decode charge: %w", err)
		}
		if ch.PaymentIntent != nil {
			out.IntentID = ch.PaymentIntent.ID
		}
		out.Refunded = ch.Refunded
		out.RefundedMinor = ch.AmountRefunded
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) *Intent {
	out := &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     strings.ToUpper(string(pi.Currency)),
		Status:       string(pi.Status),
		Metadata:     pi.Metadata,
	}
	if pi.PaymentMethod != nil {
		out.PaymentMethodID = pi.PaymentMethod.ID
	}
	if pi.Customer != nil {
		out.CustomerID = pi.Customer.ID
	}
	if pi.LatestCharge != nil {
		out.ReceiptURL = pi.LatestCharge.ReceiptURL
	}
	if pi.LastPaymentError != nil {
		out.LastErrorCode = string(pi.LastPaymentError.Code)
		out.LastDeclineCode = string(pi.LastPaymentError.DeclineCode)
		out.LastErrorMessage = pi.LastPaymentError.Msg
	}
	return out
}

func convertStripeError(err error) error {
	var serr *stripe.Error
	if errors.As(err, &serr) {
		return &ProcessorError{
			Code:        string(serr.Code),
			DeclineCode: string(serr.DeclineCode),
			Message:     serr.Msg,
			HTTPStatus:  serr.HTTPStatusCode,
		}
	}
	return err
}
