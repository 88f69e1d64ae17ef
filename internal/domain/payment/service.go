package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"maroctour/internal/database"
	"maroctour/internal/pkg/pagination"

	"github.com/shopspring/decimal"
)

// EventPublisher is satisfied by mq.Publisher.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Config struct {
	CommissionRate  decimal.Decimal
	DefaultCurrency string
	Currencies      []string
}

type Service struct {
	repo      *Repository
	processor Processor
	publisher EventPublisher
	cfg       Config
	now       func() time.Time
	loggerf   func(format string, args ...interface{})
}

func NewService(repo *Repository, processor Processor, cfg Config, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	if cfg.CommissionRate.IsZero() {
		cfg.CommissionRate = DefaultCommissionRate
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "MAD"
	}
	return &Service{repo: repo, processor: processor, cfg: cfg, now: time.Now, loggerf: loggerf}
}

// SetPublisher enables payment.* events.
func (s *Service) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// Caller identifies who is acting on a payment.
type Caller struct {
	UserID string
	Email  string
	Role   string
}

func (c Caller) isAdmin() bool { return c.Role == "admin" }

type CreateIntentRequest struct {
	BookingID   string            `json:"booking_id" validate:"required,max=64"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency" validate:"omitempty,len=3"`
	PartnerID   string            `json:"partner_id" validate:"omitempty,max=36"`
	CustomerID  string            `json:"customer_id" validate:"omitempty,max=64"`
	ServiceType string            `json:"service_type" validate:"omitempty,oneof=hotel car tourism"`
	ServiceName string            `json:"service_name" validate:"omitempty,max=255"`
	Description string            `json:"description" validate:"omitempty,max=1000"`
	Metadata    map[string]string `json:"metadata"`
}

type CreateIntentResult struct {
	ClientSecret string   `json:"client_secret"`
	Payment      *Payment `json:"payment"`
}

// CreateIntent creates the processor intent and records the payment with its
// commission split. Replaying an idempotency key returns the stored record.
func (s *Service) CreateIntent(ctx context.Context, caller Caller, req CreateIntentRequest, idempotencyKey string) (*CreateIntentResult, error) {
	if strings.TrimSpace(req.BookingID) == "" {
		return nil, ErrBookingRequired
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	currency, err := s.currency(req.Currency)
	if err != nil {
		return nil, err
	}

	amount := req.Amount.Round(2)
	rate := s.cfg.CommissionRate
	commission, partnerAmount := Split(amount, rate)

	meta := map[string]string{}
	for k, v := range req.Metadata {
		meta[k] = v
	}
	meta["bookingId"] = req.BookingID
	meta["userId"] = caller.UserID
	meta["partnerId"] = req.PartnerID
	meta["commissionRate"] = rate.String()
	meta["adminCommission"] = commission.StringFixed(2)
	meta["partnerAmount"] = partnerAmount.StringFixed(2)

	intent, err := s.processor.CreateIntent(ctx, IntentRequest{
		Amount:         ToMinorUnits(amount, currency),
		Currency:       currency,
		CustomerID:     req.CustomerID,
		Description:    req.Description,
		ReceiptEmail:   caller.Email,
		Metadata:       meta,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	p := &Payment{
		BookingID:       req.BookingID,
		UserID:          caller.UserID,
		PartnerID:       req.PartnerID,
		CustomerID:      firstNonEmpty(intent.CustomerID, req.CustomerID),
		Amount:          amount,
		Currency:        currency,
		Status:          MapProcessorStatus(intent.Status),
		PaymentIntentID: intent.ID,
		AdminCommission: commission,
		PartnerAmount:   partnerAmount,
		CommissionRate:  rate,
		ServiceType:     req.ServiceType,
		ServiceName:     req.ServiceName,
		Description:     req.Description,
		Metadata:        meta,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if database.IsUniqueViolation(err) {
			existing, getErr := s.repo.GetByIntentID(ctx, intent.ID)
			if getErr != nil {
				return nil, getErr
			}
			s.loggerf("level=info msg=\"payment intent replayed\" intent_id=%s", intent.ID)
			return &CreateIntentResult{ClientSecret: intent.ClientSecret, Payment: existing}, nil
		}
		return nil, fmt.Errorf("save payment: %w", err)
	}

	s.loggerf("level=info msg=\"payment intent created\" intent_id=%s booking_id=%s amount=%s currency=%s", intent.ID, p.BookingID, amount.StringFixed(2), currency)
	s.publish(ctx, EventCreated, p)
	return &CreateIntentResult{ClientSecret: intent.ClientSecret, Payment: p}, nil
}

type ConfirmRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	ReceiptEmail    string `json:"receipt_email" validate:"omitempty,email"`
}

// Confirm confirms the intent with a tokenized payment method. A processor
// decline marks the payment failed and returns the *ProcessorError.
func (s *Service) Confirm(ctx context.Context, caller Caller, intentID string, req ConfirmRequest) (*Payment, error) {
	p, err := s.repo.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if p.UserID != caller.UserID && !caller.isAdmin() {
		return nil, ErrForbidden
	}

	intent, err := s.processor.ConfirmIntent(ctx, intentID, req.PaymentMethodID, firstNonEmpty(req.ReceiptEmail, caller.Email))
	if err != nil {
		var perr *ProcessorError
		if errors.As(err, &perr) {
			if _, applyErr := s.apply(ctx, intentID, StatusUpdate{
				Status:          StatusFailed,
				PaymentMethodID: req.PaymentMethodID,
				FailureReason:   perr.Error(),
			}); applyErr != nil {
				s.loggerf("level=error msg=\"mark payment failed\" intent_id=%s err=%v", intentID, applyErr)
			}
		}
		return nil, err
	}

	return s.apply(ctx, intentID, updateFromIntent(intent))
}

type RefundRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

// Refund refunds a succeeded payment (fully, or partially with an amount).
// The record turns refunded once the processor reports the refund succeeded.
func (s *Service) Refund(ctx context.Context, intentID string, req RefundRequest) (*Payment, *RefundResult, error) {
	p, err := s.repo.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, nil, err
	}
	if p.Status != StatusSucceeded {
		return nil, nil, ErrNotRefundable
	}

	var minor int64
	if req.Amount != nil {
		if !req.Amount.IsPositive() || req.Amount.GreaterThan(p.Amount) {
			return nil, nil, ErrInvalidAmount
		}
		minor = ToMinorUnits(*req.Amount, p.Currency)
	}

	refund, err := s.processor.Refund(ctx, intentID, minor)
	if err != nil {
		return nil, nil, err
	}
	if refund.Status != "succeeded" {
		s.loggerf("level=info msg=\"refund not yet succeeded\" intent_id=%s refund_id=%s status=%s", intentID, refund.ID, refund.Status)
		return p, refund, nil
	}

	updated, err := s.apply(ctx, intentID, StatusUpdate{Status: StatusRefunded, RefundID: refund.ID, RefundedMinor: refund.Amount})
	if err != nil {
		return nil, nil, err
	}
	return updated, refund, nil
}

// Get returns a payment visible to the caller: its payer, its partner or an admin.
func (s *Service) Get(ctx context.Context, caller Caller, intentID string) (*Payment, error) {
	p, err := s.repo.GetByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}
	if !caller.isAdmin() && p.UserID != caller.UserID && p.PartnerID != caller.UserID {
		return nil, ErrForbidden
	}
	return p, nil
}

func (s *Service) GetByIntentID(ctx context.Context, intentID string) (*Payment, error) {
	return s.repo.GetByIntentID(ctx, intentID)
}

func (s *Service) ListMine(ctx context.Context, userID string, page pagination.Params) ([]Payment, int64, error) {
	return s.repo.ListBy(ctx, ListFilter{UserID: userID, Offset: page.Offset(), Limit: page.Limit()})
}

func (s *Service) ListForPartner(ctx context.Context, partnerID string, page pagination.Params) ([]Payment, int64, error) {
	return s.repo.ListBy(ctx, ListFilter{PartnerID: partnerID, Offset: page.Offset(), Limit: page.Limit()})
}

// SyncFromProcessor polls the processor and mirrors the intent status.
func (s *Service) SyncFromProcessor(ctx context.Context, caller Caller, intentID string) (*Payment, error) {
	if _, err := s.Get(ctx, caller, intentID); err != nil {
		return nil, err
	}
	intent, err := s.processor.GetIntent(ctx, intentID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, intentID, updateFromIntent(intent))
}

// HandleWebhook verifies and applies a processor notification. Events for
// intents this service never recorded are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	evt, err := s.processor.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	if evt.IntentID == "" {
		s.loggerf("level=info msg=\"webhook ignored\" event_id=%s type=%s", evt.ID, evt.Type)
		return nil
	}

	var u StatusUpdate
	switch {
	case evt.Type == "charge.refunded":
		if !evt.Refunded {
			return nil
		}
		u = StatusUpdate{Status: StatusRefunded, RefundedMinor: evt.RefundedMinor}
	case evt.Type == "payment_intent.payment_failed" && evt.Intent != nil:
		u = updateFromIntent(evt.Intent)
		u.Status = StatusFailed
	case evt.Intent != nil:
		u = updateFromIntent(evt.Intent)
	default:
		return nil
	}

	_, err = s.apply(ctx, evt.IntentID, u)
	if errors.Is(err, ErrPaymentNotFound) {
		s.loggerf("level=warn msg=\"webhook for unknown intent\" event_id=%s intent_id=%s", evt.ID, evt.IntentID)
		return nil
	}
	return err
}

// apply writes a status update and publishes the matching event when the
// status actually changed.
func (s *Service) apply(ctx context.Context, intentID string, u StatusUpdate) (*Payment, error) {
	u.At = s.now()
	p, changed, err := s.repo.ApplyStatus(ctx, intentID, u)
	if err != nil {
		return nil, err
	}
	if !changed {
		if p.Status != u.Status {
			s.loggerf("level=info msg=\"status update ignored\" intent_id=%s current=%s incoming=%s", intentID, p.Status, u.Status)
		}
		return p, nil
	}

	s.loggerf("level=info msg=\"payment status changed\" intent_id=%s status=%s", intentID, p.Status)
	switch p.Status {
	case StatusSucceeded:
		s.publish(ctx, EventSucceeded, p)
	case StatusFailed:
		s.publish(ctx, EventFailed, p)
	case StatusRefunded:
		s.publish(ctx, EventRefunded, p)
	}
	return p, nil
}

func (s *Service) publish(ctx context.Context, key string, p *Payment) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, key, eventFor(p, s.now().UTC())); err != nil {
		s.loggerf("level=error msg=\"publish payment event\" key=%s payment_id=%s err=%v", key, p.ID, err)
	}
}

func (s *Service) currency(raw string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(raw))
	if c == "" {
		return s.cfg.DefaultCurrency, nil
	}
	if len(s.cfg.Currencies) == 0 {
		return c, nil
	}
	for _, allowed := range s.cfg.Currencies {
		if allowed == c {
			return c, nil
		}
	}
	return "", ErrUnsupportedCurrency
}

// updateFromIntent maps an intent to a status update. An intent back in
// requires_payment_method with a last error is a failed attempt.
func updateFromIntent(intent *Intent) StatusUpdate {
	u := StatusUpdate{
		Status:          MapProcessorStatus(intent.Status),
		PaymentMethodID: intent.PaymentMethodID,
		ReceiptURL:      intent.ReceiptURL,
		CustomerID:      intent.CustomerID,
	}
	if u.Status == StatusPending && intent.LastErrorCode != "" {
		u.Status = StatusFailed
		u.FailureReason = intent.LastErrorCode
		if intent.LastDeclineCode != "" {
			u.FailureReason += ": " + intent.LastDeclineCode
		}
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
