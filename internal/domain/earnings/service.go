package earnings

import (
	"context"
	"errors"
	"time"

	"maroctour/internal/database"
	"maroctour/internal/domain/profile"
	"maroctour/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Converter turns payment amounts into the ledger currency.
type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// Service keeps the earnings columns of partner profiles in step with an
// append-only ledger. Every balance change locks the profile row.
type Service struct {
	db        *gorm.DB
	converter Converter
	now       func() time.Time
	loggerf   func(format string, args ...interface{})
}

func NewService(db *gorm.DB, converter Converter, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{db: db, converter: converter, now: time.Now, loggerf: loggerf}
}

// Credit adds a partner's share of a succeeded payment to total and pending.
// A payment is credited at most once; applied is false on a repeat.
func (s *Service) Credit(ctx context.Context, partnerID, paymentID string, amount decimal.Decimal, currency string) (entry *Entry, applied bool, err error) {
	if !amount.IsPositive() {
		return nil, false, ErrInvalidAmount
	}
	ledgerAmount, err := s.converter.Convert(ctx, amount, currency, LedgerCurrency)
	if err != nil {
		return nil, false, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findEntry(tx, paymentID, EntryCredit)
		if err != nil {
			return err
		}
		if existing != nil {
			entry = existing
			return nil
		}

		p, err := lockPartner(tx, partnerID)
		if err != nil {
			return err
		}
		entry = &Entry{
			PartnerID:      partnerID,
			PaymentID:      &paymentID,
			Type:           EntryCredit,
			Amount:         ledgerAmount,
			SourceAmount:   amount,
			SourceCurrency: currency,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		applied = true
		return tx.Model(&profile.Profile{}).Where("id = ?", p.ID).Updates(map[string]any{
			"total_earnings":   p.TotalEarnings.Add(ledgerAmount),
			"pending_earnings": p.PendingEarnings.Add(ledgerAmount),
		}).Error
	})
	if database.IsUniqueViolation(err) {
		// a concurrent delivery won the insert
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if applied {
		s.loggerf("level=info msg=\"earnings credited\" partner_id=%s payment_id=%s amount=%s", partnerID, paymentID, ledgerAmount.StringFixed(2))
	}
	return entry, applied, nil
}

// Reverse takes back share (0 < share <= 1) of the credit of a refunded
// payment; share 1 is a full refund. Reversing twice is a no-op.
func (s *Service) Reverse(ctx context.Context, paymentID string, share decimal.Decimal) (entry *Entry, applied bool, err error) {
	if !share.IsPositive() || share.GreaterThan(decimal.NewFromInt(1)) {
		return nil, false, ErrInvalidAmount
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		credit, err := findEntry(tx, paymentID, EntryCredit)
		if err != nil {
			return err
		}
		if credit == nil {
			return ErrNoCredit
		}
		existing, err := findEntry(tx, paymentID, EntryReversal)
		if err != nil {
			return err
		}
		if existing != nil {
			entry = existing
			return nil
		}

		amount := decimal.Min(credit.Amount.Mul(share).Round(2), credit.Amount)
		if !amount.IsPositive() {
			return ErrInvalidAmount
		}
		p, err := lockPartner(tx, credit.PartnerID)
		if err != nil {
			return err
		}
		entry = &Entry{
			PartnerID:      credit.PartnerID,
			PaymentID:      &paymentID,
			Type:           EntryReversal,
			Amount:         amount,
			SourceAmount:   decimal.Min(credit.SourceAmount.Mul(share).Round(2), credit.SourceAmount),
			SourceCurrency: credit.SourceCurrency,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		applied = true
		return tx.Model(&profile.Profile{}).Where("id = ?", p.ID).Updates(map[string]any{
			"total_earnings":   p.TotalEarnings.Sub(amount),
			"pending_earnings": p.PendingEarnings.Sub(amount),
		}).Error
	})
	if database.IsUniqueViolation(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if applied {
		s.loggerf("level=info msg=\"earnings reversed\" partner_id=%s payment_id=%s amount=%s", entry.PartnerID, paymentID, entry.Amount.StringFixed(2))
	}
	return entry, applied, nil
}

// Payout records money sent to a partner, moving it from pending to paid.
func (s *Service) Payout(ctx context.Context, partnerID string, amount decimal.Decimal, adminID, note string) (*Entry, *Balance, error) {
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	var entry *Entry
	var balance *Balance
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockPartner(tx, partnerID)
		if err != nil {
			return err
		}
		if p.PendingEarnings.LessThan(amount) {
			return ErrInsufficientPending
		}
		entry = &Entry{
			PartnerID:      partnerID,
			Type:           EntryPayout,
			Amount:         amount,
			SourceAmount:   amount,
			SourceCurrency: LedgerCurrency,
			Note:           note,
			CreatedBy:      adminID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		p.PendingEarnings = p.PendingEarnings.Sub(amount)
		p.PaidEarnings = p.PaidEarnings.Add(amount)
		balance = balanceOf(p)
		return tx.Model(&profile.Profile{}).Where("id = ?", p.ID).Updates(map[string]any{
			"pending_earnings": p.PendingEarnings,
			"paid_earnings":    p.PaidEarnings,
		}).Error
	})
	if err != nil {
		return nil, nil, err
	}
	s.loggerf("level=info msg=\"partner payout recorded\" partner_id=%s amount=%s admin_id=%s", partnerID, amount.StringFixed(2), adminID)
	return entry, balance, nil
}

func (s *Service) Balance(ctx context.Context, partnerID string) (*Balance, error) {
	var p profile.Profile
	err := s.db.WithContext(ctx).Where("id = ?", partnerID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !p.Role.IsPartner()) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	return balanceOf(&p), nil
}

// Entries lists a partner's ledger, newest first.
func (s *Service) Entries(ctx context.Context, partnerID string, page pagination.Params) ([]Entry, int64, error) {
	q := s.db.WithContext(ctx).Model(&Entry{}).Where("partner_id = ?", partnerID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []Entry
	err := s.db.WithContext(ctx).Where("partner_id = ?", partnerID).
		Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit()).Find(&out).Error
	return out, total, err
}

func findEntry(tx *gorm.DB, paymentID string, typ EntryType) (*Entry, error) {
	var e Entry
	err := tx.Where("payment_id = ? AND type = ?", paymentID, typ).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func lockPartner(tx *gorm.DB, partnerID string) (*profile.Profile, error) {
	var p profile.Profile
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", partnerID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPartnerNotFound
	}
	if err != nil {
		return nil, err
	}
	if !p.Role.IsPartner() {
		return nil, ErrPartnerNotFound
	}
	return &p, nil
}

func balanceOf(p *profile.Profile) *Balance {
	return &Balance{
		PartnerID: p.ID,
		Currency:  LedgerCurrency,
		Total:     p.TotalEarnings,
		Pending:   p.PendingEarnings,
		Paid:      p.PaidEarnings,
	}
}
