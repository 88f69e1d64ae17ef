package commission

import (
	"context"
	"errors"
	"time"

	"maroctour/internal/domain/payment"
	"maroctour/internal/domain/profile"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// rowRecord is the raw join result; partner name is derived after the scan.
type rowRecord struct {
	PaymentID        string
	PaymentIntentID  string
	BookingID        string
	ServiceName      string
	ServiceType      string
	PartnerID        string
	Currency         string
	Amount           decimal.Decimal
	AdminCommission  decimal.Decimal
	PartnerAmount    decimal.Decimal
	Status           string
	PaidAt           *time.Time
	IsCommissionPaid bool
	CommissionPaidAt *time.Time
	CompanyName      *string
	FirstName        *string
	LastName         *string
	Email            *string
}

const rowColumns = `p.id AS payment_id, p.payment_intent_id, p.booking_id, p.service_name, p.service_type,
	p.partner_id, p.currency, p.amount, p.admin_commission, p.partner_amount, p.status, p.paid_at,
	p.is_commission_paid, p.commission_paid_at,
	pr.company_name, pr.first_name, pr.last_name, pr.email`

func (r *Repository) base(ctx context.Context, f Filter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("payments AS p").
		Joins("LEFT JOIN profiles AS pr ON pr.id = p.partner_id").
		Where("p.status IN ?", []payment.Status{payment.StatusSucceeded, payment.StatusRefunded}).
		Where("p.paid_at IS NOT NULL")

	if f.DateFrom != nil {
		q = q.Where("p.paid_at >= ?", startOfDay(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("p.paid_at < ?", startOfDay(*f.DateTo).AddDate(0, 0, 1))
	}
	switch f.Status {
	case StatusPaid:
		q = q.Where("p.is_commission_paid = ?", true)
	case StatusUnpaid:
		q = q.Where("p.is_commission_paid = ?", false)
	}
	if f.ServiceType != "" && f.ServiceType != StatusAll {
		q = q.Where("p.service_type = ?", f.ServiceType)
	}
	return q
}

// List returns matching rows newest payment first. A zero Limit returns all
// rows.
func (r *Repository) List(ctx context.Context, f Filter) ([]Row, int64, error) {
	var total int64
	if err := r.base(ctx, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.base(ctx, f).Select(rowColumns).Order("p.paid_at DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var recs []rowRecord
	if err := q.Scan(&recs).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]Row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, rec.toRow())
	}
	return rows, total, nil
}

// TogglePaid flips the commission flag of a paid payment under a row lock.
func (r *Repository) TogglePaid(ctx context.Context, paymentID string, at time.Time) (*payment.Payment, error) {
	var p payment.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", paymentID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if p.PaidAt == nil {
			return ErrNotEligible
		}

		updates := map[string]any{"is_commission_paid": !p.IsCommissionPaid, "commission_paid_at": nil}
		if !p.IsCommissionPaid {
			updates["commission_paid_at"] = at
		}
		if err := tx.Model(&payment.Payment{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", p.ID).First(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (rec rowRecord) toRow() Row {
	row := Row{
		PaymentID:        rec.PaymentID,
		PaymentIntentID:  rec.PaymentIntentID,
		BookingID:        rec.BookingID,
		ServiceName:      rec.ServiceName,
		ServiceType:      rec.ServiceType,
		PartnerID:        rec.PartnerID,
		Currency:         rec.Currency,
		TotalAmount:      rec.Amount,
		AdminCommission:  rec.AdminCommission,
		PartnerAmount:    rec.PartnerAmount,
		PaymentStatus:    rec.Status,
		PaidAt:           rec.PaidAt,
		IsCommissionPaid: rec.IsCommissionPaid,
		CommissionPaidAt: rec.CommissionPaidAt,
	}
	if rec.Email != nil {
		partner := profile.Profile{Email: deref(rec.Email), CompanyName: deref(rec.CompanyName), FirstName: deref(rec.FirstName), LastName: deref(rec.LastName)}
		row.PartnerName = partner.DisplayName()
	}
	return row
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
