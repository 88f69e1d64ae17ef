package payment

import (
	"context"
	"errors"
	"time"

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

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *Repository) GetByIntentID(ctx context.Context, intentID string) (*Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListFilter narrows ListBy; empty fields are ignored.
type ListFilter struct {
	UserID    string
	PartnerID string
	Status    Status
	Offset    int
	Limit     int
}

func (r *Repository) ListBy(ctx context.Context, f ListFilter) ([]Payment, int64, error) {
	q := r.db.WithContext(ctx).Model(&Payment{})
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.PartnerID != "" {
		q = q.Where("partner_id = ?", f.PartnerID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []Payment
	q = q.Order("created_at DESC")
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// StatusUpdate carries the optional columns written with a status change.
type StatusUpdate struct {
	Status          Status
	PaymentMethodID string
	ReceiptURL      string
	CustomerID      string
	FailureReason   string
	RefundID        string
	// RefundedMinor is the refunded amount in minor units; 0 means the
	// whole payment.
	RefundedMinor int64
	At            time.Time
}

// ApplyStatus locks the row and writes the update when canTransition allows
// it. It returns the stored row and whether anything changed.
func (r *Repository) ApplyStatus(ctx context.Context, intentID string, u StatusUpdate) (*Payment, bool, error) {
	var (
		out     Payment
		changed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("payment_intent_id = ?", intentID).First(&out).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPaymentNotFound
			}
			return err
		}
		if !canTransition(out.Status, u.Status) {
			return nil
		}

		updates := map[string]any{"status": u.Status}
		if u.PaymentMethodID != "" {
			updates["payment_method_id"] = u.PaymentMethodID
		}
		if u.ReceiptURL != "" {
			updates["receipt_url"] = u.ReceiptURL
		}
		if u.CustomerID != "" && out.CustomerID == "" {
			updates["customer_id"] = u.CustomerID
		}
		if u.FailureReason != "" {
			updates["failure_reason"] = u.FailureReason
		}
		switch u.Status {
		case StatusSucceeded:
			if out.PaidAt == nil {
				updates["paid_at"] = u.At
			}
		case StatusRefunded:
			updates["refunded_at"] = u.At
			refunded := out.Amount
			if u.RefundedMinor > 0 {
				refunded = decimal.Min(FromMinorUnits(u.RefundedMinor, out.Currency), out.Amount)
			}
			updates["refunded_amount"] = refunded
			if u.RefundID != "" {
				updates["refund_id"] = u.RefundID
			}
		}

		if err := tx.Model(&Payment{}).Where("id = ?", out.ID).Updates(updates).Error; err != nil {
			return err
		}
		changed = out.Status != u.Status
		return tx.Where("id = ?", out.ID).First(&out).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &out, changed, nil
}
