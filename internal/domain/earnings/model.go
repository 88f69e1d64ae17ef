package earnings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerCurrency is the currency partner balances are kept in.
const LedgerCurrency = "MAD"

type EntryType string

const (
	EntryCredit   EntryType = "credit"
	EntryReversal EntryType = "reversal"
	EntryPayout   EntryType = "payout"
)

// Entry is one movement on a partner's earnings. Credits and reversals are
// unique per payment; payouts carry no payment.
type Entry struct {
	ID             string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	PartnerID      string          `json:"partner_id" gorm:"type:varchar(36);index;not null"`
	PaymentID      *string         `json:"payment_id,omitempty" gorm:"type:varchar(36);uniqueIndex:idx_earning_payment_type"`
	Type           EntryType       `json:"type" gorm:"type:varchar(16);not null;uniqueIndex:idx_earning_payment_type"`
	Amount         decimal.Decimal `json:"amount" gorm:"type:numeric(14,2);not null"`
	SourceAmount   decimal.Decimal `json:"source_amount" gorm:"type:numeric(14,2);not null"`
	SourceCurrency string          `json:"source_currency" gorm:"type:varchar(3);not null"`
	Note           string          `json:"note,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty" gorm:"type:varchar(36)"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
}

func (Entry) TableName() string {
	return "partner_earning_entries"
}

func (e *Entry) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Balance mirrors the earnings columns of a partner profile.
type Balance struct {
	PartnerID string          `json:"partner_id"`
	Currency  string          `json:"currency"`
	Total     decimal.Decimal `json:"total_earnings"`
	Pending   decimal.Decimal `json:"pending_earnings"`
	Paid      decimal.Decimal `json:"paid_earnings"`
}
