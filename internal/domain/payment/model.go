package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
	StatusRefunded   Status = "refunded"
)

// Payment mirrors one processor payment intent for a booking, together with
// the commission split computed when it was created.
type Payment struct {
	ID               string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	BookingID        string            `json:"booking_id" gorm:"type:varchar(64);index;not null"`
	UserID           string            `json:"user_id" gorm:"type:varchar(36);index"`
	PartnerID        string            `json:"partner_id,omitempty" gorm:"type:varchar(36);index"`
	CustomerID       string            `json:"customer_id,omitempty" gorm:"type:varchar(64)"`
	Amount           decimal.Decimal   `json:"amount" gorm:"type:numeric(12,2);not null"`
	Currency         string            `json:"currency" gorm:"type:varchar(3);not null"`
	Status           Status            `json:"status" gorm:"type:varchar(20);index;not null;default:pending"`
	PaymentIntentID  string            `json:"payment_intent_id" gorm:"type:varchar(255);uniqueIndex;not null"`
	PaymentMethodID  string            `json:"payment_method_id,omitempty" gorm:"type:varchar(255)"`
	ReceiptURL       string            `json:"receipt_url,omitempty"`
	AdminCommission  decimal.Decimal   `json:"admin_commission" gorm:"type:numeric(12,2);not null"`
	PartnerAmount    decimal.Decimal   `json:"partner_amount" gorm:"type:numeric(12,2);not null"`
	CommissionRate   decimal.Decimal   `json:"commission_rate" gorm:"type:numeric(5,4);not null"`
	IsCommissionPaid bool              `json:"is_commission_paid" gorm:"not null;default:false;index"`
	CommissionPaidAt *time.Time        `json:"commission_paid_at,omitempty"`
	ServiceType      string            `json:"service_type,omitempty" gorm:"type:varchar(32);index"`
	ServiceName      string            `json:"service_name,omitempty" gorm:"type:varchar(255)"`
	Description      string            `json:"description,omitempty"`
	FailureReason    string            `json:"failure_reason,omitempty"`
	RefundID         string            `json:"refund_id,omitempty" gorm:"type:varchar(255)"`
	RefundedAmount   decimal.Decimal   `json:"refunded_amount" gorm:"type:numeric(12,2);not null;default:0"`
	RefundedAt       *time.Time        `json:"refunded_at,omitempty"`
	PaidAt           *time.Time        `json:"paid_at,omitempty" gorm:"index"`
	Metadata         map[string]string `json:"metadata,omitempty" gorm:"type:text;serializer:json"`
	CreatedAt        time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt        time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}
	return nil
}
