package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Type represents notification type
type Type string

const (
	TypeNewPartner       Type = "new_partner"
	TypePaymentSucceeded Type = "payment_succeeded"
	TypePaymentFailed    Type = "payment_failed"
	TypePaymentRefunded  Type = "payment_refunded"
	TypeBookingPaid      Type = "booking_paid"
)

// Notification is one message for one recipient.
type Notification struct {
	ID        string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	UserID    string         `json:"user_id" gorm:"type:varchar(36);not null;index:idx_notifications_user_unread"`
	Type      Type           `json:"type" gorm:"type:varchar(50);not null"`
	Title     string         `json:"title" gorm:"type:varchar(255);not null"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty" gorm:"type:text;serializer:json"`
	IsRead    bool           `json:"is_read" gorm:"not null;default:false;index:idx_notifications_user_unread"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName specifies table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(_ *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
