package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleClient       Role = "client"
	RolePartner      Role = "partner"
	RolePartnerHotel Role = "partner_hotel"
	RolePartnerCar   Role = "partner_car"
	RolePartnerTour  Role = "partner_tour"
	RolePartnerNew   Role = "partner_new"
	RoleSystem       Role = "system"
)

// IsPartner reports "partner" and every "partner_*" role.
func (r Role) IsPartner() bool {
	return r == RolePartner || strings.HasPrefix(string(r), string(RolePartner)+"_")
}

// PartnerType is the service category of a typed partner role, or "".
func (r Role) PartnerType() string {
	switch r {
	case RolePartnerHotel:
		return "hotel"
	case RolePartnerCar:
		return "car"
	case RolePartnerTour:
		return "tourism"
	}
	return ""
}

// Valid reports whether r is one of the assignable roles. System rows are
// managed out of band and cannot be assigned through the API.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RolePartner, RolePartnerHotel, RolePartnerCar, RolePartnerTour, RolePartnerNew:
		return true
	}
	return false
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPending  Status = "pending"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusPending
}

const DefaultCountry = "Maroc"

// Profile is the public account row, keyed by the auth user id.
type Profile struct {
	ID              string          `json:"id" gorm:"type:varchar(36);primaryKey"`
	Email           string          `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName       string          `json:"first_name" gorm:"type:varchar(100)"`
	LastName        string          `json:"last_name" gorm:"type:varchar(100)"`
	Phone           string          `json:"phone" gorm:"type:varchar(32)"`
	Role            Role            `json:"role" gorm:"type:varchar(32);index;not null;default:client"`
	Country         string          `json:"country" gorm:"type:varchar(64);default:Maroc"`
	IsVerified      bool            `json:"is_verified" gorm:"not null;default:false"`
	Status          Status          `json:"status" gorm:"type:varchar(16);index;not null;default:active"`
	CompanyName     string          `json:"company_name,omitempty" gorm:"type:varchar(255)"`
	Address         string          `json:"address,omitempty"`
	City            string          `json:"city,omitempty" gorm:"type:varchar(100)"`
	AvatarURL       string          `json:"avatar_url,omitempty"`
	Description     string          `json:"description,omitempty"`
	PartnerType     string          `json:"partner_type,omitempty" gorm:"type:varchar(32)"`
	CommissionRate  decimal.Decimal `json:"commission_rate" gorm:"type:numeric(5,4);not null;default:0.10"`
	BankAccount     string          `json:"bank_account,omitempty" gorm:"type:varchar(64)"`
	IBAN            string          `json:"iban,omitempty" gorm:"column:iban;type:varchar(64)"`
	TotalEarnings   decimal.Decimal `json:"total_earnings" gorm:"type:numeric(14,2);not null;default:0"`
	PendingEarnings decimal.Decimal `json:"pending_earnings" gorm:"type:numeric(14,2);not null;default:0"`
	PaidEarnings    decimal.Decimal `json:"paid_earnings" gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt       time.Time       `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt       time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "profiles"
}

func (p *Profile) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Country == "" {
		p.Country = DefaultCountry
	}
	if p.Role == "" {
		p.Role = RoleClient
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if p.CommissionRate.IsZero() {
		p.CommissionRate = decimal.RequireFromString("0.10")
	}
	return nil
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// DisplayName prefers the company name for partners.
func (p *Profile) DisplayName() string {
	if p.CompanyName != "" {
		return p.CompanyName
	}
	if name := p.FullName(); name != "" {
		return name
	}
	return p.Email
}
