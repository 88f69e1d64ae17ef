package commission

import (
	"time"

	"github.com/shopspring/decimal"
)

// Row is one commission line: a paid booking payment with its split and the
// partner it is owed to.
type Row struct {
	PaymentID        string          `json:"payment_id"`
	PaymentIntentID  string          `json:"payment_intent_id"`
	BookingID        string          `json:"booking_id"`
	ServiceName      string          `json:"service_name"`
	ServiceType      string          `json:"service_type"`
	PartnerID        string          `json:"partner_id"`
	PartnerName      string          `json:"partner_name"`
	Currency         string          `json:"currency"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AdminCommission  decimal.Decimal `json:"admin_commission"`
	PartnerAmount    decimal.Decimal `json:"partner_amount"`
	PaymentStatus    string          `json:"payment_status"`
	PaidAt           *time.Time      `json:"paid_at"`
	IsCommissionPaid bool            `json:"is_commission_paid"`
	CommissionPaidAt *time.Time      `json:"commission_paid_at,omitempty"`
}

const (
	StatusAll    = "all"
	StatusPaid   = "paid"
	StatusUnpaid = "unpaid"
)

// Filter narrows the report. Dates are whole days, both ends inclusive.
type Filter struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	Status      string
	ServiceType string
	Offset      int
	Limit       int
}

type Summary struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalCommission   decimal.Decimal `json:"total_commission"`
	PaidCommission    decimal.Decimal `json:"paid_commission"`
	PendingCommission decimal.Decimal `json:"pending_commission"`
	PartnerPayouts    decimal.Decimal `json:"partner_payouts"`
	TotalCount        int             `json:"total_count"`
	PaidCount         int             `json:"paid_count"`
	PendingCount      int             `json:"pending_count"`
}

// Summarize totals rows; amounts stay exact decimals.
func Summarize(rows []Row) Summary {
	s := Summary{
		TotalRevenue:      decimal.Zero,
		TotalCommission:   decimal.Zero,
		PaidCommission:    decimal.Zero,
		PendingCommission: decimal.Zero,
		PartnerPayouts:    decimal.Zero,
	}
	for _, r := range rows {
		s.TotalCount++
		s.TotalRevenue = s.TotalRevenue.Add(r.TotalAmount)
		s.TotalCommission = s.TotalCommission.Add(r.AdminCommission)
		s.PartnerPayouts = s.PartnerPayouts.Add(r.PartnerAmount)
		if r.IsCommissionPaid {
			s.PaidCount++
			s.PaidCommission = s.PaidCommission.Add(r.AdminCommission)
		} else {
			s.PendingCount++
			s.PendingCommission = s.PendingCommission.Add(r.AdminCommission)
		}
	}
	return s
}
