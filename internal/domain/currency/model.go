package currency

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MAD = "MAD"
	EUR = "EUR"

	BaseCurrency = MAD
)

// Supported lists the display currencies; every rate is quoted against MAD.
var Supported = []string{MAD, EUR}

// ExchangeRate is the stored quote row for one base currency.
type ExchangeRate struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	BaseCurrency string          `json:"base_currency" gorm:"type:varchar(3);uniqueIndex;not null"`
	EURRate      decimal.Decimal `json:"eur_rate" gorm:"column:eur_rate;type:numeric(12,6);not null"`
	UpdatedBy    string          `json:"updated_by,omitempty" gorm:"type:varchar(36)"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ExchangeRate) TableName() string {
	return "exchange_rates"
}

// Rates are units of each currency per one MAD.
type Rates struct {
	MAD         decimal.Decimal `json:"MAD"`
	EUR         decimal.Decimal `json:"EUR"`
	LastUpdated time.Time       `json:"last_updated"`
}

func (r Rates) rate(code string) (decimal.Decimal, bool) {
	switch code {
	case MAD:
		return r.MAD, true
	case EUR:
		return r.EUR, true
	}
	return decimal.Zero, false
}
