package payment

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCommissionRate is the platform share of every payment.
var DefaultCommissionRate = decimal.RequireFromString("0.10")

// Split divides amount into the platform commission and the partner share.
// The commission is rounded half away from zero to cents and the partner
// gets the remainder, so the two always add up to amount.
func Split(amount, rate decimal.Decimal) (commission, partner decimal.Decimal) {
	commission = amount.Mul(rate).Round(2)
	partner = amount.Sub(commission)
	return commission, partner
}

// zeroDecimal lists the currencies the processor takes in whole units.
var zeroDecimal = map[string]bool{
	"BIF": true, "CLP": true, "DJF": true, "GNF": true, "JPY": true, "KMF": true,
	"KRW": true, "MGA": true, "PYG": true, "RWF": true, "UGX": true, "VND": true,
	"VUV": true, "XAF": true, "XOF": true, "XPF": true,
}

// ToMinorUnits converts an amount to the processor's integer unit
// (centimes for MAD and EUR).
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	if zeroDecimal[strings.ToUpper(currency)] {
		return amount.Round(0).IntPart()
	}
	return amount.Shift(2).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(minor int64, currency string) decimal.Decimal {
	d := decimal.NewFromInt(minor)
	if zeroDecimal[strings.ToUpper(currency)] {
		return d
	}
	return d.Shift(-2)
}
