package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	EUR: "€",
}

// Format renders amount French-style: space thousands separator, comma
// decimals, two places, then the symbol or code ("1 234,50 MAD", "9,99 €").
func Format(amount decimal.Decimal, code string) string {
	code = normalize(code)
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if amount.Round(2).IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	b.WriteByte(' ')
	if sym, ok := symbols[code]; ok {
		b.WriteString(sym)
	} else {
		b.WriteString(code)
	}
	return b.String()
}
