package currency

import "errors"

var (
	ErrUnsupportedCurrency = errors.New("unsupported currency")
	ErrInvalidRate         = errors.New("exchange rate must be positive")
	ErrRatesNotFound       = errors.New("exchange rates not found")
)
