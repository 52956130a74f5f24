// Package pricing turns monetary amounts into display strings.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

type Currency string

const (
	CDF Currency = "CDF"
	USD Currency = "USD"
)

const DefaultCurrency = CDF

var Symbols = map[Currency]string{
	CDF: "FC",
	USD: "$",
}

// ParseCurrency falls back to DefaultCurrency for unknown codes.
func ParseCurrency(code string) Currency {
	switch Currency(strings.ToUpper(strings.TrimSpace(code))) {
	case USD:
		return USD
	case CDF:
		return CDF
	default:
		return DefaultCurrency
	}
}

// FormatPrice renders CDF as a rounded integer with a trailing symbol
// ("1000 FC") and USD with two decimals and a leading symbol ("$12.50").
func FormatPrice(amount float64, currency Currency) string {
	symbol := Symbols[currency]
	if currency == USD {
		return fmt.Sprintf("%s%.2f", symbol, amount)
	}
	if symbol == "" {
		symbol = Symbols[DefaultCurrency]
	}
	return fmt.Sprintf("%d %s", int64(math.Round(amount)), symbol)
}

func Format(amount float64) string {
	return FormatPrice(amount, DefaultCurrency)
}
