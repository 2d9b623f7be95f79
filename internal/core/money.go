// Package core provides the dealer-ledger domain types and money handling.
//
// Monetary values are decimal.Decimal throughout. Amounts are parsed from
// strings so fractional input like "1500.555" stays exact until it is
// deliberately rounded to cents.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators.
// Returns ErrInvalidAmount for malformed, negative, or zero input.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Round2 rounds to two decimal places, half away from zero, matching
// currency-cent semantics: 1500.555 becomes 1500.56.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
