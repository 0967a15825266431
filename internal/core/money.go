// Package core provides amount parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by a user
// into exact decimal values.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string into a positive amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Signs,
// exponents, thousands separators and anything that is not a plain decimal
// number are rejected with ErrInvalidAmount. Zero is rejected with
// ErrNonPositiveAmount. An empty string yields ErrMissingRequired. JSON
// numbers in exponent form are expanded before they get here.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> 0, ErrNonPositiveAmount
//	ParseAmount("-1")    -> 0, ErrNonPositiveAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrMissingRequired
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "-") {
		rest := strings.TrimPrefix(s, "-")
		if isPlainDecimal(rest) {
			return decimal.Zero, ErrNonPositiveAmount
		}
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.TrimPrefix(s, "+")
	if !isPlainDecimal(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d, nil
}

// isPlainDecimal accepts digits with at most one '.' and at least one digit.
func isPlainDecimal(s string) bool {
	digits, dots := 0, 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r >= '0' && r <= '9':
			digits++
		default:
			return false
		}
	}
	return digits > 0 && dots <= 1
}
