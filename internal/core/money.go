// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and decimal representations.
package core

import (
	"bytes"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCents bounds every amount and balance in either direction. Keeping values
// inside it means the sum of two of them never overflows int64.
const MaxCents = math.MaxInt64 / 100

const (
	maxIntegerDigits  = 20
	maxFractionDigits = 64
)

var (
	maxCents = decimal.NewFromInt(MaxCents)
	minCents = decimal.NewFromInt(-MaxCents)
)

// Money is an amount expressed in cents. It may be negative (balances can go
// below zero, loans can be overpaid).
type Money struct {
	Cents int64
}

// Cents builds a Money from a number of cents.
func Cents(c int64) Money { return Money{Cents: c} }

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and performs
// half-up rounding on the third decimal place. The result is always positive cents.
// Returns an error for invalid formats, negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1235, nil (rounds up)
//	ParseDecimalToCents("12.344") -> 1234, nil (rounds down)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := parseCents(s, false)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseAmount parses a strictly positive amount (transaction amounts, funds,
// transfers, loan totals).
func ParseAmount(s string) (Money, error) {
	cents, err := ParseDecimalToCents(s)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// ParseNonNegativeAmount parses an amount that may be zero (budget caps).
func ParseNonNegativeAmount(s string) (Money, error) {
	cents, err := parseCents(s, false)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// ParseSignedAmount parses an amount that may carry a leading sign (opening
// balances).
func ParseSignedAmount(s string) (Money, error) {
	cents, err := parseCents(s, true)
	if err != nil {
		return Money{}, err
	}
	return Money{Cents: cents}, nil
}

// parseCents reads a decimal amount into cents, rounding half away from zero.
// Values outside ±MaxCents are rejected.
func parseCents(s string, allowSign bool) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	neg := false
	if s[0] == '+' || s[0] == '-' {
		if !allowSign {
			return 0, ErrInvalidAmount
		}
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Bound the exponent before rescaling so "1e999999999" fails fast.
	if exp := int(d.Exponent()); exp < -maxFractionDigits {
		return 0, ErrInvalidAmount
	} else if d.NumDigits()+exp > maxIntegerDigits {
		return 0, ErrAmountOutOfRange
	}
	if neg {
		d = d.Neg()
	}
	cents := d.Shift(2).Round(0)
	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, ErrAmountOutOfRange
	}
	return cents.IntPart(), nil
}

// InRange reports whether m lies within ±MaxCents.
func (m Money) InRange() bool {
	return m.Cents >= -MaxCents && m.Cents <= MaxCents
}

// Add returns m + o.
func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }

// Sub returns m - o.
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// CheckedAdd returns m + o and false when either operand or the result falls
// outside ±MaxCents.
func (m Money) CheckedAdd(o Money) (Money, bool) {
	if !m.InRange() || !o.InRange() {
		return Money{}, false
	}
	r := m.Add(o)
	return r, r.InRange()
}

// CheckedSub is CheckedAdd for m - o.
func (m Money) CheckedSub(o Money) (Money, bool) {
	if !o.InRange() {
		return Money{}, false
	}
	return m.CheckedAdd(o.Neg())
}

// Neg returns -m.
func (m Money) Neg() Money { return Money{Cents: -m.Cents} }

// IsPositive reports whether m is strictly greater than zero.
func (m Money) IsPositive() bool { return m.Cents > 0 }

// IsNegative reports whether m is strictly below zero.
func (m Money) IsNegative() bool { return m.Cents < 0 }

// Less reports whether m < o.
func (m Money) Less(o Money) bool { return m.Cents < o.Cents }

// Units returns the value as a float64 for display and ratio computations.
// Use cents for arithmetic to avoid floating-point precision issues.
func (m Money) Units() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals and a dot separator ("-12.05").
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// MarshalJSON writes the amount as a JSON number with exactly two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number (including exponent forms written by
// other tools) or a quoted decimal string. Amounts outside ±MaxCents are an
// error, so a document holding one fails to decode as a whole.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		m.Cents = 0
		return nil
	}
	s := string(data)
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	cents, err := parseCents(s, true)
	if err != nil {
		return &AmountError{Text: s, Err: err}
	}
	m.Cents = cents
	return nil
}
