package money

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Money is a monetary amount in minor units (cents). Persisted and displayed
// values always carry exactly two fractional digits; only intermediate
// calculations may hold more precision before rounding back to cents.
type Money int64

// ErrInvalidAmount is returned when an amount string cannot be parsed.
var ErrInvalidAmount = errors.New("money: invalid amount")

// FromCents wraps a raw cent count.
func FromCents(c int64) Money {
	return Money(c)
}

// Cents returns the raw cent count.
func (m Money) Cents() int64 {
	return int64(m)
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return m + other
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return m - other
}

// MulQty scales the amount by a line quantity.
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m < 0
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m == 0
}

// CeilDollar rounds the amount up to the next whole dollar.
func (m Money) CeilDollar() Money {
	if m <= 0 {
		return 0
	}
	whole := int64(m) / 100
	if int64(m)%100 != 0 {
		whole++
	}
	return Money(whole * 100)
}

// String formats the amount with exactly two decimal digits, e.g. "12.34".
func (m Money) String() string {
	c := int64(m)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MulRoundBps multiplies the amount by a basis-point factor and rounds
// half-up to the nearest cent. Used for tax and percentage discounts so that
// repeated derivations never drift.
func MulRoundBps(m Money, bps int) Money {
	product := int64(m) * int64(bps)
	if product >= 0 {
		return Money((product + 5000) / 10000)
	}
	return Money(-((-product + 5000) / 10000))
}

// FromFloat converts a decimal amount (e.g. a wire-format number) to cents,
// rounding half away from zero.
func FromFloat(f float64) Money {
	if f >= 0 {
		return Money(int64(f*100 + 0.5))
	}
	return Money(-int64(-f*100 + 0.5))
}

// Parse reads a strict decimal amount with at most two fractional digits.
// It is used to validate operator-entered tender, so anything beyond an
// optional sign, digits and a short fraction is rejected.
func Parse(value string) (Money, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	if s[0] == '+' || s[0] == '-' {
		neg = s[0] == '-'
		s = s[1:]
	}
	whole := s
	frac := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole = s[:idx]
		frac = s[idx+1:]
	}
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Money(cents), nil
}
