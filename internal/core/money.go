// Package core holds the ledger domain model.
//
// Amounts cross the wire as decimal strings with at most two fractional
// digits and are held internally as int64 cents, so arithmetic never touches
// floating point.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to Money.
//
// The string must be a positive decimal with at most 2 fractional digits.
// Anything else (negative, zero, three decimals, garbage) is ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> Money{1234}, nil
//	ParseAmount("12")    -> Money{1200}, nil
//	ParseAmount("12.345") -> error (too many fractional digits)
func ParseAmount(s string) (Money, error) {
	m, err := ParseMoney(s)
	if err != nil {
		return Money{}, err
	}
	if m.Cents <= 0 {
		return Money{}, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return m, nil
}

// ParseMoney parses a decimal string of any sign with at most 2 fractional
// digits. Opening balances may legitimately be zero or negative (overdrawn
// credit cards), so positivity is enforced by callers that need it.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -2 {
		return Money{}, fmt.Errorf("%w: %q has more than 2 fractional digits", ErrInvalidAmount, s)
	}
	cents := d.Shift(2)
	if !cents.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// String renders the amount as a decimal string with exactly 2 fractional
// digits, the wire format for all API payloads.
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PercentChange returns the relative change from old to new in percent.
// A zero base yields 100 when the new value is positive, otherwise 0.
func PercentChange(old, new Money) float64 {
	if old.Cents == 0 {
		if new.Cents > 0 {
			return 100
		}
		return 0
	}
	abs := old.Cents
	if abs < 0 {
		abs = -abs
	}
	return float64(new.Cents-old.Cents) / float64(abs) * 100
}
