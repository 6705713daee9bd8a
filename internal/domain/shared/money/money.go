// Package money is an integer minor-unit amount tagged with an ISO currency code.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "ILS"

var ErrCurrencyMismatch = errors.New("currency mismatch")

// Money stores amounts in minor units (agorot for ILS).
type Money struct {
	amount   int64
	currency string
}

func New(amount int64, currency string) Money {
	return Money{amount: amount, currency: normalizeCurrency(currency)}
}

func Zero(currency string) Money {
	return New(0, currency)
}

// FromDecimal converts a major-unit value, rounding half away from zero to two places.
func FromDecimal(d decimal.Decimal, currency string) Money {
	return New(d.Round(2).Shift(2).IntPart(), currency)
}

// ParseMajor parses "149.90" style strings.
func ParseMajor(s, currency string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.ReplaceAll(s, ",", "")))
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q", s)
	}
	return FromDecimal(d, currency), nil
}

func normalizeCurrency(c string) string {
	c = strings.ToUpper(strings.TrimSpace(c))
	if c == "" {
		return DefaultCurrency
	}
	return c
}

func (m Money) Amount() int64 {
	return m.amount
}

func (m Money) Currency() string {
	if m.currency == "" {
		return DefaultCurrency
	}
	return m.currency
}

// Decimal returns the amount in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.amount, -2)
}

func (m Money) IsPositive() bool { return m.amount > 0 }
func (m Money) IsZero() bool     { return m.amount == 0 }
func (m Money) IsNegative() bool { return m.amount < 0 }

func (m Money) SameCurrency(o Money) bool {
	return m.Currency() == o.Currency()
}

func (m Money) Equals(o Money) bool {
	return m.amount == o.amount && m.SameCurrency(o)
}

func (m Money) GreaterThan(o Money) bool {
	return m.amount > o.amount
}

func (m Money) Add(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), o.Currency())
	}
	return New(m.amount+o.amount, m.Currency()), nil
}

func (m Money) Sub(o Money) (Money, error) {
	if !m.SameCurrency(o) {
		return Money{}, fmt.Errorf("%w: %s and %s", ErrCurrencyMismatch, m.Currency(), o.Currency())
	}
	return New(m.amount-o.amount, m.Currency()), nil
}

// Split divides m into n parts that sum exactly to m. The leftover minor units
// go one each to the first parts.
func (m Money) Split(n int) ([]Money, error) {
	if n <= 0 {
		return nil, fmt.Errorf("cannot split into %d parts", n)
	}
	if m.amount < 0 {
		return nil, fmt.Errorf("cannot split a negative amount")
	}
	base := m.amount / int64(n)
	rem := m.amount % int64(n)

	parts := make([]Money, n)
	for i := range parts {
		amt := base
		if int64(i) < rem {
			amt++
		}
		parts[i] = New(amt, m.Currency())
	}
	return parts, nil
}

// String renders "149.90 ILS".
func (m Money) String() string {
	return m.Decimal().StringFixed(2) + " " + m.Currency()
}
