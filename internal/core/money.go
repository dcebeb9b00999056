// Package core provides money parsing and handling utilities.
//
// Amounts are held as arbitrary-precision decimals so that sums over the
// ledger never pick up binary floating point drift.
package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrencySymbol prefixes every rendered amount unless configured otherwise.
const DefaultCurrencySymbol = "₹"

// Money is a decimal amount in the single session currency.
type Money struct {
	Value decimal.Decimal
}

// ZeroMoney is the additive identity.
var ZeroMoney = Money{Value: decimal.Zero}

// MaxAmount is the largest amount a single transaction may carry.
var MaxAmount = Money{Value: decimal.New(1, 12)}

// maxAmountLen bounds the raw input so no accepted amount is expensive to
// add or render.
const maxAmountLen = 32

// ParseAmount converts user input into a non-negative Money value.
//
// Leading and trailing whitespace is ignored. Empty input, anything that is
// not a plain decimal number (exponent notation included), negative values and
// values above MaxAmount are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("100")    -> 100, nil
//	ParseAmount(" 40.5 ") -> 40.5, nil
//	ParseAmount("abc")    -> ErrInvalidAmount
//	ParseAmount("-3")     -> ErrInvalidAmount
//	ParseAmount("1e3")    -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}
	if len(s) > maxAmountLen {
		return Money{}, fmt.Errorf("%w: too long", ErrInvalidAmount)
	}
	if strings.ContainsAny(s, "eE") {
		return Money{}, fmt.Errorf("%w: %q uses exponent notation", ErrInvalidAmount, s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	if d.GreaterThan(MaxAmount.Value) {
		return Money{}, fmt.Errorf("%w: %q exceeds %s", ErrInvalidAmount, s, MaxAmount)
	}
	return Money{Value: d}, nil
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(units int64) Money {
	return Money{Value: decimal.NewFromInt(units)}
}

func (m Money) Add(o Money) Money {
	return Money{Value: m.Value.Add(o.Value)}
}

func (m Money) Sub(o Money) Money {
	return Money{Value: m.Value.Sub(o.Value)}
}

func (m Money) Equal(o Money) bool {
	return m.Value.Equal(o.Value)
}

func (m Money) IsNegative() bool {
	return m.Value.IsNegative()
}

func (m Money) IsZero() bool {
	return m.Value.IsZero()
}

// String renders the amount with exactly two decimal places.
func (m Money) String() string {
	return m.Value.StringFixed(2)
}

// Format renders the amount prefixed by symbol, e.g. "₹100.00" or "₹-20.00".
func (m Money) Format(symbol string) string {
	return symbol + m.String()
}
