package shared

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits every amount is kept at.
const MoneyScale = 2

// ErrMoneyPrecision is returned when a decoded amount has more fractional
// digits than MoneyScale.
var ErrMoneyPrecision = errors.New("amount has more than 2 decimal places")

// Money is a fixed-point amount with two fractional digits. The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount.Round(MoneyScale)}
}

// MoneyFromString parses "10", "10.5" or "10.50".
func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return NewMoney(d), nil
}

// MustMoney is MoneyFromString for constants and tests.
func MustMoney(s string) Money {
	m, err := MoneyFromString(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Decimal() decimal.Decimal { return m.amount }

func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Multiply returns m * quantity. Both operands are exact so no rounding happens.
func (m Money) Multiply(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) IsZero() bool { return m.amount.IsZero() }

func (m Money) Equals(other Money) bool { return m.amount.Equal(other.amount) }

func (m Money) String() string { return m.amount.StringFixed(MoneyScale) }

// MarshalJSON writes a JSON number with exactly two fractional digits, e.g. 30.00.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted strings. Input is never
// rounded: 10.005 is rejected with ErrMoneyPrecision, 10.50 is accepted.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	if !d.Equal(d.Round(MoneyScale)) {
		return fmt.Errorf("%w: %s", ErrMoneyPrecision, d.String())
	}
	*m = NewMoney(d)
	return nil
}

// SumMoney adds amounts without intermediate rounding.
func SumMoney(amounts ...Money) Money {
	total := Money{}
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
