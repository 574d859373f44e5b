package renderer

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in a currency, formatted the go-money way ("$1,234.50").
type Money struct {
	value decimal.Decimal
	cur   string
}

// M returns value in the currency cur (an ISO code, e.g. "USD").
func M(value decimal.Decimal, cur string) Money { return Money{value: value, cur: cur} }

// currency returns the money's currency
func (m Money) currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, m.cur).Currency()
}

// String returns the amount rounded to the currency fraction.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the amount with an explicit sign. Zero has no sign.
func (m Money) SignedString() string {
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: m.cur} }
