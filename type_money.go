package rsu

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code. Only USD and BRL are used by the portfolio.
type Currency string

const (
	USD Currency = "USD"
	BRL Currency = "BRL"
)

// ParseCurrency validates a currency code against the ISO table and
// restricts it to the currencies a portfolio is valued in.
func ParseCurrency(code string) (Currency, error) {
	if code == "" {
		return "", ErrEmptyCurrency
	}
	if money.GetCurrency(code) == nil {
		return "", fmt.Errorf("%w: unknown currency code %q", ErrInvalidCurrency, code)
	}
	switch c := Currency(code); c {
	case USD, BRL:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q is not supported", ErrInvalidCurrency, code)
	}
}

// format formats a value using the go-money formatter for the currency.
func (c Currency) format(v decimal.Decimal) string {
	cur := money.GetCurrency(string(c))
	if cur == nil {
		return v.StringFixed(2) + " " + string(c)
	}
	minor := v.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// Money is a non-negative monetary amount.
//
// Money is immutable, every operation returns a new value.
type Money struct {
	value decimal.Decimal
	cur   Currency
}

// NewMoney returns an amount of money, failing on negative amounts or empty currency.
func NewMoney(amount decimal.Decimal, cur Currency) (Money, error) {
	if cur == "" {
		return Money{}, ErrEmptyCurrency
	}
	if amount.IsNegative() {
		return Money{}, fmt.Errorf("%w: %s %s", ErrNegativeAmount, amount, cur)
	}
	return Money{value: amount, cur: cur}, nil
}

// M is like NewMoney but panics on error. Meant for constants.
func M[T float64 | int | int64 | decimal.Decimal](value T, cur Currency) Money {
	m, err := NewMoney(newDecimal(value), cur)
	if err != nil {
		panic(err.Error())
	}
	return m
}

// Zero returns zero money in cur.
func Zero(cur Currency) Money { return Money{value: decimal.Zero, cur: cur} }

func newDecimal[T float64 | int | int64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	default:
		panic("unsupported type")
	}
}

func (m Money) Amount() decimal.Decimal { return m.value }
func (m Money) Currency() Currency      { return m.cur }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) Equal(n Money) bool      { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) String() string          { return m.cur.format(m.value) }

// Round returns m rounded to places decimal digits.
func (m Money) Round(places int32) Money { return Money{value: m.value.Round(places), cur: m.cur} }

// Add returns m+n.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m.cur, n.cur)} }

// Mul returns the amount for q units priced m.
func (m Money) Mul(q Quantity) Money { return Money{value: m.value.Mul(q.Decimal()), cur: m.cur} }

// Div returns the per-unit amount of m over q units, zero if q is zero.
func (m Money) Div(q Quantity) Money {
	if q.IsZero() {
		return Money{value: decimal.Zero, cur: m.cur}
	}
	return Money{value: m.value.Div(q.Decimal()), cur: m.cur}
}

// Prorate returns m * part / whole, that is the share of m held by part out of whole.
// Zero is returned when whole is zero.
func (m Money) Prorate(part, whole Quantity) Money {
	if whole.IsZero() {
		return Money{value: decimal.Zero, cur: m.cur}
	}
	return Money{value: m.value.Mul(part.Decimal()).Div(whole.Decimal()), cur: m.cur}
}

// Sub returns the signed difference m-n.
func (m Money) Sub(n Money) ProfitLoss {
	return ProfitLoss{value: m.value.Sub(n.value), cur: cur(m.cur, n.cur)}
}

// makes the "" currency totally weak.
func cur(a, b Currency) Currency {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	if a != b {
		panic("currency mismatch " + string(a) + "!=" + string(b))
	}
	return a
}

// ProfitLoss is a signed monetary amount.
type ProfitLoss struct {
	value decimal.Decimal
	cur   Currency
}

// NewProfitLoss returns a signed amount, failing only on empty currency.
func NewProfitLoss(amount decimal.Decimal, cur Currency) (ProfitLoss, error) {
	if cur == "" {
		return ProfitLoss{}, ErrEmptyCurrency
	}
	return ProfitLoss{value: amount, cur: cur}, nil
}

// PL is like NewProfitLoss but panics on error. Meant for constants.
func PL[T float64 | int | int64 | decimal.Decimal](value T, cur Currency) ProfitLoss {
	p, err := NewProfitLoss(newDecimal(value), cur)
	if err != nil {
		panic(err.Error())
	}
	return p
}

func (p ProfitLoss) Amount() decimal.Decimal { return p.value }
func (p ProfitLoss) Currency() Currency      { return p.cur }
func (p ProfitLoss) IsZero() bool            { return p.value.IsZero() }
func (p ProfitLoss) IsNegative() bool        { return p.value.IsNegative() }
func (p ProfitLoss) Equal(q ProfitLoss) bool { return p.value.Equal(q.value) && p.cur == q.cur }
func (p ProfitLoss) Neg() ProfitLoss         { return ProfitLoss{value: p.value.Neg(), cur: p.cur} }

// Round returns p rounded to places decimal digits.
func (p ProfitLoss) Round(places int32) ProfitLoss {
	return ProfitLoss{value: p.value.Round(places), cur: p.cur}
}

// Add returns p+q.
func (p ProfitLoss) Add(q ProfitLoss) ProfitLoss {
	return ProfitLoss{value: p.value.Add(q.value), cur: cur(p.cur, q.cur)}
}

// String returns the formatted amount, with a leading "-" for losses.
func (p ProfitLoss) String() string {
	if p.value.IsNegative() {
		return "-" + p.cur.format(p.value.Neg())
	}
	return p.cur.format(p.value)
}

// SignedString returns the string representation of the value with a sign.
// 0 is represented as a "-"
func (p ProfitLoss) SignedString() string {
	if p.value.IsZero() {
		return "-"
	}
	if p.value.IsPositive() {
		return "+" + p.String()
	}
	return p.String()
}
