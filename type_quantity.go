package rsu

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// Quantity is a non-negative number of shares.
type Quantity struct {
	value int64
}

// NewQuantity returns a Quantity of v shares, or ErrNegativeQuantity.
func NewQuantity(v int64) (Quantity, error) {
	if v < 0 {
		return Quantity{}, fmt.Errorf("%w: %d", ErrNegativeQuantity, v)
	}
	return Quantity{value: v}, nil
}

// Q is like NewQuantity but panics on error. Meant for constants.
func Q(v int64) Quantity {
	q, err := NewQuantity(v)
	if err != nil {
		panic(err.Error())
	}
	return q
}

func (q Quantity) Value() int64                { return q.value }
func (q Quantity) Decimal() decimal.Decimal    { return decimal.NewFromInt(q.value) }
func (q Quantity) IsZero() bool                { return q.value == 0 }
func (q Quantity) Equal(p Quantity) bool       { return q.value == p.value }
func (q Quantity) GreaterThan(p Quantity) bool { return q.value > p.value }
func (q Quantity) Add(p Quantity) Quantity     { return Quantity{value: q.value + p.value} }
func (q Quantity) String() string              { return strconv.FormatInt(q.value, 10) }

// Sub returns q-p, or ErrInsufficientShares when p is greater than q.
func (q Quantity) Sub(p Quantity) (Quantity, error) {
	if p.value > q.value {
		return Quantity{}, fmt.Errorf("%w: cannot remove %d shares, only %d available", ErrInsufficientShares, p.value, q.value)
	}
	return Quantity{value: q.value - p.value}, nil
}

// MarshalJSON implements the json.Marshaler interface.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(q.value, 10)), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface, rejecting negative values.
func (q *Quantity) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid quantity %s: %w", b, err)
	}
	*q, err = NewQuantity(v)
	return err
}
