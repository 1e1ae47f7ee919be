package rsu

import (
	"fmt"

	"github.com/etnz/rsu/date"
	"github.com/shopspring/decimal"
)

// Quote is the raw data published by a rate source for a single day.
//
// Bid is the buy rate (taxa de compra), Ask the sell rate (taxa de venda).
// Both are optional, Rate is used in their absence.
type Quote struct {
	Rate decimal.Decimal
	Bid  decimal.NullDecimal
	Ask  decimal.NullDecimal
}

// NewQuote returns a quote with the same value for rate, bid and ask.
func NewQuote(rate decimal.Decimal) Quote { return Quote{Rate: rate} }

// NewBidAskQuote returns a quote with distinct bid and ask, the reference rate being the ask.
func NewBidAskQuote(bid, ask decimal.Decimal) Quote {
	return Quote{
		Rate: ask,
		Bid:  decimal.NewNullDecimal(bid),
		Ask:  decimal.NewNullDecimal(ask),
	}
}

// Validate checks that every rate present is strictly positive.
func (q Quote) Validate() error {
	if !q.Rate.IsPositive() {
		return fmt.Errorf("%w: rate %s", ErrInvalidRate, q.Rate)
	}
	if q.Bid.Valid && !q.Bid.Decimal.IsPositive() {
		return fmt.Errorf("%w: bid rate %s", ErrInvalidRate, q.Bid.Decimal)
	}
	if q.Ask.Valid && !q.Ask.Decimal.IsPositive() {
		return fmt.Errorf("%w: ask rate %s", ErrInvalidRate, q.Ask.Decimal)
	}
	return nil
}

// ExchangeRate converts money from one currency to another as published on a given day.
type ExchangeRate struct {
	From, To Currency
	On       date.Date
	Quote
}

// NewExchangeRate validates and returns a From->To exchange rate.
func NewExchangeRate(from, to Currency, on date.Date, q Quote) (ExchangeRate, error) {
	if from == "" || to == "" {
		return ExchangeRate{}, ErrEmptyCurrency
	}
	if err := q.Validate(); err != nil {
		return ExchangeRate{}, fmt.Errorf("%s/%s on %s: %w", from, to, on, err)
	}
	return ExchangeRate{From: from, To: to, On: on, Quote: q}, nil
}

// Select returns the bid rate when useBid and it is present, the ask rate when
// !useBid and it is present, the reference rate otherwise.
func (r ExchangeRate) Select(useBid bool) decimal.Decimal {
	switch {
	case useBid && r.Bid.Valid:
		return r.Bid.Decimal
	case !useBid && r.Ask.Valid:
		return r.Ask.Decimal
	default:
		return r.Rate
	}
}

// Convert converts m (in the From currency) to the To currency.
//
// Cost bases convert with the bid rate, proceeds with the ask rate.
func (r ExchangeRate) Convert(m Money, useBid bool) (Money, error) {
	if m.Currency() != r.From {
		return Money{}, fmt.Errorf("%w: cannot convert %s using %s/%s rate", ErrCurrencyMismatch, m.Currency(), r.From, r.To)
	}
	return Money{value: m.value.Mul(r.Select(useBid)), cur: r.To}, nil
}

func (r ExchangeRate) String() string {
	return fmt.Sprintf("%s/%s %s on %s", r.From, r.To, r.Rate, r.On)
}
