package rsu

import (
	"context"
	"iter"

	"github.com/etnz/rsu/date"
	"github.com/shopspring/decimal"
)

// RateSource publishes USD/BRL quotes per day.
//
// A day without publication (weekend, holiday) is not an error: ok is false.
type RateSource interface {
	Quote(ctx context.Context, on date.Date) (q Quote, ok bool, err error)
}

// Prefetcher is implemented by sources and resolvers that can load a whole
// range of days at once. The Engine calls it once before replaying.
type Prefetcher interface {
	Prefetch(ctx context.Context, r date.Range) error
}

// FixedSource publishes the same quote every day.
type FixedSource struct {
	q Quote
}

// NewFixedSource returns a source with a constant rate.
func NewFixedSource(rate decimal.Decimal) *FixedSource { return &FixedSource{q: NewQuote(rate)} }

func (s *FixedSource) Quote(context.Context, date.Date) (Quote, bool, error) { return s.q, true, nil }

// TableSource publishes quotes from an in-memory table.
// Days missing from the table are unpublished days.
type TableSource struct {
	quotes date.History[Quote]
}

// NewTableSource returns an empty table.
func NewTableSource() *TableSource { return new(TableSource) }

// Set records the quote published on a given day, replacing any previous one.
func (s *TableSource) Set(on date.Date, q Quote) *TableSource {
	s.quotes.Append(on, q)
	return s
}

// Len returns the number of days with a quote.
func (s *TableSource) Len() int { return s.quotes.Len() }

// Range returns the first and last days with a quote.
func (s *TableSource) Range() date.Range {
	first, _ := s.quotes.First()
	last, _ := s.quotes.Latest()
	return date.Range{From: first, To: last}
}

// Quotes iterates over the table in chronological order.
func (s *TableSource) Quotes() iter.Seq2[date.Date, Quote] { return s.quotes.Values() }

func (s *TableSource) Quote(_ context.Context, on date.Date) (Quote, bool, error) {
	q, ok := s.quotes.Get(on)
	return q, ok, nil
}
