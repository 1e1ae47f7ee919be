package rsu

import (
	"context"
	"fmt"

	"github.com/etnz/rsu/date"
)

// Engine replays operations over a position.
type Engine struct {
	rates RateResolver
}

// NewEngine returns an engine resolving USD/BRL rates with rates.
func NewEngine(rates RateResolver) *Engine { return &Engine{rates: rates} }

// Replay applies ops in chronological order to initial and returns one position per operation.
//
// When initial is nil, the replay starts from an empty position. Operations
// sharing a date are applied in input order. The realized profit is reset
// before the first operation of each new year.
//
// Any error aborts the replay: no partial history is returned.
func (e *Engine) Replay(ctx context.Context, ops []Operation, initial *Position) ([]Position, error) {
	if len(ops) == 0 {
		return []Position{}, nil
	}
	sorted := Sort(ops)

	current := EmptyPosition(sorted[0].When())
	if initial != nil {
		current = *initial
	}

	if err := e.prefetch(ctx, sorted); err != nil {
		return nil, err
	}

	history := make([]Position, 0, len(sorted))
	for i, op := range sorted {
		current = current.withYearReset(op.When())

		rate, err := e.rates.Rate(ctx, USD, BRL, op.SettlesOn())
		if err != nil {
			return nil, fmt.Errorf("operation #%d (%s): %w", i+1, op, err)
		}
		res, err := op.Execute(current, rate)
		if err != nil {
			return nil, fmt.Errorf("operation #%d (%s): %w", i+1, op, err)
		}
		current = res.Position
		history = append(history, current)
	}
	return history, nil
}

// prefetch loads all the rates needed by ops at once, if the resolver supports it.
func (e *Engine) prefetch(ctx context.Context, ops []Operation) error {
	p, ok := e.rates.(Prefetcher)
	if !ok {
		return nil
	}
	days := make([]date.Date, 0, len(ops))
	for _, op := range ops {
		days = append(days, op.SettlesOn())
	}
	rg := date.Span(days...)
	if err := p.Prefetch(ctx, rg); err != nil {
		return fmt.Errorf("prefetching rates for %s: %w", rg, err)
	}
	return nil
}

// Statement is like Replay but the history starts with a seed position.
//
// The seed is the initial position (or an empty one). When it dates from an
// earlier year than the first operation, it is dated December 31st of the year
// before that operation, without realized profit. Otherwise it is kept as is,
// realized profit included, so that Statement and Replay agree.
func (e *Engine) Statement(ctx context.Context, ops []Operation, initial *Position) ([]Position, error) {
	if len(ops) == 0 {
		return []Position{}, nil
	}
	first := Sort(ops)[0].When()
	seed := EmptyPosition(first.StartOfYear().Add(-1))
	if initial != nil {
		seed = *initial
		if seed.LastUpdated.Year() < first.Year() {
			seed.LastUpdated = first.StartOfYear().Add(-1)
			seed.GrossProfitBRL = PL(0, BRL)
		}
	}
	seed.OperationKind, seed.OperationQuantity = "", Quantity{}

	history, err := e.Replay(ctx, ops, &seed)
	if err != nil {
		return nil, err
	}
	return append([]Position{seed}, history...), nil
}

// Valuation is the outcome of processing a portfolio.
type Valuation struct {
	Final       Position
	History     []Position
	Operations  int
	TotalReturn ProfitLoss
}

// Process replays ops and summarizes the outcome.
//
// With no operation, Final is the initial position (or an empty one dated today)
// and History is empty.
func (e *Engine) Process(ctx context.Context, ops []Operation, initial *Position) (Valuation, error) {
	history, err := e.Replay(ctx, ops, initial)
	if err != nil {
		return Valuation{}, err
	}
	v := Valuation{
		History:     history,
		Operations:  len(ops),
		TotalReturn: TotalReturnBRL(history),
	}
	switch {
	case len(history) > 0:
		v.Final = history[len(history)-1]
	case initial != nil:
		v.Final = *initial
	default:
		v.Final = EmptyPosition(date.Today())
	}
	return v, nil
}
