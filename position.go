package rsu

import (
	"fmt"

	"github.com/etnz/rsu/date"
)

// Position is the state of the portfolio after an operation.
//
// Position is a value: operations never modify a Position, they return a new one.
type Position struct {
	Quantity        Quantity
	TotalCostUSD    Money
	TotalCostBRL    Money
	AveragePriceUSD Money
	AveragePriceBRL Money
	// GrossProfitBRL is the profit realized since the beginning of the LastUpdated's year.
	GrossProfitBRL ProfitLoss
	LastUpdated    date.Date

	// Metadata about the operation that produced this position, zero for seeds.
	OperationQuantity Quantity
	OperationKind     Kind
}

// EmptyPosition returns a position without any share, dated on.
func EmptyPosition(on date.Date) Position {
	return Position{
		TotalCostUSD:    Zero(USD),
		TotalCostBRL:    Zero(BRL),
		AveragePriceUSD: Zero(USD),
		AveragePriceBRL: Zero(BRL),
		GrossProfitBRL:  PL(0, BRL),
		LastUpdated:     on,
	}
}

// NewPosition returns a position holding qty shares for the given total costs.
// Average prices are derived from the totals.
func NewPosition(on date.Date, qty Quantity, costUSD, costBRL Money) (Position, error) {
	if costUSD.Currency() != USD {
		return Position{}, fmt.Errorf("%w: total USD cost in %s", ErrInvalidCurrency, costUSD.Currency())
	}
	if costBRL.Currency() != BRL {
		return Position{}, fmt.Errorf("%w: total BRL cost in %s", ErrInvalidCurrency, costBRL.Currency())
	}
	p := EmptyPosition(on)
	p.Quantity = qty
	p.TotalCostUSD = costUSD
	p.TotalCostBRL = costBRL
	p.AveragePriceUSD = costUSD.Div(qty)
	p.AveragePriceBRL = costBRL.Div(qty)
	return p, nil
}

// IsEmpty reports whether the position holds no share.
func (p Position) IsEmpty() bool { return p.Quantity.IsZero() }

// HasOperation reports whether p was produced by an operation.
func (p Position) HasOperation() bool { return p.OperationKind != "" }

// withYearReset returns p with its gross profit reset when on falls in a later year.
func (p Position) withYearReset(on date.Date) Position {
	if on.Year() > p.LastUpdated.Year() {
		p.GrossProfitBRL = PL(0, BRL)
	}
	return p
}

func (p Position) String() string {
	return fmt.Sprintf("%s: %s shares, cost %s / %s, avg %s / %s, profit %s",
		p.LastUpdated, p.Quantity, p.TotalCostUSD, p.TotalCostBRL, p.AveragePriceUSD, p.AveragePriceBRL, p.GrossProfitBRL)
}
