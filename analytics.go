package rsu

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TotalReturnBRL returns the realized profit of the last position.
//
// Since the profit is reset every year, it is the profit of the last year only,
// see LifetimeProfitBRL for the whole history.
func TotalReturnBRL(history []Position) ProfitLoss {
	if len(history) == 0 {
		return PL(0, BRL)
	}
	return history[len(history)-1].GrossProfitBRL
}

// PositionValueBRL returns the market value of p, for a share price in USD,
// converted with the ask rate.
func PositionValueBRL(p Position, price Money, rate ExchangeRate) (Money, error) {
	if price.Currency() != USD {
		return Money{}, fmt.Errorf("%w: share price must be in USD, got %q", ErrInvalidCurrency, price.Currency())
	}
	return rate.Convert(price.Mul(p.Quantity), false)
}

// UnrealizedGainLossBRL returns the market value of p minus its total BRL cost.
func UnrealizedGainLossBRL(p Position, price Money, rate ExchangeRate) (ProfitLoss, error) {
	value, err := PositionValueBRL(p, price, rate)
	if err != nil {
		return ProfitLoss{}, err
	}
	return value.Sub(p.TotalCostBRL), nil
}

// YearSummary is the state of the portfolio at the end of a year.
type YearSummary struct {
	Year            int
	Operations      int
	FinalQuantity   Quantity
	TotalCostUSD    Money
	AveragePriceUSD Money
	TotalCostBRL    Money
	AveragePriceBRL Money
	GrossProfitBRL  ProfitLoss
}

// YearlySummaries returns one summary per calendar year found in history,
// in chronological order, using the last position of each year.
//
// Positions without operation (seeds) are not counted as operations.
func YearlySummaries(history []Position) []YearSummary {
	var summaries []YearSummary
	index := make(map[int]int) // year -> index in summaries
	for _, p := range history {
		year := p.LastUpdated.Year()
		i, found := index[year]
		if !found {
			i = len(summaries)
			index[year] = i
			summaries = append(summaries, YearSummary{Year: year})
		}
		s := &summaries[i]
		if p.HasOperation() {
			s.Operations++
		}
		s.FinalQuantity = p.Quantity
		s.TotalCostUSD = p.TotalCostUSD
		s.AveragePriceUSD = p.AveragePriceUSD
		s.TotalCostBRL = p.TotalCostBRL
		s.AveragePriceBRL = p.AveragePriceBRL
		s.GrossProfitBRL = p.GrossProfitBRL
	}
	return summaries
}

// LifetimeProfitBRL returns the sum of the yearly realized profits.
func LifetimeProfitBRL(history []Position) ProfitLoss {
	total := PL(decimal.Zero, BRL)
	for _, s := range YearlySummaries(history) {
		total = total.Add(s.GrossProfitBRL)
	}
	return total
}
