package rsu

import (
	"testing"

	"github.com/etnz/rsu/date"
	"github.com/shopspring/decimal"
)

// usd is a helper for test to create usd money from const
func usd(v float64) Money { return M(v, USD) }

// brl is a helper for test to create brl money from const
func brl(v float64) Money { return M(v, BRL) }

// dec parses a decimal constant.
func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// day parses an ISO date constant.
func day(s string) date.Date { return date.MustParse(s) }

func vest(t *testing.T, on string, qty int64, price float64) Vesting {
	t.Helper()
	v, err := NewVesting(day(on), Q(qty), usd(price))
	if err != nil {
		t.Fatalf("NewVesting() unexpected error: %v", err)
	}
	return v
}

func sell(t *testing.T, on string, qty int64, price float64) Trade {
	t.Helper()
	s, err := NewTrade(day(on), Q(qty), usd(price))
	if err != nil {
		t.Fatalf("NewTrade() unexpected error: %v", err)
	}
	return s
}

// fixedRate returns a USD/BRL rate with the same bid and ask.
func fixedRate(t *testing.T, on string, rate string) ExchangeRate {
	t.Helper()
	r, err := NewExchangeRate(USD, BRL, day(on), NewQuote(dec(rate)))
	if err != nil {
		t.Fatalf("NewExchangeRate() unexpected error: %v", err)
	}
	return r
}

// fixedEngine returns an engine with a constant rate.
func fixedEngine(rate string) *Engine {
	return NewEngine(NewFallbackResolver(NewFixedSource(dec(rate))))
}

// assertMoney fails if got is not want once rounded to places.
func assertMoney(t *testing.T, name string, got Money, want string, places int32) {
	t.Helper()
	if !got.Amount().Round(places).Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got.Amount(), want)
	}
}

func assertProfit(t *testing.T, name string, got ProfitLoss, want string, places int32) {
	t.Helper()
	if !got.Amount().Round(places).Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", name, got.Amount(), want)
	}
}
