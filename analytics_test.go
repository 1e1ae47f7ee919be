package rsu

import (
	"context"
	"errors"
	"testing"
)

func TestTotalReturnBRL_Empty(t *testing.T) {
	if got := TotalReturnBRL(nil); !got.IsZero() || got.Currency() != BRL {
		t.Errorf("TotalReturnBRL(nil) = %v, want 0 BRL", got)
	}
}

func TestPositionValueBRL(t *testing.T) {
	p, _ := NewPosition(day("2023-06-30"), Q(170), usd(2950), brl(14561.35))
	rate, err := NewExchangeRate(USD, BRL, day("2023-06-30"), NewBidAskQuote(dec("4.8"), dec("5")))
	if err != nil {
		t.Fatal(err)
	}
	value, err := PositionValueBRL(p, usd(20), rate)
	if err != nil {
		t.Fatalf("PositionValueBRL() unexpected error: %v", err)
	}
	assertMoney(t, "PositionValueBRL", value, "17000", 4) // 170*20*5 (ask)

	gain, err := UnrealizedGainLossBRL(p, usd(20), rate)
	if err != nil {
		t.Fatalf("UnrealizedGainLossBRL() unexpected error: %v", err)
	}
	assertProfit(t, "UnrealizedGainLossBRL", gain, "2438.65", 4)

	gain, _ = UnrealizedGainLossBRL(p, usd(10), rate)
	if !gain.IsNegative() {
		t.Errorf("UnrealizedGainLossBRL() = %v, want a loss", gain)
	}

	if _, err := PositionValueBRL(p, brl(20), rate); !errors.Is(err, ErrInvalidCurrency) {
		t.Errorf("PositionValueBRL(BRL price) error = %v, want %v", err, ErrInvalidCurrency)
	}
}

func TestYearlySummaries(t *testing.T) {
	initial, _ := NewPosition(day("2022-06-30"), Q(100), usd(1000), brl(5000))
	ops := []Operation{
		sell(t, "2022-09-01", 10, 12),
		vest(t, "2022-12-01", 10, 10),
		sell(t, "2023-02-01", 20, 11),
		sell(t, "2023-05-01", 20, 9),
		vest(t, "2023-11-01", 10, 10),
		vest(t, "2025-01-02", 10, 10),
	}
	history, err := fixedEngine("5").Statement(context.Background(), ops, &initial)
	if err != nil {
		t.Fatalf("Statement() unexpected error: %v", err)
	}

	got := YearlySummaries(history)
	want := []struct {
		year, ops int
		qty       int64
		profit    string
	}{
		{2021, 0, 100, "0"},   // seed
		{2022, 2, 100, "100"}, // 10*(12-10)*5
		{2023, 3, 70, "0"},    // +100 -100
		{2025, 1, 80, "0"},
	}
	if len(got) != len(want) {
		t.Fatalf("YearlySummaries() returned %d years, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		g := got[i]
		if g.Year != w.year || g.Operations != w.ops || g.FinalQuantity.Value() != w.qty {
			t.Errorf("summary[%d] = {%d %d %v}, want {%d %d %d}", i, g.Year, g.Operations, g.FinalQuantity, w.year, w.ops, w.qty)
		}
		assertProfit(t, "GrossProfitBRL", g.GrossProfitBRL, w.profit, 4)
	}
	assertProfit(t, "LifetimeProfitBRL", LifetimeProfitBRL(history), "100", 4)
}
