package rsu

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/rsu/date"
	"github.com/google/go-cmp/cmp"
)

// positionComparers compare the value types by value.
var positionComparers = cmp.Options{
	cmp.Comparer(func(a, b Money) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b ProfitLoss) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b Quantity) bool { return a.Equal(b) }),
	cmp.Comparer(func(a, b date.Date) bool { return a == b }),
}

// scenarioRates are the USD/BRL quotes of early 2023 used by the statement scenario.
func scenarioRates() *TableSource {
	return NewTableSource().
		Set(day("2023-02-24"), NewBidAskQuote(dec("5.0"), dec("5.2"))).
		Set(day("2023-02-27"), NewBidAskQuote(dec("5.0"), dec("5.1542"))).
		Set(day("2023-03-27"), NewBidAskQuote(dec("4.9314"), dec("4.932"))).
		Set(day("2023-06-30"), NewBidAskQuote(dec("4.9314"), dec("4.932")))
}

func scenarioOperations(t *testing.T) []Operation {
	return []Operation{
		vest(t, "2023-07-01", 100, 20),
		sell(t, "2023-02-26", 50, 12),
		vest(t, "2023-03-27", 50, 15),
		sell(t, "2023-02-27", 30, 10),
	}
}

func TestEngine_Statement(t *testing.T) {
	initial, err := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(NewCachedResolver(NewFallbackResolver(scenarioRates())))

	history, err := e.Statement(context.Background(), scenarioOperations(t), &initial)
	if err != nil {
		t.Fatalf("Statement() unexpected error: %v", err)
	}
	if len(history) != 5 {
		t.Fatalf("Statement() returned %d positions, want 5", len(history))
	}
	seed := history[0]
	if seed.LastUpdated != day("2022-12-31") || seed.HasOperation() || !seed.Quantity.Equal(Q(100)) {
		t.Errorf("seed = %v", seed)
	}

	final := history[4]
	if !final.Quantity.Equal(Q(170)) {
		t.Errorf("Quantity = %v, want 170", final.Quantity)
	}
	assertMoney(t, "TotalCostUSD", final.TotalCostUSD, "2950", 2)
	assertMoney(t, "TotalCostBRL", final.TotalCostBRL, "14561.35", 2)
	assertMoney(t, "AveragePriceUSD", final.AveragePriceUSD, "17.3529", 4)
	assertMoney(t, "AveragePriceBRL", final.AveragePriceBRL, "85.655", 4)
	assertProfit(t, "GrossProfitBRL", final.GrossProfitBRL, "666.26", 2)

	if got := history[3]; !got.Quantity.Equal(Q(70)) || !got.OperationQuantity.Equal(Q(50)) {
		t.Errorf("history[3] = %v, want the vesting of 50 shares, 70 held", got)
	}
	assertMoney(t, "history[3].TotalCostUSD", history[3].TotalCostUSD, "950", 2)

	wantDays := []string{"2022-12-31", "2023-02-26", "2023-02-27", "2023-03-27", "2023-07-01"}
	for i, p := range history {
		if p.LastUpdated != day(wantDays[i]) {
			t.Errorf("history[%d].LastUpdated = %s, want %s", i, p.LastUpdated, wantDays[i])
		}
	}
}

func TestEngine_StatementSameYearInitial(t *testing.T) {
	ctx := context.Background()
	initial, err := NewPosition(day("2023-06-30"), Q(100), usd(1000), brl(5000))
	if err != nil {
		t.Fatal(err)
	}
	initial.GrossProfitBRL = PL(100, BRL)
	ops := []Operation{sell(t, "2023-07-10", 10, 12)}
	e := fixedEngine("5")

	replay, err := e.Replay(ctx, ops, &initial)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	statement, err := e.Statement(ctx, ops, &initial)
	if err != nil {
		t.Fatalf("Statement() unexpected error: %v", err)
	}
	if len(statement) != 2 {
		t.Fatalf("Statement() returned %d positions, want 2", len(statement))
	}
	seed := statement[0]
	if seed.LastUpdated != day("2023-06-30") {
		t.Errorf("seed dated %s, want 2023-06-30", seed.LastUpdated)
	}
	assertProfit(t, "seed.GrossProfitBRL", seed.GrossProfitBRL, "100", 2)

	// 100 + 10 * (12 - 10) * 5
	assertProfit(t, "Replay() profit", TotalReturnBRL(replay), "200", 2)
	assertProfit(t, "Statement() profit", TotalReturnBRL(statement), "200", 2)

	// An initial position of an earlier year is moved to the end of that year.
	initial.LastUpdated = day("2022-06-30")
	statement, err = e.Statement(ctx, ops, &initial)
	if err != nil {
		t.Fatalf("Statement() unexpected error: %v", err)
	}
	if seed := statement[0]; seed.LastUpdated != day("2022-12-31") || !seed.GrossProfitBRL.IsZero() {
		t.Errorf("seed = %v, want dated 2022-12-31 without profit", seed)
	}
	assertProfit(t, "Statement() profit", TotalReturnBRL(statement), "100", 2)
}

func TestEngine_Replay(t *testing.T) {
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := NewEngine(NewFallbackResolver(scenarioRates()))
	history, err := e.Replay(context.Background(), scenarioOperations(t), &initial)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("Replay() returned %d positions, want 4", len(history))
	}
	assertProfit(t, "TotalReturnBRL", TotalReturnBRL(history), "666.26", 2)
}

func TestEngine_ReplayInvariants(t *testing.T) {
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := NewEngine(NewFallbackResolver(scenarioRates()))
	history, err := e.Replay(context.Background(), scenarioOperations(t), &initial)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	previous := initial
	for i, p := range history {
		if !p.IsEmpty() {
			total := p.AveragePriceUSD.Mul(p.Quantity).Amount()
			if d := total.Sub(p.TotalCostUSD.Amount()).Abs(); d.GreaterThan(dec("0.0001")) {
				t.Errorf("history[%d]: avg*qty = %s, total = %s", i, total, p.TotalCostUSD.Amount())
			}
		}
		if p.OperationKind == KindTrade {
			if !p.AveragePriceUSD.Equal(previous.AveragePriceUSD) || !p.AveragePriceBRL.Equal(previous.AveragePriceBRL) {
				t.Errorf("history[%d]: trade changed the average price", i)
			}
		}
		previous = p
	}
}

func TestEngine_SortIdempotence(t *testing.T) {
	ctx := context.Background()
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := NewEngine(NewFallbackResolver(scenarioRates()))
	ops := scenarioOperations(t)

	want, err := e.Replay(ctx, Sort(ops), &initial)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	orders := [][]int{{0, 1, 2, 3}, {3, 2, 1, 0}, {2, 0, 3, 1}, {1, 3, 0, 2}}
	for _, order := range orders {
		shuffled := make([]Operation, len(ops))
		for i, j := range order {
			shuffled[i] = ops[j]
		}
		got, err := e.Replay(ctx, shuffled, &initial)
		if err != nil {
			t.Fatalf("Replay(%v) unexpected error: %v", order, err)
		}
		if diff := cmp.Diff(want, got, positionComparers); diff != "" {
			t.Errorf("Replay(%v) mismatch (-want +got):\n%s", order, diff)
		}
	}
}

func TestEngine_SameDayKeepsInputOrder(t *testing.T) {
	ctx := context.Background()
	e := fixedEngine("5")
	// Selling before vesting on the same day fails: the input order is kept.
	ops := []Operation{sell(t, "2023-05-02", 10, 12), vest(t, "2023-05-02", 10, 10)}
	if _, err := e.Replay(ctx, ops, nil); !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("Replay() error = %v, want %v", err, ErrInsufficientShares)
	}
	history, err := e.Replay(ctx, []Operation{ops[1], ops[0]}, nil)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	if len(history) != 2 || !history[1].IsEmpty() {
		t.Errorf("Replay() = %v", history)
	}
}

func TestEngine_YearReset(t *testing.T) {
	tests := []struct {
		name  string
		prior float64
	}{
		{"massive profit", 1e9},
		{"zero profit", 0},
		{"loss", -12345.67},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			initial, _ := NewPosition(day("2022-11-30"), Q(100), usd(1000), brl(5000))
			initial.GrossProfitBRL = PL(tc.prior, BRL)

			ops := []Operation{
				vest(t, "2022-12-15", 10, 10),
				vest(t, "2023-01-03", 10, 10),
				sell(t, "2023-06-01", 10, 12),
				vest(t, "2024-01-02", 10, 10),
			}
			history, err := fixedEngine("5").Replay(context.Background(), ops, &initial)
			if err != nil {
				t.Fatalf("Replay() unexpected error: %v", err)
			}
			// Same year: the prior profit is kept.
			assertProfit(t, "2022-12-15 profit", history[0].GrossProfitBRL, PL(tc.prior, BRL).Amount().String(), 2)
			// First operation of a new year starts from zero.
			assertProfit(t, "2023-01-03 profit", history[1].GrossProfitBRL, "0", 2)
			assertProfit(t, "2023-06-01 profit", history[2].GrossProfitBRL, "100", 2)
			assertProfit(t, "2024-01-02 profit", history[3].GrossProfitBRL, "0", 2)
			// Cost basis carries over.
			if !history[1].Quantity.Equal(Q(120)) {
				t.Errorf("Quantity = %v, want 120", history[1].Quantity)
			}
		})
	}
}

func TestEngine_InsufficientShares(t *testing.T) {
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	history, err := fixedEngine("5").Replay(context.Background(), []Operation{sell(t, "2023-02-24", 150, 10)}, &initial)
	if !errors.Is(err, ErrInsufficientShares) {
		t.Errorf("Replay() error = %v, want %v", err, ErrInsufficientShares)
	}
	if history != nil {
		t.Errorf("Replay() returned a partial history: %v", history)
	}
}

func TestEngine_RoundTrip(t *testing.T) {
	ops := []Operation{vest(t, "2023-05-02", 100, 10), sell(t, "2023-05-02", 100, 11)}
	history, err := fixedEngine("5.0").Replay(context.Background(), ops, nil)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	assertProfit(t, "profit", TotalReturnBRL(history), "500", 8)

	// Same price: no profit.
	ops = []Operation{vest(t, "2023-05-02", 100, 10), sell(t, "2023-05-02", 100, 10)}
	history, err = fixedEngine("5.0").Replay(context.Background(), ops, nil)
	if err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	assertProfit(t, "profit", TotalReturnBRL(history), "0", 8)
}

func TestEngine_SettlementDate(t *testing.T) {
	rates := NewTableSource().
		Set(day("2023-02-24"), NewQuote(dec("5"))).
		Set(day("2023-02-28"), NewQuote(dec("6")))
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := NewEngine(NewFallbackResolver(rates))

	trade := sell(t, "2023-02-24", 10, 20)
	history, err := e.Replay(context.Background(), []Operation{trade}, &initial)
	if err != nil {
		t.Fatal(err)
	}
	assertProfit(t, "trade date profit", history[0].GrossProfitBRL, "500", 4) // 10*20*5 - 10*10*5

	history, err = e.Replay(context.Background(), []Operation{trade.WithSettlement(day("2023-02-28"))}, &initial)
	if err != nil {
		t.Fatal(err)
	}
	assertProfit(t, "settlement date profit", history[0].GrossProfitBRL, "600", 4) // 10*20*6 - 10*10*6
}

func TestEngine_RateNotFound(t *testing.T) {
	e := NewEngine(NewFallbackResolver(NewTableSource()))
	_, err := e.Replay(context.Background(), []Operation{vest(t, "2023-02-24", 1, 1)}, nil)
	if !errors.Is(err, ErrRateNotFound) {
		t.Errorf("Replay() error = %v, want %v", err, ErrRateNotFound)
	}
}

func TestEngine_Empty(t *testing.T) {
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := fixedEngine("5")
	history, err := e.Replay(context.Background(), nil, &initial)
	if err != nil || len(history) != 0 {
		t.Errorf("Replay(nil) = %v, %v, want empty history", history, err)
	}
	v, err := e.Process(context.Background(), nil, &initial)
	if err != nil {
		t.Fatalf("Process(nil) unexpected error: %v", err)
	}
	if diff := cmp.Diff(initial, v.Final, positionComparers); diff != "" {
		t.Errorf("Process(nil).Final mismatch (-want +got):\n%s", diff)
	}
	if v.Operations != 0 || len(v.History) != 0 {
		t.Errorf("Process(nil) = %+v", v)
	}
}

func TestEngine_Process(t *testing.T) {
	initial, _ := NewPosition(day("2022-12-31"), Q(100), usd(1000), brl(5000))
	e := NewEngine(NewFallbackResolver(scenarioRates()))
	v, err := e.Process(context.Background(), scenarioOperations(t), &initial)
	if err != nil {
		t.Fatalf("Process() unexpected error: %v", err)
	}
	if v.Operations != 4 || len(v.History) != 4 {
		t.Errorf("Process() = %d operations, %d positions, want 4, 4", v.Operations, len(v.History))
	}
	if !v.Final.Quantity.Equal(Q(170)) {
		t.Errorf("Final.Quantity = %v, want 170", v.Final.Quantity)
	}
	assertProfit(t, "TotalReturn", v.TotalReturn, "666.26", 2)
}

// prefetchResolver records the prefetched ranges.
type prefetchResolver struct {
	RateResolver
	ranges []date.Range
	err    error
}

func (r *prefetchResolver) Prefetch(_ context.Context, rg date.Range) error {
	r.ranges = append(r.ranges, rg)
	return r.err
}

func TestEngine_Prefetch(t *testing.T) {
	r := &prefetchResolver{RateResolver: NewFallbackResolver(NewFixedSource(dec("5")))}
	ops := []Operation{
		vest(t, "2023-03-01", 10, 10),
		sell(t, "2023-01-10", 0, 10).WithSettlement(day("2023-01-12")),
		vest(t, "2023-01-02", 10, 10),
	}
	if _, err := NewEngine(r).Replay(context.Background(), ops, nil); err != nil {
		t.Fatalf("Replay() unexpected error: %v", err)
	}
	want := []date.Range{{From: day("2023-01-02"), To: day("2023-03-01")}}
	if diff := cmp.Diff(want, r.ranges, positionComparers); diff != "" {
		t.Errorf("prefetched ranges mismatch (-want +got):\n%s", diff)
	}

	r = &prefetchResolver{RateResolver: r.RateResolver, err: ErrRateSourceUnavailable}
	if _, err := NewEngine(r).Replay(context.Background(), ops, nil); !errors.Is(err, ErrRateSourceUnavailable) {
		t.Errorf("Replay() error = %v, want %v", err, ErrRateSourceUnavailable)
	}
}
