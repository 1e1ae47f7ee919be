package rsu

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/rsu/date"
)

// Kind identifies the type of an operation.
type Kind string

// Kinds of operations.
const (
	KindVesting Kind = "vesting"
	KindTrade   Kind = "trade"
)

// ParseKind parses an operation type. "sell" is accepted as an alias of "trade".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vesting", "vest", "release":
		return KindVesting, nil
	case "trade", "sell":
		return KindTrade, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, s)
	}
}

// Operation changes a position at a given date.
type Operation interface {
	Kind() Kind
	When() date.Date // When returns the date of the operation.
	// SettlesOn returns the day whose exchange rate applies: the settlement
	// date when known, When otherwise.
	SettlesOn() date.Date
	Quantity() Quantity
	Price() Money // Price is the price per share in USD.
	// Execute applies the operation to the current position using the USD/BRL rate.
	Execute(current Position, rate ExchangeRate) (Result, error)
	String() string
}

// Result is the outcome of an Operation.
type Result struct {
	Position Position
	// ProfitLoss is the profit realized by this operation, only set when HasProfitLoss.
	ProfitLoss    ProfitLoss
	HasProfitLoss bool
}

// opBase holds the fields common to all operations.
type opBase struct {
	on         date.Date
	settlement date.Date
	qty        Quantity
	price      Money
}

func newOpBase(on date.Date, qty Quantity, price Money) (opBase, error) {
	if price.Currency() != USD {
		return opBase{}, fmt.Errorf("%w: price per share must be in USD, got %q", ErrInvalidCurrency, price.Currency())
	}
	return opBase{on: on, qty: qty, price: price}, nil
}

func (o opBase) When() date.Date    { return o.on }
func (o opBase) Quantity() Quantity { return o.qty }
func (o opBase) Price() Money       { return o.price }

// Settlement returns the settlement date, zero when unknown.
func (o opBase) Settlement() date.Date { return o.settlement }

func (o opBase) SettlesOn() date.Date {
	if o.settlement.IsZero() {
		return o.on
	}
	return o.settlement
}

// checkRate verifies the rate converts USD to BRL.
func checkRate(rate ExchangeRate) error {
	if rate.From != USD || rate.To != BRL {
		return fmt.Errorf("%w: %s/%s", ErrUnsupportedCurrencyPair, rate.From, rate.To)
	}
	return nil
}

// Vesting is the release of shares granted by the employer.
type Vesting struct{ opBase }

// NewVesting returns the vesting of qty shares valued price each.
func NewVesting(on date.Date, qty Quantity, price Money) (Vesting, error) {
	b, err := newOpBase(on, qty, price)
	return Vesting{b}, err
}

// WithSettlement returns a copy of v whose rate is taken on day.
func (v Vesting) WithSettlement(day date.Date) Vesting {
	v.settlement = day
	return v
}

func (Vesting) Kind() Kind { return KindVesting }

// Execute adds the vested shares at their cost, converted with the bid rate.
// Vesting never realizes profit.
func (v Vesting) Execute(current Position, rate ExchangeRate) (Result, error) {
	if err := checkRate(rate); err != nil {
		return Result{}, err
	}
	costUSD := v.price.Mul(v.qty)
	costBRL, err := rate.Convert(costUSD, true)
	if err != nil {
		return Result{}, err
	}

	next := current
	next.Quantity = current.Quantity.Add(v.qty)
	next.TotalCostUSD = current.TotalCostUSD.Add(costUSD)
	next.TotalCostBRL = current.TotalCostBRL.Add(costBRL)
	next.AveragePriceUSD = next.TotalCostUSD.Div(next.Quantity)
	next.AveragePriceBRL = next.TotalCostBRL.Div(next.Quantity)
	next.LastUpdated = v.on
	next.OperationQuantity = v.qty
	next.OperationKind = KindVesting
	return Result{Position: next}, nil
}

func (v Vesting) String() string {
	return fmt.Sprintf("%s vesting %s @ %s", v.on, v.qty, v.price)
}

// Trade is the sale of shares on the market.
type Trade struct{ opBase }

// NewTrade returns the sale of qty shares at price each.
func NewTrade(on date.Date, qty Quantity, price Money) (Trade, error) {
	b, err := newOpBase(on, qty, price)
	return Trade{b}, err
}

// WithSettlement returns a copy of t whose rate is taken on day.
func (t Trade) WithSettlement(day date.Date) Trade {
	t.settlement = day
	return t
}

func (Trade) Kind() Kind { return KindTrade }

// Execute removes the sold shares and their share of the total cost (average
// cost method). Average prices are unchanged.
//
// The realized profit is the proceeds converted at the ask rate, minus the
// average cost of the sold shares converted at the bid rate of the sale.
func (t Trade) Execute(current Position, rate ExchangeRate) (Result, error) {
	if err := checkRate(rate); err != nil {
		return Result{}, err
	}
	remaining, err := current.Quantity.Sub(t.qty)
	if err != nil {
		return Result{}, fmt.Errorf("selling %s shares on %s: %w", t.qty, t.on, err)
	}
	if current.IsEmpty() {
		return Result{}, fmt.Errorf("%w: on %s", ErrEmptyPortfolioSale, t.on)
	}

	proceeds, err := rate.Convert(t.price.Mul(t.qty), false)
	if err != nil {
		return Result{}, err
	}
	cost, err := rate.Convert(current.AveragePriceUSD.Mul(t.qty), true)
	if err != nil {
		return Result{}, err
	}
	profit := proceeds.Sub(cost)

	next := current
	next.Quantity = remaining
	next.TotalCostUSD = current.TotalCostUSD.Prorate(remaining, current.Quantity)
	next.TotalCostBRL = current.TotalCostBRL.Prorate(remaining, current.Quantity)
	next.GrossProfitBRL = current.GrossProfitBRL.Add(profit)
	next.LastUpdated = t.on
	next.OperationQuantity = t.qty
	next.OperationKind = KindTrade
	return Result{Position: next, ProfitLoss: profit, HasProfitLoss: true}, nil
}

func (t Trade) String() string {
	return fmt.Sprintf("%s trade %s @ %s", t.on, t.qty, t.price)
}

// NewOperation creates an operation of the given kind.
func NewOperation(kind Kind, on date.Date, qty Quantity, price Money) (Operation, error) {
	switch kind {
	case KindVesting:
		v, err := NewVesting(on, qty, price)
		if err != nil {
			return nil, err
		}
		return v, nil
	case KindTrade:
		t, err := NewTrade(on, qty, price)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, kind)
	}
}

// withSettlement sets the settlement date of operations built by this package.
func withSettlement(op Operation, day date.Date) Operation {
	switch o := op.(type) {
	case Vesting:
		return o.WithSettlement(day)
	case Trade:
		return o.WithSettlement(day)
	}
	return op
}

// Sort returns a copy of ops sorted by date. Operations on the same date keep their relative order.
func Sort(ops []Operation) []Operation {
	sorted := slices.Clone(ops)
	slices.SortStableFunc(sorted, func(a, b Operation) int { return a.When().Compare(b.When()) })
	return sorted
}

// Merge concatenates operations from several sources and sorts them by date.
func Merge(sources ...[]Operation) []Operation {
	return Sort(slices.Concat(sources...))
}
