package rsu

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/etnz/rsu/date"
	"github.com/shopspring/decimal"
)

// This file contains the codecs for the files handled by the portfolio:
//
//   operations: a JSON array of {"type","date","settlement_date","quantity","price"} objects.
//   position:   a JSON object describing the initial position.
//   rates:      a JSONL file, one {"on","rate","bid","ask"} quote per line, git-friendly.

// joperation is an operation as read from or written to a file.
type joperation struct {
	Type           string          `json:"type"`
	Date           date.Date       `json:"date"`
	SettlementDate date.Date       `json:"settlement_date"`
	Quantity       Quantity        `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

// DecodeOperations reads a JSON array of operations. Prices are in USD.
func DecodeOperations(r io.Reader) ([]Operation, error) {
	var list []joperation
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("invalid operations: %w", err)
	}
	ops := make([]Operation, 0, len(list))
	for i, j := range list {
		op, err := j.operation()
		if err != nil {
			return nil, fmt.Errorf("invalid operation #%d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (j joperation) operation() (Operation, error) {
	kind, err := ParseKind(j.Type)
	if err != nil {
		return nil, err
	}
	if j.Date.IsZero() {
		return nil, fmt.Errorf("missing date")
	}
	price, err := NewMoney(j.Price, USD)
	if err != nil {
		return nil, err
	}
	op, err := NewOperation(kind, j.Date, j.Quantity, price)
	if err != nil {
		return nil, err
	}
	if !j.SettlementDate.IsZero() {
		op = withSettlement(op, j.SettlementDate)
	}
	return op, nil
}

// settled is implemented by operations that know their settlement date.
type settled interface{ Settlement() date.Date }

func marshalOperation(op Operation) ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", op.Kind())
	w.Append("date", op.When())
	if s, ok := op.(settled); ok {
		w.Optional("settlement_date", s.Settlement())
	}
	w.Append("quantity", op.Quantity())
	w.Number("price", op.Price().Amount())
	return w.MarshalJSON()
}

// EncodeOperations writes ops as a JSON array, one operation per line.
func EncodeOperations(w io.Writer, ops []Operation) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, op := range ops {
		line, err := marshalOperation(op)
		if err != nil {
			return fmt.Errorf("cannot encode operation #%d: %w", i+1, err)
		}
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  ")
		buf.Write(line)
	}
	buf.WriteString("\n]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// jposition is the initial position as read from a file.
type jposition struct {
	Date           date.Date       `json:"date"`
	Quantity       Quantity        `json:"quantity"`
	TotalCostUSD   decimal.Decimal `json:"total_cost_usd"`
	TotalCostBRL   decimal.Decimal `json:"total_cost_brl"`
	GrossProfitBRL decimal.Decimal `json:"gross_profit_brl"`
}

// DecodePosition reads a position as a JSON object. Average prices are
// derived from the total costs.
func DecodePosition(r io.Reader) (Position, error) {
	var j jposition
	if err := json.NewDecoder(r).Decode(&j); err != nil {
		return Position{}, fmt.Errorf("invalid position: %w", err)
	}
	usd, err := NewMoney(j.TotalCostUSD, USD)
	if err != nil {
		return Position{}, fmt.Errorf("invalid position: %w", err)
	}
	brl, err := NewMoney(j.TotalCostBRL, BRL)
	if err != nil {
		return Position{}, fmt.Errorf("invalid position: %w", err)
	}
	p, err := NewPosition(j.Date, j.Quantity, usd, brl)
	if err != nil {
		return Position{}, fmt.Errorf("invalid position: %w", err)
	}
	p.GrossProfitBRL = PL(j.GrossProfitBRL, BRL)
	return p, nil
}

// jquote is a line of a rate table.
type jquote struct {
	On   date.Date           `json:"on"`
	Rate decimal.Decimal     `json:"rate"`
	Bid  decimal.NullDecimal `json:"bid"`
	Ask  decimal.NullDecimal `json:"ask"`
}

// DecodeRates reads a JSONL rate table. Blank lines are ignored.
// A line without "rate" uses its ask (or bid) rate as reference.
func DecodeRates(r io.Reader) (*TableSource, error) {
	table := NewTableSource()
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var j jquote
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", n, line, err)
		}
		q := Quote{Rate: j.Rate, Bid: j.Bid, Ask: j.Ask}
		if q.Rate.IsZero() {
			switch {
			case q.Ask.Valid:
				q.Rate = q.Ask.Decimal
			case q.Bid.Valid:
				q.Rate = q.Bid.Decimal
			}
		}
		if j.On.IsZero() {
			return nil, fmt.Errorf("format error on line %d: missing \"on\" date", n)
		}
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("format error on line %d: %w", n, err)
		}
		table.Set(j.On, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read rates: %w", err)
	}
	return table, nil
}

// EncodeRates writes the table as JSONL, in chronological order.
func EncodeRates(w io.Writer, table *TableSource) error {
	bw := bufio.NewWriter(w)
	for on, q := range table.Quotes() {
		var o jsonObjectWriter
		o.Append("on", on)
		o.Number("rate", q.Rate)
		if q.Bid.Valid {
			o.Number("bid", q.Bid.Decimal)
		}
		if q.Ask.Valid {
			o.Number("ask", q.Ask.Decimal)
		}
		line, err := o.MarshalJSON()
		if err != nil {
			return fmt.Errorf("cannot encode rate on %s: %w", on, err)
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
