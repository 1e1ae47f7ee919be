package renderer

import (
	"fmt"

	"github.com/etnz/rsu"
)

// Row is a position as displayed.
type Row struct {
	Date            string
	Operation       string
	Quantity        string
	TotalCostUSD    string
	AveragePriceUSD string
	TotalCostBRL    string
	AveragePriceBRL string
	GrossProfitBRL  string
}

// Year groups the positions of a calendar year.
type Year struct {
	Year int
	Rows []Row
}

// History is the view of a portfolio history.
type History struct {
	From, To string
	Years    []Year
}

// YearRow is a yearly summary as displayed.
type YearRow struct {
	Year       int
	Operations int
	Row
}

// Summary is the view of the portfolio outcome.
type Summary struct {
	Date        string
	Final       Row
	Years       []YearRow
	TotalReturn string
	Lifetime    string
	Market      *Market
}

// Market is the valuation of the final position at a share price.
type Market struct {
	Price      string
	Rate       string
	Value      string
	Unrealized string
}

// operation describes the operation that produced p.
func operation(p rsu.Position) string {
	switch p.OperationKind {
	case rsu.KindVesting:
		return fmt.Sprintf("Vesting (+%s)", p.OperationQuantity)
	case rsu.KindTrade:
		return fmt.Sprintf("Trade (-%s)", p.OperationQuantity)
	default:
		return "Opening"
	}
}

func newRow(p rsu.Position) Row {
	return Row{
		Date:            p.LastUpdated.String(),
		Operation:       operation(p),
		Quantity:        p.Quantity.String(),
		TotalCostUSD:    p.TotalCostUSD.String(),
		AveragePriceUSD: p.AveragePriceUSD.String(),
		TotalCostBRL:    p.TotalCostBRL.String(),
		AveragePriceBRL: p.AveragePriceBRL.String(),
		GrossProfitBRL:  p.GrossProfitBRL.SignedString(),
	}
}

// NewHistory builds the view of history.
func NewHistory(history []rsu.Position) *History {
	h := new(History)
	for _, p := range history {
		if n := len(h.Years); n == 0 || h.Years[n-1].Year != p.LastUpdated.Year() {
			h.Years = append(h.Years, Year{Year: p.LastUpdated.Year()})
		}
		y := &h.Years[len(h.Years)-1]
		y.Rows = append(y.Rows, newRow(p))
	}
	if len(history) > 0 {
		h.From = history[0].LastUpdated.String()
		h.To = history[len(history)-1].LastUpdated.String()
	}
	return h
}

// NewSummary builds the view of the final position and the yearly summaries of history.
//
// The realized profit of the year is the one of final, which is also the last
// position of history when there is one.
func NewSummary(final rsu.Position, history []rsu.Position) *Summary {
	s := &Summary{
		Date:        final.LastUpdated.String(),
		Final:       newRow(final),
		TotalReturn: final.GrossProfitBRL.SignedString(),
		Lifetime:    rsu.LifetimeProfitBRL(history).SignedString(),
	}
	if len(history) == 0 {
		s.Lifetime = s.TotalReturn
	}
	for _, y := range rsu.YearlySummaries(history) {
		s.Years = append(s.Years, YearRow{
			Year:       y.Year,
			Operations: y.Operations,
			Row: Row{
				Quantity:        y.FinalQuantity.String(),
				TotalCostUSD:    y.TotalCostUSD.String(),
				AveragePriceUSD: y.AveragePriceUSD.String(),
				TotalCostBRL:    y.TotalCostBRL.String(),
				AveragePriceBRL: y.AveragePriceBRL.String(),
				GrossProfitBRL:  y.GrossProfitBRL.SignedString(),
			},
		})
	}
	return s
}

// WithMarket values the final position of s at price, converted with rate.
func (s *Summary) WithMarket(final rsu.Position, price rsu.Money, rate rsu.ExchangeRate) error {
	value, err := rsu.PositionValueBRL(final, price, rate)
	if err != nil {
		return err
	}
	gain, err := rsu.UnrealizedGainLossBRL(final, price, rate)
	if err != nil {
		return err
	}
	s.Market = &Market{
		Price:      price.String(),
		Rate:       rate.String(),
		Value:      value.String(),
		Unrealized: gain.SignedString(),
	}
	return nil
}
