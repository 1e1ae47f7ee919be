// Package bcb provides USD/BRL quotes from the Banco Central do Brasil PTAX service.
//
// Quotes are fetched per range of days and kept in memory: a replay over a
// few years costs a single request.
package bcb

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/rsu"
	"github.com/etnz/rsu/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// DefaultURL is the PTAX OData service root.
const DefaultURL = "https://olinda.bcb.gov.br/olinda/servico/PTAX/versao/v1/odata"

// ptaxDateFormat is the date format of the PTAX query parameters.
const ptaxDateFormat = "01-02-2006"

// Source is a rsu.RateSource backed by the PTAX service.
//
// Bid is the PTAX buy rate (cotacaoCompra), Ask the sell rate (cotacaoVenda),
// which is also the reference rate.
type Source struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	quotes date.History[rsu.Quote]
	loaded []date.Range
}

// New returns a source querying baseURL (DefaultURL when empty) at most rps
// times per second (unlimited when rps <= 0).
func New(baseURL string, rps float64, log zerolog.Logger) *Source {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Source{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  new(http.Client),
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With().Str("source", "bcb").Logger(),
	}
}

// WithClient sets the http client used to query the service, see Daily.
func (s *Source) WithClient(c *http.Client) *Source {
	s.client = c
	return s
}

// Len returns the number of days with a quote in memory.
func (s *Source) Len() int { return s.quotes.Len() }

// covered reports whether every day of r has already been requested.
func (s *Source) covered(r date.Range) bool {
	for _, l := range s.loaded {
		if l.Contains(r.From) && l.Contains(r.To) {
			return true
		}
	}
	return false
}

// Prefetch loads the quotes published between r.From and r.To.
func (s *Source) Prefetch(ctx context.Context, r date.Range) error {
	if s.covered(r) {
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", rsu.ErrRateSourceUnavailable, err)
	}

	addr := fmt.Sprintf("%s/CotacaoDolarPeriodo(dataInicial=@dataInicial,dataFinalCotacao=@dataFinalCotacao)?@dataInicial='%s'&@dataFinalCotacao='%s'&$format=json&$select=cotacaoCompra,cotacaoVenda,dataHoraCotacao",
		s.baseURL, r.From.Format(ptaxDateFormat), r.To.Format(ptaxDateFormat))
	s.log.Info().Stringer("from", r.From).Stringer("to", r.To).Msg("downloading PTAX quotes")

	var jobj any
	if err := jwget(ctx, s.client, addr, &jobj); err != nil {
		return fmt.Errorf("%w: PTAX %s: %w", rsu.ErrRateSourceUnavailable, r, err)
	}
	n, err := s.parse(jobj)
	if err != nil {
		return fmt.Errorf("%w: PTAX %s: %w", rsu.ErrRateSourceUnavailable, r, err)
	}
	s.loaded = append(s.loaded, r)
	s.log.Debug().Int("quotes", n).Msg("PTAX quotes loaded")
	return nil
}

// parse reads the OData response and records its quotes. It returns the number of quotes.
func (s *Source) parse(jobj any) (int, error) {
	jval, err := jsonpath.Get("$.value", jobj)
	if err != nil {
		return 0, fmt.Errorf("unexpected response: %w", err)
	}
	values, ok := jval.([]any)
	if !ok {
		return 0, fmt.Errorf("unexpected response: 'value' is not a list")
	}
	for i, v := range values {
		item, ok := v.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("unexpected quote #%d: %v", i, v)
		}
		stamp, _ := item["dataHoraCotacao"].(string)
		if len(stamp) < 10 {
			return 0, fmt.Errorf("unexpected quote date %q", stamp)
		}
		on, err := date.Parse(stamp[:10])
		if err != nil {
			return 0, fmt.Errorf("unexpected quote date %q: %w", stamp, err)
		}
		bid, err := number(item["cotacaoCompra"])
		if err != nil {
			return 0, fmt.Errorf("invalid buy rate on %s: %w", on, err)
		}
		ask, err := number(item["cotacaoVenda"])
		if err != nil {
			return 0, fmt.Errorf("invalid sell rate on %s: %w", on, err)
		}
		q := rsu.NewBidAskQuote(bid, ask)
		if err := q.Validate(); err != nil {
			return 0, fmt.Errorf("quote on %s: %w", on, err)
		}
		// Later publications of the same day win.
		s.quotes.Append(on, q)
	}
	return len(values), nil
}

// number converts a decoded JSON number to a decimal.
func number(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case interface{ String() string }:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	default:
		return decimal.Decimal{}, fmt.Errorf("not a number: %v", v)
	}
}

// Quote returns the PTAX quote of the day. Days not prefetched are loaded
// with the fallback window before them, so that a walk back costs a single request.
func (s *Source) Quote(ctx context.Context, on date.Date) (rsu.Quote, bool, error) {
	r := date.Range{From: on.Add(-rsu.DefaultFallbackWindow), To: on}
	if !s.covered(date.Range{From: on, To: on}) {
		if err := s.Prefetch(ctx, r); err != nil {
			return rsu.Quote{}, false, err
		}
	}
	q, ok := s.quotes.Get(on)
	return q, ok, nil
}

// Table returns the quotes in memory as a table, for instance to save them.
func (s *Source) Table() *rsu.TableSource {
	t := rsu.NewTableSource()
	for on, q := range s.quotes.Values() {
		t.Set(on, q)
	}
	return t
}
