// Package confirm reads operations from brokerage confirmations.
//
// Confirmations are the text extracted from the broker's PDF documents: trade
// confirmations for sales and release confirmations for vestings.
package confirm

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/etnz/rsu"
	"github.com/etnz/rsu/date"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Ext is the extension of the confirmation files.
const Ext = ".txt"

// legacyHeader starts the confirmations issued before the broker's migration.
const legacyHeader = "E*TRADE Securities LLC"

var (
	tradePattern = regexp.MustCompile(
		`Trade Date\s+Settlement Date\s+Quantity\s+Price\s+Settlement Amount\s*\n` +
			`\s*([\d/]+)\s+([\d/]+)\s+([\d,.]+)\s+\$?([\d,.]+)`)

	legacyPattern = regexp.MustCompile(
		`TRADE\s+DATE\s+SETL\s+DATE\s+MKT\s+/\s+CPT\s+SYMBOL\s+/\s+CUSIP\s+BUY\s+/\s+SELL\s+QUANTITY\s+PRICE\s+ACCT\s+TYPE\s*\n` +
			`\s*([\d/]+)\s+([\d/]+)\s+[^\n]*?\bSELL\s+([\d,.]+)\s+\$?([\d,.]+)`)

	releaseFields = map[string]*regexp.Regexp{
		"Release Date":           regexp.MustCompile(`(?m)Release Date[ \t]+(.+)$`),
		"Shares Issued":          regexp.MustCompile(`(?m)Shares Issued[ \t]+(.+)$`),
		"Market Value Per Share": regexp.MustCompile(`(?m)Market Value Per Share[ \t]+(.+)$`),
	}
)

// ErrUnrecognized is returned for documents matching no known layout.
var ErrUnrecognized = errors.New("unrecognized confirmation")

// ParseTrade reads a sale from a trade confirmation, in the current or the legacy layout.
// The settlement date is kept: it decides the exchange rate of the sale.
func ParseTrade(text string) (rsu.Trade, error) {
	pattern := tradePattern
	if strings.HasPrefix(strings.TrimSpace(text), legacyHeader) {
		pattern = legacyPattern
	}
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return rsu.Trade{}, fmt.Errorf("%w: no trade found", ErrUnrecognized)
	}
	on, err := date.ParseAny(m[1])
	if err != nil {
		return rsu.Trade{}, err
	}
	settlement, err := date.ParseAny(m[2])
	if err != nil {
		return rsu.Trade{}, err
	}
	qty, err := quantity(m[3])
	if err != nil {
		return rsu.Trade{}, err
	}
	price, err := price(m[4])
	if err != nil {
		return rsu.Trade{}, err
	}
	t, err := rsu.NewTrade(on, qty, price)
	if err != nil {
		return rsu.Trade{}, err
	}
	return t.WithSettlement(settlement), nil
}

// ParseRelease reads a vesting from a release confirmation.
func ParseRelease(text string) (rsu.Vesting, error) {
	fields := make(map[string]string, len(releaseFields))
	for name, re := range releaseFields {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return rsu.Vesting{}, fmt.Errorf("%w: missing %q", ErrUnrecognized, name)
		}
		fields[name] = strings.TrimSpace(m[1])
	}
	on, err := date.ParseAny(fields["Release Date"])
	if err != nil {
		return rsu.Vesting{}, err
	}
	qty, err := quantity(fields["Shares Issued"])
	if err != nil {
		return rsu.Vesting{}, err
	}
	price, err := price(fields["Market Value Per Share"])
	if err != nil {
		return rsu.Vesting{}, err
	}
	return rsu.NewVesting(on, qty, price)
}

// amount parses an amount as printed on confirmations: "$1,234.50", "(12.00)" for negatives.
func amount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "", "(", "-", ")", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d, nil
}

// quantity parses a number of shares, dropping any fractional part.
func quantity(s string) (rsu.Quantity, error) {
	d, err := amount(s)
	if err != nil {
		return rsu.Quantity{}, err
	}
	return rsu.NewQuantity(d.IntPart())
}

// price parses a USD price per share, rounded to 4 places.
func price(s string) (rsu.Money, error) {
	d, err := amount(s)
	if err != nil {
		return rsu.Money{}, err
	}
	return rsu.NewMoney(d.Round(4), rsu.USD)
}

// files returns the confirmation files under dir.
func files(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("confirmation directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("confirmation directory %q is not a directory", dir)
	}
	var list []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), Ext) {
			list = append(list, path)
		}
		return nil
	})
	return list, err
}

// Scan reads every confirmation under tradesDir and releasesDir, either may be empty to skip it.
//
// A file that cannot be read does not stop the others: the operations found
// are returned, sorted by date, together with the joined errors.
func Scan(tradesDir, releasesDir string, log zerolog.Logger) ([]rsu.Operation, error) {
	var ops []rsu.Operation
	var errs error

	scan := func(dir string, parse func(string) (rsu.Operation, error)) {
		if dir == "" {
			return
		}
		list, err := files(dir)
		if err != nil {
			errs = errors.Join(errs, err)
			return
		}
		for _, file := range list {
			content, err := os.ReadFile(file)
			if err != nil {
				errs = errors.Join(errs, err)
				continue
			}
			op, err := parse(string(content))
			if err != nil {
				errs = errors.Join(errs, fmt.Errorf("%s: %w", file, err))
				continue
			}
			log.Debug().Str("file", file).Stringer("operation", op).Msg("confirmation read")
			ops = append(ops, op)
		}
	}
	scan(tradesDir, func(s string) (rsu.Operation, error) { return ParseTrade(s) })
	scan(releasesDir, func(s string) (rsu.Operation, error) { return ParseRelease(s) })

	log.Info().Int("operations", len(ops)).Msg("confirmations scanned")
	return rsu.Merge(ops), errs
}
