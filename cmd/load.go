package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/etnz/rsu"
	"github.com/etnz/rsu/bcb"
	"github.com/etnz/rsu/confirm"
	"github.com/rs/zerolog"
)

// defaultOperationsFile is read when no operations file is configured and it exists.
const defaultOperationsFile = "operations.json"

// loadOperations returns the operations of the operations file and of the
// confirmation folders, merged in chronological order.
func loadOperations(log zerolog.Logger) ([]rsu.Operation, error) {
	var ops []rsu.Operation

	file := setting(*operationsFile, EnvOperations, "")
	optional := file == ""
	if optional {
		file = defaultOperationsFile
	}
	f, err := os.Open(file)
	switch {
	case err == nil:
		defer f.Close()
		list, err := rsu.DecodeOperations(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		log.Debug().Str("file", file).Int("operations", len(list)).Msg("operations loaded")
		ops = append(ops, list...)
	case optional && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot open operations: %w", err)
	}

	if dir := setting(*confirmationsDir, EnvConfirmations, ""); dir != "" {
		list, err := confirm.Scan(filepath.Join(dir, "trades"), filepath.Join(dir, "releases"), log)
		if err != nil {
			return nil, fmt.Errorf("cannot read confirmations: %w", err)
		}
		ops = append(ops, list...)
	}
	return rsu.Merge(ops), nil
}

// loadInitial returns the initial position, or nil if none is configured.
func loadInitial() (*rsu.Position, error) {
	file := setting(*initialFile, EnvInitial, "")
	if file == "" {
		return nil, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open initial position: %w", err)
	}
	defer f.Close()
	p, err := rsu.DecodePosition(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return &p, nil
}

// requestRate returns the PTAX requests per second, 0 for unlimited.
// A negative flag means unset.
func requestRate() (float64, error) {
	if *bcbRPS >= 0 {
		return *bcbRPS, nil
	}
	s := setting("", EnvBCBRPS, "2")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", EnvBCBRPS, s)
	}
	return v, nil
}

// fallbackWindow returns the days walked back to find a rate.
// A negative flag means unset.
func fallbackWindow() (int, error) {
	if *rateWindow >= 0 {
		return *rateWindow, nil
	}
	s := setting("", EnvRateWindow, strconv.Itoa(rsu.DefaultFallbackWindow))
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", EnvRateWindow, s)
	}
	return v, nil
}

// newBCB returns the PTAX source configured by the flags, with a daily disk cache.
func newBCB(log zerolog.Logger) (*bcb.Source, error) {
	rps, err := requestRate()
	if err != nil {
		return nil, err
	}
	dir := setting(*cacheDir, EnvCacheDir, filepath.Join(os.TempDir(), "rsu"))
	src := bcb.New(setting(*bcbURL, EnvBCBURL, bcb.DefaultURL), rps, log)
	return src.WithClient(bcb.Daily(dir, log)), nil
}

// newResolver returns the rate resolver configured by the flags: the rate
// table if any, the PTAX service otherwise.
func newResolver(log zerolog.Logger) (rsu.RateResolver, error) {
	window, err := fallbackWindow()
	if err != nil {
		return nil, err
	}
	var source rsu.RateSource
	if file := setting(*ratesFile, EnvRates, ""); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("cannot open rates: %w", err)
		}
		defer f.Close()
		table, err := rsu.DecodeRates(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		log.Debug().Str("file", file).Int("quotes", table.Len()).Msg("rates loaded")
		source = table
	} else {
		src, err := newBCB(log)
		if err != nil {
			return nil, err
		}
		source = src
	}
	return rsu.NewCachedResolver(rsu.NewFallbackResolver(source).WithWindow(window)), nil
}

// portfolio loads the operations and the initial position, and replays them.
// With statement, the history starts with the opening position.
func portfolio(ctx context.Context, log zerolog.Logger, statement bool) ([]rsu.Position, error) {
	ops, err := loadOperations(log)
	if err != nil {
		return nil, err
	}
	initial, err := loadInitial()
	if err != nil {
		return nil, err
	}
	resolver, err := newResolver(log)
	if err != nil {
		return nil, err
	}
	engine := rsu.NewEngine(resolver)
	if statement {
		return engine.Statement(ctx, ops, initial)
	}
	return engine.Replay(ctx, ops, initial)
}
