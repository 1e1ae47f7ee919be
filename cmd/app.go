// Package cmd implements the CLI application to value an RSU portfolio.
package cmd

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&reportCmd{}, "portfolio")
	c.Register(&summaryCmd{}, "portfolio")
	c.Register(&exportCmd{}, "portfolio")

	c.Register(&scanCmd{}, "data")
	c.Register(&ratesCmd{}, "data")

	c.Register(&topicCmd{}, "help")
}

// Environment variables used when the matching flag is not set.
const (
	EnvOperations    = "RSU_OPERATIONS"
	EnvConfirmations = "RSU_CONFIRMATIONS"
	EnvRates         = "RSU_RATES"
	EnvInitial       = "RSU_INITIAL"
	EnvLogLevel      = "RSU_LOG_LEVEL"
	EnvBCBURL        = "RSU_BCB_URL"
	EnvBCBRPS        = "RSU_BCB_RPS"
	EnvCacheDir      = "RSU_CACHE_DIR"
	EnvRateWindow    = "RSU_RATE_WINDOW"
)

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var operationsFile = flag.String("operations", "", "Path to the operations file (JSON). Env "+EnvOperations+", defaults to operations.json when it exists.")
var confirmationsDir = flag.String("confirmations", "", "Folder with the 'trades' and 'releases' confirmation text files. Env "+EnvConfirmations+".")
var ratesFile = flag.String("rates", "", "Path to a USD/BRL rate table (JSONL). Env "+EnvRates+". The BCB PTAX service is used when empty.")
var initialFile = flag.String("initial", "", "Path to the initial position (JSON). Env "+EnvInitial+".")
var logLevel = flag.String("log-level", "", "Log level (debug, info, warn, error). Env "+EnvLogLevel+", defaults to warn.")
var bcbURL = flag.String("bcb-url", "", "PTAX service root. Env "+EnvBCBURL+".")
var bcbRPS = flag.Float64("bcb-rps", -1, "Maximum PTAX requests per second, 0 for unlimited. Env "+EnvBCBRPS+", defaults to 2.")
var rateWindow = flag.Int("rate-window", -1, "Days walked back to find a published rate. Env "+EnvRateWindow+", defaults to 7.")
var cacheDir = flag.String("cache-dir", "", "Folder of the daily PTAX response cache. Env "+EnvCacheDir+", defaults to the system temp folder.")

// LoadEnv loads the .env file of the current folder, if any.
func LoadEnv() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setting returns value, or the environment variable env, or def.
func setting(value, env, def string) string {
	if value != "" {
		return value
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return def
}
