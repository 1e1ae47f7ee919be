package rsu

import "errors"

// Validation errors, returned by constructors.
var (
	ErrNegativeAmount   = errors.New("money amount cannot be negative")
	ErrNegativeQuantity = errors.New("stock quantity cannot be negative")
	ErrEmptyCurrency    = errors.New("currency is required")
	ErrInvalidRate      = errors.New("exchange rate must be positive")
	ErrInvalidCurrency  = errors.New("invalid currency")
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnknownOperation = errors.New("unsupported operation type")
)

// State errors, returned while executing operations.
var (
	ErrInsufficientShares      = errors.New("insufficient shares")
	ErrEmptyPortfolioSale      = errors.New("cannot sell from empty portfolio")
	ErrUnsupportedCurrencyPair = errors.New("unsupported currency pair")
)

// Resolution errors, returned by rate resolvers.
var (
	ErrRateNotFound          = errors.New("exchange rate not found")
	ErrRateSourceUnavailable = errors.New("exchange rate source unavailable")
)
