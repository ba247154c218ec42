package models

import "errors"

// Screening error taxonomy. Per-ticker errors become skip records; only
// ErrInvalidFilter aborts a run.
var (
	// ErrInsufficientHistory means a series is shorter than a strategy's
	// minimum window. The strategy is skipped for that ticker.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrDataUnavailable means the bar store could not supply a series.
	ErrDataUnavailable = errors.New("price data unavailable")

	// ErrInvalidFilter means the caller requested an empty or unknown filter
	// set, or an unknown combine mode. Surfaced before any ticker is processed.
	ErrInvalidFilter = errors.New("invalid filter configuration")
)
