package service

import (
	"context"

	"EquityScout/internal/domain/models"
)

// Strategy is the uniform contract every technical analyzer implements.
// Analyze is pure: it derives its own indicators from the series and returns
// a signal by value, with models.ErrInsufficientHistory when the series is
// shorter than MinBars.
type Strategy interface {
	Name() string
	MinBars() int
	Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error)
}

// FundamentalEngine is the external per-ticker fundamental scorer. Optional:
// a nil engine simply omits fundamental fields from combined signals.
type FundamentalEngine interface {
	Score(ctx context.Context, ticker string) (models.FundamentalScore, error)
}
