package repository

import (
	"context"
	"time"

	"EquityScout/internal/domain/models"
)

// BarStore supplies ordered daily price bars for a ticker.
type BarStore interface {
	// GetPriceSeries returns up to lookback bars ascending by date, or
	// models.ErrDataUnavailable when the ticker has no bars.
	GetPriceSeries(ctx context.Context, ticker string, lookback int) (models.PriceSeries, error)
	Health(ctx context.Context) error
	Close() error
}

// UniverseProvider supplies the candidate listings for a market.
type UniverseProvider interface {
	Universe(ctx context.Context, market Market) ([]models.Listing, error)
}

// HistoryQuery filters persisted screening rows.
type HistoryQuery struct {
	From     time.Time
	To       time.Time
	Market   string
	Ticker   string
	MinScore int
	Limit    int
	Offset   int
}

// ResultStore persists screening outcomes and serves history queries.
type ResultStore interface {
	Init(ctx context.Context) error // ensure tables exist
	SaveResult(ctx context.Context, r *models.ScreeningResult) (int, error)
	History(ctx context.Context, q HistoryQuery) ([]models.HistoryRecord, int, error)
	Latest(ctx context.Context, market string, limit int) (*models.LatestRecommendations, error)
	Close() error
}

// Publisher hands completed screening results to downstream consumers.
type Publisher interface {
	PublishResult(ctx context.Context, r *models.ScreeningResult) error
	Close() error
}

// Metrics records screening telemetry.
type Metrics interface {
	RecordRun(market string)
	RecordTickerScanned(market string)
	RecordSkip(reason string)
	RecordSignal(strategy string)
	RecordRunDuration(market string, seconds float64)
}
