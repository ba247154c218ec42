package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
)

// ClickHouseBarStore reads daily OHLCV bars from ClickHouse.
type ClickHouseBarStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarStore creates the bar store over a shared pool.
func NewClickHouseBarStore(db *sql.DB, table string) domrepo.BarStore {
	if table == "" {
		table = "daily_bars"
	}
	return &ClickHouseBarStore{db: db, table: table}
}

// GetPriceSeries fetches the latest lookback bars newest first and reverses
// them, so callers always see an ascending series regardless of how much
// history the table holds.
func (s *ClickHouseBarStore) GetPriceSeries(ctx context.Context, ticker string, lookback int) (models.PriceSeries, error) {
	if lookback <= 0 {
		lookback = 200
	}
	q := fmt.Sprintf(`SELECT date, open, high, low, close, volume
		FROM %s
		WHERE ticker = ?
		ORDER BY date DESC
		LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, ticker, lookback)
	if err != nil {
		return nil, fmt.Errorf("query bars for %s: %w", ticker, err)
	}
	defer rows.Close()

	series := make(models.PriceSeries, 0, lookback)
	for rows.Next() {
		var b models.PriceBar
		var d time.Time
		if err := rows.Scan(&d, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar for %s: %w", ticker, err)
		}
		b.Date = d
		series = append(series, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bars for %s: %w", ticker, err)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", models.ErrDataUnavailable, ticker)
	}

	// DESC query, ascending contract.
	for i, j := 0, len(series)-1; i < j; i, j = i+1, j-1 {
		series[i], series[j] = series[j], series[i]
	}
	return series, nil
}

func (s *ClickHouseBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

// ClickHouseUniverse lists the tradable instruments per market.
type ClickHouseUniverse struct {
	db    *sql.DB
	table string
}

func NewClickHouseUniverse(db *sql.DB, table string) domrepo.UniverseProvider {
	if table == "" {
		table = "listings"
	}
	return &ClickHouseUniverse{db: db, table: table}
}

func (u *ClickHouseUniverse) Universe(ctx context.Context, market domrepo.Market) ([]models.Listing, error) {
	q := fmt.Sprintf(`SELECT ticker, name, market
		FROM %s
		WHERE market = ? AND active = 1
		ORDER BY ticker`, u.table)

	rows, err := u.db.QueryContext(ctx, q, string(market))
	if err != nil {
		return nil, fmt.Errorf("query universe %s: %w", market, err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.Ticker, &l.Name, &l.Market); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
