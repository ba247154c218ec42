package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	"EquityScout/internal/services/strategies"
)

// ClickHouseResultStore persists screening outcomes one row per
// (date, ticker). The ReplacingMergeTree key makes a same-day re-run an
// upsert instead of a duplicate.
type ClickHouseResultStore struct {
	db    *sql.DB
	table string
}

func NewClickHouseResultStore(db *sql.DB, table string) domrepo.ResultStore {
	if table == "" {
		table = "screening_results"
	}
	return &ClickHouseResultStore{db: db, table: table}
}

func (s *ClickHouseResultStore) Init(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		screening_date Date,
		ticker String,
		name String,
		market String,
		current_price Float64,
		tier String,
		score Int32,
		bonus_score Int32,
		cloud_trend_score Int32,
		squeeze_score Int32,
		ma_alignment_score Int32,
		cup_handle_score Int32,
		fundamental_score Int32,
		active_patterns Array(String),
		created_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(created_at)
	ORDER BY (screening_date, market, ticker)`, s.table)

	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("init result schema: %w", err)
	}
	return nil
}

// SaveResult writes every surfaced signal of the run and returns the row
// count. Rows go in one multi-row insert to keep round-trips down.
func (s *ClickHouseResultStore) SaveResult(ctx context.Context, r *models.ScreeningResult) (int, error) {
	all := r.AllSignals()
	if len(all) == 0 {
		return 0, nil
	}

	values := make([]string, 0, len(all))
	args := make([]interface{}, 0, len(all)*14)
	for _, c := range all {
		fundamental := 0
		if c.FundamentalScore != nil {
			fundamental = *c.FundamentalScore
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.ScreeningDate,
			c.Ticker,
			c.Name,
			c.Market,
			c.CurrentPrice,
			string(c.Tier),
			int32(c.Score),
			int32(c.BonusScore),
			int32(c.StrategyScore(strategies.StrategyCloudTrend)),
			int32(c.StrategyScore(strategies.StrategySqueeze)),
			int32(c.StrategyScore(strategies.StrategyMAAlignment)),
			int32(c.StrategyScore(strategies.StrategyCupHandle)),
			int32(fundamental),
			c.ActivePatterns,
		)
	}

	q := fmt.Sprintf(`INSERT INTO %s
		(screening_date, ticker, name, market, current_price, tier, score, bonus_score,
		 cloud_trend_score, squeeze_score, ma_alignment_score, cup_handle_score,
		 fundamental_score, active_patterns)
		VALUES %s`, s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return 0, fmt.Errorf("insert screening rows: %w", err)
	}
	return len(all), nil
}

func (s *ClickHouseResultStore) History(ctx context.Context, q domrepo.HistoryQuery) ([]models.HistoryRecord, int, error) {
	where := []string{"screening_date >= ?", "screening_date <= ?"}
	args := []interface{}{q.From, q.To}
	if q.Market != "" && q.Market != "ALL" {
		where = append(where, "market = ?")
		args = append(args, q.Market)
	}
	if q.Ticker != "" {
		where = append(where, "ticker = ?")
		args = append(args, q.Ticker)
	}
	if q.MinScore != 0 {
		where = append(where, "score >= ?")
		args = append(args, int32(q.MinScore))
	}
	cond := strings.Join(where, " AND ")

	var total int
	countQ := fmt.Sprintf("SELECT count() FROM %s FINAL WHERE %s", s.table, cond)
	if err := s.db.QueryRowContext(ctx, countQ, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count history: %w", err)
	}

	listQ := fmt.Sprintf(`SELECT screening_date, ticker, name, market, current_price, tier,
			score, bonus_score, cloud_trend_score, squeeze_score,
			ma_alignment_score, cup_handle_score, fundamental_score, active_patterns
		FROM %s FINAL
		WHERE %s
		ORDER BY screening_date DESC, score DESC, ticker ASC
		LIMIT ? OFFSET ?`, s.table, cond)
	rows, err := s.db.QueryContext(ctx, listQ, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	records, err := scanHistoryRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (s *ClickHouseResultStore) Latest(ctx context.Context, market string, limit int) (*models.LatestRecommendations, error) {
	where := ""
	args := []interface{}{}
	if market != "" && market != "ALL" {
		where = " WHERE market = ?"
		args = append(args, market)
	}

	var latest time.Time
	dateQ := fmt.Sprintf("SELECT max(screening_date) FROM %s%s", s.table, where)
	if err := s.db.QueryRowContext(ctx, dateQ, args...).Scan(&latest); err != nil {
		return nil, fmt.Errorf("latest screening date: %w", err)
	}
	if latest.IsZero() {
		return &models.LatestRecommendations{Recommendations: []models.HistoryRecord{}}, nil
	}

	cond := "screening_date = ?"
	listArgs := []interface{}{latest}
	if market != "" && market != "ALL" {
		cond += " AND market = ?"
		listArgs = append(listArgs, market)
	}
	listQ := fmt.Sprintf(`SELECT screening_date, ticker, name, market, current_price, tier,
			score, bonus_score, cloud_trend_score, squeeze_score,
			ma_alignment_score, cup_handle_score, fundamental_score, active_patterns
		FROM %s FINAL
		WHERE %s
		ORDER BY score DESC, ticker ASC
		LIMIT ?`, s.table, cond)
	rows, err := s.db.QueryContext(ctx, listQ, append(listArgs, limit)...)
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	records, err := scanHistoryRows(rows)
	if err != nil {
		return nil, err
	}
	return &models.LatestRecommendations{
		Date:            latest,
		Recommendations: records,
		Total:           len(records),
	}, nil
}

func (s *ClickHouseResultStore) Close() error {
	return nil // pool owned by pkg/clickhouse
}

func scanHistoryRows(rows *sql.Rows) ([]models.HistoryRecord, error) {
	records := make([]models.HistoryRecord, 0)
	for rows.Next() {
		var r models.HistoryRecord
		var score, bonus, cloud, squeeze, align, cup, fundamental int32
		if err := rows.Scan(&r.ScreeningDate, &r.Ticker, &r.Name, &r.Market, &r.CurrentPrice, &r.Tier,
			&score, &bonus, &cloud, &squeeze, &align, &cup, &fundamental, &r.ActivePatterns); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		r.Score = int(score)
		r.BonusScore = int(bonus)
		r.CloudTrendScore = int(cloud)
		r.SqueezeScore = int(squeeze)
		r.AlignmentScore = int(align)
		r.CupHandleScore = int(cup)
		r.FundamentalScore = int(fundamental)
		records = append(records, r)
	}
	return records, rows.Err()
}
