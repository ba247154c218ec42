package models

import "time"

// CombinedSignal is the per-ticker fold of the requested strategy signals.
type CombinedSignal struct {
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name,omitempty"`
	Market       string  `json:"market"`
	CurrentPrice float64 `json:"current_price"`

	// Score is the summed technical score of the requested strategies plus
	// the cross-filter bonus. Fundamental score is reported alongside it,
	// never blended in.
	Score      int        `json:"score"`
	BonusScore int        `json:"bonus_score"`
	Tier       SignalTier `json:"tier"`
	Perfect    bool       `json:"perfect"`

	ActivePatterns []string          `json:"active_patterns"`
	Signals        []*StrategySignal `json:"signals"`

	FundamentalScore    *int     `json:"fundamental_score,omitempty"`
	FundamentalPatterns []string `json:"fundamental_patterns,omitempty"`

	AvgTradingValue float64 `json:"avg_trading_value"`
}

// StrategyScore returns the score of the named strategy, or 0 when it was
// not evaluated.
func (c *CombinedSignal) StrategyScore(strategy string) int {
	for _, s := range c.Signals {
		if s.Strategy == strategy {
			return s.Score
		}
	}
	return 0
}

// SkipRecord notes a ticker that was scanned but produced no signal.
type SkipRecord struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// Summary aggregates per-run statistics.
type Summary struct {
	StrongBuy     int     `json:"total_strong_buy"`
	Buy           int     `json:"total_buy"`
	WeakBuy       int     `json:"total_weak_buy"`
	AvgScore      float64 `json:"avg_score"`
	Squeezes      int     `json:"squeeze_count"`
	Alignments    int     `json:"ma_alignment_count"`
	Cups          int     `json:"cup_handle_count"`
	Perfect       int     `json:"perfect_signals"`
	Breakouts     int     `json:"cloud_breakouts"`
	GoldenCrosses int     `json:"golden_crosses"`

	FiltersUsed []string `json:"filters_used"`
	CombineMode string   `json:"combine_mode"`
}

// ScreeningResult is the immutable outcome of one screening run.
type ScreeningResult struct {
	ScreeningDate time.Time `json:"screening_date"`
	Market        string    `json:"market"`

	TotalScanned      int `json:"total_scanned"`
	TotalPassedFilter int `json:"total_passed_filter"`
	TotalSignals      int `json:"total_signals"`

	StrongBuy []*CombinedSignal `json:"strong_buy"`
	Buy       []*CombinedSignal `json:"buy"`
	WeakBuy   []*CombinedSignal `json:"weak_buy"`

	Skipped []SkipRecord `json:"skipped,omitempty"`
	Summary Summary      `json:"summary"`
}

// AllSignals returns the surfaced buckets flattened in rank order.
func (r *ScreeningResult) AllSignals() []*CombinedSignal {
	out := make([]*CombinedSignal, 0, len(r.StrongBuy)+len(r.Buy)+len(r.WeakBuy))
	out = append(out, r.StrongBuy...)
	out = append(out, r.Buy...)
	out = append(out, r.WeakBuy...)
	return out
}

// HistoryRecord is one persisted screening row.
type HistoryRecord struct {
	ScreeningDate    time.Time `json:"screening_date"`
	Ticker           string    `json:"ticker"`
	Name             string    `json:"name,omitempty"`
	Market           string    `json:"market"`
	CurrentPrice     float64   `json:"current_price"`
	Tier             string    `json:"tier"`
	Score            int       `json:"score"`
	BonusScore       int       `json:"bonus_score"`
	CloudTrendScore  int       `json:"cloud_trend_score"`
	SqueezeScore     int       `json:"squeeze_score"`
	AlignmentScore   int       `json:"ma_alignment_score"`
	CupHandleScore   int       `json:"cup_handle_score"`
	FundamentalScore int       `json:"fundamental_score"`
	ActivePatterns   []string  `json:"active_patterns"`
}

// LatestRecommendations is the most recent screening date's top rows.
type LatestRecommendations struct {
	Date            time.Time       `json:"date"`
	Recommendations []HistoryRecord `json:"recommendations"`
	Total           int             `json:"total"`
}
