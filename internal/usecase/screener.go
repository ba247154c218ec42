package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	domsvc "EquityScout/internal/domain/service"
	"EquityScout/internal/services/strategies"
	applogger "EquityScout/pkg/logger"
)

// ScreenerConfig tunes a screening run.
type ScreenerConfig struct {
	// LookbackDays is the number of daily bars fetched per ticker.
	LookbackDays int
	// MaxWorkers caps simultaneous in-flight per-ticker analyses.
	MaxWorkers int
	// LiquidityDays is the trailing window for the average trading value.
	LiquidityDays int
	// MinTradingValue is the per-market liquidity floor (close*volume).
	MinTradingValue map[string]float64
}

// DefaultScreenerConfig mirrors the production defaults.
func DefaultScreenerConfig() ScreenerConfig {
	return ScreenerConfig{
		LookbackDays:  200,
		MaxWorkers:    10,
		LiquidityDays: 5,
		MinTradingValue: map[string]float64{
			"US": 20_000_000,
			"KR": 5_000_000_000,
		},
	}
}

// RunParams is the public screening contract.
type RunParams struct {
	Market      domrepo.Market
	MinScore    int
	PerfectOnly bool
	Limit       int
	Filters     []string
	CombineMode domrepo.CombineMode
}

// StrategySelector resolves a filter set to strategy implementations.
type StrategySelector interface {
	Select(filters []string) ([]domsvc.Strategy, error)
}

// Screener fans per-ticker analysis out over a bounded worker pool and
// folds the strategy signals into a ranked, tiered result. Fork-join: no
// partial results are emitted mid-run.
type Screener struct {
	bars        domrepo.BarStore
	universe    domrepo.UniverseProvider
	registry    StrategySelector
	fundamental domsvc.FundamentalEngine // optional
	metrics     domrepo.Metrics          // optional
	l           *applogger.Logger        // optional
	cfg         ScreenerConfig
}

func NewScreener(bars domrepo.BarStore, universe domrepo.UniverseProvider, registry StrategySelector, cfg ScreenerConfig) *Screener {
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 200
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 10
	}
	if cfg.LiquidityDays <= 0 {
		cfg.LiquidityDays = 5
	}
	return &Screener{bars: bars, universe: universe, registry: registry, cfg: cfg}
}

// SetFundamentalEngine injects the optional external fundamental scorer.
func (s *Screener) SetFundamentalEngine(e domsvc.FundamentalEngine) { s.fundamental = e }

// SetMetrics injects a telemetry recorder.
func (s *Screener) SetMetrics(m domrepo.Metrics) { s.metrics = m }

// SetLogger injects a structured logger.
func (s *Screener) SetLogger(l *applogger.Logger) { s.l = l }

type tickerOutcome struct {
	signal          *models.CombinedSignal
	skip            *models.SkipRecord
	passedLiquidity bool
}

// Run executes one screening pass. Configuration errors surface before any
// ticker is processed; per-ticker failures become skip records.
func (s *Screener) Run(ctx context.Context, p RunParams) (*models.ScreeningResult, error) {
	strats, err := s.registry.Select(p.Filters)
	if err != nil {
		return nil, err
	}
	if !domrepo.IsValidCombineMode(p.CombineMode) {
		return nil, fmt.Errorf("%w: combine mode %q", models.ErrInvalidFilter, p.CombineMode)
	}
	if !domrepo.IsValidMarket(p.Market) {
		return nil, fmt.Errorf("%w: market %q", models.ErrInvalidFilter, p.Market)
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}

	start := time.Now()
	listings, err := s.collectUniverse(ctx, p.Market)
	if err != nil {
		return nil, fmt.Errorf("collect universe: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordRun(string(p.Market))
	}

	outcomes := s.fanOut(ctx, listings, strats, p)
	if err := ctx.Err(); err != nil {
		return nil, err // run aborted: discard everything
	}

	signals := make([]*models.CombinedSignal, 0, len(outcomes))
	skipped := make([]models.SkipRecord, 0)
	passed := 0
	for _, o := range outcomes {
		if o.passedLiquidity {
			passed++
		}
		if o.skip != nil {
			skipped = append(skipped, *o.skip)
			continue
		}
		if o.signal == nil {
			continue
		}
		if o.signal.Score < p.MinScore {
			continue
		}
		if p.PerfectOnly && !o.signal.Perfect {
			continue
		}
		signals = append(signals, o.signal)
	}

	// Deterministic ranking: score desc, ticker asc on ties.
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Score != signals[j].Score {
			return signals[i].Score > signals[j].Score
		}
		return signals[i].Ticker < signals[j].Ticker
	})

	totalSignals := len(signals)
	if len(signals) > p.Limit {
		signals = signals[:p.Limit]
	}

	result := &models.ScreeningResult{
		ScreeningDate:     time.Now().UTC().Truncate(24 * time.Hour),
		Market:            string(p.Market),
		TotalScanned:      len(listings),
		TotalPassedFilter: passed,
		TotalSignals:      totalSignals,
		Skipped:           skipped,
	}
	for _, sig := range signals {
		switch sig.Tier {
		case models.TierStrongBuy:
			result.StrongBuy = append(result.StrongBuy, sig)
		case models.TierBuy:
			result.Buy = append(result.Buy, sig)
		case models.TierWeakBuy:
			result.WeakBuy = append(result.WeakBuy, sig)
		}
	}
	result.Summary = summarize(result, p)

	if s.metrics != nil {
		s.metrics.RecordRunDuration(string(p.Market), time.Since(start).Seconds())
	}
	if s.l != nil {
		s.l.Info("screening run complete",
			applogger.String("market", string(p.Market)),
			applogger.Int("scanned", result.TotalScanned),
			applogger.Int("passed_filter", result.TotalPassedFilter),
			applogger.Int("signals", result.TotalSignals),
			applogger.Int("skipped", len(skipped)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return result, nil
}

func (s *Screener) collectUniverse(ctx context.Context, market domrepo.Market) ([]models.Listing, error) {
	if market != domrepo.MarketAll {
		return s.universe.Universe(ctx, market)
	}
	us, err := s.universe.Universe(ctx, domrepo.MarketUS)
	if err != nil {
		return nil, err
	}
	kr, err := s.universe.Universe(ctx, domrepo.MarketKR)
	if err != nil {
		return nil, err
	}
	return append(us, kr...), nil
}

// fanOut distributes per-ticker analysis across the worker pool and joins
// all outcomes before returning. Each invocation owns its own series and
// indicator arrays; nothing is shared between tickers.
func (s *Screener) fanOut(ctx context.Context, listings []models.Listing, strats []domsvc.Strategy, p RunParams) []tickerOutcome {
	workers := s.cfg.MaxWorkers
	if workers > len(listings) {
		workers = len(listings)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan models.Listing)
	results := make(chan tickerOutcome, len(listings))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lst := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- s.analyzeTicker(ctx, lst, strats, p)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, lst := range listings {
			select {
			case jobs <- lst:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	out := make([]tickerOutcome, 0, len(listings))
	for o := range results {
		out = append(out, o)
	}
	return out
}

func (s *Screener) analyzeTicker(ctx context.Context, lst models.Listing, strats []domsvc.Strategy, p RunParams) tickerOutcome {
	if s.metrics != nil {
		s.metrics.RecordTickerScanned(lst.Market)
	}

	series, err := s.bars.GetPriceSeries(ctx, lst.Ticker, s.cfg.LookbackDays)
	if err != nil {
		return s.skip(lst.Ticker, "data_unavailable")
	}
	if len(series) == 0 {
		return s.skip(lst.Ticker, "data_unavailable")
	}

	avgValue := series.AvgTradingValue(s.cfg.LiquidityDays)
	if floor, ok := s.cfg.MinTradingValue[lst.Market]; ok && avgValue < floor {
		return tickerOutcome{} // scanned but below the liquidity floor
	}

	evaluated := make([]*models.StrategySignal, 0, len(strats))
	met := 0
	for _, st := range strats {
		if len(series) < st.MinBars() {
			continue // strategy skipped, not fatal
		}
		sig, err := st.Analyze(series, lst.Ticker, lst.Name, lst.Market)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				continue
			}
			if s.l != nil {
				s.l.Warn("analyzer failed",
					applogger.String("ticker", lst.Ticker),
					applogger.String("strategy", st.Name()),
					applogger.Error(err),
				)
			}
			return s.skip(lst.Ticker, "analyzer_error:"+st.Name())
		}
		evaluated = append(evaluated, sig)
		if sig.Score >= strategies.MetThreshold {
			met++
			if s.metrics != nil {
				s.metrics.RecordSignal(st.Name())
			}
		}
	}
	if len(evaluated) == 0 {
		return s.skip(lst.Ticker, "insufficient_history")
	}

	switch p.CombineMode {
	case domrepo.CombineAll:
		if met < len(strats) {
			return tickerOutcome{passedLiquidity: true}
		}
	default: // CombineAny
		if met == 0 {
			return tickerOutcome{passedLiquidity: true}
		}
	}

	combined := s.combine(ctx, lst, series.LastClose(), avgValue, evaluated, met)
	return tickerOutcome{signal: combined, passedLiquidity: true}
}

// combine folds strategy signals into one CombinedSignal: summed score plus
// the cross-filter bonus, with the fundamental score reported alongside.
func (s *Screener) combine(ctx context.Context, lst models.Listing, price, avgValue float64, evaluated []*models.StrategySignal, met int) *models.CombinedSignal {
	score := 0
	perfect := false
	patterns := make([]string, 0, len(evaluated))
	for _, sig := range evaluated {
		score += sig.Score
		perfect = perfect || sig.Perfect
		if sig.Score >= strategies.MetThreshold {
			patterns = append(patterns, sig.Strategy)
		}
	}

	bonus := 0
	switch {
	case met >= 3:
		bonus = 20
	case met == 2:
		bonus = 10
	}
	score += bonus

	c := &models.CombinedSignal{
		Ticker:          lst.Ticker,
		Name:            lst.Name,
		Market:          lst.Market,
		CurrentPrice:    price,
		Score:           score,
		BonusScore:      bonus,
		Tier:            models.TierForScore(score),
		Perfect:         perfect,
		ActivePatterns:  patterns,
		Signals:         evaluated,
		AvgTradingValue: avgValue,
	}

	if s.fundamental != nil {
		fs, err := s.fundamental.Score(ctx, lst.Ticker)
		if err != nil {
			if s.l != nil {
				s.l.Warn("fundamental score unavailable",
					applogger.String("ticker", lst.Ticker),
					applogger.Error(err),
				)
			}
		} else {
			v := fs.Score
			c.FundamentalScore = &v
			c.FundamentalPatterns = fs.Patterns
		}
	}
	return c
}

func (s *Screener) skip(ticker, reason string) tickerOutcome {
	if s.metrics != nil {
		s.metrics.RecordSkip(reason)
	}
	return tickerOutcome{skip: &models.SkipRecord{Ticker: ticker, Reason: reason}}
}

func summarize(r *models.ScreeningResult, p RunParams) models.Summary {
	all := r.AllSignals()
	sum := models.Summary{
		StrongBuy:   len(r.StrongBuy),
		Buy:         len(r.Buy),
		WeakBuy:     len(r.WeakBuy),
		FiltersUsed: p.Filters,
		CombineMode: string(p.CombineMode),
	}
	if len(all) == 0 {
		return sum
	}

	total := 0
	for _, c := range all {
		total += c.Score
		if c.Perfect {
			sum.Perfect++
		}
		for _, sig := range c.Signals {
			switch {
			case sig.Squeeze != nil && (sig.Squeeze.Squeeze || sig.Squeeze.StrongSqueeze):
				sum.Squeezes++
			case sig.MAAlignment != nil && sig.MAAlignment.FullAlignment:
				sum.Alignments++
			case sig.CupHandle != nil && sig.CupHandle.CupDetected:
				sum.Cups++
			}
			if sig.CloudTrend != nil {
				if sig.CloudTrend.CloudBreakout {
					sum.Breakouts++
				}
				if sig.CloudTrend.GoldenCross {
					sum.GoldenCrosses++
				}
			}
		}
	}
	sum.AvgScore = float64(total) / float64(len(all))
	return sum
}
