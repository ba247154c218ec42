package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	domsvc "EquityScout/internal/domain/service"
)

type stubResult struct {
	score   int
	perfect bool
	err     error
}

type stubStrategy struct {
	name    string
	minBars int
	results map[string]stubResult
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) MinBars() int { return s.minBars }

func (s *stubStrategy) Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error) {
	if len(series) < s.minBars {
		return nil, fmt.Errorf("%w: stub needs %d bars", models.ErrInsufficientHistory, s.minBars)
	}
	r := s.results[ticker]
	if r.err != nil {
		return nil, r.err
	}
	return &models.StrategySignal{
		Ticker:   ticker,
		Name:     name,
		Market:   market,
		Strategy: s.name,
		Score:    r.score,
		Perfect:  r.perfect,
	}, nil
}

type stubSelector struct {
	strategies map[string]domsvc.Strategy
}

func (s *stubSelector) Select(filters []string) ([]domsvc.Strategy, error) {
	if len(filters) == 0 {
		return nil, fmt.Errorf("%w: empty filter set", models.ErrInvalidFilter)
	}
	out := make([]domsvc.Strategy, 0, len(filters))
	for _, f := range filters {
		st, ok := s.strategies[f]
		if !ok {
			return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrInvalidFilter, f)
		}
		out = append(out, st)
	}
	return out, nil
}

type fakeBars struct {
	series map[string]models.PriceSeries
	errs   map[string]error
}

func (f *fakeBars) GetPriceSeries(ctx context.Context, ticker string, lookback int) (models.PriceSeries, error) {
	if err := f.errs[ticker]; err != nil {
		return nil, err
	}
	return f.series[ticker], nil
}

func (f *fakeBars) Health(ctx context.Context) error { return nil }

func (f *fakeBars) Close() error { return nil }

type fakeUniverse struct {
	listings map[domrepo.Market][]models.Listing
}

func (f *fakeUniverse) Universe(ctx context.Context, market domrepo.Market) ([]models.Listing, error) {
	return f.listings[market], nil
}

func flatSeries(n int, close, volume float64) models.PriceSeries {
	s := make(models.PriceSeries, n)
	day := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	for i := range s {
		s[i] = models.PriceBar{
			Date: day.AddDate(0, 0, i), Open: close, High: close, Low: close,
			Close: close, Volume: volume,
		}
	}
	return s
}

func testConfig() ScreenerConfig {
	return ScreenerConfig{
		LookbackDays:    10,
		MaxWorkers:      2,
		LiquidityDays:   5,
		MinTradingValue: map[string]float64{"US": 1000},
	}
}

func usListings(tickers ...string) map[domrepo.Market][]models.Listing {
	ls := make([]models.Listing, len(tickers))
	for i, t := range tickers {
		ls[i] = models.Listing{Ticker: t, Name: t + " Inc", Market: "US"}
	}
	return map[domrepo.Market][]models.Listing{domrepo.MarketUS: ls}
}

func newTestScreener(bars domrepo.BarStore, universe domrepo.UniverseProvider, stubs ...*stubStrategy) (*Screener, []string) {
	sel := &stubSelector{strategies: make(map[string]domsvc.Strategy)}
	filters := make([]string, 0, len(stubs))
	for _, st := range stubs {
		sel.strategies[st.name] = st
		filters = append(filters, st.name)
	}
	return NewScreener(bars, universe, sel, testConfig()), filters
}

func TestRunCombineAnySumsAllScores(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"AAA": flatSeries(10, 100, 1000)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{"AAA": {score: 50, perfect: true}}}
	s2 := &stubStrategy{name: "beta", minBars: 5, results: map[string]stubResult{"AAA": {score: 30}}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1, s2)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalScanned != 1 || res.TotalPassedFilter != 1 || res.TotalSignals != 1 {
		t.Fatalf("counts = %d/%d/%d", res.TotalScanned, res.TotalPassedFilter, res.TotalSignals)
	}
	all := res.AllSignals()
	if len(all) != 1 {
		t.Fatalf("signals = %d", len(all))
	}
	sig := all[0]
	// One met strategy earns no bonus; non-met scores still sum.
	if sig.Score != 80 || sig.BonusScore != 0 {
		t.Fatalf("score = %d bonus = %d, want 80/0", sig.Score, sig.BonusScore)
	}
	if sig.Tier != models.TierStrongBuy {
		t.Fatalf("tier = %s", sig.Tier)
	}
	if !sig.Perfect {
		t.Fatalf("perfect flag should propagate")
	}
	if len(sig.ActivePatterns) != 1 || sig.ActivePatterns[0] != "alpha" {
		t.Fatalf("active patterns = %v", sig.ActivePatterns)
	}
}

func TestRunCombineAllRequiresEveryStrategy(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"AAA": flatSeries(10, 100, 1000)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{"AAA": {score: 50}}}
	s2 := &stubStrategy{name: "beta", minBars: 5, results: map[string]stubResult{"AAA": {score: 30}}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1, s2)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAll,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalSignals != 0 {
		t.Fatalf("below-threshold strategy must exclude the ticker in all mode")
	}
	if res.TotalPassedFilter != 1 {
		t.Fatalf("ticker still passed the liquidity filter")
	}
	if len(res.Skipped) != 0 {
		t.Fatalf("exclusion is not a skip: %v", res.Skipped)
	}
}

func TestRunCrossFilterBonus(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"AAA": flatSeries(10, 100, 1000)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{"AAA": {score: 50}}}
	s2 := &stubStrategy{name: "beta", minBars: 5, results: map[string]stubResult{"AAA": {score: 45}}}
	s3 := &stubStrategy{name: "gamma", minBars: 5, results: map[string]stubResult{"AAA": {score: 60}}}

	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1, s2)
	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig := res.AllSignals()[0]
	if sig.BonusScore != 10 || sig.Score != 105 {
		t.Fatalf("two met: score = %d bonus = %d, want 105/10", sig.Score, sig.BonusScore)
	}

	scr3, filters3 := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1, s2, s3)
	res3, err := scr3.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters3, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sig3 := res3.AllSignals()[0]
	if sig3.BonusScore != 20 || sig3.Score != 175 {
		t.Fatalf("three met: score = %d bonus = %d, want 175/20", sig3.Score, sig3.BonusScore)
	}
}

func TestRunMinScoreAppliesToCombined(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"AAA": flatSeries(10, 100, 1000)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{"AAA": {score: 41}}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, MinScore: 50, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalSignals != 0 {
		t.Fatalf("combined score 41 must not pass min score 50")
	}
}

func TestRunPerfectOnly(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{
		"AAA": flatSeries(10, 100, 1000),
		"BBB": flatSeries(10, 100, 1000),
	}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{
		"AAA": {score: 60, perfect: true},
		"BBB": {score: 90},
	}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA", "BBB")}, s1)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, PerfectOnly: true, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	all := res.AllSignals()
	if len(all) != 1 || all[0].Ticker != "AAA" {
		t.Fatalf("perfect-only should keep AAA alone, got %v", all)
	}
}

func TestRunDeterministicOrdering(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{
		"CCC": flatSeries(10, 100, 1000),
		"AAA": flatSeries(10, 100, 1000),
		"BBB": flatSeries(10, 100, 1000),
	}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{
		"CCC": {score: 80}, "AAA": {score: 80}, "BBB": {score: 90},
	}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("CCC", "AAA", "BBB")}, s1)

	for trial := 0; trial < 5; trial++ {
		res, err := scr.Run(context.Background(), RunParams{
			Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		all := res.AllSignals()
		if len(all) != 3 {
			t.Fatalf("signals = %d", len(all))
		}
		got := []string{all[0].Ticker, all[1].Ticker, all[2].Ticker}
		// Score desc, ticker asc on ties, regardless of worker timing.
		if got[0] != "BBB" || got[1] != "AAA" || got[2] != "CCC" {
			t.Fatalf("trial %d: order = %v", trial, got)
		}
	}
}

func TestRunLimitTruncatesAfterCounting(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{
		"AAA": flatSeries(10, 100, 1000),
		"BBB": flatSeries(10, 100, 1000),
		"CCC": flatSeries(10, 100, 1000),
	}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{
		"AAA": {score: 90}, "BBB": {score: 85}, "CCC": {score: 80},
	}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA", "BBB", "CCC")}, s1)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 2, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalSignals != 3 {
		t.Fatalf("total signals = %d, want 3", res.TotalSignals)
	}
	if got := len(res.AllSignals()); got != 2 {
		t.Fatalf("surfaced = %d, want 2", got)
	}
}

func TestRunSkipRecords(t *testing.T) {
	bars := &fakeBars{
		series: map[string]models.PriceSeries{
			"OK":    flatSeries(10, 100, 1000),
			"SHORT": flatSeries(2, 100, 1000),
			"BOOM":  flatSeries(10, 100, 1000),
		},
		errs: map[string]error{"GONE": models.ErrDataUnavailable},
	}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{
		"OK":   {score: 50},
		"BOOM": {err: errors.New("nan explosion")},
	}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("OK", "SHORT", "GONE", "BOOM")}, s1)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("one bad ticker must not abort the run: %v", err)
	}
	if res.TotalSignals != 1 {
		t.Fatalf("signals = %d, want 1", res.TotalSignals)
	}
	reasons := map[string]string{}
	for _, sk := range res.Skipped {
		reasons[sk.Ticker] = sk.Reason
	}
	if reasons["GONE"] != "data_unavailable" {
		t.Fatalf("GONE reason = %q", reasons["GONE"])
	}
	if reasons["SHORT"] != "insufficient_history" {
		t.Fatalf("SHORT reason = %q", reasons["SHORT"])
	}
	if reasons["BOOM"] != "analyzer_error:alpha" {
		t.Fatalf("BOOM reason = %q", reasons["BOOM"])
	}
}

func TestRunInvalidFilterFailsFast(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"AAA": flatSeries(10, 100, 1000)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5}
	scr, _ := newTestScreener(bars, &fakeUniverse{listings: usListings("AAA")}, s1)

	_, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: []string{"bogus"}, CombineMode: domrepo.CombineAny,
	})
	if !errors.Is(err, models.ErrInvalidFilter) {
		t.Fatalf("expected invalid filter, got %v", err)
	}

	_, err = scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: []string{"alpha"}, CombineMode: domrepo.CombineMode("sometimes"),
	})
	if !errors.Is(err, models.ErrInvalidFilter) {
		t.Fatalf("expected invalid combine mode, got %v", err)
	}
}

func TestRunLiquidityFloor(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{"THIN": flatSeries(10, 1, 1)}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{"THIN": {score: 90}}}
	scr, filters := newTestScreener(bars, &fakeUniverse{listings: usListings("THIN")}, s1)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketUS, Limit: 10, Filters: filters, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalScanned != 1 || res.TotalPassedFilter != 0 {
		t.Fatalf("counts = %d/%d, want 1/0", res.TotalScanned, res.TotalPassedFilter)
	}
	if res.TotalSignals != 0 || len(res.Skipped) != 0 {
		t.Fatalf("illiquid ticker is filtered, not skipped")
	}
}

func TestRunAllMarketMergesUniverses(t *testing.T) {
	bars := &fakeBars{series: map[string]models.PriceSeries{
		"AAA": flatSeries(10, 100, 1000),
		"KRX": flatSeries(10, 100, 1000),
	}}
	s1 := &stubStrategy{name: "alpha", minBars: 5, results: map[string]stubResult{
		"AAA": {score: 50}, "KRX": {score: 50},
	}}
	uni := &fakeUniverse{listings: map[domrepo.Market][]models.Listing{
		domrepo.MarketUS: {{Ticker: "AAA", Market: "US"}},
		domrepo.MarketKR: {{Ticker: "KRX", Market: "KR"}},
	}}
	sel := &stubSelector{strategies: map[string]domsvc.Strategy{"alpha": s1}}
	cfg := testConfig()
	cfg.MinTradingValue["KR"] = 1000
	scr := NewScreener(bars, uni, sel, cfg)

	res, err := scr.Run(context.Background(), RunParams{
		Market: domrepo.MarketAll, Limit: 10, Filters: []string{"alpha"}, CombineMode: domrepo.CombineAny,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalScanned != 2 || res.TotalSignals != 2 {
		t.Fatalf("counts = %d/%d, want 2/2", res.TotalScanned, res.TotalSignals)
	}
}
