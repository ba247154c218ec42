package strategies

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"EquityScout/internal/domain/models"
)

func barSeries(closes, volumes []float64) models.PriceSeries {
	s := make(models.PriceSeries, len(closes))
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		v := 1_000_000.0
		if volumes != nil {
			v = volumes[i]
		}
		s[i] = models.PriceBar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c + c*0.002,
			Low:    c - c*0.002,
			Close:  c,
			Volume: v,
		}
	}
	return s
}

func trendingSeries(n int, start, step float64) models.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + float64(i)*step
	}
	return barSeries(closes, nil)
}

func randomSeries(r *rand.Rand, n int) models.PriceSeries {
	closes := make([]float64, n)
	vols := make([]float64, n)
	price := 50 + r.Float64()*100
	for i := range closes {
		price *= 1 + (r.Float64()-0.5)*0.08
		if price < 1 {
			price = 1
		}
		closes[i] = price
		vols[i] = 100_000 + r.Float64()*5_000_000
	}
	return barSeries(closes, vols)
}

func TestCloudTrendInsufficientHistory(t *testing.T) {
	s := NewCloudTrend()
	_, err := s.Analyze(trendingSeries(s.MinBars()-1, 100, 1), "TST", "", "US")
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestCloudTrendUptrendIsPerfect(t *testing.T) {
	s := NewCloudTrend()
	sig, err := s.Analyze(trendingSeries(120, 100, 1), "UPT", "Up Trend", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.CloudTrend
	if d == nil {
		t.Fatalf("missing detail")
	}
	if !d.PriceAboveCloud || !d.ConversionAboveBase || !d.LaggingAbovePrice {
		t.Fatalf("steady uptrend should satisfy all three core flags: %+v", d)
	}
	if !sig.Perfect {
		t.Fatalf("expected perfect signal")
	}
	// +30 above cloud, +20 conversion, +20 lagging, +10 bullish color.
	if sig.Score < 80 {
		t.Fatalf("score = %d, want >= 80", sig.Score)
	}
	if sig.Strategy != StrategyCloudTrend {
		t.Fatalf("strategy name = %q", sig.Strategy)
	}
}

func TestCloudTrendDowntrendScoresNegative(t *testing.T) {
	s := NewCloudTrend()
	sig, err := s.Analyze(trendingSeries(120, 300, -1), "DWN", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.Score >= 0 {
		t.Fatalf("downtrend score = %d, want negative", sig.Score)
	}
	if sig.Perfect {
		t.Fatalf("downtrend must not be perfect")
	}
}

func TestCloudTrendScoreBounds(t *testing.T) {
	s := NewCloudTrend()
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10_000; i++ {
		sig, err := s.Analyze(randomSeries(r, 78+r.Intn(130)), "RND", "", "US")
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				continue
			}
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		if sig.Score < -100 || sig.Score > 100 {
			t.Fatalf("trial %d: score %d out of range", i, sig.Score)
		}
	}
}

func TestCloudTrendTierMatchesScore(t *testing.T) {
	s := NewCloudTrend()
	sig, err := s.Analyze(trendingSeries(120, 100, 1), "UPT", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sig.CloudTrend.Tier != models.TierForScore(sig.Score) {
		t.Fatalf("tier %s does not match score %d", sig.CloudTrend.Tier, sig.Score)
	}
}
