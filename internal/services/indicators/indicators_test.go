package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"EquityScout/internal/domain/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func seriesFromCloses(closes []float64) models.PriceSeries {
	s := make(models.PriceSeries, len(closes))
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s[i] = models.PriceBar{
			Date:   day.AddDate(0, 0, i),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return s
}

func TestSMAWarmupAndValues(t *testing.T) {
	out, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN warm-up, got %v %v", out[0], out[1])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(out[i+2], w) {
			t.Fatalf("sma[%d] = %v, want %v", i+2, out[i+2], w)
		}
	}
}

func TestSMAInsufficient(t *testing.T) {
	_, err := SMA([]float64{1, 2}, 3)
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestRollingMaxMin(t *testing.T) {
	vals := []float64{3, 1, 4, 1, 5}
	mx, err := RollingMax(vals, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mn, err := RollingMin(vals, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(mx[2], 4) || !almostEqual(mx[3], 4) || !almostEqual(mx[4], 5) {
		t.Fatalf("unexpected rolling max tail: %v", mx[2:])
	}
	if !almostEqual(mn[2], 1) || !almostEqual(mn[3], 1) || !almostEqual(mn[4], 1) {
		t.Fatalf("unexpected rolling min tail: %v", mn[2:])
	}
}

func TestStdDevIsSample(t *testing.T) {
	// Sample std dev of {2, 4, 6} is 2, population would be sqrt(8/3).
	out, err := StdDev([]float64{2, 4, 6}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(out[2], 2) {
		t.Fatalf("stddev = %v, want 2", out[2])
	}
}

func TestShiftForward(t *testing.T) {
	out := ShiftForward([]float64{1, 2, 3, 4}, 2)
	if !math.IsNaN(out[0]) || !math.IsNaN(out[1]) {
		t.Fatalf("expected NaN head, got %v", out[:2])
	}
	if !almostEqual(out[2], 1) || !almostEqual(out[3], 2) {
		t.Fatalf("unexpected shifted values: %v", out[2:])
	}
}

func TestPercentileRankStrictlyBelow(t *testing.T) {
	window := []float64{1, 2, 3, 4, 5}
	pct, valid := PercentileRank(window, 3)
	if valid != 5 {
		t.Fatalf("valid = %d, want 5", valid)
	}
	// Only 1 and 2 are strictly below 3.
	if !almostEqual(pct, 40) {
		t.Fatalf("pct = %v, want 40", pct)
	}
}

func TestPercentileRankSkipsNaN(t *testing.T) {
	window := []float64{math.NaN(), 1, math.NaN(), 2, 10}
	pct, valid := PercentileRank(window, 5)
	if valid != 3 {
		t.Fatalf("valid = %d, want 3", valid)
	}
	if !almostEqual(pct, 200.0/3) {
		t.Fatalf("pct = %v, want %v", pct, 200.0/3)
	}
}

func TestMeanTail(t *testing.T) {
	got := MeanTail([]float64{math.NaN(), 1, 2, 3}, 3)
	if !almostEqual(got, 2) {
		t.Fatalf("mean tail = %v, want 2", got)
	}
	if !math.IsNaN(MeanTail([]float64{math.NaN(), math.NaN()}, 2)) {
		t.Fatalf("expected NaN for all-NaN tail")
	}
}

func TestCrossedAbove(t *testing.T) {
	fast := []float64{1, 1, 1, 2}
	slow := []float64{1.5, 1.5, 1.5, 1.5}
	if !CrossedAbove(fast, slow, 5) {
		t.Fatalf("expected cross detected")
	}
	if CrossedAbove(slow, fast, 5) {
		t.Fatalf("unexpected reverse cross")
	}
	// Cross outside the lookback window is not reported.
	fast2 := []float64{1, 2, 2, 2, 2, 2, 2, 2}
	slow2 := []float64{1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5, 1.5}
	if CrossedAbove(fast2, slow2, 5) {
		t.Fatalf("cross outside lookback should not count")
	}
}

func TestCloudRequiresSpanBPeriod(t *testing.T) {
	s := seriesFromCloses(make([]float64, SpanBPeriod-1))
	if _, err := Cloud(s); !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestCloudProjectionAlignment(t *testing.T) {
	closes := make([]float64, 100)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	s := seriesFromCloses(closes)
	cs, err := Cloud(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Span lines are forward-shifted: the first SpanB value derived at bar
	// SpanBPeriod-1 lands Displacement positions later.
	first := SpanBPeriod - 1 + Displacement
	if !math.IsNaN(cs.SpanB[first-1]) {
		t.Fatalf("expected NaN before projection lands")
	}
	if math.IsNaN(cs.SpanB[first]) {
		t.Fatalf("expected SpanB formed at index %d", first)
	}
	if math.IsNaN(cs.Thickness[first]) {
		t.Fatalf("expected thickness formed at index %d", first)
	}
}

func TestBollingerBandsFormed(t *testing.T) {
	closes := make([]float64, 40)
	vols := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 + math.Sin(float64(i))
		vols[i] = 1000
	}
	bs, err := Bollinger(closes, vols)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur := len(closes) - 1
	if math.IsNaN(bs.Upper[cur]) || math.IsNaN(bs.Lower[cur]) {
		t.Fatalf("bands not formed at tail")
	}
	if bs.Upper[cur] <= bs.Lower[cur] {
		t.Fatalf("upper %v not above lower %v", bs.Upper[cur], bs.Lower[cur])
	}
	if !almostEqual(bs.VolumeRatio[cur], 1) {
		t.Fatalf("flat volume ratio = %v, want 1", bs.VolumeRatio[cur])
	}
	if math.IsNaN(bs.Bandwidth[BollingerPeriod-2]) == false {
		t.Fatalf("expected NaN bandwidth during warm-up")
	}
}

func TestMovingAveragesDisparity(t *testing.T) {
	closes := make([]float64, 130)
	for i := range closes {
		closes[i] = 100
	}
	mas, err := MovingAverages(closes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cur := len(closes) - 1
	if !almostEqual(mas.MA5[cur], 100) || !almostEqual(mas.MA120[cur], 100) {
		t.Fatalf("flat series averages should be 100")
	}
	if !almostEqual(mas.Disparity[cur], 0) {
		t.Fatalf("flat series disparity = %v, want 0", mas.Disparity[cur])
	}
}
