package strategies

import (
	"errors"
	"math/rand"
	"testing"

	"EquityScout/internal/domain/models"
)

func TestMAAlignmentInsufficientHistory(t *testing.T) {
	s := NewMAAlignment()
	_, err := s.Analyze(trendingSeries(s.MinBars()-1, 100, 1), "TST", "", "US")
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestMAAlignmentSteadyUptrend(t *testing.T) {
	s := NewMAAlignment()
	sig, err := s.Analyze(trendingSeries(140, 50, 2), "UPT", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.MAAlignment
	if d == nil {
		t.Fatalf("missing detail")
	}
	if d.AlignmentCount != 4 || !d.FullAlignment {
		t.Fatalf("steady uptrend should fully align, got count %d", d.AlignmentCount)
	}
	if d.PartialAlignment {
		t.Fatalf("partial flag must be exclusive with full alignment")
	}
	if d.ShortCross || d.MidCross || d.LongCross {
		t.Fatalf("long-established trend has no recent crosses: %+v", d)
	}
	// Closes 50..328 by 2: disparity vs MA20 sits in the optimal 5-15%% band.
	if !d.DisparityOptimal || d.Overheated {
		t.Fatalf("disparity %v should be optimal", d.Disparity)
	}
	if sig.Score != 50 {
		t.Fatalf("score = %d, want 50 (40 alignment + 10 disparity)", sig.Score)
	}
	if !sig.Perfect {
		t.Fatalf("full alignment is the perfect condition")
	}
}

func TestMAAlignmentDowntrendScoresZero(t *testing.T) {
	s := NewMAAlignment()
	sig, err := s.Analyze(trendingSeries(140, 400, -1), "DWN", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.MAAlignment
	if d.AlignmentCount != 0 {
		t.Fatalf("downtrend alignment count = %d, want 0", d.AlignmentCount)
	}
	if sig.Score != 0 {
		t.Fatalf("score = %d, want 0", sig.Score)
	}
	if sig.Perfect {
		t.Fatalf("downtrend must not be perfect")
	}
}

func TestMAAlignmentOverheatedPenalty(t *testing.T) {
	// Steady uptrend with a 40% gap on the final bar: still fully aligned
	// but far above the MA20.
	closes := make([]float64, 140)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	closes[139] = closes[138] * 1.4
	s := NewMAAlignment()
	sig, err := s.Analyze(barSeries(closes, nil), "HOT", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.MAAlignment
	if !d.Overheated {
		t.Fatalf("disparity %v should be overheated", d.Disparity)
	}
	if d.DisparityOptimal {
		t.Fatalf("overheated overrides optimal")
	}
	if !d.FullAlignment {
		t.Fatalf("gap up keeps full alignment")
	}
	if sig.Score != 20 {
		t.Fatalf("score = %d, want 20 (40 alignment - 20 overheated)", sig.Score)
	}
}

func TestMAAlignmentScoreBounds(t *testing.T) {
	s := NewMAAlignment()
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 10_000; i++ {
		sig, err := s.Analyze(randomSeries(r, 130+r.Intn(80)), "RND", "", "US")
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				continue
			}
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		if sig.Score < -100 || sig.Score > 95 {
			t.Fatalf("trial %d: score %d out of range", i, sig.Score)
		}
		d := sig.MAAlignment
		if d.FullAlignment && d.PartialAlignment {
			t.Fatalf("trial %d: full and partial flags both set", i)
		}
		if d.Overheated && d.DisparityOptimal {
			t.Fatalf("trial %d: overheated and optimal both set", i)
		}
	}
}
