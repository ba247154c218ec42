package strategies

import (
	"errors"
	"math/rand"
	"testing"

	"EquityScout/internal/domain/models"
)

// cupSeries builds a 150-bar cup: rim at 100 (bar 20), trough at 75
// (bar 60, 25% deep), recovery to the right rim at 100 (bar 100), then an
// 8% handle pullback to 92 and a climb toward finalClose.
func cupSeries(finalClose, lastVolume float64) models.PriceSeries {
	closes := make([]float64, 150)
	vols := make([]float64, 150)
	for i := range vols {
		vols[i] = 1_000_000
	}
	for i := 0; i < 20; i++ {
		closes[i] = 90 + float64(i)*0.5
	}
	closes[20] = 100
	for i := 21; i <= 60; i++ {
		closes[i] = 100 - float64(i-20)*0.625
	}
	for i := 61; i <= 100; i++ {
		closes[i] = 75 + float64(i-60)*0.625
	}
	for i := 101; i <= 115; i++ {
		closes[i] = 100 - float64(i-100)*(8.0/15)
	}
	for i := 116; i < 149; i++ {
		closes[i] = 92 + float64(i-115)*(finalClose-92)/34
	}
	closes[149] = finalClose
	vols[149] = lastVolume
	return barSeries(closes, vols)
}

func TestCupHandleInsufficientHistory(t *testing.T) {
	s := NewCupHandle()
	_, err := s.Analyze(trendingSeries(s.MinBars()-1, 100, 0.5), "TST", "", "US")
	if !errors.Is(err, models.ErrInsufficientHistory) {
		t.Fatalf("expected insufficient history, got %v", err)
	}
}

func TestCupHandleNoPatternIsZeroScore(t *testing.T) {
	s := NewCupHandle()
	sig, err := s.Analyze(trendingSeries(160, 100, 1), "UPT", "", "US")
	if err != nil {
		t.Fatalf("no pattern must not be an error: %v", err)
	}
	if sig.Score != 0 {
		t.Fatalf("score = %d, want 0", sig.Score)
	}
	if sig.CupHandle == nil || sig.CupHandle.CupDetected {
		t.Fatalf("unexpected cup detection: %+v", sig.CupHandle)
	}
}

func TestCupHandleImminentBreakout(t *testing.T) {
	s := NewCupHandle()
	sig, err := s.Analyze(cupSeries(99.5, 2_500_000), "CUP", "Cup Co", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.CupHandle
	if !d.CupDetected {
		t.Fatalf("expected cup detected")
	}
	if d.CupDepthPct < 15 || d.CupDepthPct > 40 {
		t.Fatalf("cup depth %v outside bounds", d.CupDepthPct)
	}
	if !d.HandleDetected {
		t.Fatalf("expected handle detected, depth %v", d.HandleDepthPct)
	}
	if d.BreakoutConfirmed {
		t.Fatalf("close below the rim is not a confirmed breakout")
	}
	if !d.BreakoutImminent {
		t.Fatalf("close at 99%% of the rim should be imminent")
	}
	if !d.VolumeSurge {
		t.Fatalf("expected volume surge, ratio %v", d.VolumeRatio)
	}
	// 25 cup + 15 handle + 15 imminent + 20 volume.
	if sig.Score != 75 {
		t.Fatalf("score = %d, want 75", sig.Score)
	}
	if sig.Perfect {
		t.Fatalf("perfect requires a confirmed breakout")
	}
}

func TestCupHandleConfirmedBreakout(t *testing.T) {
	s := NewCupHandle()
	sig, err := s.Analyze(cupSeries(100.5, 2_500_000), "CUP", "", "US")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d := sig.CupHandle
	if !d.CupDetected || !d.HandleDetected {
		t.Fatalf("expected full pattern: %+v", d)
	}
	if !d.BreakoutConfirmed {
		t.Fatalf("close above the rim should confirm the breakout")
	}
	// Confirmed replaces imminent: 25 + 15 + 25 + 20.
	if sig.Score != 85 {
		t.Fatalf("score = %d, want 85", sig.Score)
	}
	if !sig.Perfect {
		t.Fatalf("handle plus confirmed breakout is the perfect condition")
	}
}

func TestCupHandleScoreBounds(t *testing.T) {
	s := NewCupHandle()
	r := rand.New(rand.NewSource(23))
	for i := 0; i < 10_000; i++ {
		sig, err := s.Analyze(randomSeries(r, 150+r.Intn(100)), "RND", "", "US")
		if err != nil {
			t.Fatalf("trial %d: unexpected error: %v", i, err)
		}
		if sig.Score < 0 || sig.Score > 100 {
			t.Fatalf("trial %d: score %d out of range", i, sig.Score)
		}
		d := sig.CupHandle
		if !d.CupDetected && sig.Score != 0 {
			t.Fatalf("trial %d: score without a cup", i)
		}
		if d.HandleDetected && !d.CupDetected {
			t.Fatalf("trial %d: handle without a cup", i)
		}
		if sig.Perfect && (!d.HandleDetected || !d.BreakoutConfirmed) {
			t.Fatalf("trial %d: perfect without full pattern", i)
		}
	}
}
