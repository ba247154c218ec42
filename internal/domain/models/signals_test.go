package models

import "testing"

func TestTierForScoreBoundaries(t *testing.T) {
	cases := []struct {
		score int
		want  SignalTier
	}{
		{100, TierStrongBuy},
		{80, TierStrongBuy},
		{79, TierBuy},
		{50, TierBuy},
		{49, TierWeakBuy},
		{20, TierWeakBuy},
		{19, TierNeutral},
		{0, TierNeutral},
		{-20, TierNeutral},
		{-21, TierWeakSell},
		{-50, TierWeakSell},
		{-51, TierSell},
		{-80, TierSell},
		{-81, TierStrongSell},
		{-100, TierStrongSell},
	}
	for _, c := range cases {
		if got := TierForScore(c.score); got != c.want {
			t.Fatalf("TierForScore(%d) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestAvgTradingValue(t *testing.T) {
	s := PriceSeries{
		{Close: 10, Volume: 100},
		{Close: 20, Volume: 100},
		{Close: 30, Volume: 100},
	}
	// Trailing 2 bars: (2000 + 3000) / 2.
	if got := s.AvgTradingValue(2); got != 2500 {
		t.Fatalf("avg trading value = %v, want 2500", got)
	}
	// Window longer than the series uses everything.
	if got := s.AvgTradingValue(10); got != 2000 {
		t.Fatalf("avg trading value = %v, want 2000", got)
	}
	if got := (PriceSeries{}).AvgTradingValue(5); got != 0 {
		t.Fatalf("empty series = %v, want 0", got)
	}
}

func TestCombinedSignalStrategyScore(t *testing.T) {
	c := &CombinedSignal{Signals: []*StrategySignal{
		{Strategy: "squeeze", Score: 55},
		{Strategy: "cloud_trend", Score: 70},
	}}
	if got := c.StrategyScore("cloud_trend"); got != 70 {
		t.Fatalf("score = %d, want 70", got)
	}
	if got := c.StrategyScore("cup_handle"); got != 0 {
		t.Fatalf("missing strategy score = %d, want 0", got)
	}
}
