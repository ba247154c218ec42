package models

// SignalTier is the discretized buy/sell strength of a score.
type SignalTier string

const (
	TierStrongBuy  SignalTier = "STRONG_BUY"
	TierBuy        SignalTier = "BUY"
	TierWeakBuy    SignalTier = "WEAK_BUY"
	TierNeutral    SignalTier = "NEUTRAL"
	TierWeakSell   SignalTier = "WEAK_SELL"
	TierSell       SignalTier = "SELL"
	TierStrongSell SignalTier = "STRONG_SELL"
)

// TierForScore maps a score to its tier band.
func TierForScore(score int) SignalTier {
	switch {
	case score >= 80:
		return TierStrongBuy
	case score >= 50:
		return TierBuy
	case score >= 20:
		return TierWeakBuy
	case score >= -20:
		return TierNeutral
	case score >= -50:
		return TierWeakSell
	case score >= -80:
		return TierSell
	default:
		return TierStrongSell
	}
}

// StrategySignal is the output of one strategy evaluation for one ticker.
// Exactly one of the detail pointers is set, matching Strategy.
type StrategySignal struct {
	Ticker   string `json:"ticker"`
	Name     string `json:"name,omitempty"`
	Market   string `json:"market"`
	Strategy string `json:"strategy"`
	Score    int    `json:"score"`

	// Perfect marks a fully corroborated signal for strategies that define
	// one (cloud-trend, MA-alignment, cup-and-handle).
	Perfect bool `json:"perfect"`

	CloudTrend  *CloudTrendDetail  `json:"cloud_trend,omitempty"`
	Squeeze     *SqueezeDetail     `json:"squeeze,omitempty"`
	MAAlignment *MAAlignmentDetail `json:"ma_alignment,omitempty"`
	CupHandle   *CupHandleDetail   `json:"cup_handle,omitempty"`
}

// CloudTrendDetail carries the ichimoku-style condition flags and line values.
type CloudTrendDetail struct {
	Tier SignalTier `json:"tier"`

	PriceAboveCloud     bool `json:"price_above_cloud"`
	ConversionAboveBase bool `json:"conversion_above_base"`
	LaggingAbovePrice   bool `json:"lagging_above_price"`
	CloudBullish        bool `json:"cloud_bullish"`
	CloudBreakout       bool `json:"cloud_breakout"`
	GoldenCross         bool `json:"golden_cross"`
	ThinCloud           bool `json:"thin_cloud"`

	Conversion      float64 `json:"conversion"`
	Base            float64 `json:"base"`
	SpanA           float64 `json:"span_a"`
	SpanB           float64 `json:"span_b"`
	AvgTradingValue float64 `json:"avg_trading_value"`
}

// SqueezeDetail carries Bollinger squeeze metrics.
type SqueezeDetail struct {
	Upper               float64 `json:"upper"`
	Middle              float64 `json:"middle"`
	Lower               float64 `json:"lower"`
	Bandwidth           float64 `json:"bandwidth"`
	BandwidthPercentile float64 `json:"bandwidth_percentile"`
	PercentB            float64 `json:"percent_b"`
	VolumeRatio         float64 `json:"volume_ratio"`

	Squeeze         bool `json:"squeeze"`
	StrongSqueeze   bool `json:"strong_squeeze"`
	VolumeSurge     bool `json:"volume_surge"`
	StrongSurge     bool `json:"strong_surge"`
	BreakoutAttempt bool `json:"breakout_attempt"`
}

// MAAlignmentDetail carries moving-average ordering state.
type MAAlignmentDetail struct {
	MA5       float64 `json:"ma5"`
	MA20      float64 `json:"ma20"`
	MA60      float64 `json:"ma60"`
	MA120     float64 `json:"ma120"`
	Disparity float64 `json:"disparity"`

	FullAlignment    bool `json:"full_alignment"`
	PartialAlignment bool `json:"partial_alignment"`
	AlignmentCount   int  `json:"alignment_count"`
	ShortCross       bool `json:"short_cross"`
	MidCross         bool `json:"mid_cross"`
	LongCross        bool `json:"long_cross"`
	DisparityOptimal bool `json:"disparity_optimal"`
	Overheated       bool `json:"overheated"`
}

// CupHandleDetail carries the detected pattern geometry. A zero-score signal
// with CupDetected=false means no pattern was found, which is not an error.
type CupHandleDetail struct {
	CupDetected    bool    `json:"cup_detected"`
	HandleDetected bool    `json:"handle_detected"`
	LeftPeak       float64 `json:"left_peak,omitempty"`
	Trough         float64 `json:"trough,omitempty"`
	RightPeak      float64 `json:"right_peak,omitempty"`
	CupDepthPct    float64 `json:"cup_depth_pct,omitempty"`
	CupDurationBars int    `json:"cup_duration_bars,omitempty"`
	HandleDepthPct float64 `json:"handle_depth_pct,omitempty"`

	BreakoutImminent  bool    `json:"breakout_imminent"`
	BreakoutConfirmed bool    `json:"breakout_confirmed"`
	VolumeRatio       float64 `json:"volume_ratio"`
	VolumeSurge       bool    `json:"volume_surge"`
}

// FundamentalScore is the externally computed per-ticker fundamental result.
type FundamentalScore struct {
	Score    int      `json:"score"`
	Patterns []string `json:"patterns"`
}
