package strategies

import (
	"fmt"
	"math"

	"EquityScout/internal/domain/models"
	"EquityScout/internal/services/indicators"
)

// CloudTrend scores the ichimoku-style trend cloud: price position against
// the cloud, conversion/base ordering, the lagging-span comparison, cloud
// color, and recent breakout/cross bonuses.
type CloudTrend struct{}

const (
	cloudLookback     = 5
	thinCloudWindow   = 10
	tradingValueDays  = 5
)

func NewCloudTrend() *CloudTrend { return &CloudTrend{} }

func (s *CloudTrend) Name() string { return StrategyCloudTrend }

func (s *CloudTrend) MinBars() int {
	return indicators.SpanBPeriod + indicators.Displacement
}

func (s *CloudTrend) Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error) {
	if len(series) < s.MinBars() {
		return nil, fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, s.Name(), s.MinBars(), len(series))
	}

	cloud, err := indicators.Cloud(series)
	if err != nil {
		return nil, err
	}

	n := len(series)
	cur := n - 1
	price := series[cur].Close
	priceBack := series[cur-indicators.Displacement].Close

	top, bottom := cloud.CloudTop[cur], cloud.CloudBottom[cur]
	conv, base := cloud.Conversion[cur], cloud.Base[cur]
	spanA, spanB := cloud.SpanA[cur], cloud.SpanB[cur]
	if math.IsNaN(top) || math.IsNaN(conv) || math.IsNaN(base) {
		return nil, fmt.Errorf("%w: cloud lines not formed for %s", models.ErrInsufficientHistory, ticker)
	}

	d := &models.CloudTrendDetail{
		PriceAboveCloud:     price > top,
		ConversionAboveBase: conv > base,
		LaggingAbovePrice:   price > priceBack,
		CloudBullish:        spanA > spanB,
		CloudBreakout:       detectCloudBreakout(series, cloud, cloudLookback),
		GoldenCross:         indicators.CrossedAbove(cloud.Conversion, cloud.Base, cloudLookback),
		Conversion:          conv,
		Base:                base,
		SpanA:               spanA,
		SpanB:               spanB,
		AvgTradingValue:     series.AvgTradingValue(tradingValueDays),
	}

	avgThickness := indicators.MeanTail(cloud.Thickness, thinCloudWindow)
	if !math.IsNaN(avgThickness) {
		d.ThinCloud = cloud.Thickness[cur] < avgThickness*0.5
	}

	score := 0
	switch {
	case d.PriceAboveCloud:
		score += 30
	case price > bottom:
		score += 10 // inside the cloud
	default:
		score -= 20
	}
	if d.ConversionAboveBase {
		score += 20
	} else {
		score -= 10
	}
	if d.LaggingAbovePrice {
		score += 20
	} else {
		score -= 10
	}
	if d.CloudBullish {
		score += 10
	} else {
		score -= 5
	}
	if d.CloudBreakout {
		score += 15
	}
	if d.GoldenCross {
		score += 10
	}
	score = clamp(score, -100, 100)
	d.Tier = models.TierForScore(score)

	return &models.StrategySignal{
		Ticker:     ticker,
		Name:       name,
		Market:     market,
		Strategy:   s.Name(),
		Score:      score,
		Perfect:    d.PriceAboveCloud && d.ConversionAboveBase && d.LaggingAbovePrice,
		CloudTrend: d,
	}, nil
}

// detectCloudBreakout reports a close crossing from below or inside the
// cloud to above its top within the trailing lookback bars.
func detectCloudBreakout(series models.PriceSeries, cloud *indicators.CloudSet, lookback int) bool {
	n := len(series)
	for i := 1; i <= lookback && n-1-i >= 0; i++ {
		cur, prev := n-i, n-i-1
		if math.IsNaN(cloud.CloudTop[cur]) || math.IsNaN(cloud.CloudTop[prev]) {
			continue
		}
		if series[prev].Close <= cloud.CloudTop[prev] && series[cur].Close > cloud.CloudTop[cur] {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
