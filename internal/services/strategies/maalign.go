package strategies

import (
	"fmt"
	"math"

	"EquityScout/internal/domain/models"
	"EquityScout/internal/services/indicators"
)

// MAAlignment scores the short-to-long ordering of moving averages, recent
// golden crosses between adjacent pairs, and price disparity from the MA20.
type MAAlignment struct{}

const (
	alignmentMinBars  = 130 // MA120 plus settle-in margin
	crossLookback     = 5
	disparityOptimalLo = 5.0
	disparityOptimalHi = 15.0
	alignmentScoreCap = 95
)

func NewMAAlignment() *MAAlignment { return &MAAlignment{} }

func (s *MAAlignment) Name() string { return StrategyMAAlignment }

func (s *MAAlignment) MinBars() int { return alignmentMinBars }

func (s *MAAlignment) Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error) {
	if len(series) < s.MinBars() {
		return nil, fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, s.Name(), s.MinBars(), len(series))
	}

	mas, err := indicators.MovingAverages(series.Closes())
	if err != nil {
		return nil, err
	}

	cur := len(series) - 1
	price := series[cur].Close
	ma5, ma20, ma60, ma120 := mas.MA5[cur], mas.MA20[cur], mas.MA60[cur], mas.MA120[cur]
	if math.IsNaN(ma120) {
		return nil, fmt.Errorf("%w: MA120 not formed for %s", models.ErrInsufficientHistory, ticker)
	}

	count := 0
	for _, ok := range []bool{price > ma5, ma5 > ma20, ma20 > ma60, ma60 > ma120} {
		if ok {
			count++
		}
	}

	d := &models.MAAlignmentDetail{
		MA5:              ma5,
		MA20:             ma20,
		MA60:             ma60,
		MA120:            ma120,
		Disparity:        mas.Disparity[cur],
		AlignmentCount:   count,
		FullAlignment:    count == 4,
		PartialAlignment: count == 3,
		ShortCross:       indicators.CrossedAbove(mas.MA5, mas.MA20, crossLookback),
		MidCross:         indicators.CrossedAbove(mas.MA20, mas.MA60, crossLookback),
		LongCross:        indicators.CrossedAbove(mas.MA60, mas.MA120, crossLookback),
		Overheated:       mas.Disparity[cur] > disparityOptimalHi,
	}
	d.DisparityOptimal = !d.Overheated &&
		d.Disparity >= disparityOptimalLo && d.Disparity <= disparityOptimalHi

	score := 0
	if d.FullAlignment {
		score += 40
	} else if d.PartialAlignment {
		score += 25
	}
	if d.ShortCross {
		score += 10
	}
	if d.MidCross {
		score += 15
	}
	if d.LongCross {
		score += 20
	}
	// Disparity bands are range-exclusive: overheated overrides optimal.
	if d.Overheated {
		score -= 20
	} else if d.DisparityOptimal {
		score += 10
	}
	score = clamp(score, -100, alignmentScoreCap)

	return &models.StrategySignal{
		Ticker:      ticker,
		Name:        name,
		Market:      market,
		Strategy:    s.Name(),
		Score:       score,
		Perfect:     d.FullAlignment,
		MAAlignment: d,
	}, nil
}
