package strategies

import (
	"fmt"
	"math"

	"EquityScout/internal/domain/models"
	"EquityScout/internal/services/indicators"
)

// Squeeze scores Bollinger-band volatility compression: a narrow band width
// relative to its trailing distribution, a volume surge, and price pressing
// the upper band.
type Squeeze struct{}

const (
	squeezeWindow       = 60
	squeezeMinValid     = 30
	squeezePercentile   = 20.0
	strongPercentile    = 10.0
	surgeRatio          = 2.0
	strongSurgeRatio    = 3.0
	breakoutPercentB    = 0.8
	squeezeScoreCap     = 80
)

func NewSqueeze() *Squeeze { return &Squeeze{} }

func (s *Squeeze) Name() string { return StrategySqueeze }

func (s *Squeeze) MinBars() int { return squeezeWindow }

func (s *Squeeze) Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error) {
	if len(series) < s.MinBars() {
		return nil, fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, s.Name(), s.MinBars(), len(series))
	}

	bands, err := indicators.Bollinger(series.Closes(), series.Volumes())
	if err != nil {
		return nil, err
	}

	cur := len(series) - 1
	bw := bands.Bandwidth[cur]
	if math.IsNaN(bands.Middle[cur]) || math.IsNaN(bw) {
		return nil, fmt.Errorf("%w: bands not formed for %s", models.ErrInsufficientHistory, ticker)
	}

	pct, valid := indicators.PercentileRank(indicators.Tail(bands.Bandwidth, squeezeWindow), bw)
	if valid < squeezeMinValid {
		return nil, fmt.Errorf("%w: only %d band-width samples for %s", models.ErrInsufficientHistory, valid, ticker)
	}

	volRatio := bands.VolumeRatio[cur]
	if math.IsNaN(volRatio) {
		volRatio = 0
	}
	pb := bands.PercentB[cur]
	if math.IsNaN(pb) {
		pb = 0.5
	}

	d := &models.SqueezeDetail{
		Upper:               bands.Upper[cur],
		Middle:              bands.Middle[cur],
		Lower:               bands.Lower[cur],
		Bandwidth:           bw,
		BandwidthPercentile: pct,
		PercentB:            pb,
		VolumeRatio:         volRatio,
		StrongSqueeze:       pct <= strongPercentile,
		Squeeze:             pct <= squeezePercentile,
		StrongSurge:         volRatio >= strongSurgeRatio,
		VolumeSurge:         volRatio >= surgeRatio,
		BreakoutAttempt:     pb >= breakoutPercentB,
	}

	// Mutually exclusive pairs: only the stronger condition scores.
	score := 0
	if d.StrongSqueeze {
		score += 35
	} else if d.Squeeze {
		score += 25
	}
	if d.StrongSurge {
		score += 30
	} else if d.VolumeSurge {
		score += 20
	}
	if d.BreakoutAttempt {
		score += 15
	}
	if score > squeezeScoreCap {
		score = squeezeScoreCap
	}

	return &models.StrategySignal{
		Ticker:   ticker,
		Name:     name,
		Market:   market,
		Strategy: s.Name(),
		Score:    score,
		Squeeze:  d,
	}, nil
}
