package strategies

import (
	"fmt"
	"math"

	"EquityScout/internal/domain/models"
	"EquityScout/internal/services/indicators"
)

// CupHandle runs a two-phase geometric search: a U-shaped consolidation
// (cup) between two peaks of comparable height, then a shallow pullback
// (handle) after the right peak. Finding no pattern is not an error; the
// analyzer returns a zero-score signal.
type CupHandle struct{}

const (
	cupMinBars = 150

	cupMinDuration = 60
	cupMaxDuration = 130
	cupMinDepthPct = 15.0
	cupMaxDepthPct = 40.0
	rightPeakMinRatio = 0.90
	rightPeakMaxRatio = 1.10

	handleMinDepthPct = 5.0
	handleMaxDepthPct = 15.0

	breakoutImminentRatio = 0.97

	cupVolumeWindow  = 20
	cupSurgeRatio    = 2.0
	cupScoreCap      = 100
)

type cupGeometry struct {
	leftIdx, troughIdx, rightIdx int
	leftPeak, trough, rightPeak  float64
	depthPct                     float64
	duration                     int
}

func NewCupHandle() *CupHandle { return &CupHandle{} }

func (s *CupHandle) Name() string { return StrategyCupHandle }

func (s *CupHandle) MinBars() int { return cupMinBars }

func (s *CupHandle) Analyze(series models.PriceSeries, ticker, name, market string) (*models.StrategySignal, error) {
	if len(series) < s.MinBars() {
		return nil, fmt.Errorf("%w: %s needs %d bars, have %d", models.ErrInsufficientHistory, s.Name(), s.MinBars(), len(series))
	}

	sig := &models.StrategySignal{
		Ticker:    ticker,
		Name:      name,
		Market:    market,
		Strategy:  s.Name(),
		CupHandle: &models.CupHandleDetail{},
	}

	cup := findCup(series)
	if cup == nil {
		return sig, nil
	}

	price := series.LastClose()
	d := sig.CupHandle
	d.CupDetected = true
	d.LeftPeak = cup.leftPeak
	d.Trough = cup.trough
	d.RightPeak = cup.rightPeak
	d.CupDepthPct = cup.depthPct
	d.CupDurationBars = cup.duration

	if depth, ok := findHandle(series, cup); ok {
		d.HandleDetected = true
		d.HandleDepthPct = depth
	}

	d.BreakoutConfirmed = price >= cup.rightPeak
	d.BreakoutImminent = price >= cup.rightPeak*breakoutImminentRatio

	volumes := series.Volumes()
	volMA := indicators.MeanTail(volumes, cupVolumeWindow)
	if !math.IsNaN(volMA) && volMA > 0 {
		d.VolumeRatio = volumes[len(volumes)-1] / volMA
	}
	d.VolumeSurge = d.VolumeRatio >= cupSurgeRatio

	score := 25 // cup found
	if d.HandleDetected {
		score += 15
	}
	// Breakout bonuses are mutually exclusive: confirmed wins over imminent.
	if d.BreakoutConfirmed {
		score += 25
	} else if d.BreakoutImminent {
		score += 15
	}
	if d.VolumeSurge {
		score += 20
	}
	if score > cupScoreCap {
		score = cupScoreCap
	}

	sig.Score = score
	sig.Perfect = d.HandleDetected && d.BreakoutConfirmed
	return sig, nil
}

// findCup scans the trailing window for the best-formed cup: two peaks
// 60-130 bars apart with a single trough 15-40% below the left peak and a
// right peak within 90-110% of the left. Among candidates the most
// symmetric cup closest to the ideal 25% depth wins.
func findCup(series models.PriceSeries) *cupGeometry {
	n := len(series)
	highs := series.Highs()
	closes := series.Closes()

	searchRange := cupMaxDuration + 20
	if searchRange > n {
		searchRange = n
	}

	var best *cupGeometry
	bestScore := 0.0

	for startOffset := cupMinDuration; startOffset < searchRange; startOffset++ {
		startIdx := n - startOffset - 1
		if startIdx < 0 {
			break
		}

		// Left peak: highest high near the candidate start.
		ls := maxInt(0, startIdx-5)
		le := minInt(n, startIdx+10)
		leftIdx := ls + argMax(highs[ls:le])
		leftPeak := highs[leftIdx]

		maxDur := minInt(startOffset, cupMaxDuration)
		for duration := cupMinDuration; duration <= maxDur; duration++ {
			endIdx := startIdx + duration
			if endIdx >= n {
				continue
			}

			ts := leftIdx + 5
			te := endIdx - 5
			if te <= ts {
				continue
			}
			troughIdx := ts + argMin(closes[ts:te])
			trough := closes[troughIdx]

			depth := (leftPeak - trough) / leftPeak * 100
			if depth < cupMinDepthPct || depth > cupMaxDepthPct {
				continue
			}

			rs := troughIdx + 5
			re := minInt(n, endIdx+5)
			if re <= rs {
				continue
			}
			rightIdx := rs + argMax(highs[rs:re])
			rightPeak := highs[rightIdx]

			ratio := rightPeak / leftPeak
			if ratio < rightPeakMinRatio || ratio > rightPeakMaxRatio {
				continue
			}
			// U shape: the trough must sit well below both rims.
			if trough >= leftPeak*0.9 || trough >= rightPeak*0.9 {
				continue
			}
			// Single bottom: no close dips below the trough anywhere
			// between the peaks.
			if hasCloseBelow(closes[leftIdx+1:rightIdx], trough) {
				continue
			}

			symmetry := 1 - math.Abs(ratio-1.0)
			depthScore := 1 - math.Abs(depth-25)/25
			patternScore := symmetry * depthScore

			if patternScore > bestScore {
				bestScore = patternScore
				best = &cupGeometry{
					leftIdx:   leftIdx,
					troughIdx: troughIdx,
					rightIdx:  rightIdx,
					leftPeak:  leftPeak,
					trough:    trough,
					rightPeak: rightPeak,
					depthPct:  depth,
					duration:  duration,
				}
			}
		}
	}
	return best
}

// findHandle looks for a pullback after the right peak that is 5-15% below
// it and never retraces under the cup trough.
func findHandle(series models.PriceSeries, cup *cupGeometry) (float64, bool) {
	n := len(series)
	if cup.rightIdx >= n-5 {
		return 0, false
	}

	handleLow := math.Inf(1)
	for _, b := range series[cup.rightIdx:] {
		if b.Low < handleLow {
			handleLow = b.Low
		}
	}
	if handleLow <= cup.trough {
		return 0, false
	}

	depth := (cup.rightPeak - handleLow) / cup.rightPeak * 100
	if depth < handleMinDepthPct || depth > handleMaxDepthPct {
		return 0, false
	}
	return depth, true
}

func hasCloseBelow(closes []float64, floor float64) bool {
	for _, c := range closes {
		if c < floor {
			return true
		}
	}
	return false
}

func argMax(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v > vals[best] {
			best = i
		}
	}
	return best
}

func argMin(vals []float64) int {
	best := 0
	for i, v := range vals {
		if v < vals[best] {
			best = i
		}
	}
	return best
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
