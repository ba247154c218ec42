// Package indicators turns price-bar series into derived numeric series.
// All transforms are pure: output slices are aligned by index to the input
// series, with math.NaN() in warm-up positions where a window is not yet
// full. Projections are index shifts, not date shifts.
package indicators

import (
	"fmt"
	"math"

	"EquityScout/internal/domain/models"
)

// Displacement is the forward/backward projection used by the cloud lines.
const Displacement = 26

const (
	ConversionPeriod = 9
	BasePeriod       = 26
	SpanBPeriod      = 52

	BollingerPeriod = 20
	BollingerStd    = 2.0

	MAShort  = 5
	MAMid    = 20
	MALong   = 60
	MATrend  = 120
)

// SMA returns the simple moving average over period.
func SMA(vals []float64, period int) ([]float64, error) {
	if err := require(len(vals), period); err != nil {
		return nil, err
	}
	out := nanSlice(len(vals))
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out, nil
}

// RollingMax returns the windowed maximum over period.
func RollingMax(vals []float64, period int) ([]float64, error) {
	if err := require(len(vals), period); err != nil {
		return nil, err
	}
	out := nanSlice(len(vals))
	for i := period - 1; i < len(vals); i++ {
		m := vals[i-period+1]
		for _, v := range vals[i-period+2 : i+1] {
			if v > m {
				m = v
			}
		}
		out[i] = m
	}
	return out, nil
}

// RollingMin returns the windowed minimum over period.
func RollingMin(vals []float64, period int) ([]float64, error) {
	if err := require(len(vals), period); err != nil {
		return nil, err
	}
	out := nanSlice(len(vals))
	for i := period - 1; i < len(vals); i++ {
		m := vals[i-period+1]
		for _, v := range vals[i-period+2 : i+1] {
			if v < m {
				m = v
			}
		}
		out[i] = m
	}
	return out, nil
}

// StdDev returns the windowed sample standard deviation over period.
func StdDev(vals []float64, period int) ([]float64, error) {
	if err := require(len(vals), period); err != nil {
		return nil, err
	}
	out := nanSlice(len(vals))
	for i := period - 1; i < len(vals); i++ {
		win := vals[i-period+1 : i+1]
		mean := 0.0
		for _, v := range win {
			mean += v
		}
		mean /= float64(period)
		ss := 0.0
		for _, v := range win {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out, nil
}

// ShiftForward moves values period positions later in the series; the value
// derived from bar t lands at index t+period. Tail values that would fall
// past the series end are dropped.
func ShiftForward(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	for i := period; i < len(vals); i++ {
		out[i] = vals[i-period]
	}
	return out
}

// CloudSet holds the trend-cloud lines, index-aligned to the source series.
type CloudSet struct {
	Conversion  []float64
	Base        []float64
	SpanA       []float64 // projected forward by Displacement
	SpanB       []float64 // projected forward by Displacement
	CloudTop    []float64
	CloudBottom []float64
	Thickness   []float64
}

// Cloud computes the full trend-cloud line set. Requires SpanBPeriod bars.
func Cloud(series models.PriceSeries) (*CloudSet, error) {
	highs, lows := series.Highs(), series.Lows()

	h9, err := RollingMax(highs, ConversionPeriod)
	if err != nil {
		return nil, err
	}
	l9, _ := RollingMin(lows, ConversionPeriod)

	h26, err := RollingMax(highs, BasePeriod)
	if err != nil {
		return nil, err
	}
	l26, _ := RollingMin(lows, BasePeriod)

	h52, err := RollingMax(highs, SpanBPeriod)
	if err != nil {
		return nil, err
	}
	l52, _ := RollingMin(lows, SpanBPeriod)

	n := len(series)
	cs := &CloudSet{
		Conversion:  make([]float64, n),
		Base:        make([]float64, n),
		CloudTop:    nanSlice(n),
		CloudBottom: nanSlice(n),
		Thickness:   nanSlice(n),
	}

	rawA := make([]float64, n)
	rawB := make([]float64, n)
	for i := 0; i < n; i++ {
		cs.Conversion[i] = (h9[i] + l9[i]) / 2
		cs.Base[i] = (h26[i] + l26[i]) / 2
		rawA[i] = (cs.Conversion[i] + cs.Base[i]) / 2
		rawB[i] = (h52[i] + l52[i]) / 2
	}
	cs.SpanA = ShiftForward(rawA, Displacement)
	cs.SpanB = ShiftForward(rawB, Displacement)

	for i := 0; i < n; i++ {
		a, b := cs.SpanA[i], cs.SpanB[i]
		if math.IsNaN(a) || math.IsNaN(b) {
			continue
		}
		cs.CloudTop[i] = math.Max(a, b)
		cs.CloudBottom[i] = math.Min(a, b)
		cs.Thickness[i] = math.Abs(a - b)
	}
	return cs, nil
}

// BollingerSet holds band lines and derived volatility metrics.
type BollingerSet struct {
	Middle      []float64
	Upper       []float64
	Lower       []float64
	Bandwidth   []float64 // (upper-lower)/middle * 100
	PercentB    []float64 // (close-lower)/(upper-lower)
	VolumeMA    []float64
	VolumeRatio []float64
}

// Bollinger computes 20-period bands with 2 standard deviations, plus the
// normalized band width, %B, and volume ratio against the 20-period volume
// average. Requires BollingerPeriod bars.
func Bollinger(closes, volumes []float64) (*BollingerSet, error) {
	mid, err := SMA(closes, BollingerPeriod)
	if err != nil {
		return nil, err
	}
	sd, _ := StdDev(closes, BollingerPeriod)
	volMA, _ := SMA(volumes, BollingerPeriod)

	n := len(closes)
	bs := &BollingerSet{
		Middle:      mid,
		Upper:       nanSlice(n),
		Lower:       nanSlice(n),
		Bandwidth:   nanSlice(n),
		PercentB:    nanSlice(n),
		VolumeMA:    volMA,
		VolumeRatio: nanSlice(n),
	}
	for i := 0; i < n; i++ {
		if math.IsNaN(mid[i]) {
			continue
		}
		bs.Upper[i] = mid[i] + BollingerStd*sd[i]
		bs.Lower[i] = mid[i] - BollingerStd*sd[i]
		if mid[i] != 0 {
			bs.Bandwidth[i] = (bs.Upper[i] - bs.Lower[i]) / mid[i] * 100
		}
		if spread := bs.Upper[i] - bs.Lower[i]; spread != 0 {
			bs.PercentB[i] = (closes[i] - bs.Lower[i]) / spread
		}
		if !math.IsNaN(volMA[i]) && volMA[i] != 0 {
			bs.VolumeRatio[i] = volumes[i] / volMA[i]
		}
	}
	return bs, nil
}

// MASet holds the 5/20/60/120 moving averages and the 20-period disparity.
type MASet struct {
	MA5       []float64
	MA20      []float64
	MA60      []float64
	MA120     []float64
	Disparity []float64 // (close-MA20)/MA20 * 100
}

// MovingAverages computes the full average set. Requires MATrend bars.
func MovingAverages(closes []float64) (*MASet, error) {
	ma120, err := SMA(closes, MATrend)
	if err != nil {
		return nil, err
	}
	ma5, _ := SMA(closes, MAShort)
	ma20, _ := SMA(closes, MAMid)
	ma60, _ := SMA(closes, MALong)

	disp := nanSlice(len(closes))
	for i, m := range ma20 {
		if !math.IsNaN(m) && m != 0 {
			disp[i] = (closes[i] - m) / m * 100
		}
	}
	return &MASet{MA5: ma5, MA20: ma20, MA60: ma60, MA120: ma120, Disparity: disp}, nil
}

// PercentileRank returns the percentage of non-NaN window values strictly
// below v. The window's valid-value count is returned alongside so callers
// can gate on sparse windows.
func PercentileRank(window []float64, v float64) (float64, int) {
	below, valid := 0, 0
	for _, w := range window {
		if math.IsNaN(w) {
			continue
		}
		valid++
		if w < v {
			below++
		}
	}
	if valid == 0 {
		return 0, 0
	}
	return float64(below) / float64(valid) * 100, valid
}

// Tail returns the last n elements of vals (or all of them when shorter).
func Tail(vals []float64, n int) []float64 {
	if n >= len(vals) {
		return vals
	}
	return vals[len(vals)-n:]
}

// MeanTail returns the mean of the trailing n non-NaN values.
func MeanTail(vals []float64, n int) float64 {
	t := Tail(vals, n)
	sum, cnt := 0.0, 0
	for _, v := range t {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		cnt++
	}
	if cnt == 0 {
		return math.NaN()
	}
	return sum / float64(cnt)
}

// CrossedAbove reports whether fast crossed from at-or-below to above slow
// within the trailing lookback bars. NaN positions are skipped.
func CrossedAbove(fast, slow []float64, lookback int) bool {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	for i := 1; i <= lookback && n-1-i >= 0; i++ {
		cur, prev := n-i, n-i-1
		if math.IsNaN(fast[cur]) || math.IsNaN(slow[cur]) ||
			math.IsNaN(fast[prev]) || math.IsNaN(slow[prev]) {
			continue
		}
		if fast[prev] <= slow[prev] && fast[cur] > slow[cur] {
			return true
		}
	}
	return false
}

func require(have, want int) error {
	if have < want {
		return fmt.Errorf("%w: have %d bars, need %d", models.ErrInsufficientHistory, have, want)
	}
	return nil
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
