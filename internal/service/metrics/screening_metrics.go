package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	domrepo "EquityScout/internal/domain/repository"
)

var (
	once sync.Once

	ScreeningRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equityscout",
			Subsystem: "screening",
			Name:      "runs_total",
			Help:      "Screening runs by market",
		},
		[]string{"market"},
	)

	TickersScanned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equityscout",
			Subsystem: "screening",
			Name:      "tickers_scanned_total",
			Help:      "Tickers scanned by market",
		},
		[]string{"market"},
	)

	TickersSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equityscout",
			Subsystem: "screening",
			Name:      "tickers_skipped_total",
			Help:      "Skipped tickers by reason",
		},
		[]string{"reason"},
	)

	StrategySignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "equityscout",
			Subsystem: "screening",
			Name:      "strategy_signals_total",
			Help:      "Signals at or above the met threshold by strategy",
		},
		[]string{"strategy"},
	)

	RunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "equityscout",
			Subsystem: "screening",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full screening run by market",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"market"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ScreeningRuns, TickersScanned, TickersSkipped, StrategySignals, RunDuration)
	})
}

// Recorder implements the domain metrics contract over the registered
// collectors.
type Recorder struct{}

func NewRecorder() domrepo.Metrics {
	Register()
	return &Recorder{}
}

func (r *Recorder) RecordRun(market string)           { ScreeningRuns.WithLabelValues(market).Inc() }
func (r *Recorder) RecordTickerScanned(market string) { TickersScanned.WithLabelValues(market).Inc() }
func (r *Recorder) RecordSkip(reason string)          { TickersSkipped.WithLabelValues(reason).Inc() }
func (r *Recorder) RecordSignal(strategy string)      { StrategySignals.WithLabelValues(strategy).Inc() }
func (r *Recorder) RecordRunDuration(market string, seconds float64) {
	RunDuration.WithLabelValues(market).Observe(seconds)
}
