package scheduler

import (
	"context"
	"fmt"
	"time"

	domrepo "EquityScout/internal/domain/repository"
	"EquityScout/internal/services/strategies"
	"EquityScout/internal/usecase"
	applogger "EquityScout/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the daily screening job: a full all-strategy pass that is
// persisted and published, independent of any HTTP traffic.
type Scheduler struct {
	cron      *cron.Cron
	screener  *usecase.Screener
	store     domrepo.ResultStore
	publisher domrepo.Publisher // optional
	logger    *applogger.Logger

	market domrepo.Market
}

func New(screener *usecase.Screener, store domrepo.ResultStore, logger *applogger.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		screener: screener,
		store:    store,
		logger:   logger,
		market:   domrepo.MarketAll,
	}
}

// SetPublisher attaches an optional downstream publisher.
func (s *Scheduler) SetPublisher(p domrepo.Publisher) { s.publisher = p }

// SetMarket overrides the market screened by the daily job.
func (s *Scheduler) SetMarket(m domrepo.Market) {
	if domrepo.IsValidMarket(m) {
		s.market = m
	}
}

// Register schedules the daily run. Spec uses the standard 5-field cron
// format, e.g. "0 22 * * 1-5" for 22:00 on weekdays.
func (s *Scheduler) Register(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.dailyRun); err != nil {
		return fmt.Errorf("register daily screening: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() { s.cron.Start() }

func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// dailyRun screens every strategy in any-mode with no score floor beyond
// the tier bands, then persists and publishes whatever surfaced.
func (s *Scheduler) dailyRun() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	p := usecase.RunParams{
		Market:      s.market,
		MinScore:    20,
		Limit:       200,
		Filters:     strategies.NewRegistry().Names(),
		CombineMode: domrepo.CombineAny,
	}
	result, err := s.screener.Run(ctx, p)
	if err != nil {
		s.logger.Error("daily screening failed", applogger.Error(err))
		return
	}

	saved, err := s.store.SaveResult(ctx, result)
	if err != nil {
		s.logger.Error("persist daily screening failed", applogger.Error(err))
		return
	}

	if s.publisher != nil {
		if err := s.publisher.PublishResult(ctx, result); err != nil {
			s.logger.Error("publish daily screening failed", applogger.Error(err))
		}
	}

	s.logger.Info("daily screening complete",
		applogger.String("market", string(s.market)),
		applogger.Int("signals", result.TotalSignals),
		applogger.Int("rows_saved", saved),
	)
}
