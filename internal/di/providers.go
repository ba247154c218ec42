package di

import (
	"context"
	"fmt"
	"time"

	"EquityScout/internal/domain/repository"
	"EquityScout/internal/handler/api"
	internalrepo "EquityScout/internal/repository"
	"EquityScout/internal/scheduler"
	icache "EquityScout/internal/service/cache"
	imetrics "EquityScout/internal/service/metrics"
	"EquityScout/internal/services/fundamental"
	"EquityScout/internal/services/strategies"
	"EquityScout/internal/usecase"
	pkgch "EquityScout/pkg/clickhouse"
	"EquityScout/pkg/config"
	xhttp "EquityScout/pkg/http"
	pkgkafka "EquityScout/pkg/kafka"
	applogger "EquityScout/pkg/logger"
	"EquityScout/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	format := "json"
	if cfg.Environment == "development" {
		format = "console"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMetrics creates the Prometheus screening recorder.
func ProvideMetrics() repository.Metrics {
	return imetrics.NewRecorder()
}

// ProvideBarStore creates the ClickHouse bar store.
func ProvideBarStore(chClient *pkgch.Client, cfg *config.Config) repository.BarStore {
	return internalrepo.NewClickHouseBarStore(chClient.DB(), cfg.ClickHouse.BarsTable)
}

// ProvideUniverse creates the universe provider with a byte-cache in front,
// Redis-backed when enabled so replicas share the listings snapshot.
func ProvideUniverse(chClient *pkgch.Client, cfg *config.Config) repository.UniverseProvider {
	source := internalrepo.NewClickHouseUniverse(chClient.DB(), cfg.ClickHouse.ListingsTable)
	var c icache.BytesCache = icache.NewTTLCache()
	if cfg.Redis.Enabled {
		c = icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return internalrepo.NewCachedUniverse(source, c, cfg.Screening.UniverseTTL)
}

// ProvideResultStore creates the ClickHouse result store.
func ProvideResultStore(chClient *pkgch.Client, cfg *config.Config) repository.ResultStore {
	return internalrepo.NewClickHouseResultStore(chClient.DB(), cfg.ClickHouse.ResultsTable)
}

// ProvideRegistry creates the strategy registry.
func ProvideRegistry() *strategies.Registry {
	return strategies.NewRegistry()
}

// ProvideScreener assembles the screening orchestrator.
func ProvideScreener(
	bars repository.BarStore,
	universe repository.UniverseProvider,
	registry *strategies.Registry,
	metrics repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Screener {
	sc := usecase.DefaultScreenerConfig()
	if cfg.Screening.LookbackDays > 0 {
		sc.LookbackDays = cfg.Screening.LookbackDays
	}
	if cfg.Screening.MaxWorkers > 0 {
		sc.MaxWorkers = cfg.Screening.MaxWorkers
	}
	if cfg.Screening.LiquidityDays > 0 {
		sc.LiquidityDays = cfg.Screening.LiquidityDays
	}
	if cfg.Screening.MinValueUS > 0 {
		sc.MinTradingValue["US"] = cfg.Screening.MinValueUS
	}
	if cfg.Screening.MinValueKR > 0 {
		sc.MinTradingValue["KR"] = cfg.Screening.MinValueKR
	}

	s := usecase.NewScreener(bars, universe, registry, sc)
	s.SetMetrics(metrics)
	s.SetLogger(logger)
	if cfg.Fundamental.Enabled {
		s.SetFundamentalEngine(fundamental.NewHTTPEngine(
			cfg.Fundamental.ServiceURL,
			cfg.Fundamental.Timeout,
			cfg.Fundamental.Attempts,
		))
	}
	return s
}

// ProvideHistoryBrowser creates the history query usecase.
func ProvideHistoryBrowser(store repository.ResultStore) *usecase.HistoryBrowser {
	return usecase.NewHistoryBrowser(store)
}

// ProvideHTTPHandler creates the Echo screening handler.
func ProvideHTTPHandler(
	logger *applogger.Logger,
	screener *usecase.Screener,
	history *usecase.HistoryBrowser,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewScreeningEchoHandler(logger, screener, history,
		cfg.Screening.ResultCacheTTL, cfg.Screening.RequestsPerMin)
}

// ProvideScheduler creates the daily screening scheduler.
func ProvideScheduler(
	screener *usecase.Screener,
	store repository.ResultStore,
	logger *applogger.Logger,
	cfg *config.Config,
) *scheduler.Scheduler {
	s := scheduler.New(screener, store, logger)
	if cfg.Screening.DailyMarket != "" {
		s.SetMarket(repository.NormalizeMarket(cfg.Screening.DailyMarket))
	}
	return s
}

// ProvideApp creates the application server. The Kafka publisher is wired
// here rather than through a provider so a disabled broker stays nil.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	chClient *pkgch.Client,
	store repository.ResultStore,
	sched *scheduler.Scheduler,
	handler xhttp.Handler,
) (*server.App, error) {
	app := server.New(cfg, logger, chClient, store, sched, handler)

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
			pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
			pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
			pkgkafka.WithHashByKey(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		app.SetPublisher(internalrepo.NewKafkaResultPublisher(producer, cfg.Kafka.Topic))

		if cfg.Kafka.ErrorLogTopic != "" {
			logger.AddCollector(&applogger.CollectionConfig{
				TimeInterval:   30 * time.Second,
				CountThreshold: 100,
				Topic:          cfg.Kafka.ErrorLogTopic,
				Publisher:      logPublisher{producer},
			})
		}
	}

	return app, nil
}

// logPublisher adapts the Kafka producer to the log collector's publisher.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (p logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}
