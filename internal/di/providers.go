package di

import (
	"context"
	"fmt"
	"time"

	domainrepo "CorrScope/internal/domain/repository"
	"CorrScope/internal/handler/api"
	"CorrScope/internal/handler/web"
	"CorrScope/internal/handler/ws"
	"CorrScope/internal/recorder"
	internalrepo "CorrScope/internal/repository"
	"CorrScope/internal/services/fred"
	"CorrScope/internal/usecase"
	"CorrScope/pkg/cache"
	pkgch "CorrScope/pkg/clickhouse"
	"CorrScope/pkg/config"
	xhttp "CorrScope/pkg/http"
	pkgkafka "CorrScope/pkg/kafka"
	applogger "CorrScope/pkg/logger"
	"CorrScope/pkg/metrics"
	"CorrScope/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domainrepo.Metrics {
	return metrics.New()
}

// ProvideSeriesCache creates the in-process raw series cache.
func ProvideSeriesCache(cfg *config.Config) *cache.MemoryCache {
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Correlations.SeriesCacheSize))
}

// ProvideClickHouseClient creates a ClickHouse client when enabled, nil
// otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideFredMDSource creates the shared FRED-MD dataset reader.
func ProvideFredMDSource(cfg *config.Config) *internalrepo.FredMDSource {
	return internalrepo.NewFredMDSource(cfg.FredPath())
}

// ProvideSeriesLoader assembles the source router: flat files and optional
// ClickHouse for equities, the FRED-MD snapshot with a FRED API fallback for
// macro ids.
func ProvideSeriesLoader(cfg *config.Config, fredMD *internalrepo.FredMDSource, chClient *pkgch.Client, l *applogger.Logger) usecase.SeriesLoader {
	fileSrc := internalrepo.NewFileSeriesSource(cfg.StocksPath())
	fileSrc.SetLogger(l)

	router := internalrepo.NewSourceRouter(fileSrc)
	if chClient != nil {
		router.WithClickHouse(internalrepo.NewClickHouseSeriesSource(chClient, cfg.ClickHouse.Table))
	}

	var macro domainrepo.SeriesSource = fredMD
	if cfg.Fred.APIKey != "" {
		macro = internalrepo.NewFallbackSource(macro, fred.NewClient(fred.Config{
			APIKey:  cfg.Fred.APIKey,
			BaseURL: cfg.Fred.BaseURL,
			Timeout: cfg.Fred.Timeout,
			RPS:     cfg.Fred.RPS,
		}, l))
	}
	router.WithMacro(macro)
	return router
}

// ProvideMetadataStore creates the CSV security catalog, widened with the
// FRED-MD series ids.
func ProvideMetadataStore(cfg *config.Config, fredMD *internalrepo.FredMDSource) domainrepo.MetadataStore {
	return internalrepo.NewFredCatalog(internalrepo.NewCSVMetadataStore(cfg.MetadataPath()), fredMD)
}

// ProvideResultStore creates the on-disk result store, fronted by Redis when
// configured.
func ProvideResultStore(cfg *config.Config, m domainrepo.Metrics) (domainrepo.ResultStore, func() error, error) {
	store, err := internalrepo.NewFileResultStore(cfg.CachePath())
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Redis.Enabled {
		return store, nil, nil
	}

	redisCache, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := cache.NewLayeredCache(redisCache, cache.WithLayeredMemorySize(256))
	return internalrepo.NewCachedResultStore(store, layered, time.Hour, m), layered.Close, nil
}

// ProvideEventPublisher creates the Kafka publisher when enabled, a no-op
// otherwise.
func ProvideEventPublisher(cfg *config.Config) (domainrepo.EventPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopEventPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithWriteTimeout(cfg.Kafka.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaEventPublisher(producer, cfg.Kafka.Topic), nil
}

// ProvideRunRecorder creates the SQLite audit trail when enabled.
func ProvideRunRecorder(cfg *config.Config, l *applogger.Logger) (domainrepo.RunRecorder, error) {
	if !cfg.Recorder.Enabled {
		return recorder.NewNoopRecorder(), nil
	}
	return recorder.NewSQLiteRecorder(cfg.Recorder.Path, l)
}

// ProvideHub creates the websocket event hub.
func ProvideHub(l *applogger.Logger) *ws.Hub {
	return ws.NewHub(l)
}

// ProvideUseCase assembles the correlation orchestrator.
func ProvideUseCase(
	loader usecase.SeriesLoader,
	meta domainrepo.MetadataStore,
	results domainrepo.ResultStore,
	rec domainrepo.RunRecorder,
	pub domainrepo.EventPublisher,
	m domainrepo.Metrics,
	hub *ws.Hub,
	seriesCache *cache.MemoryCache,
	l *applogger.Logger,
) *usecase.CorrelationsUseCase {
	return usecase.NewCorrelationsUseCase(loader, meta, results, rec, pub, m, hub, seriesCache, l)
}

// ProvideRefresher creates the scheduled refresh sweep.
func ProvideRefresher(uc *usecase.CorrelationsUseCase, l *applogger.Logger) *usecase.Refresher {
	return usecase.NewRefresher(uc, l)
}

// ProvideHandler groups all HTTP handlers.
func ProvideHandler(l *applogger.Logger, uc *usecase.CorrelationsUseCase, hub *ws.Hub, chClient *pkgch.Client) xhttp.Handler {
	checks := make([]api.HealthCheck, 0, 1)
	if chClient != nil {
		checks = append(checks, api.HealthCheck{
			Name: "clickhouse",
			Check: func() error {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				return chClient.Health(ctx)
			},
		})
	}
	return xhttp.Handlers{
		api.NewCorrelationsHandler(l, uc, checks...),
		web.NewHandler(),
		hub,
	}
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, l *applogger.Logger, handler xhttp.Handler, refresher *usecase.Refresher) *server.App {
	return server.New(cfg, l, handler, refresher)
}
