package di

import (
	"fmt"
	"os"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/domain/service"
	"FinLiquidity/internal/handler/api"
	internalrepo "FinLiquidity/internal/repository"
	icache "FinLiquidity/internal/service/cache"
	"FinLiquidity/internal/service/coingecko"
	"FinLiquidity/internal/service/fred"
	"FinLiquidity/internal/service/ratelimit"
	"FinLiquidity/internal/usecase"
	pkgcache "FinLiquidity/pkg/cache"
	pkgch "FinLiquidity/pkg/clickhouse"
	"FinLiquidity/pkg/config"
	xhttp "FinLiquidity/pkg/http"
	pkgkafka "FinLiquidity/pkg/kafka"
	"FinLiquidity/pkg/logger"
	"FinLiquidity/pkg/metrics"
	"FinLiquidity/pkg/server"
	"FinLiquidity/pkg/util"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ProvideRegistry creates the process-wide Prometheus registry.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates the domain metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) repository.Metrics {
	if cfg.Metrics.Disabled {
		return metrics.Nop{}
	}
	return metrics.New(reg)
}

// ProvideCatalog builds the immutable catalog from config.
func ProvideCatalog(cfg *config.Config) (models.Catalog, error) {
	return cfg.CatalogValue()
}

// ProvideCacheStore selects the cache backend.
func ProvideCacheStore(cfg *config.Config, l *logger.Logger) (pkgcache.Service, func(), error) {
	memory := func() *pkgcache.MemoryCache {
		return pkgcache.NewMemoryCache(
			pkgcache.WithMemoryMaxSize(cfg.Cache.MaxEntries),
			pkgcache.WithMemoryDefaultTTL(cfg.Cache.SeriesTTL),
		)
	}
	if cfg.Cache.Backend == "memory" {
		store := memory()
		return store, func() { _ = store.Close() }, nil
	}

	redis, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Cache.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, 2),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	l.Info("cache: redis connected", logger.String("addr", cfg.Cache.Redis.Addr), logger.String("backend", cfg.Cache.Backend))

	var store pkgcache.Service = redis
	if cfg.Cache.Backend == "layered" {
		store = pkgcache.NewLayeredCache(redis,
			pkgcache.WithLayeredMemorySize(cfg.Cache.MaxEntries),
			pkgcache.WithLayeredMemoryTTL(cfg.Cache.L1TTL),
		)
	}
	return store, func() { _ = store.Close() }, nil
}

// ProvideSeriesSource creates the configured series source behind the read-through cache.
func ProvideSeriesSource(
	cfg *config.Config,
	store pkgcache.Service,
	m repository.Metrics,
	l *logger.Logger,
) (repository.SeriesSource, func(), error) {
	var (
		src     repository.SeriesSource
		cleanup = func() {}
	)
	switch cfg.Source.Type {
	case "clickhouse":
		ch, err := pkgch.NewClient(
			pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithAuth(cfg.ClickHouse.Database, cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithPool(10, 5),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
			pkgch.WithReadonly(true),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}
		chSrc, err := internalrepo.NewCHSeriesSource(ch, cfg.ClickHouse.Table, l, m)
		if err != nil {
			_ = ch.Close()
			return nil, nil, err
		}
		l.Info("source: clickhouse", logger.String("database", cfg.ClickHouse.Database), logger.String("table", cfg.ClickHouse.Table))
		src = chSrc
		cleanup = func() { _ = ch.Close() }
	default:
		rules := fred.ColumnRules{
			DateColumns:    cfg.Source.Fred.DateColumns,
			ValueFallbacks: cfg.Source.Fred.ValueFallbacks,
			SeriesColumns:  cfg.Source.Fred.SeriesColumns,
		}
		src = fred.New(cfg.Source.Fred.BaseURL, cfg.Source.Fred.Timeout, rules, l, m)
		l.Info("source: fred", logger.String("base_url", cfg.Source.Fred.BaseURL))
	}
	return icache.NewSeriesSource(src, store, cfg.Cache.SeriesTTL, l, m), cleanup, nil
}

// ProvidePriceSource creates the rate limited CoinGecko client behind the price cache.
func ProvidePriceSource(cfg *config.Config, store pkgcache.Service, m repository.Metrics, l *logger.Logger) repository.PriceSource {
	cg := coingecko.New(cfg.Price.BaseURL, cfg.Price.Timeout, cfg.Price.RPS, cfg.Price.Burst, l, m)
	return icache.NewPriceSource(cg, store, cfg.Price.TTL, l, m)
}

// ProvideInvalidator clears every cached entry of store.
func ProvideInvalidator(store pkgcache.Service, l *logger.Logger) repository.Invalidator {
	return icache.NewInvalidator(store, l)
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is disabled.
// The cleanup closes the producer and is safe to call when it is nil.
func ProvideKafkaProducer(cfg *config.Config, reg *prometheus.Registry, l *logger.Logger) (*pkgkafka.Producer, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithProducerMetrics(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}, nil
}

// ProvidePublisher publishes to Kafka when a producer exists and discards events otherwise.
func ProvidePublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.Publisher {
	if producer == nil {
		return internalrepo.NoopPublisher{}
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.IndexTopic, cfg.Kafka.RefreshTopic)
}

// ProvideKafkaConsumer creates the refresh consumer, or nil when Kafka is disabled.
// Without a configured group id every instance joins its own group so each one sees every refresh.
func ProvideKafkaConsumer(cfg *config.Config, reg *prometheus.Registry, l *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	group := cfg.Kafka.Consumer.GroupID
	if group == "" {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = fmt.Sprintf("pid%d", os.Getpid())
		}
		group = "finliquidity-" + host
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(group),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
		pkgkafka.WithConsumerLogger(l),
		pkgkafka.WithConsumerMetrics(reg),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRefreshHandler clears the local cache on refresh broadcasts.
func ProvideRefreshHandler(cfg *config.Config, inv repository.Invalidator, m repository.Metrics, l *logger.Logger) *usecase.KafkaRefreshHandler {
	return usecase.NewKafkaRefreshHandler(cfg.Kafka.RefreshTopic, inv, m, l)
}

// ProvideEngine builds the liquidity engine and wraps it with the frame cache.
func ProvideEngine(
	cfg *config.Config,
	src repository.SeriesSource,
	catalog models.Catalog,
	store pkgcache.Service,
	pub repository.Publisher,
	m repository.Metrics,
	l *logger.Logger,
) service.IndexEngine {
	eng := usecase.NewLiquidityEngine(src, catalog,
		usecase.WithParallelFetch(cfg.Engine.Parallel),
		usecase.WithEpsilon(cfg.Engine.Epsilon),
		usecase.WithEngineLogger(l),
		usecase.WithEngineMetrics(m),
		usecase.WithSnapshotPublisher(pub),
	)
	return icache.NewEngine(eng, catalog, store, cfg.Cache.FrameTTL, l, m)
}

// ProvideDashboard assembles the dashboard use case.
func ProvideDashboard(
	cfg *config.Config,
	engine service.IndexEngine,
	catalog models.Catalog,
	src repository.SeriesSource,
	prices repository.PriceSource,
	inv repository.Invalidator,
	pub repository.Publisher,
	l *logger.Logger,
) (*usecase.Dashboard, error) {
	def, ok := util.ParseDate(cfg.Engine.DefaultStart)
	if !ok {
		return nil, fmt.Errorf("engine.default_start %q is not a date", cfg.Engine.DefaultStart)
	}
	floor, ok := util.ParseDate(cfg.Engine.MinStart)
	if !ok {
		return nil, fmt.Errorf("engine.min_start %q is not a date", cfg.Engine.MinStart)
	}
	return usecase.NewDashboard(engine, catalog, src, prices, inv, pub, usecase.DashboardConfig{
		DefaultStart: def,
		MinStart:     floor,
		Assets:       cfg.Assets,
		VsCurrency:   cfg.Price.VsCurrency,
		Coins:        cfg.Price.Coins,
	}, l), nil
}

// ProvideLiquidityHandler creates the Echo handler for the dashboard API.
func ProvideLiquidityHandler(cfg *config.Config, dash *usecase.Dashboard, reg *prometheus.Registry, l *logger.Logger) *api.LiquidityEchoHandler {
	opts := []api.HandlerOption{api.WithStreamInterval(cfg.Stream.Interval)}
	if cfg.Server.RateLimit.RPS > 0 {
		opts = append(opts, api.WithRateLimiter(ratelimit.New(cfg.Server.RateLimit.RPS, cfg.Server.RateLimit.Burst, 10*cfg.Server.ReadTimeout)))
	}
	if !cfg.Metrics.Disabled {
		opts = append(opts, api.WithAPIMetrics(reg))
	}
	return api.NewLiquidityEchoHandler(l, dash, opts...)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.LiquidityEchoHandler, reg *prometheus.Registry, l *logger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(!cfg.Server.DisableCORS),
		xhttp.WithLogger(l),
	}
	if !cfg.Metrics.Disabled {
		opts = append(opts, xhttp.WithMetrics(reg, cfg.Server.SlowThreshold))
	}
	return xhttp.NewServer(h, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	rh *usecase.KafkaRefreshHandler,
	l *logger.Logger,
) *server.App {
	app := server.New(cfg, srv, l)
	if consumer != nil {
		consumer.RegisterHandler(rh)
		app.AttachConsumer(consumer)
	}
	return app
}
