package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"RiskPulse/internal/domain/repository"
	"RiskPulse/internal/handler/api"
	mid "RiskPulse/internal/middleware"
	internalrepo "RiskPulse/internal/repository"
	"RiskPulse/internal/service/pricefeed"
	"RiskPulse/internal/usecase"
	"RiskPulse/pkg/cache"
	pkgch "RiskPulse/pkg/clickhouse"
	"RiskPulse/pkg/config"
	xhttp "RiskPulse/pkg/http"
	pkgkafka "RiskPulse/pkg/kafka"
	applogger "RiskPulse/pkg/logger"
	"RiskPulse/pkg/metrics"
	"RiskPulse/pkg/queue"
	"RiskPulse/pkg/server"

	"github.com/redis/go-redis/v9"
)

// Infra bundles the external backends. All fields are nil when the engine
// runs with the in-memory state backend.
type Infra struct {
	CH    *pkgch.Client
	Redis *redis.Client
	Cache cache.Service

	layered *cache.LayeredCache
}

// Close releases backend connections.
func (i *Infra) Close() {
	if i.layered != nil {
		_ = i.layered.Close()
	}
	if i.CH != nil {
		_ = i.CH.Close()
	}
}

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideInfra connects ClickHouse and Redis, or returns an empty Infra for
// the memory backend.
func ProvideInfra(cfg *config.Config) (*Infra, error) {
	if cfg.Engine.StateBackend == "memory" {
		return &Infra{}, nil
	}

	ch, err := pkgch.NewClient(
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append(internalrepo.GridSchema(), internalrepo.HistorySchema()...)
	if err := ch.InitSchema(ctx, stmts); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	host, port, err := splitRedisAddr(cfg.Redis.Addr)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	redisCache, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	layered := cache.NewLayeredCache(redisCache)

	return &Infra{
		CH:      ch,
		Redis:   redisCache.Client(),
		Cache:   layered,
		layered: layered,
	}, nil
}

func splitRedisAddr(addr string) (string, int, error) {
	if addr == "" {
		return "localhost", 6379, nil
	}
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("redis addr %q: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("redis addr %q: %w", addr, err)
	}
	return host, port, nil
}

// ProvideGridStore creates the grid snapshot store.
func ProvideGridStore(cfg *config.Config, infra *Infra, lgr *applogger.Logger) repository.GridStore {
	if infra.CH == nil {
		return internalrepo.NewMemoryGridStore()
	}
	ch := internalrepo.NewCHGridStore(infra.CH)
	ch.SetLogger(lgr)
	return internalrepo.NewCachedGridStore(ch, infra.Cache, cfg.Engine.GridCacheTTL)
}

// ProvideStateStore creates the per-symbol state store.
func ProvideStateStore(cfg *config.Config, infra *Infra) repository.StateStore {
	if infra.Redis == nil {
		return internalrepo.NewMemoryStateStore()
	}
	return internalrepo.NewRedisStateStore(infra.Redis, cfg.Engine.ScoreCacheTTL)
}

// ProvideHistoryStore creates the daily history store.
func ProvideHistoryStore(infra *Infra, lgr *applogger.Logger) repository.HistoryStore {
	if infra.CH == nil {
		return internalrepo.NewMemoryHistoryStore()
	}
	s := internalrepo.NewCHHistoryStore(infra.CH)
	s.SetLogger(lgr)
	return s
}

// ProvideLocker creates the daily advisory locker.
func ProvideLocker(infra *Infra) repository.Locker {
	if infra.Redis == nil {
		return internalrepo.NewMemoryLocker()
	}
	return internalrepo.NewRedisLocker(infra.Redis)
}

// ProvideSignalPublisher creates the Kafka signal publisher, or a no-op one
// when Kafka is disabled.
func ProvideSignalPublisher(cfg *config.Config) (repository.SignalPublisher, error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NopSignalPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaSignalPublisher(producer, cfg.Kafka.SignalsTopic), nil
}

// ProvidePriceProcessor creates the price processor use case.
func ProvidePriceProcessor(
	grids repository.GridStore,
	state repository.StateStore,
	signals repository.SignalPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
) *usecase.PriceProcessor {
	return usecase.NewPriceProcessor(grids, state, signals, m, lgr)
}

// ProvidePriceCollector creates the WebSocket collector, or nil when no
// stream is configured.
func ProvidePriceCollector(
	cfg *config.Config,
	lgr *applogger.Logger,
	proc *usecase.PriceProcessor,
	m repository.Metrics,
) *usecase.PriceCollector {
	if cfg.PriceFeed.WebSocketURL == "" {
		return nil
	}
	stream := pricefeed.New(
		lgr,
		cfg.PriceFeed.APIKey,
		cfg.PriceFeed.WebSocketURL,
		cfg.Engine.Symbols,
		cfg.PriceFeed.ReconnectDelay,
		cfg.PriceFeed.PingInterval,
	)
	pipe := mid.NewUpdatePipeline(proc, m,
		mid.WithMaxRPS(10),
		mid.WithBufferSize(2000),
	)
	return usecase.NewPriceCollector(stream, proc, m, pipe)
}

// ProvidePoller creates the REST fallback poller, or nil when disabled.
func ProvidePoller(cfg *config.Config, lgr *applogger.Logger, proc *usecase.PriceProcessor) *pricefeed.Poller {
	if cfg.PriceFeed.PollURL == "" {
		return nil
	}
	return pricefeed.NewPoller(
		lgr,
		cfg.PriceFeed.PollURL,
		cfg.PriceFeed.APIKey,
		cfg.Engine.Symbols,
		cfg.PriceFeed.PollInterval,
		proc.Process,
	)
}

// ProvideAnalyzer creates the analysis use case.
func ProvideAnalyzer(
	cfg *config.Config,
	grids repository.GridStore,
	state repository.StateStore,
	m repository.Metrics,
	lgr *applogger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(grids, state, m, lgr, cfg.Engine.BaseSymbol)
}

// ProvideDailyUpdater creates the daily update use case.
func ProvideDailyUpdater(
	cfg *config.Config,
	state repository.StateStore,
	history repository.HistoryStore,
	locker repository.Locker,
	signals repository.SignalPublisher,
	m repository.Metrics,
	lgr *applogger.Logger,
) *usecase.DailyUpdater {
	return usecase.NewDailyUpdater(state, history, locker, signals, m, lgr, cfg.Engine.Symbols)
}

// ProvideHistoryUseCase creates the history read use case.
func ProvideHistoryUseCase(history repository.HistoryStore) *usecase.HistoryUseCase {
	return usecase.NewHistoryUseCase(history)
}

// ProvideKafkaConsumer creates the prices consumer, or nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaPricesHandler registers the handler for the prices topic.
func ProvideKafkaPricesHandler(cfg *config.Config, proc *usecase.PriceProcessor, m repository.Metrics) *usecase.KafkaPricesHandler {
	if !cfg.Kafka.Enabled {
		return nil
	}
	return usecase.NewKafkaPricesHandler(cfg.Kafka.PricesTopic, proc, m)
}

// ProvideQueue creates the Redis-backed job queue for daily advances, or nil
// when the scheduler is disabled or Redis is unavailable.
func ProvideQueue(cfg *config.Config, lgr *applogger.Logger, infra *Infra, updater *usecase.DailyUpdater) *queue.RedisQueue {
	if !cfg.Scheduler.Enabled || infra.Redis == nil {
		return nil
	}
	q := queue.NewRedisQueue(
		lgr,
		&queue.QueueConfig{
			Workers:    cfg.Scheduler.Workers,
			RetryLimit: cfg.Scheduler.RetryLimit,
			RetryDelay: cfg.Scheduler.RetryDelay,
		},
		infra.Redis,
		queue.ModeProducerConsumer,
	)
	q.RegisterJob(usecase.NewDailyAdvanceJob(updater, lgr))
	return q
}

// inlineQueue executes advance jobs synchronously when no Redis queue exists.
type inlineQueue struct {
	job *usecase.DailyAdvanceJob
}

func (q inlineQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	if msgType != q.job.Type() {
		return fmt.Errorf("no job registered for type: %s", msgType)
	}
	return q.job.Handle(ctx, payload)
}

// ProvideScheduler creates the daily scheduler, or nil when disabled.
func ProvideScheduler(cfg *config.Config, lgr *applogger.Logger, q *queue.RedisQueue, updater *usecase.DailyUpdater) *usecase.DailyScheduler {
	if !cfg.Scheduler.Enabled {
		return nil
	}
	var publisher queue.QueueService
	if q != nil {
		publisher = q
	} else {
		publisher = inlineQueue{job: usecase.NewDailyAdvanceJob(updater, lgr)}
	}
	return usecase.NewDailyScheduler(publisher, lgr, cfg.Engine.Symbols, cfg.Scheduler.RunAt)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	lgr *applogger.Logger,
	analyzer *usecase.Analyzer,
	updater *usecase.DailyUpdater,
	historyUC *usecase.HistoryUseCase,
	grids repository.GridStore,
	state repository.StateStore,
	history repository.HistoryStore,
	collector *usecase.PriceCollector,
) xhttp.Handler {
	health := func() map[string]string {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		out := map[string]string{
			"grids":   healthStatus(grids.Health(ctx)),
			"state":   healthStatus(state.Health(ctx)),
			"history": healthStatus(history.Health(ctx)),
		}
		if collector != nil {
			if collector.IsConnected() {
				out["stream"] = "ok"
			} else {
				out["stream"] = "disconnected"
			}
		}
		return out
	}
	return api.NewRiskEchoHandler(lgr, analyzer, updater, historyUC, health)
}

func healthStatus(err error) string {
	if err != nil {
		return err.Error()
	}
	return "ok"
}

// ProvideHTTPServer creates the HTTP server.
func ProvideHTTPServer(cfg *config.Config, handler xhttp.Handler) *xhttp.Server {
	return xhttp.NewServer(handler,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(cfg.Metrics.Path),
	)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	lgr *applogger.Logger,
	httpServer *xhttp.Server,
	collector *usecase.PriceCollector,
	poller *pricefeed.Poller,
	consumer *pkgkafka.Consumer,
	pricesHandler *usecase.KafkaPricesHandler,
	q *queue.RedisQueue,
	scheduler *usecase.DailyScheduler,
	infra *Infra,
) *server.App {
	return server.New(server.Params{
		Config:        cfg,
		Logger:        lgr,
		HTTPServer:    httpServer,
		Collector:     collector,
		Poller:        poller,
		Consumer:      consumer,
		PricesHandler: pricesHandler,
		Queue:         q,
		Scheduler:     scheduler,
		Cleanup:       infra.Close,
	})
}
