package di

import (
	"context"
	"fmt"
	"time"

	drepo "BitSight/internal/domain/repository"
	dsvc "BitSight/internal/domain/service"
	"BitSight/internal/handler/api"
	internalrepo "BitSight/internal/repository"
	"BitSight/internal/service/binance"
	"BitSight/internal/service/cboe"
	"BitSight/internal/service/model"
	"BitSight/internal/usecase"
	"BitSight/pkg/cache"
	pkgch "BitSight/pkg/clickhouse"
	"BitSight/pkg/config"
	xhttp "BitSight/pkg/http"
	pkgkafka "BitSight/pkg/kafka"
	applogger "BitSight/pkg/logger"
	"BitSight/pkg/metrics"
	"BitSight/pkg/server"
)

// collectorEntries bounds the in-memory issue ring surfaced by /healthz.
const collectorEntries = 64

// ProvideCollector creates the recent-issue collector.
func ProvideCollector() *applogger.Collector {
	return applogger.NewCollector(collectorEntries)
}

// ProvideLogger creates the application logger with the collector attached.
func ProvideLogger(cfg *config.Config, collector *applogger.Collector) (*applogger.Logger, error) {
	log, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	log.AttachCollector(collector)
	return log, nil
}

// ProvideMetrics creates the Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideCacheService creates the snapshot backing store: Redis when
// enabled, an in-process cache otherwise.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	svc, err := cache.NewRedisCache(
		cache.WithRedisHost(cfg.Redis.Host),
		cache.WithRedisPort(cfg.Redis.Port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return svc, nil
}

// ProvideSnapshotStore creates the durable snapshot repository.
func ProvideSnapshotStore(svc cache.Service, cfg *config.Config) drepo.SnapshotStore {
	return internalrepo.NewSnapshotCache(svc, cfg.Dataset.SnapshotKey)
}

// ProvideClickHouseClient creates a ClickHouse client with the archive
// schema initialized. Returns nil when ClickHouse is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideDatasetArchive creates the row archive. Nil when ClickHouse is
// disabled; the snapshot service treats a nil archive as no-op.
func ProvideDatasetArchive(client *pkgch.Client) drepo.DatasetArchive {
	if client == nil {
		return nil
	}
	return internalrepo.NewClickHouseArchive(client.DB())
}

// ProvideKafkaProducer creates a Kafka producer, nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
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
	return producer, nil
}

// ProvideEventPublisher creates the lifecycle event publisher, nil when
// Kafka is disabled.
func ProvideEventPublisher(producer *pkgkafka.Producer, cfg *config.Config) drepo.EventPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaEvents(producer, cfg.Kafka.RefreshTopic, cfg.Kafka.PredictTopic)
}

// ProvideMarketProvider creates the Binance REST client.
func ProvideMarketProvider(cfg *config.Config, log *applogger.Logger) drepo.MarketProvider {
	return binance.New(binance.Config{
		BaseURL:     cfg.Binance.BaseURL,
		Timeout:     cfg.Binance.Timeout,
		MaxAttempts: cfg.Binance.MaxAttempts,
		Backoff:     cfg.Binance.Backoff,
	}, log)
}

// ProvideIndexProvider creates the CBOE history client.
func ProvideIndexProvider(cfg *config.Config, log *applogger.Logger) drepo.IndexProvider {
	return cboe.New(cboe.Config{
		HistoryURL: cfg.Cboe.HistoryURL,
		Timeout:    cfg.Cboe.Timeout,
	}, log)
}

// ProvidePredictor creates the model service client.
func ProvidePredictor(cfg *config.Config, log *applogger.Logger) dsvc.Predictor {
	return model.New(model.Config{
		ServiceURL: cfg.Model.ServiceURL,
		Timeout:    cfg.Model.Timeout,
	}, log)
}

// ProvideLiveQuotes creates the freshness-gated quote cache.
func ProvideLiveQuotes(cfg *config.Config, m drepo.Metrics, log *applogger.Logger) *usecase.LiveQuotes {
	return usecase.NewLiveQuotes(cfg.Dataset.QuoteTTL, m, log)
}

// ProvideDatasetBuilder creates the snapshot builder.
func ProvideDatasetBuilder(cfg *config.Config, market drepo.MarketProvider, index drepo.IndexProvider, log *applogger.Logger) *usecase.DatasetBuilder {
	return usecase.NewDatasetBuilder(usecase.BuilderConfig{
		Symbol:      cfg.Dataset.Symbol,
		HistoryDays: cfg.Dataset.HistoryDays,
		IndexDays:   cfg.Dataset.IndexDays,
	}, market, index, log)
}

// ProvideSnapshotService wires the snapshot lifecycle.
func ProvideSnapshotService(
	builder *usecase.DatasetBuilder,
	store drepo.SnapshotStore,
	archive drepo.DatasetArchive,
	events drepo.EventPublisher,
	quotes *usecase.LiveQuotes,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.SnapshotService {
	return usecase.NewSnapshotService(builder, store, archive, events, quotes, m, log)
}

// ProvidePredictionService wires the prediction flow.
func ProvidePredictionService(
	snapshots *usecase.SnapshotService,
	predictor dsvc.Predictor,
	events drepo.EventPublisher,
	m drepo.Metrics,
	log *applogger.Logger,
) *usecase.PredictionService {
	return usecase.NewPredictionService(snapshots, predictor, events, m, log)
}

// ProvideHandler creates the HTTP handler with the live price fetchers bound
// to the upstream clients.
func ProvideHandler(
	log *applogger.Logger,
	collector *applogger.Collector,
	snapshots *usecase.SnapshotService,
	predictions *usecase.PredictionService,
	quotes *usecase.LiveQuotes,
	market drepo.MarketProvider,
	cfg *config.Config,
) xhttp.Handler {
	assetPrice := func(ctx context.Context) (float64, error) {
		return market.LastPrice(ctx, cfg.Dataset.Symbol)
	}
	// The index has no live ticker; its current value is the last close in
	// the served snapshot.
	indexPrice := func(context.Context) (float64, error) {
		snap, err := snapshots.Current()
		if err != nil {
			return 0, err
		}
		row, ok := snap.Latest()
		if !ok || row.Index == nil {
			return 0, fmt.Errorf("no index data in snapshot")
		}
		return row.Index.Close, nil
	}
	return api.NewMarketHandler(log, collector, snapshots, predictions, quotes, assetPrice, indexPrice)
}

// ProvideStream creates the live price stream feeding the quote cache, nil
// when streaming is disabled.
func ProvideStream(cfg *config.Config, quotes *usecase.LiveQuotes, log *applogger.Logger) *binance.Stream {
	if !cfg.Binance.StreamLive {
		return nil
	}
	return binance.NewStream(binance.StreamConfig{
		URL:    cfg.Binance.WebSocketURL,
		Symbol: cfg.Dataset.Symbol,
	}, func(_ string, price float64, at time.Time) {
		quotes.Prime("btc", price, at)
	}, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	snapshots *usecase.SnapshotService,
	stream *binance.Stream,
	producer *pkgkafka.Producer,
	chClient *pkgch.Client,
	cacheSvc cache.Service,
) *server.App {
	return server.New(cfg, log, handler, snapshots, stream, producer, chClient, cacheSvc)
}
