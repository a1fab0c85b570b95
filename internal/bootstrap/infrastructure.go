// Package bootstrap builds the profiling service and the infrastructure
// behind it from configuration.  Every infrastructure section is optional;
// disabled sections leave the matching service sink unset.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/turtacn/hbond-profiler/internal/application/profiling"
	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/domain/statistics"
	pgconn "github.com/turtacn/hbond-profiler/internal/infrastructure/database/postgres"
	pgrepo "github.com/turtacn/hbond-profiler/internal/infrastructure/database/postgres/repositories"
	redisclient "github.com/turtacn/hbond-profiler/internal/infrastructure/database/redis"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/prometheus"
	minioclient "github.com/turtacn/hbond-profiler/internal/infrastructure/storage/minio"
)

// Checker reports the health of one dependency.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// Infrastructure holds the clients opened for one process.  Nil fields are
// disabled in configuration.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prometheus.MetricsCollector
	Metrics   *prometheus.AppMetrics

	Postgres *pgconn.Connection
	Redis    *redisclient.Client
	Producer *kafka.Producer
	MinIO    *minioclient.Client

	Repository statistics.ProfileRowRepository
	Cache      redisclient.Cache
	Exports    *minioclient.ExportRepository

	Service profiling.Service
}

// New opens every enabled dependency and builds the profiling service.  On
// failure the dependencies opened so far are closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infrastructure, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	infra := &Infrastructure{Config: cfg, Logger: logger}

	if err := infra.initMetrics(); err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	if err := infra.initPostgres(); err != nil {
		infra.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := infra.initRedis(); err != nil {
		infra.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	if err := infra.initKafka(ctx); err != nil {
		infra.Close()
		return nil, fmt.Errorf("kafka: %w", err)
	}
	if err := infra.initMinIO(); err != nil {
		infra.Close()
		return nil, fmt.Errorf("minio: %w", err)
	}

	svc, err := profiling.NewService(profiling.ConfigFrom(cfg), infra.serviceOptions()...)
	if err != nil {
		infra.Close()
		return nil, err
	}
	infra.Service = svc

	logger.Info("infrastructure initialized",
		logging.Bool("postgres", infra.Postgres != nil),
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("kafka", infra.Producer != nil),
		logging.Bool("minio", infra.MinIO != nil))
	return infra, nil
}

func (i *Infrastructure) initMetrics() error {
	if !i.Config.Metrics.Enabled {
		i.Collector = prometheus.NewNoopCollector()
		i.Metrics = prometheus.NewAppMetrics(i.Collector)
		return nil
	}
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            i.Config.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, i.Logger)
	if err != nil {
		return err
	}
	i.Collector = collector
	i.Metrics = prometheus.NewAppMetrics(collector)
	return nil
}

func (i *Infrastructure) initPostgres() error {
	if !i.Config.Database.Enabled {
		return nil
	}
	conn, err := pgconn.NewConnection(i.Config.Database, i.Logger)
	if err != nil {
		return err
	}
	i.Postgres = conn
	if i.Config.Database.AutoMigrate {
		if err := conn.RunMigrations(); err != nil {
			return err
		}
	}
	i.Repository = pgrepo.NewPostgresProfileRunRepo(conn, i.Logger, i.Metrics)
	return nil
}

func (i *Infrastructure) initRedis() error {
	if !i.Config.Redis.Enabled {
		return nil
	}
	client, err := redisclient.NewClient(i.Config.Redis, i.Logger)
	if err != nil {
		return err
	}
	i.Redis = client
	i.Cache = redisclient.NewRedisCache(client, i.Logger,
		redisclient.WithPrefix(i.Config.Redis.KeyPrefix),
		redisclient.WithDefaultTTL(i.Config.Redis.DefaultTTL),
		redisclient.WithMetrics(i.Metrics))
	return nil
}

func (i *Infrastructure) initKafka(ctx context.Context) error {
	if !i.Config.Kafka.Enabled {
		return nil
	}
	i.ensureTopics(ctx)

	producer, err := kafka.NewProducer(kafka.ProducerConfigFrom(i.Config.Kafka), i.Logger)
	if err != nil {
		return err
	}
	i.Producer = producer
	return nil
}

// ensureTopics creates the hits topic.  Brokers that auto-create topics or
// deny admin requests still accept writes, so failures only warn.
func (i *Infrastructure) ensureTopics(ctx context.Context) {
	tm, err := kafka.NewTopicManager(i.Config.Kafka.Brokers, i.Logger)
	if err != nil {
		i.Logger.Warn("kafka topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := tm.EnsureTopics(ctx, kafka.DefaultTopics(i.Config.Kafka.HitsTopic)); err != nil {
		i.Logger.Warn("failed to ensure kafka topics", logging.Err(err))
	}
}

func (i *Infrastructure) initMinIO() error {
	if !i.Config.MinIO.Enabled {
		return nil
	}
	client, err := minioclient.NewClient(i.Config.MinIO, i.Logger)
	if err != nil {
		return err
	}
	i.MinIO = client
	i.Exports = minioclient.NewExportRepository(client, i.Logger)
	return nil
}

func (i *Infrastructure) serviceOptions() []profiling.Option {
	opts := []profiling.Option{
		profiling.WithLogger(i.Logger.Named("profiling")),
		profiling.WithMetrics(i.Metrics),
	}
	if i.Repository != nil {
		opts = append(opts, profiling.WithRepository(i.Repository))
	}
	if i.Cache != nil {
		opts = append(opts, profiling.WithStatsCache(i.Cache))
	}
	if i.Producer != nil {
		opts = append(opts, profiling.WithPublisher(kafka.NewHitPublisher(i.Producer, i.Config.Kafka.HitsTopic, i.Logger)))
	}
	if i.Exports != nil {
		opts = append(opts, profiling.WithExportStore(i.Exports))
	}
	return opts
}

// Checkers returns a health checker for every open dependency.
func (i *Infrastructure) Checkers() []Checker {
	var out []Checker
	if i.Postgres != nil {
		out = append(out, checkFunc{"postgres", i.Postgres.HealthCheck})
	}
	if i.Cache != nil {
		out = append(out, checkFunc{"redis", i.Cache.Ping})
	}
	if i.MinIO != nil {
		out = append(out, checkFunc{"minio", func(ctx context.Context) error {
			_, err := i.MinIO.HealthCheck(ctx)
			return err
		}})
	}
	return out
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// Close releases every open dependency in reverse order of opening.
func (i *Infrastructure) Close() {
	if i.MinIO != nil {
		if err := i.MinIO.Close(); err != nil {
			i.Logger.Warn("failed to close minio client", logging.Err(err))
		}
	}
	if i.Producer != nil {
		if err := i.Producer.Close(); err != nil {
			i.Logger.Warn("failed to close kafka producer", logging.Err(err))
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			i.Logger.Warn("failed to close redis client", logging.Err(err))
		}
	}
	if i.Postgres != nil {
		if err := i.Postgres.Close(); err != nil {
			i.Logger.Warn("failed to close postgres connection", logging.Err(err))
		}
	}
}

//Personal.AI order the ending
