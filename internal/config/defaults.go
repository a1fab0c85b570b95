// Package config provides configuration loading, defaults, and validation for
// hbond-profiler.
package config

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultDistanceCutoff     = 3.0
	DefaultAngleCutoff        = 100.0
	DefaultDonorKey           = "Donor"
	DefaultAcceptorKey        = "Acceptor"
	DefaultDonorClassifier    = "Donor"
	DefaultAcceptorClassifier = "Acceptor"

	DefaultProfilingConcurrency = 4
	DefaultSerialDelimiter      = ","
	DefaultExportPrefix         = "exports"
	DefaultStatsCacheTTL        = 30 * time.Minute

	DefaultServerPort      = 8080
	DefaultServerMode      = "release"
	DefaultServerRateBurst = 20

	DefaultMetricsNamespace = "hbprof"
	DefaultMetricsPath      = "/metrics"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "hbprof"
	DefaultDBMaxConns = 10

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "hbprof:"

	DefaultKafkaBroker    = "localhost:9092"
	DefaultKafkaHitsTopic = "hbprof.hits"
	DefaultKafkaGroupID   = "hbprof-tail"

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "hbprof-exports"
	DefaultPresignExpiry = time.Hour

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// DefaultMemberPairs returns the member pair list used when none is
// configured: donors from member 0, acceptors from member 1.
func DefaultMemberPairs() [][]int {
	return [][]int{{0, 1}}
}

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields already set by the caller are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	hb := &cfg.Interaction.HydrogenBond
	orDefault(&hb.DistanceCutoff, DefaultDistanceCutoff)
	orDefault(&hb.AngleCutoff, DefaultAngleCutoff)
	orDefault(&hb.DonorKey, DefaultDonorKey)
	orDefault(&hb.AcceptorKey, DefaultAcceptorKey)
	if len(hb.DonorClassifiers) == 0 {
		hb.DonorClassifiers = []string{DefaultDonorClassifier}
	}
	if len(hb.AcceptorClassifiers) == 0 {
		hb.AcceptorClassifiers = []string{DefaultAcceptorClassifier}
	}

	p := &cfg.Profiling
	orDefault(&p.Concurrency, DefaultProfilingConcurrency)
	orDefault(&p.SerialDelimiter, DefaultSerialDelimiter)
	orDefault(&p.ExportPrefix, DefaultExportPrefix)
	orDefault(&p.StatsCacheTTL, DefaultStatsCacheTTL)
	if len(p.MemberPairs) == 0 {
		p.MemberPairs = DefaultMemberPairs()
	}

	srv := &cfg.Server
	orDefault(&srv.Port, DefaultServerPort)
	orDefault(&srv.Mode, DefaultServerMode)
	orDefault(&srv.ReadTimeout, 30*time.Second)
	orDefault(&srv.WriteTimeout, time.Minute)
	orDefault(&srv.ShutdownTimeout, 15*time.Second)
	orDefault(&srv.MaxBodySize, 32<<20)
	orDefault(&srv.RateBurst, DefaultServerRateBurst)

	orDefault(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
	orDefault(&cfg.Metrics.Path, DefaultMetricsPath)

	db := &cfg.Database
	orDefault(&db.Host, DefaultDBHost)
	orDefault(&db.Port, DefaultDBPort)
	orDefault(&db.DBName, DefaultDBName)
	orDefault(&db.MaxConns, DefaultDBMaxConns)
	orDefault(&db.SSLMode, "disable")

	orDefault(&cfg.Redis.Addr, DefaultRedisAddr)
	orDefault(&cfg.Redis.KeyPrefix, DefaultRedisKeyPrefix)
	orDefault(&cfg.Redis.DefaultTTL, DefaultStatsCacheTTL)

	k := &cfg.Kafka
	if len(k.Brokers) == 0 {
		k.Brokers = []string{DefaultKafkaBroker}
	}
	orDefault(&k.HitsTopic, DefaultKafkaHitsTopic)
	orDefault(&k.Acks, "one")
	orDefault(&k.GroupID, DefaultKafkaGroupID)

	orDefault(&cfg.MinIO.Endpoint, DefaultMinIOEndpoint)
	orDefault(&cfg.MinIO.Bucket, DefaultMinIOBucket)
	orDefault(&cfg.MinIO.PresignExpiry, DefaultPresignExpiry)

	orDefault(&cfg.Log.Level, DefaultLogLevel)
	orDefault(&cfg.Log.Format, DefaultLogFormat)
}

// orDefault stores def in *field when *field is the zero value.
func orDefault[T comparable](field *T, def T) {
	var zero T
	if *field == zero {
		*field = def
	}
}

// setViperDefaults registers every key viper must know about so that
// environment variables resolve even when no config file mentions the key.
func setViperDefaults(v *viper.Viper) {
	v.SetDefault("interaction.hydrogen_bond.distance_cutoff", DefaultDistanceCutoff)
	v.SetDefault("interaction.hydrogen_bond.angle_cutoff", DefaultAngleCutoff)
	v.SetDefault("interaction.hydrogen_bond.donor_key", DefaultDonorKey)
	v.SetDefault("interaction.hydrogen_bond.acceptor_key", DefaultAcceptorKey)
	v.SetDefault("interaction.hydrogen_bond.donor_classifiers", []string{DefaultDonorClassifier})
	v.SetDefault("interaction.hydrogen_bond.acceptor_classifiers", []string{DefaultAcceptorClassifier})
	v.SetDefault("interaction.hydrogen_bond.commutative", false)

	v.SetDefault("profiling.concurrency", DefaultProfilingConcurrency)
	v.SetDefault("profiling.serial_delimiter", DefaultSerialDelimiter)
	v.SetDefault("profiling.return_failed_hits", false)
	v.SetDefault("profiling.export_prefix", DefaultExportPrefix)
	v.SetDefault("profiling.stats_cache_ttl", DefaultStatsCacheTTL)

	v.SetDefault("server.host", "")
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.mode", DefaultServerMode)
	v.SetDefault("server.cors_origins", []string{})
	v.SetDefault("server.rate_limit", 0.0)
	v.SetDefault("server.rate_burst", DefaultServerRateBurst)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.namespace", DefaultMetricsNamespace)
	v.SetDefault("metrics.path", DefaultMetricsPath)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", DefaultDBHost)
	v.SetDefault("database.port", DefaultDBPort)
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", DefaultDBName)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", DefaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{DefaultKafkaBroker})
	v.SetDefault("kafka.hits_topic", DefaultKafkaHitsTopic)
	v.SetDefault("kafka.acks", "one")
	v.SetDefault("kafka.group_id", DefaultKafkaGroupID)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", DefaultMinIOEndpoint)
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", DefaultMinIOBucket)
	v.SetDefault("minio.export_expiry_days", 0)
	v.SetDefault("minio.presign_expiry", DefaultPresignExpiry)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

//Personal.AI order the ending
