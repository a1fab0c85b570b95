// Package config defines the configuration structures of hbond-profiler.
// No I/O or parsing logic lives in this file, only plain data types and
// validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Interaction rule configuration
// ─────────────────────────────────────────────────────────────────────────────

// HydrogenBondConfig holds the geometric criteria and role assignment of the
// hydrogen bond rule.
type HydrogenBondConfig struct {
	// DistanceCutoff is the exclusive upper bound (Å) on the donor-acceptor
	// primary atom distance.
	DistanceCutoff float64 `mapstructure:"distance_cutoff"`

	// AngleCutoff is the exclusive lower bound (degrees) on the
	// donor-H-acceptor angle measured at the hydrogen.
	AngleCutoff float64 `mapstructure:"angle_cutoff"`

	DonorKey    string `mapstructure:"donor_key"`
	AcceptorKey string `mapstructure:"acceptor_key"`

	// DonorClassifiers and AcceptorClassifiers list the feature
	// classification values that qualify a feature for each role.
	DonorClassifiers    []string `mapstructure:"donor_classifiers"`
	AcceptorClassifiers []string `mapstructure:"acceptor_classifiers"`

	Commutative bool `mapstructure:"commutative"`
}

// InteractionConfig groups the interaction rules.  Only hydrogen bonds are
// supported.
type InteractionConfig struct {
	HydrogenBond HydrogenBondConfig `mapstructure:"hydrogen_bond"`
}

// ProfilingConfig holds the multi-frame profiling parameters.
type ProfilingConfig struct {
	// Concurrency bounds the number of frames scanned in parallel.
	Concurrency int `mapstructure:"concurrency"`

	// MemberPairs lists the ordered (donor member, acceptor member) index
	// pairs scanned in every frame.
	MemberPairs [][]int `mapstructure:"member_pairs"`

	SerialDelimiter  string        `mapstructure:"serial_delimiter"`
	ReturnFailedHits bool          `mapstructure:"return_failed_hits"`
	ExportPrefix     string        `mapstructure:"export_prefix"`
	StatsCacheTTL    time.Duration `mapstructure:"stats_cache_ttl"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Interface and infrastructure configuration
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	// Host is the listen address; empty listens on all interfaces.
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// CORSOrigins lists the browser origins allowed to call the API.  "*"
	// allows any origin.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// RateLimit is the sustained requests per second allowed per client IP;
	// 0 disables rate limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

// MetricsConfig controls the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the profile row
// store.
type DatabaseConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxConns         int           `mapstructure:"max_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
}

// RedisConfig holds Redis connection parameters for the statistics cache.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the hit event producer and consumer parameters.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	HitsTopic    string        `mapstructure:"hits_topic"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	Acks         string        `mapstructure:"acks"`        // "none" | "one" | "all"
	Compression  string        `mapstructure:"compression"` // "none" | "gzip" | "snappy" | "lz4" | "zstd"
	MaxAttempts  int           `mapstructure:"max_attempts"`

	// GroupID is the consumer group of "hbprof tail".  Events its handler
	// keeps rejecting go to DeadLetterTopic when set.
	GroupID         string `mapstructure:"group_id"`
	DeadLetterTopic string `mapstructure:"dead_letter_topic"`
}

// MinIOConfig holds object-storage parameters for exports.
type MinIOConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseSSL    bool   `mapstructure:"use_ssl"`

	// ExportExpiryDays is the lifecycle expiration of export objects; 0
	// keeps them forever.
	ExportExpiryDays int           `mapstructure:"export_expiry_days"`
	PresignExpiry    time.Duration `mapstructure:"presign_expiry"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Interaction InteractionConfig `mapstructure:"interaction"`
	Profiling   ProfilingConfig   `mapstructure:"profiling"`
	Server      ServerConfig      `mapstructure:"server"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Kafka       KafkaConfig       `mapstructure:"kafka"`
	MinIO       MinIOConfig       `mapstructure:"minio"`
	Log         logging.LogConfig `mapstructure:"log"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// It returns the first error encountered.  Infrastructure sections are only
// checked when enabled.
func (c *Config) Validate() error {
	hb := c.Interaction.HydrogenBond
	if !(hb.DistanceCutoff > 0) {
		return fmt.Errorf("config: interaction.hydrogen_bond.distance_cutoff must be > 0, got %v", hb.DistanceCutoff)
	}
	if hb.AngleCutoff < 0 || hb.AngleCutoff >= 180 {
		return fmt.Errorf("config: interaction.hydrogen_bond.angle_cutoff %v is out of range [0, 180)", hb.AngleCutoff)
	}
	if hb.DonorKey == "" || hb.AcceptorKey == "" {
		return fmt.Errorf("config: interaction.hydrogen_bond donor_key and acceptor_key are required")
	}
	if hb.DonorKey == hb.AcceptorKey {
		return fmt.Errorf("config: interaction.hydrogen_bond donor_key and acceptor_key must differ, both are %q", hb.DonorKey)
	}
	if len(hb.DonorClassifiers) == 0 || len(hb.AcceptorClassifiers) == 0 {
		return fmt.Errorf("config: interaction.hydrogen_bond donor_classifiers and acceptor_classifiers must not be empty")
	}

	// Profiling
	if c.Profiling.Concurrency < 1 {
		return fmt.Errorf("config: profiling.concurrency must be ≥ 1, got %d", c.Profiling.Concurrency)
	}
	if len(c.Profiling.MemberPairs) == 0 {
		return fmt.Errorf("config: profiling.member_pairs must contain at least one pair")
	}
	for i, p := range c.Profiling.MemberPairs {
		if len(p) != 2 {
			return fmt.Errorf("config: profiling.member_pairs[%d] must have exactly 2 indices, got %d", i, len(p))
		}
		if p[0] < 0 || p[1] < 0 {
			return fmt.Errorf("config: profiling.member_pairs[%d] has a negative index", i)
		}
	}
	if c.Profiling.SerialDelimiter == "" {
		return fmt.Errorf("config: profiling.serial_delimiter must not be empty")
	}

	// Server
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must be ≥ 0, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return fmt.Errorf("config: server.rate_burst must be ≥ 1 when rate limiting, got %d", c.Server.RateBurst)
	}

	// Database
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be ≥ 1, got %d", c.Database.MaxConns)
		}
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
		}
	}

	// Kafka
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.HitsTopic == "" {
			return fmt.Errorf("config: kafka.hits_topic is required")
		}
		switch c.Kafka.Acks {
		case "", "none", "one", "all":
		default:
			return fmt.Errorf("config: kafka.acks %q is invalid; expected none|one|all", c.Kafka.Acks)
		}
	}

	// MinIO
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" {
			return fmt.Errorf("config: minio.endpoint is required")
		}
		if c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.bucket is required")
		}
		if c.MinIO.ExportExpiryDays < 0 {
			return fmt.Errorf("config: minio.export_expiry_days must be ≥ 0, got %d", c.MinIO.ExportExpiryDays)
		}
	}

	// Log
	switch strings.ToLower(c.Log.Level) {
	case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}

//Personal.AI order the ending
