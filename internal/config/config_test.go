package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/hbond-profiler/internal/config"
)

func validConfig() *config.Config {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	return cfg
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{"zero distance cutoff", func(c *config.Config) { c.Interaction.HydrogenBond.DistanceCutoff = -1 }, "distance_cutoff"},
		{"angle cutoff 180", func(c *config.Config) { c.Interaction.HydrogenBond.AngleCutoff = 180 }, "angle_cutoff"},
		{"negative angle cutoff", func(c *config.Config) { c.Interaction.HydrogenBond.AngleCutoff = -5 }, "angle_cutoff"},
		{"same role keys", func(c *config.Config) { c.Interaction.HydrogenBond.AcceptorKey = c.Interaction.HydrogenBond.DonorKey }, "must differ"},
		{"no donor classifiers", func(c *config.Config) { c.Interaction.HydrogenBond.DonorClassifiers = nil }, "classifiers"},
		{"zero concurrency", func(c *config.Config) { c.Profiling.Concurrency = 0 }, "profiling.concurrency"},
		{"short member pair", func(c *config.Config) { c.Profiling.MemberPairs = [][]int{{0}} }, "member_pairs[0]"},
		{"negative member idx", func(c *config.Config) { c.Profiling.MemberPairs = [][]int{{0, -1}} }, "negative"},
		{"empty delimiter", func(c *config.Config) { c.Profiling.SerialDelimiter = "" }, "serial_delimiter"},
		{"bad port", func(c *config.Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"db without user", func(c *config.Config) { c.Database.Enabled = true }, "database.user"},
		{"kafka without topic", func(c *config.Config) { c.Kafka.Enabled = true; c.Kafka.HitsTopic = "" }, "kafka.hits_topic"},
		{"minio without bucket", func(c *config.Config) { c.MinIO.Enabled = true; c.MinIO.Bucket = "" }, "minio.bucket"},
		{"redis negative db", func(c *config.Config) { c.Redis.Enabled = true; c.Redis.DB = -1 }, "redis.db"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "trace" }, "log.level"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "text" }, "log.format"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_Validate_DisabledInfrastructureIsNotChecked(t *testing.T) {
	cfg := validConfig()
	cfg.Database.User = ""
	cfg.Kafka.HitsTopic = ""
	cfg.MinIO.Bucket = ""
	assert.NoError(t, cfg.Validate())
}

//Personal.AI order the ending
