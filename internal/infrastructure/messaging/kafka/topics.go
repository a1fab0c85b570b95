package kafka

import (
	"context"
	"strconv"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

const hitsRetentionMs = int64(7 * 24 * 60 * 60 * 1000)

// ConnInterface is the part of *kafka.Conn the topic manager needs.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// TopicManager creates topics through one broker connection.
type TopicManager struct {
	conn   ConnInterface
	logger logging.Logger
}

// NewTopicManager dials brokers[0].
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "brokers required")
	}
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeMessageQueueError, "failed to dial kafka")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TopicManager{conn: conn, logger: logger}, nil
}

func (cfg TopicConfig) validate() error {
	switch {
	case cfg.Name == "":
		return apperrors.New(apperrors.ErrCodeValidation, "topic name required")
	case cfg.NumPartitions <= 0:
		return apperrors.New(apperrors.ErrCodeValidation, "NumPartitions must be > 0")
	case cfg.ReplicationFactor <= 0:
		return apperrors.New(apperrors.ErrCodeValidation, "ReplicationFactor must be > 0")
	}
	return nil
}

func (cfg TopicConfig) entries() []kafka.ConfigEntry {
	var out []kafka.ConfigEntry
	add := func(name, value string) {
		out = append(out, kafka.ConfigEntry{ConfigName: name, ConfigValue: value})
	}
	if cfg.RetentionMs > 0 {
		add("retention.ms", strconv.FormatInt(cfg.RetentionMs, 10))
	}
	if cfg.CleanupPolicy != "" {
		add("cleanup.policy", cfg.CleanupPolicy)
	}
	if cfg.MaxMessageBytes > 0 {
		add("max.message.bytes", strconv.Itoa(cfg.MaxMessageBytes))
	}
	for k, v := range cfg.Configs {
		add(k, v)
	}
	return out
}

// CreateTopic creates cfg.Name.  A topic that already exists is success.
func (m *TopicManager) CreateTopic(ctx context.Context, cfg TopicConfig) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	err := m.conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.Name,
		NumPartitions:     cfg.NumPartitions,
		ReplicationFactor: cfg.ReplicationFactor,
		ConfigEntries:     cfg.entries(),
	})
	if err != nil {
		if exists, _ := m.TopicExists(ctx, cfg.Name); exists {
			return nil
		}
		return apperrors.Wrap(err, apperrors.CodeMessageQueueError, "failed to create topic "+cfg.Name)
	}
	m.logger.Info("topic created", logging.String("topic", cfg.Name), logging.Int("partitions", cfg.NumPartitions))
	return nil
}

// TopicExists reports whether name has partitions.  A failed lookup counts
// as absent.
func (m *TopicManager) TopicExists(_ context.Context, name string) (bool, error) {
	partitions, err := m.conn.ReadPartitions(name)
	return err == nil && len(partitions) > 0, nil
}

// EnsureTopics creates topics in order, stopping at the first failure.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	for _, t := range topics {
		if err := m.CreateTopic(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (m *TopicManager) Close() error { return m.conn.Close() }

// DefaultTopics is the topic set of a deployment publishing hits to
// hitsTopic.
func DefaultTopics(hitsTopic string) []TopicConfig {
	return []TopicConfig{{Name: hitsTopic, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: hitsRetentionMs}}
}

//Personal.AI order the ending
