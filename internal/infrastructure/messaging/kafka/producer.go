package kafka

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

// ErrProducerClosed is returned by publishes after Close.
var ErrProducerClosed = apperrors.New(apperrors.ErrCodeServiceUnavailable, "producer closed")

var requiredAcks = map[string]kafka.RequiredAcks{
	"":     kafka.RequireOne,
	"one":  kafka.RequireOne,
	"none": kafka.RequireNone,
	"all":  kafka.RequireAll,
}

var codecs = map[string]kafka.Compression{
	"gzip":   kafka.Gzip,
	"snappy": kafka.Snappy,
	"lz4":    kafka.Lz4,
	"zstd":   kafka.Zstd,
}

// ProducerConfig tunes the kafka-go writer.  Zero values take defaults.
type ProducerConfig struct {
	Brokers          []string
	Acks             string // none, one or all
	MaxAttempts      int
	BatchSize        int
	BatchTimeout     time.Duration
	MaxMessageBytes  int
	CompressionCodec string
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
}

// ProducerConfigFrom takes the producer settings of the kafka config section.
func ProducerConfigFrom(cfg config.KafkaConfig) ProducerConfig {
	return ProducerConfig{
		Brokers:          cfg.Brokers,
		Acks:             cfg.Acks,
		MaxAttempts:      cfg.MaxAttempts,
		BatchSize:        cfg.BatchSize,
		BatchTimeout:     cfg.BatchTimeout,
		CompressionCodec: cfg.Compression,
	}
}

// ValidateProducerConfig rejects configurations the writer cannot run with.
func ValidateProducerConfig(cfg ProducerConfig) error {
	if len(cfg.Brokers) == 0 {
		return apperrors.New(apperrors.ErrCodeValidation, "brokers required")
	}
	if cfg.MaxAttempts < 0 {
		return apperrors.New(apperrors.ErrCodeValidation, "max attempts must be >= 0")
	}
	if _, ok := requiredAcks[cfg.Acks]; !ok {
		return apperrors.Newf(apperrors.ErrCodeValidation, "invalid acks %q", cfg.Acks)
	}
	return nil
}

func (cfg ProducerConfig) withDefaults() ProducerConfig {
	setInt := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setDur := func(v *time.Duration, def time.Duration) {
		if *v == 0 {
			*v = def
		}
	}
	setInt(&cfg.MaxAttempts, 3)
	setInt(&cfg.BatchSize, 100)
	setInt(&cfg.MaxMessageBytes, 1<<20)
	setDur(&cfg.BatchTimeout, 50*time.Millisecond)
	setDur(&cfg.WriteTimeout, 10*time.Second)
	setDur(&cfg.ReadTimeout, 10*time.Second)
	return cfg
}

// compressionCodec maps a codec name to kafka-go; unknown names disable
// compression.
func compressionCodec(name string) kafka.Compression { return codecs[name] }

// ProducerMetrics are counters kept by the producer itself, independent of
// Prometheus.
type ProducerMetrics struct {
	MessagesSent   atomic.Int64
	MessagesFailed atomic.Int64
	BytesSent      atomic.Int64
	LastSentAt     atomic.Value // time.Time
}

func (m *ProducerMetrics) sent(n int, bytes int64) {
	if n == 0 {
		return
	}
	m.MessagesSent.Add(int64(n))
	m.BytesSent.Add(bytes)
	m.LastSentAt.Store(time.Now())
}

// WriterInterface is the part of *kafka.Writer the producer uses.
type WriterInterface interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.WriterStats
}

// Producer publishes ProducerMessages through a kafka-go writer.
type Producer struct {
	writer  WriterInterface
	config  ProducerConfig
	logger  logging.Logger
	closed  atomic.Bool
	metrics *ProducerMetrics
}

// NewProducer builds a producer.  The brokers are not contacted until the
// first publish.
func NewProducer(cfg ProducerConfig, logger logging.Logger) (*Producer, error) {
	if err := ValidateProducerConfig(cfg); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{}, // one run, one partition
		MaxAttempts:  cfg.MaxAttempts,
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		RequiredAcks: requiredAcks[cfg.Acks],
		Compression:  compressionCodec(cfg.CompressionCodec),
		Transport:    &kafka.Transport{DialTimeout: 10 * time.Second},
	}
	return newProducerWithWriter(w, cfg, logger), nil
}

func newProducerWithWriter(w WriterInterface, cfg ProducerConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, config: cfg.withDefaults(), logger: logger, metrics: &ProducerMetrics{}}
}

func (p *Producer) check(msg *ProducerMessage) error {
	switch {
	case msg == nil || msg.Topic == "":
		return apperrors.New(apperrors.ErrCodeValidation, "topic required")
	case len(msg.Value) == 0:
		return apperrors.New(apperrors.ErrCodeValidation, "value required")
	case len(msg.Value) > p.config.MaxMessageBytes:
		return apperrors.Newf(apperrors.ErrCodeValidation, "message of %d bytes exceeds limit of %d", len(msg.Value), p.config.MaxMessageBytes)
	}
	return nil
}

// Publish writes one message and waits for the configured acks.
func (p *Producer) Publish(ctx context.Context, msg *ProducerMessage) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if err := p.check(msg); err != nil {
		return err
	}

	start := time.Now()
	if err := p.writer.WriteMessages(ctx, toKafka(msg)); err != nil {
		p.metrics.MessagesFailed.Add(1)
		return apperrors.Wrap(err, apperrors.ErrCodePublishFailed, "publish failed")
	}
	p.metrics.sent(1, int64(len(msg.Value)))
	p.logger.Debug("message published", logging.String("topic", msg.Topic), logging.Duration("latency", time.Since(start)))
	return nil
}

// PublishBatch writes msgs in one call.  Write failures are reported per
// message in the result; the returned error covers invalid input only.
func (p *Producer) PublishBatch(ctx context.Context, msgs []*ProducerMessage) (*BatchPublishResult, error) {
	if p.closed.Load() {
		return nil, ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "messages empty")
	}
	out := make([]kafka.Message, 0, len(msgs))
	for _, msg := range msgs {
		if err := p.check(msg); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid message in batch")
		}
		out = append(out, toKafka(msg))
	}

	res, okBytes := batchResult(msgs, p.writer.WriteMessages(ctx, out...))
	p.metrics.sent(res.Succeeded, okBytes)
	p.metrics.MessagesFailed.Add(int64(res.Failed))
	p.logger.Debug("batch published", logging.Int("succeeded", res.Succeeded), logging.Int("failed", res.Failed))
	return res, nil
}

// batchResult splits a WriteMessages error into per-message outcomes and
// sums the bytes delivered.  An error that is not kafka.WriteErrors fails the
// whole batch.
func batchResult(msgs []*ProducerMessage, err error) (*BatchPublishResult, int64) {
	res := &BatchPublishResult{}
	var perMsg kafka.WriteErrors
	if err != nil && !errors.As(err, &perMsg) {
		res.Failed = len(msgs)
		res.Errors = []BatchItemError{{Index: -1, Error: err}}
		return res, 0
	}
	var okBytes int64
	for i, msg := range msgs {
		if i < len(perMsg) && perMsg[i] != nil {
			res.Failed++
			res.Errors = append(res.Errors, BatchItemError{Index: i, Topic: msg.Topic, Error: perMsg[i]})
			continue
		}
		res.Succeeded++
		okBytes += int64(len(msg.Value))
	}
	return res, okBytes
}

// GetMetrics returns a copy of the counters.
func (p *Producer) GetMetrics() *ProducerMetrics {
	snap := &ProducerMetrics{}
	snap.MessagesSent.Store(p.metrics.MessagesSent.Load())
	snap.MessagesFailed.Store(p.metrics.MessagesFailed.Load())
	snap.BytesSent.Store(p.metrics.BytesSent.Load())
	if at := p.metrics.LastSentAt.Load(); at != nil {
		snap.LastSentAt.Store(at)
	}
	return snap
}

// Close flushes the writer.  Calls after the first return nil.
func (p *Producer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	err := p.writer.Close()
	p.logger.Info("kafka producer closed", logging.Int64("sent", p.metrics.MessagesSent.Load()))
	return err
}

func toKafka(msg *ProducerMessage) kafka.Message {
	km := kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Timestamp,
	}
	if km.Time.IsZero() {
		km.Time = time.Now()
	}
	for k, v := range msg.Headers {
		km.Headers = append(km.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return km
}

//Personal.AI order the ending
