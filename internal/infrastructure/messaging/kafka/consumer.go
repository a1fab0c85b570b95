package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

// ErrAlreadyRunning is returned by Start on a running consumer.
var ErrAlreadyRunning = apperrors.New(apperrors.ErrCodeConflict, "consumer already running")

// Dead-letter headers added to the original message headers.
const (
	HeaderOriginalTopic = "original_topic"
	HeaderErrorMessage  = "error_message"
)

const fetchErrorPause = time.Second

// startOffsets maps the accepted AutoOffsetReset values to reader offsets.
var startOffsets = map[string]int64{
	"earliest": kafka.FirstOffset,
	"latest":   kafka.LastOffset,
}

// RetryConfig defines how a failing handler is retried.
type RetryConfig struct {
	MaxRetries      int
	RetryBackoff    time.Duration
	MaxRetryBackoff time.Duration
	DeadLetterTopic string
}

// delay returns the pause before retry n, counted from zero.
func (r RetryConfig) delay(n int) time.Duration {
	d := r.RetryBackoff
	for ; n > 0 && d < r.MaxRetryBackoff; n-- {
		d *= 2
	}
	if d > r.MaxRetryBackoff {
		d = r.MaxRetryBackoff
	}
	return d
}

// ConsumerConfig holds configuration for the Consumer.
type ConsumerConfig struct {
	Brokers            []string
	GroupID            string
	Topics             []string
	AutoOffsetReset    string // "earliest" | "latest"
	AutoCommitInterval time.Duration
	SessionTimeout     time.Duration
	HeartbeatInterval  time.Duration
	MaxWait            time.Duration
	FetchMinBytes      int
	FetchMaxBytes      int
	RetryConfig        RetryConfig
}

// ConsumerConfigFrom builds the configuration of a hit event consumer.
func ConsumerConfigFrom(cfg config.KafkaConfig, fromBeginning bool) ConsumerConfig {
	out := ConsumerConfig{
		Brokers:         cfg.Brokers,
		GroupID:         cfg.GroupID,
		Topics:          []string{cfg.HitsTopic},
		AutoOffsetReset: "latest",
	}
	if fromBeginning {
		out.AutoOffsetReset = "earliest"
	}
	out.RetryConfig.DeadLetterTopic = cfg.DeadLetterTopic
	return out
}

// ValidateConsumerConfig validates cfg.
func ValidateConsumerConfig(cfg ConsumerConfig) error {
	invalid := func(format string, args ...interface{}) error {
		return apperrors.Newf(apperrors.ErrCodeValidation, format, args...)
	}
	switch {
	case len(cfg.Brokers) == 0:
		return invalid("brokers required")
	case cfg.GroupID == "":
		return invalid("group id required")
	case len(cfg.Topics) == 0:
		return invalid("at least one topic required")
	case cfg.RetryConfig.MaxRetries < 0:
		return invalid("max retries must be >= 0, got %d", cfg.RetryConfig.MaxRetries)
	}
	if _, ok := startOffsets[cfg.AutoOffsetReset]; cfg.AutoOffsetReset != "" && !ok {
		return invalid("invalid auto offset reset %q", cfg.AutoOffsetReset)
	}
	return nil
}

func (cfg ConsumerConfig) withDefaults() ConsumerConfig {
	setDuration := func(d *time.Duration, def time.Duration) {
		if *d == 0 {
			*d = def
		}
	}
	if cfg.AutoOffsetReset == "" {
		cfg.AutoOffsetReset = "earliest"
	}
	if cfg.FetchMinBytes == 0 {
		cfg.FetchMinBytes = 1
	}
	if cfg.FetchMaxBytes == 0 {
		cfg.FetchMaxBytes = 10 << 20
	}
	if cfg.RetryConfig.MaxRetries == 0 {
		cfg.RetryConfig.MaxRetries = 3
	}
	setDuration(&cfg.SessionTimeout, 30*time.Second)
	setDuration(&cfg.HeartbeatInterval, 3*time.Second)
	setDuration(&cfg.MaxWait, 10*time.Second)
	setDuration(&cfg.RetryConfig.RetryBackoff, time.Second)
	setDuration(&cfg.RetryConfig.MaxRetryBackoff, 30*time.Second)
	return cfg
}

func (cfg ConsumerConfig) readerConfig() kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:           cfg.Brokers,
		GroupID:           cfg.GroupID,
		GroupTopics:       cfg.Topics,
		MinBytes:          cfg.FetchMinBytes,
		MaxBytes:          cfg.FetchMaxBytes,
		MaxWait:           cfg.MaxWait,
		SessionTimeout:    cfg.SessionTimeout,
		HeartbeatInterval: cfg.HeartbeatInterval,
		StartOffset:       startOffsets[cfg.AutoOffsetReset],
		Dialer:            &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true},
	}
}

// ConsumerMetrics holds consumer metrics.
type ConsumerMetrics struct {
	MessagesConsumed     atomic.Int64
	MessagesProcessed    atomic.Int64
	MessagesFailed       atomic.Int64
	MessagesRetried      atomic.Int64
	MessagesDeadLettered atomic.Int64
	LastConsumedAt       atomic.Value // time.Time
	Lag                  atomic.Int64
}

func (m *ConsumerMetrics) observe(km kafka.Message) {
	m.MessagesConsumed.Add(1)
	m.LastConsumedAt.Store(time.Now())
	if km.HighWaterMark > 0 {
		m.Lag.Store(km.HighWaterMark - km.Offset - 1)
	}
}

// ReaderInterface abstracts kafka.Reader for testing.
type ReaderInterface interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
	Stats() kafka.ReaderStats
}

// MessagePublisher is the part of Producer used for dead-lettering.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
	Close() error
}

// Consumer reads messages of a consumer group and dispatches them to topic
// handlers.  Offsets are committed only after the handler has finished.
type Consumer struct {
	reader     ReaderInterface
	deadLetter MessagePublisher
	config     ConsumerConfig
	logger     logging.Logger
	metrics    *ConsumerMetrics

	mu       sync.RWMutex
	handlers map[string]MessageHandler

	running atomic.Bool
	cancel  context.CancelFunc
	done    sync.WaitGroup
}

// NewConsumer creates a new Consumer.
func NewConsumer(cfg ConsumerConfig, logger logging.Logger) (*Consumer, error) {
	if err := ValidateConsumerConfig(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	cfg = cfg.withDefaults()

	var deadLetter MessagePublisher
	if cfg.RetryConfig.DeadLetterTopic != "" {
		p, err := NewProducer(ProducerConfig{Brokers: cfg.Brokers}, logger)
		if err != nil {
			return nil, err
		}
		deadLetter = p
	}
	return newConsumerWithReader(kafka.NewReader(cfg.readerConfig()), cfg, deadLetter, logger), nil
}

func newConsumerWithReader(r ReaderInterface, cfg ConsumerConfig, deadLetter MessagePublisher, logger logging.Logger) *Consumer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Consumer{
		reader:     r,
		deadLetter: deadLetter,
		config:     cfg.withDefaults(),
		logger:     logger,
		metrics:    &ConsumerMetrics{},
		handlers:   make(map[string]MessageHandler),
	}
}

// Subscribe registers handler for topic, replacing any previous one.
func (c *Consumer) Subscribe(topic string, handler MessageHandler) {
	c.mu.Lock()
	c.handlers[topic] = handler
	c.mu.Unlock()
	c.logger.Info("subscribed to topic", logging.String("topic", topic))
}

func (c *Consumer) handlerFor(topic string) (MessageHandler, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.handlers[topic]
	return h, ok
}

// Start runs the consume loop in the background until Close or ctx ends.
func (c *Consumer) Start(ctx context.Context) error {
	if c.running.Swap(true) {
		return ErrAlreadyRunning
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done.Add(1)
	go func() {
		defer c.done.Done()
		c.consumeLoop(ctx)
	}()
	c.logger.Info("kafka consumer started", logging.String("group", c.config.GroupID))
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	for ctx.Err() == nil {
		km, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Error("fetch message failed", logging.Err(err))
				_ = pause(ctx, fetchErrorPause)
			}
			continue
		}
		c.metrics.observe(km)

		if handler, ok := c.handlerFor(km.Topic); !ok {
			c.logger.Warn("no handler for topic", logging.String("topic", km.Topic))
		} else if err := c.processMessage(ctx, fromKafka(km), handler); err != nil {
			// leave the offset uncommitted so the group redelivers it
			return
		}

		if err := c.reader.CommitMessages(ctx, km); err != nil && ctx.Err() == nil {
			c.logger.Error("commit failed", logging.Err(err), logging.Int64("offset", km.Offset))
		}
	}
}

// processMessage runs handler, retrying with capped exponential backoff.
// Exhausted messages go to the dead-letter topic when one is configured and
// are dropped otherwise.  The only error returned is ctx's.
func (c *Consumer) processMessage(ctx context.Context, msg *Message, handler MessageHandler) error {
	retry := c.config.RetryConfig
	err := handler(ctx, msg)
	for n := 0; err != nil && n < retry.MaxRetries; n++ {
		c.metrics.MessagesRetried.Add(1)
		if perr := pause(ctx, retry.delay(n)); perr != nil {
			return perr
		}
		err = handler(ctx, msg)
	}
	if err == nil {
		c.metrics.MessagesProcessed.Add(1)
		return nil
	}

	c.metrics.MessagesFailed.Add(1)
	c.logger.Error("message processing failed after retries",
		logging.String("topic", msg.Topic),
		logging.Int64("offset", msg.Offset),
		logging.Int("retries", retry.MaxRetries),
		logging.Err(err))
	c.sendDeadLetter(ctx, msg, err)
	return nil
}

func (c *Consumer) sendDeadLetter(ctx context.Context, msg *Message, cause error) {
	topic := c.config.RetryConfig.DeadLetterTopic
	if c.deadLetter == nil || topic == "" {
		return
	}
	headers := make(map[string]string, len(msg.Headers)+2)
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalTopic] = msg.Topic
	headers[HeaderErrorMessage] = cause.Error()

	err := c.deadLetter.Publish(ctx, &ProducerMessage{Topic: topic, Key: msg.Key, Value: msg.Value, Headers: headers})
	if err != nil {
		c.logger.Error("failed to send to dead letter topic", logging.String("topic", topic), logging.Err(err))
		return
	}
	c.metrics.MessagesDeadLettered.Add(1)
}

func fromKafka(km kafka.Message) *Message {
	msg := &Message{
		Topic:     km.Topic,
		Partition: km.Partition,
		Offset:    km.Offset,
		Key:       km.Key,
		Value:     km.Value,
		Timestamp: km.Time,
		Headers:   make(map[string]string, len(km.Headers)),
	}
	for _, h := range km.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// pause waits d or until ctx ends, returning ctx's error in the latter case.
func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// GetMetrics returns a metrics snapshot.
func (c *Consumer) GetMetrics() *ConsumerMetrics {
	src, out := c.metrics, &ConsumerMetrics{}
	out.MessagesConsumed.Store(src.MessagesConsumed.Load())
	out.MessagesProcessed.Store(src.MessagesProcessed.Load())
	out.MessagesFailed.Store(src.MessagesFailed.Load())
	out.MessagesRetried.Store(src.MessagesRetried.Load())
	out.MessagesDeadLettered.Store(src.MessagesDeadLettered.Load())
	out.Lag.Store(src.Lag.Load())
	if at, ok := src.LastConsumedAt.Load().(time.Time); ok {
		out.LastConsumedAt.Store(at)
	}
	return out
}

// Close stops the loop and closes the reader.  Closing a consumer that was
// never started, or closing twice, is a no-op.
func (c *Consumer) Close() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	c.done.Wait()

	err := c.reader.Close()
	if c.deadLetter != nil {
		if dlErr := c.deadLetter.Close(); err == nil {
			err = dlErr
		}
	}
	c.logger.Info("kafka consumer closed",
		logging.Int64("consumed", c.metrics.MessagesConsumed.Load()),
		logging.Int64("dead_lettered", c.metrics.MessagesDeadLettered.Load()))
	return err
}

//Personal.AI order the ending
