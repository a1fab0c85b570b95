package kafka

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hbond-profiler/internal/config"
	"github.com/turtacn/hbond-profiler/internal/testutil"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

type mockKafkaWriter struct {
	writeFunc func(ctx context.Context, msgs ...kafka.Message) error
	closeFunc func() error
	closed    int
}

func (m *mockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, msgs...)
	}
	return nil
}

func (m *mockKafkaWriter) Close() error {
	m.closed++
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockKafkaWriter) Stats() kafka.WriterStats {
	return kafka.WriterStats{}
}

func newTestProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:         []string{"localhost:9092"},
		MaxMessageBytes: 64,
	}
}

func newTestProducerMessage(topic, key, value string) *ProducerMessage {
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: []byte(value),
	}
}

func newTestProducer(w WriterInterface) *Producer {
	return newProducerWithWriter(w, newTestProducerConfig(), testutil.NewMockLogger())
}

func TestValidateProducerConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProducerConfig)
		wantErr bool
	}{
		{"valid", func(*ProducerConfig) {}, false},
		{"empty brokers", func(c *ProducerConfig) { c.Brokers = nil }, true},
		{"negative attempts", func(c *ProducerConfig) { c.MaxAttempts = -1 }, true},
		{"bad acks", func(c *ProducerConfig) { c.Acks = "most" }, true},
		{"acks all", func(c *ProducerConfig) { c.Acks = "all" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestProducerConfig()
			tt.mutate(&cfg)
			err := ValidateProducerConfig(cfg)
			if tt.wantErr {
				assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProducerConfigFrom(t *testing.T) {
	cfg := ProducerConfigFrom(config.KafkaConfig{
		Brokers:     []string{"k1:9092"},
		Acks:        "all",
		Compression: "zstd",
		MaxAttempts: 5,
		BatchSize:   10,
	})
	assert.Equal(t, []string{"k1:9092"}, cfg.Brokers)
	assert.Equal(t, "all", cfg.Acks)
	assert.Equal(t, "zstd", cfg.CompressionCodec)
	assert.Equal(t, 5, cfg.MaxAttempts)
	assert.Equal(t, 10, cfg.BatchSize)
}

func TestCompressionCodec(t *testing.T) {
	assert.Equal(t, kafka.Gzip, compressionCodec("gzip"))
	assert.Equal(t, kafka.Snappy, compressionCodec("snappy"))
	assert.Equal(t, kafka.Lz4, compressionCodec("lz4"))
	assert.Equal(t, kafka.Zstd, compressionCodec("zstd"))
	assert.Equal(t, kafka.Compression(0), compressionCodec("none"))
}

func TestNewProducer_AppliesDefaults(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}}, nil)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, 3, p.config.MaxAttempts)
	assert.Equal(t, 1024*1024, p.config.MaxMessageBytes)
}

func TestPublish_Success(t *testing.T) {
	var captured []kafka.Message
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		captured = append(captured, msgs...)
		return nil
	}}
	p := newTestProducer(w)

	msg := newTestProducerMessage("hits", "run-1", "payload")
	msg.Headers = map[string]string{"event_type": "profile.hits"}
	require.NoError(t, p.Publish(context.Background(), msg))

	require.Len(t, captured, 1)
	assert.Equal(t, "hits", captured[0].Topic)
	assert.Equal(t, []byte("run-1"), captured[0].Key)
	assert.Equal(t, []byte("payload"), captured[0].Value)
	require.Len(t, captured[0].Headers, 1)
	assert.Equal(t, "event_type", captured[0].Headers[0].Key)
	assert.False(t, captured[0].Time.IsZero())

	m := p.GetMetrics()
	assert.Equal(t, int64(1), m.MessagesSent.Load())
	assert.Equal(t, int64(len("payload")), m.BytesSent.Load())
}

func TestPublish_Validation(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})

	err := p.Publish(context.Background(), newTestProducerMessage("", "k", "v"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	err = p.Publish(context.Background(), newTestProducerMessage("t", "k", ""))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	big := make([]byte, 65)
	err = p.Publish(context.Background(), &ProducerMessage{Topic: "t", Value: big})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestPublish_WriteFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("broker down")
	}}
	p := newTestProducer(w)

	err := p.Publish(context.Background(), newTestProducerMessage("t", "k", "v"))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodePublishFailed))
	assert.Equal(t, int64(1), p.GetMetrics().MessagesFailed.Load())
}

func TestPublishBatch_Success(t *testing.T) {
	var n int
	w := &mockKafkaWriter{writeFunc: func(_ context.Context, msgs ...kafka.Message) error {
		n = len(msgs)
		return nil
	}}
	p := newTestProducer(w)

	res, err := p.PublishBatch(context.Background(), []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, res.Succeeded)
	assert.Zero(t, res.Failed)
}

func TestPublishBatch_PartialFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return kafka.WriteErrors{nil, errors.New("leader not available")}
	}}
	p := newTestProducer(w)

	res, err := p.PublishBatch(context.Background(), []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.Equal(t, "t", res.Errors[0].Topic)
}

func TestPublishBatch_TotalFailure(t *testing.T) {
	w := &mockKafkaWriter{writeFunc: func(context.Context, ...kafka.Message) error {
		return errors.New("dial tcp: connection refused")
	}}
	p := newTestProducer(w)

	res, err := p.PublishBatch(context.Background(), []*ProducerMessage{
		newTestProducerMessage("t", "a", "1"),
		newTestProducerMessage("t", "b", "2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, -1, res.Errors[0].Index)
}

func TestPublishBatch_InvalidInput(t *testing.T) {
	p := newTestProducer(&mockKafkaWriter{})

	_, err := p.PublishBatch(context.Background(), nil)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = p.PublishBatch(context.Background(), []*ProducerMessage{newTestProducerMessage("", "k", "v")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
}

func TestProducerClose(t *testing.T) {
	w := &mockKafkaWriter{}
	p := newTestProducer(w)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, w.closed)

	assert.Equal(t, ErrProducerClosed, p.Publish(context.Background(), newTestProducerMessage("t", "k", "v")))
	_, err := p.PublishBatch(context.Background(), []*ProducerMessage{newTestProducerMessage("t", "k", "v")})
	assert.Equal(t, ErrProducerClosed, err)
}

//Personal.AI order the ending
