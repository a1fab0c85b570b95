package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/hbond-profiler/internal/testutil"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

type mockKafkaConn struct {
	createFunc func(topics ...kafka.TopicConfig) error
	readFunc   func(topics ...string) ([]kafka.Partition, error)
	created    []kafka.TopicConfig
}

func (m *mockKafkaConn) CreateTopics(topics ...kafka.TopicConfig) error {
	m.created = append(m.created, topics...)
	if m.createFunc != nil {
		return m.createFunc(topics...)
	}
	return nil
}

func (m *mockKafkaConn) ReadPartitions(topics ...string) ([]kafka.Partition, error) {
	if m.readFunc != nil {
		return m.readFunc(topics...)
	}
	return nil, nil
}

func (m *mockKafkaConn) Close() error { return nil }

func newTestTopicManager(conn ConnInterface) *TopicManager {
	return &TopicManager{conn: conn, logger: testutil.NewMockLogger()}
}

func TestDefaultTopics(t *testing.T) {
	topics := DefaultTopics("hb.hits")
	require.Len(t, topics, 1)
	assert.Equal(t, "hb.hits", topics[0].Name)
	assert.Positive(t, topics[0].NumPartitions)
}

func TestCreateTopic_ConfigEntries(t *testing.T) {
	conn := &mockKafkaConn{}
	m := newTestTopicManager(conn)

	err := m.CreateTopic(context.Background(), TopicConfig{
		Name:              "hb.hits",
		NumPartitions:     3,
		ReplicationFactor: 1,
		RetentionMs:       1000,
		CleanupPolicy:     "delete",
	})
	require.NoError(t, err)
	require.Len(t, conn.created, 1)
	assert.Equal(t, "hb.hits", conn.created[0].Topic)
	assert.ElementsMatch(t, []kafka.ConfigEntry{
		{ConfigName: "retention.ms", ConfigValue: "1000"},
		{ConfigName: "cleanup.policy", ConfigValue: "delete"},
	}, conn.created[0].ConfigEntries)
}

func TestCreateTopic_Validation(t *testing.T) {
	m := newTestTopicManager(&mockKafkaConn{})
	for _, cfg := range []TopicConfig{
		{NumPartitions: 1, ReplicationFactor: 1},
		{Name: "t", ReplicationFactor: 1},
		{Name: "t", NumPartitions: 1},
	} {
		err := m.CreateTopic(context.Background(), cfg)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))
	}
}

func TestCreateTopic_AlreadyExists(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(...kafka.TopicConfig) error { return errors.New("[36] Topic Already Exists") },
		readFunc: func(...string) ([]kafka.Partition, error) {
			return []kafka.Partition{{Topic: "t", ID: 0}}, nil
		},
	}
	m := newTestTopicManager(conn)
	assert.NoError(t, m.CreateTopic(context.Background(), TopicConfig{Name: "t", NumPartitions: 1, ReplicationFactor: 1}))
}

func TestEnsureTopics_Failure(t *testing.T) {
	conn := &mockKafkaConn{
		createFunc: func(...kafka.TopicConfig) error { return errors.New("not controller") },
	}
	m := newTestTopicManager(conn)
	err := m.EnsureTopics(context.Background(), DefaultTopics("hb.hits"))
	assert.True(t, apperrors.IsCode(err, apperrors.CodeMessageQueueError))
}

func TestEventEnvelope_RoundTrip(t *testing.T) {
	env, err := NewEventEnvelope(EventTypeProfileHits, SourceService, map[string]int{"n": 2})
	require.NoError(t, err)
	env.TraceID = "trace-1"
	env.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	pm, err := env.ToMessage("hb.hits", []byte("run-1"))
	require.NoError(t, err)
	assert.Equal(t, "hb.hits", pm.Topic)
	assert.Equal(t, []byte("run-1"), pm.Key)
	assert.Equal(t, EventTypeProfileHits, pm.Headers[HeaderEventType])
	assert.Equal(t, SourceService, pm.Headers[HeaderSourceService])
	assert.Equal(t, SchemaVersion, pm.Headers[HeaderSchemaVersion])
	assert.Equal(t, "trace-1", pm.Headers[HeaderTraceID])

	back, err := MessageToEventEnvelope(&Message{Value: pm.Value})
	require.NoError(t, err)
	assert.Equal(t, env.EventID, back.EventID)
	assert.True(t, env.Timestamp.Equal(back.Timestamp))

	var payload map[string]int
	require.NoError(t, back.DecodePayload(&payload))
	assert.Equal(t, 2, payload["n"])
}

func TestMessageToEventEnvelope_Invalid(t *testing.T) {
	_, err := MessageToEventEnvelope(&Message{})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeValidation))

	_, err = MessageToEventEnvelope(&Message{Value: []byte("{not json")})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeSerialization))
}

//Personal.AI order the ending
