package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
)

const (
	EventTypeProfileHits = "profile.hits"
	SourceService        = "hbond-profiler"
	SchemaVersion        = "v1"
)

// Message headers written by ToMessage.
const (
	HeaderEventType     = "event_type"
	HeaderSourceService = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderTraceID       = "trace_id"
)

// EventEnvelope wraps every payload published on a hits topic.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

func serializationErr(err error, what string) error {
	return apperrors.Wrap(err, apperrors.ErrCodeSerialization, what)
}

func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, serializationErr(err, "failed to marshal payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		SchemaVersion: SchemaVersion,
		Payload:       raw,
	}, nil
}

// DecodePayload fills target from the payload.  An absent or null payload
// leaves target as it is.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return serializationErr(err, "failed to unmarshal payload")
	}
	return nil
}

func (e *EventEnvelope) headers() map[string]string {
	h := map[string]string{
		HeaderEventType:     e.EventType,
		HeaderSourceService: e.Source,
		HeaderSchemaVersion: e.SchemaVersion,
	}
	if e.TraceID != "" {
		h[HeaderTraceID] = e.TraceID
	}
	return h
}

// ToMessage encodes the envelope as the value of a message for topic.
func (e *EventEnvelope) ToMessage(topic string, key []byte) (*ProducerMessage, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return nil, serializationErr(err, "failed to marshal envelope")
	}
	return &ProducerMessage{Topic: topic, Key: key, Value: value, Headers: e.headers(), Timestamp: e.Timestamp}, nil
}

// MessageToEventEnvelope decodes a consumed message value.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	if msg == nil || len(msg.Value) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "empty message value")
	}
	env := &EventEnvelope{}
	if err := json.Unmarshal(msg.Value, env); err != nil {
		return nil, serializationErr(err, "failed to unmarshal envelope")
	}
	return env, nil
}

//Personal.AI order the ending
