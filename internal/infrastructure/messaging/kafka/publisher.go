package kafka

import (
	"context"
	"fmt"

	"github.com/turtacn/hbond-profiler/internal/infrastructure/monitoring/logging"
	apperrors "github.com/turtacn/hbond-profiler/pkg/errors"
	"github.com/turtacn/hbond-profiler/pkg/types/profile"
)

// BatchPublisher is the part of Producer the HitPublisher needs.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, msgs []*ProducerMessage) (*BatchPublishResult, error)
}

// HitPublisher announces profiled frames as profile.hits envelopes.
type HitPublisher struct {
	producer BatchPublisher
	topic    string
	logger   logging.Logger
}

// NewHitPublisher creates a HitPublisher writing to topic.
func NewHitPublisher(producer BatchPublisher, topic string, logger logging.Logger) *HitPublisher {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &HitPublisher{producer: producer, topic: topic, logger: logger}
}

// PublishHits publishes one message per event, keyed by run id so that a
// run's frames stay ordered on one partition.  Any failed message fails the
// call.
func (p *HitPublisher) PublishHits(ctx context.Context, events []profile.HitEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]*ProducerMessage, 0, len(events))
	for i := range events {
		ev := &events[i]
		env, err := NewEventEnvelope(EventTypeProfileHits, SourceService, ev)
		if err != nil {
			return err
		}
		if ev.EventID != "" {
			env.EventID = ev.EventID
		}
		if !ev.OccurredAt.IsZero() {
			env.Timestamp = ev.OccurredAt.UTC()
		}
		env.Metadata = map[string]string{"profile_id": ev.ProfileID}

		msg, err := env.ToMessage(p.topic, []byte(ev.RunID))
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}

	result, err := p.producer.PublishBatch(ctx, msgs)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		p.logger.Error("hit events not delivered",
			logging.String("topic", p.topic),
			logging.Int("failed", result.Failed),
			logging.Int("succeeded", result.Succeeded))
		msg := fmt.Sprintf("%d of %d hit events failed", result.Failed, len(msgs))
		if len(result.Errors) == 0 {
			return apperrors.New(apperrors.ErrCodePublishFailed, msg)
		}
		return apperrors.Wrap(result.Errors[0].Error, apperrors.ErrCodePublishFailed, msg)
	}

	p.logger.Debug("hit events published",
		logging.String("topic", p.topic),
		logging.Int("events", len(msgs)))
	return nil
}

// DecodeHitEvent extracts the HitEvent carried by a consumed message.
func DecodeHitEvent(msg *Message) (*profile.HitEvent, error) {
	env, err := MessageToEventEnvelope(msg)
	if err != nil {
		return nil, err
	}
	if env.EventType != EventTypeProfileHits {
		return nil, apperrors.Newf(apperrors.ErrCodeValidation, "unexpected event type %q", env.EventType)
	}
	var ev profile.HitEvent
	if err := env.DecodePayload(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

//Personal.AI order the ending
