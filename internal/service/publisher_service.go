package service

import (
	"context"
	"encoding/json"
	"time"

	"storyspark-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const EventTopic = "story_events"

const eventTypeMetadata = "event_type"

// eventEnvelope is the JSON body of a story event on the in-process bus.
type eventEnvelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func (e eventEnvelope) event() events.BaseEvent {
	return events.BaseEvent{Type: e.Type, Data: e.Data, OccurredAt: e.OccurredAt}
}

type IPublisherService interface {
	events.Publisher
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(eventEnvelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(eventTypeMetadata, event.EventType())
	msg.SetContext(ctx)

	return ps.publisher.Publish(ps.topicName, msg)
}
