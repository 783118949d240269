package service

import (
	"context"
	"encoding/json"

	"storyspark-be/internal/dto"
	"storyspark-be/internal/mapper"
	"storyspark-be/internal/pkg/logger"
	"storyspark-be/internal/repository/memory"
	internalWS "storyspark-be/internal/websocket"
	"storyspark-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// WebSocket frame types pushed to status stream clients.
const (
	MessageStatus       = "status"
	MessageSessionEnded = "session_ended"
)

// SessionNotifier pushes frames to the clients watching a session.
// Implemented by the WebSocket hub.
type SessionNotifier interface {
	SendToSession(sessionID string, msg internalWS.Message)
}

// StatusFrame is the data of a "status" frame.
type StatusFrame struct {
	Event   string               `json:"event"`
	Session *dto.SessionResponse `json:"session"`
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	sessions   *memory.SessionRepository
	mapper     *mapper.SessionMapper
	notifier   SessionNotifier
	exporter   events.Publisher
	logger     logger.ILogger
}

// NewConsumerService relays bus events to status stream clients and, when
// exporter is not nil, to the external event stream.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	sessions *memory.SessionRepository,
	mapper *mapper.SessionMapper,
	notifier SessionNotifier,
	exporter events.Publisher,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		sessions:   sessions,
		mapper:     mapper,
		notifier:   notifier,
		exporter:   exporter,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	// Nothing here is worth redelivering, every message is acked
	defer msg.Ack()

	var env eventEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		return
	}
	event := env.event()
	sessionID := events.SessionID(event)

	cs.logger.Debug("ConsumerService", "Event received", map[string]interface{}{
		"type":       event.Type,
		"session_id": sessionID,
	})

	if sessionID != "" {
		cs.notify(event.Type, sessionID)
	}

	if cs.exporter != nil {
		if err := cs.exporter.Publish(ctx, event); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to export event", map[string]interface{}{
				"type":  event.Type,
				"error": err.Error(),
			})
		}
	}
}

func (cs *consumerService) notify(eventType, sessionID string) {
	if eventType == events.SessionEnded {
		cs.notifier.SendToSession(sessionID, internalWS.Message{Type: MessageSessionEnded})
		return
	}

	sess, ok := cs.sessions.Peek(sessionID)
	if !ok {
		return
	}
	sess.Lock()
	snapshot := cs.mapper.ToResponse(sess)
	sess.Unlock()

	cs.notifier.SendToSession(sessionID, internalWS.Message{
		Type: MessageStatus,
		Data: StatusFrame{Event: eventType, Session: snapshot},
	})
}
