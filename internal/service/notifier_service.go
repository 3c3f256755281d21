package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"neuroviz-server/internal/pkg/logger"
	"neuroviz-server/pkg/events"
)

// EventDelivery pushes a session event to connected operator consoles.
// Implemented by the WebSocket hub.
type EventDelivery interface {
	Broadcast(eventType string, data map[string]interface{}, occurredAt time.Time)
}

type INotifierService interface {
	Consume(ctx context.Context) error
}

// notifierService drains the internal event bus and fans events out to
// the operator console feed. It decouples the session loop from console
// delivery: publishing never waits on a websocket write.
type notifierService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	delivery  EventDelivery
	logger    logger.ILogger
}

func NewNotifierService(
	pubSub *gochannel.GoChannel,
	topicName string,
	delivery EventDelivery,
	log logger.ILogger,
) INotifierService {
	return &notifierService{
		pubSub:    pubSub,
		topicName: topicName,
		delivery:  delivery,
		logger:    log,
	}
}

func (s *notifierService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *notifierService) processMessage(msg *message.Message) {
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		s.logger.Error("notifier", "failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages must not be retried forever
		return
	}

	if s.delivery != nil {
		s.delivery.Broadcast(envelope.Type, envelope.Data, time.UnixMilli(envelope.OccurredAt))
	}
	if envelope.Type == events.TypeResultSaved {
		s.logger.Info("notifier", "experiment result stored", map[string]interface{}{"data": envelope.Data})
	}
	msg.Ack()
}
