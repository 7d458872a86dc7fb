package events

import (
	"context"
	"encoding/json"

	"github.com/hilthontt/chatrelay/internal/domain"
	"github.com/hilthontt/chatrelay/internal/infrastructure/contracts"
	"github.com/hilthontt/chatrelay/internal/infrastructure/messaging"
)

type RelayPublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewRelayPublisher(rabbitmq *messaging.RabbitMQ) *RelayPublisher {
	return &RelayPublisher{
		rabbitmq: rabbitmq,
	}
}

// PublishRelayEvent forwards one relay audit entry to the broker. The
// relay treats failures as best-effort; callers log and move on.
func (p *RelayPublisher) PublishRelayEvent(ctx context.Context, entry *domain.RelayAuditLog) error {
	payload := messaging.RelayEventData{
		Entry: *entry,
	}

	entryJSON, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.rabbitmq.PublishMessage(ctx, routingKeyFor(entry.EventType), contracts.AmqpMessage{
		RoomID: entry.RoomID,
		Data:   entryJSON,
	})
}

func routingKeyFor(eventType domain.RelayEventType) string {
	switch eventType {
	case domain.EventRoomJoined:
		return contracts.EventRoomJoined
	case domain.EventMessageRelayed:
		return contracts.EventMessageRelayed
	case domain.EventTypingRelayed:
		return contracts.EventTypingRelayed
	case domain.EventClientDisconnected:
		return contracts.EventClientDisconnected
	}
	return contracts.EventClientDisconnected
}
