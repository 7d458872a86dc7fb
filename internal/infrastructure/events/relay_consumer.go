package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/hilthontt/chatrelay/internal/domain"
	"github.com/hilthontt/chatrelay/internal/infrastructure/contracts"
	"github.com/hilthontt/chatrelay/internal/infrastructure/messaging"
	"github.com/rabbitmq/amqp091-go"
)

type relayConsumer struct {
	rabbitmq  *messaging.RabbitMQ
	auditRepo domain.RelayAuditRepository
}

func NewRelayConsumer(rabbitmq *messaging.RabbitMQ, auditRepo domain.RelayAuditRepository) *relayConsumer {
	return &relayConsumer{
		rabbitmq:  rabbitmq,
		auditRepo: auditRepo,
	}
}

func (c *relayConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.AuditQueue, func(ctx context.Context, msg amqp091.Delivery) error {
		var message contracts.AmqpMessage
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			return err
		}

		var payload messaging.RelayEventData
		if err := json.Unmarshal(message.Data, &payload); err != nil {
			log.Printf("Failed to unmarshal message: %v", err)
			return err
		}

		if c.auditRepo == nil {
			log.Printf("Relay event received: %+v", payload.Entry)
			return nil
		}

		return c.auditRepo.Log(ctx, &payload.Entry)
	})
}
