package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventLeadCreated       = "lead.created"
	EventLeadUpdated       = "lead.updated"
	EventLeadStatusChanged = "lead.status_changed"
	EventLeadHot           = "lead.hot"
	EventLeadDeleted       = "lead.deleted"
)

// LeadEventPayload es lo que viaja por el broker cada vez que el panel
// toca un lead. El worker decide qué notificaciones disparar según Type.
type LeadEventPayload struct {
	Type        string    `json:"type"`
	ClientID    string    `json:"clientId"`
	Channel     string    `json:"channel"`
	LeadID      string    `json:"leadId"`
	Status      string    `json:"status,omitempty"`
	Temperature string    `json:"temperature,omitempty"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLeadEvent(ctx context.Context, payload LeadEventPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error al serializar el evento: %v", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // el evento sobrevive a un reinicio del broker
		},
	)
	if err != nil {
		return fmt.Errorf("fallo al publicar en RabbitMQ: %v", err)
	}

	return nil
}
