package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ia4pymes/chatbot-admin/internal/infra/http/middleware"
)

// OwnerLookup resuelve a qué email hay que avisar para un clientId.
type OwnerLookup interface {
	FindOwnerEmail(ctx context.Context, clientID string) (string, error)
}

type AlertMailer interface {
	SendHotLeadAlert(to, leadName, channel, contact string) error
}

type AlertMessenger interface {
	SendHotLeadAlert(phone, leadName, channel string) error
}

// Worker consume los eventos de lead y dispara las notificaciones.
// Hoy solo lead.hot genera avisos; el resto se confirma y ya.
type Worker struct {
	Channel    *amqp.Channel
	Owners     OwnerLookup
	Mailer     AlertMailer
	WhatsApp   AlertMessenger
	AlertPhone string // número de guardia para los avisos por WhatsApp
}

func NewWorker(ch *amqp.Channel, owners OwnerLookup, mailer AlertMailer, whatsapp AlertMessenger, alertPhone string) *Worker {
	return &Worker{
		Channel:    ch,
		Owners:     owners,
		Mailer:     mailer,
		WhatsApp:   whatsapp,
		AlertPhone: alertPhone,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual, más seguro)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ Fallo al registrar el consumidor RabbitMQ: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadEventPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] JSON inválido: %s", err)
				// mensaje podrido, fuera sin requeue para no atascar la cola
				d.Nack(false, false)
				continue
			}

			log.Printf("📥 [WORKER] Evento %s para lead %s (cliente %s)", payload.Type, payload.LeadID, payload.ClientID)

			if err := w.processMessage(context.Background(), payload); err != nil {
				log.Printf("❌ [WORKER] Error procesando %s: %s", payload.Type, err)
				d.Nack(false, false) // va a la DLQ
			} else {
				d.Ack(false)
			}
		}
	}()

	log.Printf(" [*] Worker escuchando en la cola '%s'", queueName)
	<-forever
}

func (w *Worker) processMessage(ctx context.Context, payload LeadEventPayload) error {
	if payload.Type != EventLeadHot {
		return nil
	}

	contact := payload.Email
	if contact == "" {
		contact = payload.Phone
	}

	if w.Owners != nil && w.Mailer != nil {
		ownerEmail, err := w.Owners.FindOwnerEmail(ctx, payload.ClientID)
		if err != nil {
			return err
		}
		if err := w.Mailer.SendHotLeadAlert(ownerEmail, payload.Name, payload.Channel, contact); err != nil {
			return err
		}
	}

	if w.WhatsApp != nil && w.AlertPhone != "" {
		if err := w.WhatsApp.SendHotLeadAlert(w.AlertPhone, payload.Name, payload.Channel); err != nil {
			// el email ya salió, el WhatsApp es un extra
			log.Printf("⚠️ [WORKER] Aviso WhatsApp no enviado: %s", err)
		}
	}

	middleware.RecordHotLeadAlert()
	log.Printf("🔥 [WORKER] Lead caliente notificado: %s", payload.Name)
	return nil
}
