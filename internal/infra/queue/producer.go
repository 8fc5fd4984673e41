package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/ligue-crm/internal/reminder"
)

// ReminderPayload é a mensagem publicada quando um lembrete dispara.
type ReminderPayload struct {
	EventID  string    `json:"event_id"`
	LeadID   string    `json:"lead_id"`
	LeadName string    `json:"lead_name"`
	Contact  string    `json:"contact_info"`
	OwnerID  string    `json:"owner_id"`
	NoteText *string   `json:"note_text"`
	DueAt    time.Time `json:"due_at"`
	FiredAt  time.Time `json:"fired_at"`
}

func payloadFrom(ev reminder.Event) ReminderPayload {
	return ReminderPayload{
		EventID:  ev.ID,
		LeadID:   ev.LeadID,
		LeadName: ev.LeadName,
		Contact:  ev.Contact,
		OwnerID:  ev.OwnerID,
		NoteText: ev.NoteText,
		DueAt:    ev.DueAt,
		FiredAt:  ev.FiredAt,
	}
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type ReminderProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *ReminderProducer {
	return &ReminderProducer{Ch: ch}
}

func (p *ReminderProducer) PublishReminder(ctx context.Context, payload ReminderPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("erro ao converter payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    payload.EventID,
			Timestamp:    payload.FiredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}
	return nil
}

// Play implementa reminder.Cue: o "aviso" do lembrete sai pela fila.
func (p *ReminderProducer) Play(ctx context.Context, ev reminder.Event) error {
	return p.PublishReminder(ctx, payloadFrom(ev))
}
