package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
)

type OwnerLookup interface {
	FindByID(ctx context.Context, id string) (*entity.Profile, error)
}

type ReminderMailer interface {
	SendReminder(to string, data mail.ReminderEmailData) error
}

// Worker consome os lembretes disparados e avisa o dono do lead por e-mail.
type Worker struct {
	Channel *amqp.Channel
	Owners  OwnerLookup
	Mailer  ReminderMailer
	logger  zerolog.Logger
}

func NewWorker(ch *amqp.Channel, owners OwnerLookup, mailer ReminderMailer, logger zerolog.Logger) *Worker {
	return &Worker{
		Channel: ch,
		Owners:  owners,
		Mailer:  mailer,
		logger:  logger.With().Str("component", "reminder-worker").Logger(),
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false, // auto-ack (manual é mais seguro)
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.logger.Info().Str("queue", queueName).Msg("👷 reminder worker consuming")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.logger.Error().Err(err).Str("message_id", d.MessageId).Msg("❌ reminder email failed, sending to DLQ")
				d.Nack(false, false)
				continue
			}
			d.Ack(false)
		}
	}
}

var errMalformed = errors.New("mensagem malformada")

func (w *Worker) handle(ctx context.Context, body []byte) error {
	var payload ReminderPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if payload.LeadID == "" || payload.OwnerID == "" {
		return fmt.Errorf("%w: lead_id e owner_id são obrigatórios", errMalformed)
	}

	owner, err := w.Owners.FindByID(ctx, payload.OwnerID)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			// dono removido: nada a avisar
			w.logger.Warn().Str("owner_id", payload.OwnerID).Msg("reminder owner not found, dropping")
			return nil
		}
		return err
	}
	if owner.Email == "" {
		w.logger.Warn().Str("owner_id", payload.OwnerID).Msg("reminder owner has no email, dropping")
		return nil
	}

	data := mail.ReminderEmailData{
		OwnerName: owner.Name,
		LeadName:  payload.LeadName,
		Contact:   payload.Contact,
		DueAt:     payload.DueAt,
	}
	if payload.NoteText != nil {
		data.Note = *payload.NoteText
	}

	if err := w.Mailer.SendReminder(owner.Email, data); err != nil {
		return err
	}

	w.logger.Info().Str("lead_id", payload.LeadID).Str("owner_id", payload.OwnerID).Msg("✅ reminder email sent")
	return nil
}
