package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	DefaultNotesLimit = 20
	MaxNotesLimit     = 200
)

type CreateLeadInput struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	LandlordName string     `json:"landlord_name"`
	Status       string     `json:"status"`
	NextActionAt *time.Time `json:"next_action_at"`
	ReminderNote string     `json:"reminder_note"`
}

type UpdateLeadInput struct {
	Name         *string    `json:"name"`
	Email        *string    `json:"email"`
	Phone        *string    `json:"phone"`
	Address      *string    `json:"address"`
	LandlordName *string    `json:"landlord_name"`
	Status       *string    `json:"status"`
	NextActionAt *time.Time `json:"next_action_at"`
	ClearAction  bool       `json:"clear_next_action"`
}

type LeadsUseCase struct {
	Leads     entity.LeadRepositoryInterface
	Notes     entity.NoteRepositoryInterface
	Reminders ReminderRefresher
	logger    zerolog.Logger

	// uma gravação por lead de cada vez
	inflight sync.Map
}

func NewLeadsUseCase(leads entity.LeadRepositoryInterface, notes entity.NoteRepositoryInterface, reminders ReminderRefresher, logger zerolog.Logger) *LeadsUseCase {
	if reminders == nil {
		reminders = noopRefresher{}
	}
	return &LeadsUseCase{
		Leads:     leads,
		Notes:     notes,
		Reminders: reminders,
		logger:    logger.With().Str("component", "leads").Logger(),
	}
}

// List devolve os leads visíveis, mais novos primeiro, filtrados pela busca livre.
func (uc *LeadsUseCase) List(ctx context.Context, viewer entity.Viewer, query string) ([]entity.Lead, error) {
	leads, err := uc.Leads.ListVisible(ctx, entity.ScopeFor(viewer))
	if err != nil {
		return nil, technical("DATABASE_ERROR", "failed to load leads", err)
	}
	if strings.TrimSpace(query) == "" {
		return leads, nil
	}

	out := make([]entity.Lead, 0, len(leads))
	for i := range leads {
		if leads[i].Matches(query) {
			out = append(out, leads[i])
		}
	}
	return out, nil
}

func (uc *LeadsUseCase) Get(ctx context.Context, viewer entity.Viewer, id string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("LEAD_NOT_FOUND", "Lead not found")
		}
		return nil, technical("DATABASE_ERROR", "failed to load lead", err)
	}
	if !viewer.CanEdit(lead) {
		// não revela a existência de leads de outros usuários
		return nil, notFound("LEAD_NOT_FOUND", "Lead not found")
	}
	return lead, nil
}

// Create grava o lead e, se houver, a nota de lembrete. Se a nota falhar o
// lead é removido: nada fica pela metade.
func (uc *LeadsUseCase) Create(ctx context.Context, viewer entity.Viewer, input CreateLeadInput) (*entity.Lead, error) {
	lead, err := entity.NewLead(viewer.ID, input.Name, input.Email, input.Phone, input.Address,
		input.LandlordName, entity.Status(input.Status), input.NextActionAt)
	if err != nil {
		return nil, invalid("INVALID_LEAD", err.Error())
	}

	var note *entity.Note
	if strings.TrimSpace(input.ReminderNote) != "" {
		note, err = entity.NewNote(lead.ID, viewer.ID, input.ReminderNote)
		if err != nil {
			return nil, invalid("INVALID_NOTE", err.Error())
		}
	}

	tx := NewTransaction(uc.logger)
	tx.AddOperation("create_lead", func(ctx context.Context) error {
		return uc.Leads.Create(ctx, lead)
	})
	tx.AddCompensation("delete_lead", func(ctx context.Context) error {
		return uc.Leads.Delete(ctx, lead.ID)
	})
	if note != nil {
		tx.AddOperation("create_reminder_note", func(ctx context.Context) error {
			return uc.Notes.Create(ctx, note)
		})
		tx.AddCompensation("noop", nil)
	}

	if err := tx.Execute(ctx); err != nil {
		uc.logger.Error().Err(err).Str("viewer_id", viewer.ID).Msg("❌ failed to create lead")
		return nil, technical("DATABASE_ERROR", "failed to create lead", err)
	}

	uc.logger.Info().Str("lead_id", lead.ID).Str("owner_id", lead.OwnerID).Msg("✅ lead created")
	uc.Reminders.RefreshFor(ctx, lead.OwnerID)
	return lead, nil
}

func (uc *LeadsUseCase) Update(ctx context.Context, viewer entity.Viewer, id string, input UpdateLeadInput) (*entity.Lead, error) {
	if _, busy := uc.inflight.LoadOrStore(id, struct{}{}); busy {
		return nil, conflict("SAVE_IN_PROGRESS", "A save for this lead is already in progress")
	}
	defer uc.inflight.Delete(id)

	lead, err := uc.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}

	changes := entity.LeadChanges{
		Name:         input.Name,
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		LandlordName: input.LandlordName,
		NextActionAt: input.NextActionAt,
		ClearAction:  input.ClearAction,
	}
	if input.Status != nil {
		st := entity.Status(*input.Status)
		changes.Status = &st
	}
	changes.Apply(lead)

	if err := lead.Validate(); err != nil {
		return nil, invalid("INVALID_LEAD", err.Error())
	}

	if err := uc.Leads.Update(ctx, lead); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("LEAD_NOT_FOUND", "Lead not found")
		}
		return nil, technical("DATABASE_ERROR", "failed to save lead", err)
	}

	uc.logger.Info().Str("lead_id", lead.ID).Str("status", lead.Status.Canonical()).Msg("lead updated")
	uc.Reminders.RefreshFor(ctx, lead.OwnerID)
	return lead, nil
}

func (uc *LeadsUseCase) AddNote(ctx context.Context, viewer entity.Viewer, leadID, body string) (*entity.Note, error) {
	lead, err := uc.Get(ctx, viewer, leadID)
	if err != nil {
		return nil, err
	}

	note, err := entity.NewNote(lead.ID, viewer.ID, body)
	if err != nil {
		return nil, invalid("INVALID_NOTE", err.Error())
	}

	if err := uc.Notes.Create(ctx, note); err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			return nil, notFound("LEAD_NOT_FOUND", "Lead not found")
		}
		return nil, technical("DATABASE_ERROR", "failed to add note", err)
	}
	return note, nil
}

func (uc *LeadsUseCase) ListNotes(ctx context.Context, viewer entity.Viewer, leadID string, limit int) ([]entity.Note, error) {
	if _, err := uc.Get(ctx, viewer, leadID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultNotesLimit
	}
	limit = min(limit, MaxNotesLimit)

	notes, err := uc.Notes.ListByLead(ctx, leadID, limit)
	if err != nil {
		return nil, technical("DATABASE_ERROR", "failed to load notes", err)
	}
	return notes, nil
}
