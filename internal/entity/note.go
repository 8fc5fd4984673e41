package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Note é append-only: nunca é editada nem removida.
type Note struct {
	ID        string    `json:"id"`
	LeadID    string    `json:"lead_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

func NewNote(leadID, authorID, body string) (*Note, error) {
	body = strings.TrimSpace(body)
	if leadID == "" {
		return nil, errors.New("lead_id is required")
	}
	if body == "" {
		return nil, errors.New("note body is required")
	}
	return &Note{
		ID:        uuid.New().String(),
		LeadID:    leadID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: time.Now(),
	}, nil
}

type NoteRepositoryInterface interface {
	// ListByLead devolve as notas mais recentes primeiro.
	ListByLead(ctx context.Context, leadID string, limit int) ([]Note, error)
	Latest(ctx context.Context, leadID string) (*Note, error)
	Create(ctx context.Context, note *Note) error
}
