package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

func (r *NoteRepository) ListByLead(ctx context.Context, leadID string, limit int) ([]entity.Note, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, lead_id, author_id, body, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, leadID, limit)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	var notes []entity.Note
	for rows.Next() {
		var n entity.Note
		if err := rows.Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Latest devolve a nota mais recente do lead, ou nil quando não houver nenhuma.
func (r *NoteRepository) Latest(ctx context.Context, leadID string) (*entity.Note, error) {
	var n entity.Note
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, lead_id, author_id, body, created_at
		FROM lead_notes
		WHERE lead_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, leadID).Scan(&n.ID, &n.LeadID, &n.AuthorID, &n.Body, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidUUID(err) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) Create(ctx context.Context, n *entity.Note) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO lead_notes (id, lead_id, author_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.LeadID, n.AuthorID, n.Body, n.CreatedAt)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return entity.ErrLeadNotFound
		}
		return err
	}
	return nil
}
