package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''),
	COALESCE(landlord_name, ''), status, next_action_at, user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var (
		l      entity.Lead
		status string
		next   pq.NullTime
	)
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Address, &l.LandlordName,
		&status, &next, &l.OwnerID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Status = entity.Status(status)
	if next.Valid {
		t := next.Time
		l.NextActionAt = &t
	}
	return &l, nil
}

// ListVisible devolve os leads do escopo, mais novos primeiro. Escopo vazio = todos.
func (r *LeadRepository) ListVisible(ctx context.Context, scope entity.LeadScope) ([]entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []any
	if scope.OwnerID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, scope.OwnerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []entity.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrLeadNotFound
		}
		if isInvalidUUID(err) {
			return nil, entity.ErrLeadNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *LeadRepository) Create(ctx context.Context, l *entity.Lead) error {
	query := `
		INSERT INTO leads (id, name, email, phone, address, landlord_name, status, next_action_at, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		l.ID,
		l.Name,
		nullString(l.Email),
		nullString(l.Phone),
		nullString(l.Address),
		nullString(l.LandlordName),
		string(l.Status),
		nullTime(l),
		l.OwnerID,
		l.CreatedAt,
		l.UpdatedAt,
	)
	return err
}

func (r *LeadRepository) Update(ctx context.Context, l *entity.Lead) error {
	query := `
		UPDATE leads SET
			name = $2,
			email = $3,
			phone = $4,
			address = $5,
			landlord_name = $6,
			status = $7,
			next_action_at = $8,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.DB.QueryRowContext(ctx, query,
		l.ID,
		l.Name,
		nullString(l.Email),
		nullString(l.Phone),
		nullString(l.Address),
		nullString(l.LandlordName),
		string(l.Status),
		nullTime(l),
	).Scan(&l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.ErrLeadNotFound
	}
	return err
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrLeadNotFound
	}
	return nil
}

func nullTime(l *entity.Lead) pq.NullTime {
	if l.NextActionAt == nil {
		return pq.NullTime{}
	}
	return pq.NullTime{Time: *l.NextActionAt, Valid: true}
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
