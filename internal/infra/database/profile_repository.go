package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type ProfileRepository struct {
	DB *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	var p entity.Profile
	var role string
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, email, name, role FROM profiles WHERE id = $1`, id,
	).Scan(&p.ID, &p.Email, &p.Name, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entity.ErrProfileNotFound
		}
		return nil, err
	}
	p.Role = entity.ParseRole(role)
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context) ([]entity.Profile, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, email, name, role FROM profiles ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Profile
	for rows.Next() {
		var p entity.Profile
		var role string
		if err := rows.Scan(&p.ID, &p.Email, &p.Name, &role); err != nil {
			return nil, err
		}
		p.Role = entity.ParseRole(role)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProfileRepository) CountByRole(ctx context.Context, role entity.Role) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM profiles WHERE LOWER(role) = $1`, string(role),
	).Scan(&n)
	return n, err
}

func (r *ProfileRepository) UpdateRole(ctx context.Context, id string, role entity.Role) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET role = $2 WHERE id = $1`, id, string(role))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return entity.ErrProfileNotFound
	}
	return nil
}
