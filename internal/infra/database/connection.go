package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // Driver do Postgres
)

// NewDBConnection abre a conexão e testa o Ping
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	// pool: o stream de lembretes recarrega leads com frequência
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL DEFAULT '',
	name       TEXT NOT NULL DEFAULT '',
	role       TEXT NOT NULL DEFAULT 'user'
);

CREATE TABLE IF NOT EXISTS leads (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	email            TEXT,
	phone            TEXT,
	address          TEXT,
	landlord_name    TEXT,
	status           TEXT NOT NULL DEFAULT 'New',
	next_action_at   TIMESTAMPTZ,
	user_id          TEXT NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_leads_user_created ON leads (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS lead_notes (
	id          UUID PRIMARY KEY,
	lead_id     UUID NOT NULL REFERENCES leads(id) ON DELETE CASCADE,
	author_id   TEXT NOT NULL,
	body        TEXT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lead_notes_lead_created ON lead_notes (lead_id, created_at DESC);
`

// EnsureSchema cria as tabelas se ainda não existirem.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
