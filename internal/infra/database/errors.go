package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgInvalidText         = "22P02"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// ids vêm da URL; um id que não é UUID vira "não encontrado"
func isInvalidUUID(err error) bool {
	return pgCode(err) == pgInvalidText
}
