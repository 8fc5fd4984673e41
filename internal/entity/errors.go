package entity

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead não encontrado")
	ErrProfileNotFound = errors.New("perfil não encontrado")
	ErrInvalidRole     = errors.New("role inválida")
)
