package usecase

import (
	"errors"
	"net/http"
)

// DomainError: erro de regra de negócio, mostrado ao usuário como está.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError: falha de infraestrutura (banco, fila). Err guarda a causa.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func invalid(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Status: http.StatusBadRequest}
}

func notFound(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Status: http.StatusNotFound}
}

func forbidden(msg string) *DomainError {
	return &DomainError{Code: "FORBIDDEN", Message: msg, Status: http.StatusForbidden}
}

func conflict(code, msg string) *DomainError {
	return &DomainError{Code: code, Message: msg, Status: http.StatusConflict}
}

func technical(code, msg string, err error) *TechnicalError {
	return &TechnicalError{Code: code, Message: msg, Err: err}
}
