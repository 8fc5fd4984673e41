package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError traduz os erros do usecase: DomainError vai como está,
// TechnicalError vira 500 sem expor a causa.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		writeJSON(w, de.Status, ErrorResponse{Error: de.Message, Code: de.Code})
		return
	}

	code := "INTERNAL_ERROR"
	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		code = te.Code
	}
	logger.Error().Err(err).Str("code", code).Msg("❌ request failed")
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Something went wrong. Please try again.", Code: code})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// viewer extrai o usuário autenticado; responde 401 se não houver.
func viewer(w http.ResponseWriter, r *http.Request) (entity.Viewer, bool) {
	v, ok := middleware.ViewerFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "missing token"})
		return entity.Viewer{}, false
	}
	return v, true
}
