package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UsersService interface {
	List(ctx context.Context, viewer entity.Viewer) ([]entity.Profile, error)
	ChangeRole(ctx context.Context, viewer entity.Viewer, id, role string) error
}

type UserHandler struct {
	users         UsersService
	onRoleChanged func()
	logger        zerolog.Logger
}

// NewUserHandler: onRoleChanged (opcional) invalida caches que dependem dos papéis.
func NewUserHandler(users UsersService, onRoleChanged func(), logger zerolog.Logger) *UserHandler {
	if onRoleChanged == nil {
		onRoleChanged = func() {}
	}
	return &UserHandler{
		users:         users,
		onRoleChanged: onRoleChanged,
		logger:        logger.With().Str("handler", "users").Logger(),
	}
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// List (GET /users)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	profiles, err := h.users.List(r.Context(), v)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if profiles == nil {
		profiles = []entity.Profile{}
	}
	writeJSON(w, http.StatusOK, profiles)
}

// ChangeRole (PATCH /users/{id}/role)
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	var req ChangeRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if err := h.users.ChangeRole(r.Context(), v, chi.URLParam(r, "id"), req.Role); err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.onRoleChanged()
	w.WriteHeader(http.StatusNoContent)
}
