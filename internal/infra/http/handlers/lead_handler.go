package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type LeadsService interface {
	List(ctx context.Context, viewer entity.Viewer, query string) ([]entity.Lead, error)
	Get(ctx context.Context, viewer entity.Viewer, id string) (*entity.Lead, error)
	Create(ctx context.Context, viewer entity.Viewer, input usecase.CreateLeadInput) (*entity.Lead, error)
	Update(ctx context.Context, viewer entity.Viewer, id string, input usecase.UpdateLeadInput) (*entity.Lead, error)
	AddNote(ctx context.Context, viewer entity.Viewer, leadID, body string) (*entity.Note, error)
	ListNotes(ctx context.Context, viewer entity.Viewer, leadID string, limit int) ([]entity.Note, error)
}

type LeadHandler struct {
	leads       LeadsService
	rateLimiter *RateLimiter
	logger      zerolog.Logger
}

func NewLeadHandler(leads LeadsService, logger zerolog.Logger) *LeadHandler {
	return &LeadHandler{
		leads:       leads,
		rateLimiter: NewRateLimiter(30, time.Minute), // 30 leads/min por usuário
		logger:      logger.With().Str("handler", "leads").Logger(),
	}
}

func (h *LeadHandler) Close() {
	h.rateLimiter.Stop()
}

type LeadResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	Address      string     `json:"address"`
	LandlordName string     `json:"landlord_name"`
	Status       string     `json:"status"`
	StatusKey    string     `json:"status_key"`
	NextActionAt *time.Time `json:"next_action_at"`
	OwnerID      string     `json:"user_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toLeadResponse(l *entity.Lead) LeadResponse {
	return LeadResponse{
		ID:           l.ID,
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		Address:      l.Address,
		LandlordName: l.LandlordName,
		Status:       string(l.Status),
		StatusKey:    l.Status.Canonical(),
		NextActionAt: l.NextActionAt,
		OwnerID:      l.OwnerID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

type AddNoteRequest struct {
	Body string `json:"body"`
}

// List (GET /leads?q=)
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	leads, err := h.leads.List(r.Context(), v, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		out = append(out, toLeadResponse(&leads[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// Get (GET /leads/{id})
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	lead, err := h.leads.Get(r.Context(), v, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

// Create (POST /leads)
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	if !h.rateLimiter.Allow(v.ID) {
		writeJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests. Please try again later."})
		return
	}

	var input usecase.CreateLeadInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	lead, err := h.leads.Create(r.Context(), v, input)
	if err != nil {
		middleware.RecordLeadSave("create", "error")
		writeError(w, h.logger, err)
		return
	}

	middleware.RecordLeadSave("create", "ok")
	writeJSON(w, http.StatusCreated, toLeadResponse(lead))
}

// Update (PATCH /leads/{id})
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	var input usecase.UpdateLeadInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	lead, err := h.leads.Update(r.Context(), v, chi.URLParam(r, "id"), input)
	if err != nil {
		middleware.RecordLeadSave("update", "error")
		writeError(w, h.logger, err)
		return
	}

	middleware.RecordLeadSave("update", "ok")
	writeJSON(w, http.StatusOK, toLeadResponse(lead))
}

// ListNotes (GET /leads/{id}/notes?limit=)
func (h *LeadHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	notes, err := h.leads.ListNotes(r.Context(), v, chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if notes == nil {
		notes = []entity.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// AddNote (POST /leads/{id}/notes)
func (h *LeadHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	var req AddNoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	note, err := h.leads.AddNote(r.Context(), v, chi.URLParam(r, "id"), req.Body)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}
