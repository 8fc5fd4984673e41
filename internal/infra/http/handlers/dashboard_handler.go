package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type DashboardService interface {
	Execute(ctx context.Context, viewer entity.Viewer, now time.Time) usecase.DashboardOutput
}

type DashboardHandler struct {
	dashboard DashboardService
	loc       *time.Location
	now       func() time.Time
	logger    zerolog.Logger
}

// NewDashboardHandler: loc define onde começa e termina o mês.
func NewDashboardHandler(dashboard DashboardService, loc *time.Location, logger zerolog.Logger) *DashboardHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardHandler{
		dashboard: dashboard,
		loc:       loc,
		now:       time.Now,
		logger:    logger.With().Str("handler", "dashboard").Logger(),
	}
}

// Handle (GET /dashboard) sempre responde 200; falhas de leitura vêm em warnings.
func (h *DashboardHandler) Handle(w http.ResponseWriter, r *http.Request) {
	v, ok := viewer(w, r)
	if !ok {
		return
	}

	out := h.dashboard.Execute(r.Context(), v, h.now().In(h.loc))
	if len(out.Warnings) > 0 {
		middleware.RecordDashboardDegraded()
	}
	writeJSON(w, http.StatusOK, out)
}
