package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/kpi"
)

type DashboardOutput struct {
	kpi.Snapshot
	Warnings []string `json:"warnings,omitempty"`
}

type DashboardUseCase struct {
	Leads  entity.LeadRepositoryInterface
	Team   TeamSizer
	logger zerolog.Logger
}

func NewDashboardUseCase(leads entity.LeadRepositoryInterface, team TeamSizer, logger zerolog.Logger) *DashboardUseCase {
	return &DashboardUseCase{
		Leads:  leads,
		Team:   team,
		logger: logger.With().Str("component", "dashboard").Logger(),
	}
}

// Execute nunca falha: se a leitura der erro, os números saem zerados e a
// mensagem volta em Warnings para a tela mostrar.
func (uc *DashboardUseCase) Execute(ctx context.Context, viewer entity.Viewer, now time.Time) DashboardOutput {
	var warnings []string

	leads, err := uc.Leads.ListVisible(ctx, entity.ScopeFor(viewer))
	if err != nil {
		uc.logger.Error().Err(err).Str("viewer_id", viewer.ID).Msg("❌ failed to load leads for dashboard")
		warnings = append(warnings, "Could not load leads: "+err.Error())
		leads = nil
	}

	teamSize := 1
	if viewer.CanSeeAll() && uc.Team != nil {
		n, err := uc.Team.TeamSize(ctx)
		if err != nil {
			uc.logger.Warn().Err(err).Msg("failed to count team members, using 1")
			warnings = append(warnings, "Could not load team size: "+err.Error())
		} else if n > 0 {
			teamSize = n
		}
	}

	return DashboardOutput{
		Snapshot: kpi.Build(viewer, leads, teamSize, now),
		Warnings: warnings,
	}
}
