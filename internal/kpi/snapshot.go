package kpi

import (
	"time"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type Snapshot struct {
	AcceptedThisMonth int           `json:"accepted_this_month"`
	Overdue           int           `json:"overdue"`
	Open              int           `json:"open"`
	FollowUp          int           `json:"follow_up"`
	TrailingMonths    []MonthBucket `json:"trailing_months"`
	Target            int           `json:"target"`
	ProgressPercent   int           `json:"progress_percent"`
	IncentiveMark     int           `json:"incentive_mark"`
	BonusMark         int           `json:"bonus_mark"`
	Remaining         int           `json:"remaining"`
	TeamSize          int           `json:"team_size"`
	Role              entity.Role   `json:"role"`
	Scope             string        `json:"scope"`
}

// Build monta o snapshot do dashboard. Uma coleção vazia (ex.: falha de leitura)
// resulta em contagens zeradas, nunca em erro.
func Build(viewer entity.Viewer, leads []entity.Lead, teamSize int, now time.Time) Snapshot {
	if teamSize < 1 {
		teamSize = 1
	}
	role := entity.ParseRole(string(viewer.Role))
	accepted := MonthAccepted(leads, now)
	target := Target(role, teamSize)

	return Snapshot{
		AcceptedThisMonth: accepted,
		Overdue:           OverdueCount(leads, now),
		Open:              OpenCount(leads),
		FollowUp:          FollowUpCount(leads),
		TrailingMonths:    TrailingMonths(leads, now, DefaultTrailingMonths),
		Target:            target,
		ProgressPercent:   ProgressPercent(accepted, target),
		IncentiveMark:     IncentiveMark(role, teamSize),
		BonusMark:         BonusMark(role, teamSize),
		Remaining:         Remaining(accepted, target),
		TeamSize:          teamSize,
		Role:              role,
		Scope:             Scope(role),
	}
}
