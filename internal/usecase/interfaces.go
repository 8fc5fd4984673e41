package usecase

import (
	"context"
)

// TeamSizer conta as contas comuns (role=user) para a meta da equipe.
type TeamSizer interface {
	TeamSize(ctx context.Context) (int, error)
}

// ReminderRefresher é avisado depois de cada escrita em leads para recarregar
// e reconciliar os lembretes de quem enxerga o lead.
type ReminderRefresher interface {
	RefreshFor(ctx context.Context, ownerID string)
}

type noopRefresher struct{}

func (noopRefresher) RefreshFor(context.Context, string) {}
