package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

type UsersUseCase struct {
	Profiles entity.ProfileRepositoryInterface
	logger   zerolog.Logger
}

func NewUsersUseCase(profiles entity.ProfileRepositoryInterface, logger zerolog.Logger) *UsersUseCase {
	return &UsersUseCase{
		Profiles: profiles,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// ResolveViewer carrega o papel do usuário autenticado a partir do perfil.
func (uc *UsersUseCase) ResolveViewer(ctx context.Context, userID string) (entity.Viewer, error) {
	p, err := uc.Profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			return entity.Viewer{}, forbidden("Profile not found for this account")
		}
		return entity.Viewer{}, technical("DATABASE_ERROR", "failed to load profile", err)
	}
	return p.Viewer(), nil
}

func (uc *UsersUseCase) List(ctx context.Context, viewer entity.Viewer) ([]entity.Profile, error) {
	if !viewer.CanSeeAll() {
		return nil, forbidden("You do not have permission to view this page.")
	}
	profiles, err := uc.Profiles.List(ctx)
	if err != nil {
		return nil, technical("DATABASE_ERROR", "failed to list users", err)
	}
	return profiles, nil
}

func (uc *UsersUseCase) ChangeRole(ctx context.Context, viewer entity.Viewer, id, role string) error {
	if viewer.Role != entity.RoleAdmin {
		return forbidden("Only admins can change roles")
	}
	r := entity.Role(role)
	if !r.Valid() {
		return invalid("INVALID_ROLE", entity.ErrInvalidRole.Error())
	}

	if err := uc.Profiles.UpdateRole(ctx, id, r); err != nil {
		if errors.Is(err, entity.ErrProfileNotFound) {
			return notFound("PROFILE_NOT_FOUND", "User not found")
		}
		return technical("DATABASE_ERROR", "failed to change role", err)
	}

	uc.logger.Info().Str("profile_id", id).Str("role", string(r)).Str("by", viewer.ID).Msg("role changed")
	return nil
}
