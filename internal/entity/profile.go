package entity

import (
	"context"
	"strings"
)

type Role string

const (
	RoleUser       Role = "user"
	RoleTeamLeader Role = "team_leader"
	RoleAdmin      Role = "admin"
)

// ParseRole normaliza o papel; qualquer valor desconhecido vira user.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleTeamLeader:
		return RoleTeamLeader
	default:
		return RoleUser
	}
}

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleTeamLeader || r == RoleAdmin
}

// Privileged: admin e team_leader enxergam todos os leads.
func (r Role) Privileged() bool {
	return r == RoleAdmin || r == RoleTeamLeader
}

// Viewer é o usuário autenticado que está usando o sistema.
type Viewer struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func (v Viewer) CanSeeAll() bool {
	return v.Role.Privileged()
}

func (v Viewer) CanEdit(l *Lead) bool {
	return v.CanSeeAll() || l.OwnerID == v.ID
}

type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (p *Profile) Viewer() Viewer {
	return Viewer{ID: p.ID, Role: ParseRole(string(p.Role))}
}

type ProfileRepositoryInterface interface {
	FindByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]Profile, error)
	CountByRole(ctx context.Context, role Role) (int, error)
	UpdateRole(ctx context.Context, id string, role Role) error
}
