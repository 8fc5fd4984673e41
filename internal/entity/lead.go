package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	LandlordName string     `json:"landlord_name,omitempty"`
	Status       Status     `json:"status"`
	NextActionAt *time.Time `json:"next_action_at,omitempty"`
	OwnerID      string     `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// NewLead monta um lead novo para o dono informado. Status vazio vira New.
func NewLead(ownerID, name, email, phone, address, landlord string, status Status, nextActionAt *time.Time) (*Lead, error) {
	now := time.Now()
	lead := &Lead{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		Phone:        strings.TrimSpace(phone),
		Address:      strings.TrimSpace(address),
		LandlordName: strings.TrimSpace(landlord),
		Status:       status.OrDefault(),
		NextActionAt: nextActionAt,
		OwnerID:      ownerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := lead.Validate(); err != nil {
		return nil, err
	}
	return lead, nil
}

func (l *Lead) Validate() error {
	if l.Name == "" {
		return errors.New("name is required")
	}
	if l.OwnerID == "" {
		return errors.New("owner is required")
	}
	return nil
}

// Contact devolve o melhor meio de contato: e-mail, senão telefone.
func (l *Lead) Contact() string {
	if l.Email != "" {
		return l.Email
	}
	return l.Phone
}

// Matches faz a busca livre da tela de leads.
func (l *Lead) Matches(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, field := range []string{l.Name, l.Email, l.Phone, l.Address, l.LandlordName} {
		if field != "" && strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// LeadScope restringe a consulta aos leads de um dono. OwnerID vazio = todos.
type LeadScope struct {
	OwnerID string
}

func ScopeFor(v Viewer) LeadScope {
	if v.CanSeeAll() {
		return LeadScope{}
	}
	return LeadScope{OwnerID: v.ID}
}

type LeadChanges struct {
	Name         *string
	Email        *string
	Phone        *string
	Address      *string
	LandlordName *string
	Status       *Status
	NextActionAt *time.Time
	ClearAction  bool
}

func (c LeadChanges) Apply(l *Lead) {
	if c.Name != nil {
		l.Name = strings.TrimSpace(*c.Name)
	}
	if c.Email != nil {
		l.Email = strings.TrimSpace(*c.Email)
	}
	if c.Phone != nil {
		l.Phone = strings.TrimSpace(*c.Phone)
	}
	if c.Address != nil {
		l.Address = strings.TrimSpace(*c.Address)
	}
	if c.LandlordName != nil {
		l.LandlordName = strings.TrimSpace(*c.LandlordName)
	}
	if c.Status != nil {
		l.Status = c.Status.OrDefault()
	}
	if c.ClearAction {
		l.NextActionAt = nil
	} else if c.NextActionAt != nil {
		t := *c.NextActionAt
		l.NextActionAt = &t
	}
	l.UpdatedAt = time.Now()
}

type LeadRepositoryInterface interface {
	ListVisible(ctx context.Context, scope LeadScope) ([]Lead, error)
	FindByID(ctx context.Context, id string) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	Delete(ctx context.Context, id string) error
}
