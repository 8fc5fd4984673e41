package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

type MockLeadsService struct {
	mock.Mock
}

func (m *MockLeadsService) List(ctx context.Context, viewer entity.Viewer, query string) ([]entity.Lead, error) {
	args := m.Called(ctx, viewer, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

func (m *MockLeadsService) Get(ctx context.Context, viewer entity.Viewer, id string) (*entity.Lead, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadsService) Create(ctx context.Context, viewer entity.Viewer, input usecase.CreateLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, viewer, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadsService) Update(ctx context.Context, viewer entity.Viewer, id string, input usecase.UpdateLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, viewer, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadsService) AddNote(ctx context.Context, viewer entity.Viewer, leadID, body string) (*entity.Note, error) {
	args := m.Called(ctx, viewer, leadID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Note), args.Error(1)
}

func (m *MockLeadsService) ListNotes(ctx context.Context, viewer entity.Viewer, leadID string, limit int) ([]entity.Note, error) {
	args := m.Called(ctx, viewer, leadID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Note), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Execute(ctx context.Context, viewer entity.Viewer, now time.Time) usecase.DashboardOutput {
	args := m.Called(ctx, viewer, now)
	return args.Get(0).(usecase.DashboardOutput)
}

type MockUsersService struct {
	mock.Mock
}

func (m *MockUsersService) List(ctx context.Context, viewer entity.Viewer) ([]entity.Profile, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Profile), args.Error(1)
}

func (m *MockUsersService) ChangeRole(ctx context.Context, viewer entity.Viewer, id, role string) error {
	args := m.Called(ctx, viewer, id, role)
	return args.Error(0)
}

type MockLeadLoader struct {
	mock.Mock
}

func (m *MockLeadLoader) ListVisible(ctx context.Context, scope entity.LeadScope) ([]entity.Lead, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Lead), args.Error(1)
}

type MockNoteFetcher struct {
	mock.Mock
}

func (m *MockNoteFetcher) Latest(ctx context.Context, leadID string) (*entity.Note, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Note), args.Error(1)
}

// request monta uma requisição já autenticada como v.
func request(method, target, body string, v entity.Viewer) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	return req.WithContext(middleware.WithViewer(req.Context(), v))
}
