package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/kpi"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func TestDashboardHandler_UsesConfiguredLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	fixed := time.Date(2024, time.April, 1, 1, 0, 0, 0, time.UTC) // ainda março em BRT

	svc := new(MockDashboardService)
	svc.On("Execute", mock.Anything, user, mock.MatchedBy(func(now time.Time) bool {
		return now.Location() == loc && now.Month() == time.March
	})).Return(usecase.DashboardOutput{Snapshot: kpi.Snapshot{Target: 3, AcceptedThisMonth: 1, ProgressPercent: 33}})

	h := NewDashboardHandler(svc, loc, zerolog.Nop())
	h.now = func() time.Time { return fixed }

	rec := httptest.NewRecorder()
	h.Handle(rec, request(http.MethodGet, "/dashboard", "", user))

	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(33), out["progress_percent"])
	assert.NotContains(t, out, "warnings")
}

func TestDashboardHandler_DegradedStillOK(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Execute", mock.Anything, mock.Anything, mock.Anything).
		Return(usecase.DashboardOutput{Snapshot: kpi.Snapshot{Target: 3}, Warnings: []string{"Could not load leads: timeout"}})

	h := NewDashboardHandler(svc, nil, zerolog.Nop())
	rec := httptest.NewRecorder()
	h.Handle(rec, request(http.MethodGet, "/dashboard", "", entity.Viewer{ID: "u1", Role: entity.RoleUser}))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Could not load leads")
}
