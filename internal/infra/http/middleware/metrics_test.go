package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Get("/leads/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/leads/{id}", "418"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/leads/def", nil))

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/leads/{id}", "418"))
	assert.Equal(t, before+2, after)
}

func TestMetrics_WrapperKeepsFlusher(t *testing.T) {
	var flushed bool
	h := Metrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		flushed = ok
		if ok {
			f.Flush()
		}
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reminders/stream", nil))

	assert.True(t, flushed)
	assert.True(t, rec.Flushed)
}

func TestReminderMetrics_GaugeBalances(t *testing.T) {
	var m ReminderMetrics
	before := testutil.ToFloat64(remindersArmed)

	m.ReminderArmed(3)
	m.ReminderFired(true)
	m.ReminderCancelled(2)

	assert.Equal(t, before, testutil.ToFloat64(remindersArmed))
	assert.GreaterOrEqual(t, testutil.ToFloat64(remindersFired.WithLabelValues("true")), 1.0)
}
