package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	activeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)

	leadsSaved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_leads_saved_total",
			Help: "Total number of lead writes",
		},
		[]string{"operation", "status"},
	)

	dashboardWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_dashboard_degraded_total",
			Help: "Dashboards served with zeroed metrics after a load failure",
		},
	)

	remindersArmed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_reminders_armed",
			Help: "Reminder timers currently armed across all sessions",
		},
	)

	remindersFired = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_reminders_fired_total",
			Help: "Total number of reminders fired",
		},
		[]string{"note"},
	)

	reminderStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "crm_reminder_streams_active",
			Help: "Open reminder SSE streams",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of integration errors",
		},
		[]string{"service"},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush repassa para o writer original; o stream SSE depende disso.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		activeConnections.Inc()
		defer activeConnections.Dec()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.statusCode)
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// usa o padrão da rota (/leads/{id}) para não explodir a cardinalidade
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func RecordLeadSave(operation, status string) {
	leadsSaved.WithLabelValues(operation, status).Inc()
}

func RecordDashboardDegraded() {
	dashboardWarnings.Inc()
}

func RecordStreamOpened() {
	reminderStreams.Inc()
}

func RecordStreamClosed() {
	reminderStreams.Dec()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}

// ReminderMetrics implementa reminder.Recorder com os coletores acima.
type ReminderMetrics struct{}

func (ReminderMetrics) ReminderArmed(n int) {
	remindersArmed.Add(float64(n))
}

func (ReminderMetrics) ReminderCancelled(n int) {
	remindersArmed.Sub(float64(n))
}

func (ReminderMetrics) ReminderFired(noteFound bool) {
	remindersArmed.Dec()
	remindersFired.WithLabelValues(strconv.FormatBool(noteFound)).Inc()
}
