package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type routes struct {
	health    *handlers.HealthHandler
	dashboard *handlers.DashboardHandler
	leads     *handlers.LeadHandler
	reminders *handlers.ReminderHandler
	users     *handlers.UserHandler

	auth           func(http.Handler) http.Handler
	streamAuth     func(http.Handler) http.Handler
	allowedOrigins []string
	metrics        bool
	logger         zerolog.Logger
}

func newRouter(rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(rt.logger))
	r.Use(chimw.Recoverer)
	if rt.metrics {
		r.Use(middleware.Metrics)
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", rt.health.Handle)
	r.Get("/statuses", handlers.Statuses)
	if rt.metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.With(rt.streamAuth).Get("/reminders/stream", rt.reminders.Stream)

	r.Group(func(r chi.Router) {
		r.Use(rt.auth)

		r.Get("/dashboard", rt.dashboard.Handle)

		r.Get("/leads", rt.leads.List)
		r.Post("/leads", rt.leads.Create)
		r.Get("/leads/{id}", rt.leads.Get)
		r.Patch("/leads/{id}", rt.leads.Update)
		r.Get("/leads/{id}/notes", rt.leads.ListNotes)
		r.Post("/leads/{id}/notes", rt.leads.AddNote)

		r.Get("/reminders", rt.reminders.List)
		r.Post("/reminders/{id}/ack", rt.reminders.Ack)

		r.Get("/users", rt.users.List)
		r.Patch("/users/{id}/role", rt.users.ChangeRole)
	})

	return r
}
