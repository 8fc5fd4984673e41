package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/infra/cache"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/logger"
	"github.com/xavierca1/ligue-crm/internal/infra/mail"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/worker"
	"github.com/xavierca1/ligue-crm/internal/reminder"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", true)
		bootLog.Fatal().Err(err).Msg("❌ invalid configuration")
	}
	log := logger.New(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ database unreachable")
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("❌ failed to apply schema")
	}

	// 1. Repositórios
	leadRepo := database.NewLeadRepository(db)
	noteRepo := database.NewNoteRepository(db)
	profileRepo := database.NewProfileRepository(db)
	teamSize := cache.NewTeamSizeCache(profileRepo, cfg.CacheSizeMB, cfg.TeamSizeTTL, log)

	// 2. Fila (opcional): o aviso do lembrete vira e-mail para o dono do lead
	var (
		rabbit *queue.RabbitMQ
		cue    reminder.Cue
	)
	if cfg.RabbitMQURL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatal().Err(err).Msg("❌ rabbitmq unreachable")
		}
		defer rabbit.Close()
		cue = publishCue(queue.NewProducer(rabbit.Ch), log)

		if cfg.MailEnabled() {
			sender := mail.NewEmailSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass, cfg.MailFrom)
			w := queue.NewWorker(rabbit.Ch, profileRepo, sender, log)
			go func() {
				if err := w.Start(ctx, queue.QueueName); err != nil {
					log.Error().Err(err).Msg("❌ reminder worker stopped")
				}
			}()
		}
	} else {
		log.Warn().Msg("RABBITMQ_URL not set, reminders will only be delivered in-app")
	}

	// 3. Lembretes
	var recorder reminder.Recorder
	if cfg.MetricsOn {
		recorder = middleware.ReminderMetrics{}
	}
	reminders := reminder.NewManager(leadRepo, noteRepo, reminder.Options{
		MaxDelay:    cfg.ReminderMaxDelay,
		NoteTimeout: cfg.ReminderNoteTimeout,
		Buffer:      cfg.ReminderBuffer,
		Cue:         cue,
		Recorder:    recorder,
		Logger:      log,
	})
	defer reminders.Close()

	go worker.NewReminderSweeper(reminders, cfg.ReminderSweepInterval, log).Start(ctx)

	// 4. UseCases
	dashboardUC := usecase.NewDashboardUseCase(leadRepo, teamSize, log)
	leadsUC := usecase.NewLeadsUseCase(leadRepo, noteRepo, reminders, log)
	usersUC := usecase.NewUsersUseCase(profileRepo, log)

	// 5. Handlers
	leadHandler := handlers.NewLeadHandler(leadsUC, log)
	defer leadHandler.Close()

	var rabbitConn *amqp.Connection
	if rabbit != nil {
		rabbitConn = rabbit.Conn
	}
	router := newRouter(routes{
		health:         handlers.NewHealthHandler(db, rabbitConn, reminders.Len),
		dashboard:      handlers.NewDashboardHandler(dashboardUC, cfg.Location(), log),
		leads:          leadHandler,
		reminders:      handlers.NewReminderHandler(reminders, log),
		users:          handlers.NewUserHandler(usersUC, teamSize.Invalidate, log),
		auth:           middleware.Auth([]byte(cfg.JWTSecret), usersUC),
		streamAuth:     middleware.StreamAuth([]byte(cfg.JWTSecret), usersUC),
		allowedOrigins: cfg.AllowedOrigins(),
		metrics:        cfg.MetricsOn,
		logger:         log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("timezone", cfg.Location().String()).Msg("🔥 CRM server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("❌ server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// SSE fica aberto: cancela as sessões antes de esperar as conexões
	reminders.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// publishCue conta as falhas de publicação; o alerta na tela não depende da fila.
func publishCue(p *queue.ReminderProducer, log zerolog.Logger) reminder.Cue {
	return reminder.CueFunc(func(ctx context.Context, ev reminder.Event) error {
		if err := p.Play(ctx, ev); err != nil {
			middleware.RecordIntegrationError("rabbitmq")
			return err
		}
		log.Debug().Str("lead_id", ev.LeadID).Msg("🔔 reminder cue published")
		return nil
	})
}
