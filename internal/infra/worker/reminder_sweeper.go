package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type Refresher interface {
	RefreshAll(ctx context.Context) int
}

// ReminderSweeper reconcilia periodicamente todas as sessões de lembrete
// abertas, pegando mudanças feitas fora desta instância.
type ReminderSweeper struct {
	sessions     Refresher
	tickInterval time.Duration
	logger       zerolog.Logger
}

func NewReminderSweeper(sessions Refresher, interval time.Duration, logger zerolog.Logger) *ReminderSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderSweeper{
		sessions:     sessions,
		tickInterval: interval,
		logger:       logger.With().Str("component", "reminder-sweeper").Logger(),
	}
}

func (w *ReminderSweeper) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.tickInterval).Msg("🕒 reminder sweeper started")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("⚠️ reminder sweeper stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ReminderSweeper) sweep(ctx context.Context) {
	start := time.Now()
	n := w.sessions.RefreshAll(ctx)
	if n > 0 {
		w.logger.Debug().Int("sessions", n).Dur("took", time.Since(start)).Msg("reminder sessions reconciled")
	}
}
