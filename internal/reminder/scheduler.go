package reminder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

const (
	DefaultMaxDelay    = 24 * time.Hour
	DefaultNoteTimeout = 5 * time.Second
	DefaultBuffer      = 16
)

var ErrSchedulerClosed = errors.New("reminder scheduler closed")

// NoteFetcher busca a nota mais recente do lead (nil quando não há nenhuma).
type NoteFetcher interface {
	Latest(ctx context.Context, leadID string) (*entity.Note, error)
}

// Cue é disparado uma vez por lembrete, junto com o evento.
type Cue interface {
	Play(ctx context.Context, ev Event) error
}

type CueFunc func(ctx context.Context, ev Event) error

func (f CueFunc) Play(ctx context.Context, ev Event) error { return f(ctx, ev) }

// Event é o lembrete disparado, entregue à camada de apresentação.
type Event struct {
	ID       string    `json:"id"`
	LeadID   string    `json:"lead_id"`
	LeadName string    `json:"lead_name"`
	Contact  string    `json:"contact_info"`
	OwnerID  string    `json:"owner_id"`
	NoteText *string   `json:"note_text"`
	DueAt    time.Time `json:"due_at"`
	FiredAt  time.Time `json:"fired_at"`
}

func (e Event) HasNote() bool { return e.NoteText != nil }

type Options struct {
	Clock       Clock
	MaxDelay    time.Duration
	NoteTimeout time.Duration
	Buffer      int
	Cue         Cue
	Recorder    Recorder
	Logger      zerolog.Logger
}

type armed struct {
	key   Key
	lead  entity.Lead
	due   time.Time
	timer Timer
}

type Result struct {
	Armed     int `json:"armed"`
	Kept      int `json:"kept"`
	Cancelled int `json:"cancelled"`
}

// Scheduler mantém um timer por (lead, horário) visível e futuro. O estado é
// todo do scheduler: Close cancela tudo e nada sobrevive a ele.
type Scheduler struct {
	mu     sync.Mutex
	armed  map[Key]*armed
	closed bool

	clock       Clock
	notes       NoteFetcher
	cue         Cue
	recorder    Recorder
	logger      zerolog.Logger
	maxDelay    time.Duration
	noteTimeout time.Duration

	events chan Event
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewScheduler(notes NoteFetcher, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	if opts.NoteTimeout <= 0 {
		opts.NoteTimeout = DefaultNoteTimeout
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	if opts.Recorder == nil {
		opts.Recorder = noopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		armed:       make(map[Key]*armed),
		clock:       opts.Clock,
		notes:       notes,
		cue:         opts.Cue,
		recorder:    opts.Recorder,
		logger:      opts.Logger.With().Str("component", "reminder-scheduler").Logger(),
		maxDelay:    opts.MaxDelay,
		noteTimeout: opts.NoteTimeout,
		events:      make(chan Event, opts.Buffer),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Events é fechado por Close depois que todos os disparos em andamento terminam.
func (s *Scheduler) Events() <-chan Event {
	return s.events
}

// Reconcile deriva o conjunto de timers do snapshot de leads. Chamar duas
// vezes com a mesma entrada não arma nada novo.
func (s *Scheduler) Reconcile(leads []entity.Lead, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrSchedulerClosed
	}

	current := make(map[Key]struct{}, len(s.armed))
	for k := range s.armed {
		current[k] = struct{}{}
	}
	p := plan(current, leads, now)

	for _, key := range p.cancel {
		s.armed[key].timer.Stop()
		delete(s.armed, key)
	}
	for _, c := range p.keep {
		// snapshot mais novo do lead (nome/contato podem ter mudado)
		s.armed[c.key].lead = c.lead
	}
	for _, c := range p.arm {
		a := &armed{key: c.key, lead: c.lead, due: c.due}
		a.timer = s.clock.AfterFunc(s.delay(c.due, now), func() { s.onTimer(a) })
		s.armed[c.key] = a
	}

	if len(p.arm) > 0 {
		s.recorder.ReminderArmed(len(p.arm))
	}
	if len(p.cancel) > 0 {
		s.recorder.ReminderCancelled(len(p.cancel))
	}

	res := Result{Armed: len(p.arm), Kept: len(p.keep), Cancelled: len(p.cancel)}
	if res.Armed > 0 || res.Cancelled > 0 {
		s.logger.Debug().Int("armed", res.Armed).Int("kept", res.Kept).Int("cancelled", res.Cancelled).Msg("reminders reconciled")
	}
	return res, nil
}

// delay é limitado a maxDelay; o timer reavalia o prazo quando acorda.
func (s *Scheduler) delay(due, now time.Time) time.Duration {
	d := due.Sub(now)
	if d < 0 {
		return 0
	}
	if d > s.maxDelay {
		return s.maxDelay
	}
	return d
}

func (s *Scheduler) onTimer(a *armed) {
	s.mu.Lock()
	if s.closed || s.armed[a.key] != a {
		// cancelado ou substituído enquanto o timer disparava
		s.mu.Unlock()
		return
	}

	now := s.clock.Now()
	if now.Before(a.due) {
		a.timer = s.clock.AfterFunc(s.delay(a.due, now), func() { s.onTimer(a) })
		s.mu.Unlock()
		return
	}

	delete(s.armed, a.key)
	lead := a.lead
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.fire(lead, a.due, now)
	}()
}

func (s *Scheduler) fire(lead entity.Lead, due, firedAt time.Time) {
	ev := Event{
		ID:       uuid.New().String(),
		LeadID:   lead.ID,
		LeadName: lead.Name,
		Contact:  lead.Contact(),
		OwnerID:  lead.OwnerID,
		DueAt:    due,
		FiredAt:  firedAt,
	}

	if note := s.latestNote(lead.ID); note != nil {
		text := note.Body
		ev.NoteText = &text
	}

	if s.ctx.Err() != nil {
		// view encerrada durante a busca: o resultado é descartado
		s.recorder.ReminderCancelled(1)
		return
	}

	s.recorder.ReminderFired(ev.HasNote())
	s.logger.Info().Str("lead_id", lead.ID).Time("due_at", due).Bool("has_note", ev.HasNote()).Msg("⏰ reminder fired")

	if s.cue != nil {
		if err := s.cue.Play(s.ctx, ev); err != nil {
			s.logger.Warn().Err(err).Str("lead_id", lead.ID).Msg("reminder cue failed")
		}
	}

	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// latestNote: falha na busca não impede o lembrete, só deixa a nota ausente.
func (s *Scheduler) latestNote(leadID string) *entity.Note {
	if s.notes == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(s.ctx, s.noteTimeout)
	defer cancel()

	note, err := s.notes.Latest(ctx, leadID)
	if err != nil {
		if s.ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("lead_id", leadID).Msg("could not fetch latest note for reminder")
		}
		return nil
	}
	return note
}

// Pending lista as chaves armadas no momento.
func (s *Scheduler) Pending() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]Key, 0, len(s.armed))
	for k := range s.armed {
		keys = append(keys, k)
	}
	return keys
}

func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.armed)
}

// Close cancela todos os timers e buscas em andamento. É idempotente.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	n := len(s.armed)
	for key, a := range s.armed {
		a.timer.Stop()
		delete(s.armed, key)
	}
	s.cancel()
	s.mu.Unlock()

	if n > 0 {
		s.recorder.ReminderCancelled(n)
	}
	s.wg.Wait()
	close(s.events)
}
