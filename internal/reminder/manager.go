package reminder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

var ErrNoSession = errors.New("nenhuma sessão de lembretes aberta")

// cueRetention é por quanto tempo um (lead, horário) já avisado fica marcado.
// Depois do horário nenhuma sessão arma o mesmo lembrete de novo.
const cueRetention = time.Hour

type LeadLoader interface {
	ListVisible(ctx context.Context, scope entity.LeadScope) ([]entity.Lead, error)
}

// Session é a "view" de um viewer: um scheduler, a fila de alertas e os
// ouvintes conectados (SSE). Várias abas do mesmo viewer dividem a sessão.
type Session struct {
	Viewer    entity.Viewer
	scheduler *Scheduler
	inbox     *Inbox

	refs int
	done chan struct{}

	// cada leitura de leads recebe um número; leitura mais velha que a
	// última aplicada é descartada
	loads   atomic.Uint64
	applyMu sync.Mutex
	applied uint64

	subsMu sync.Mutex
	subs   map[chan Event]struct{}
}

func (s *Session) Inbox() *Inbox { return s.inbox }

func (s *Session) Scheduler() *Scheduler { return s.scheduler }

// Subscribe devolve os alertas já na fila e o canal dos próximos. Um alerta
// aparece em só um dos dois. O alerta também fica na Inbox, então um
// ouvinte lento não perde nada: basta reler a fila.
func (s *Session) Subscribe() ([]Event, <-chan Event, func()) {
	ch := make(chan Event, DefaultBuffer)
	s.subsMu.Lock()
	pending := s.inbox.Pending()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	return pending, ch, func() {
		s.subsMu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.subsMu.Unlock()
	}
}

func (s *Session) pump() {
	defer close(s.done)
	for ev := range s.scheduler.Events() {
		s.subsMu.Lock()
		s.inbox.Push(ev)
		for ch := range s.subs {
			select {
			case ch <- ev:
			default:
			}
		}
		s.subsMu.Unlock()
	}

	s.subsMu.Lock()
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
	s.subsMu.Unlock()
}

type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	leads  LeadLoader
	notes  NoteFetcher
	opts   Options
	logger zerolog.Logger

	// o aviso externo (e-mail do dono) sai uma vez por (lead, horário),
	// mesmo com várias sessões enxergando o lead
	cue    Cue
	cueMu  sync.Mutex
	played map[Key]time.Time
}

func NewManager(leads LeadLoader, notes NoteFetcher, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	m := &Manager{
		sessions: make(map[string]*Session),
		leads:    leads,
		notes:    notes,
		cue:      opts.Cue,
		played:   make(map[Key]time.Time),
		logger:   opts.Logger.With().Str("component", "reminder-manager").Logger(),
	}
	if opts.Cue != nil {
		opts.Cue = CueFunc(m.playOnce)
	}
	m.opts = opts
	return m
}

func (m *Manager) playOnce(ctx context.Context, ev Event) error {
	key := KeyFor(ev.LeadID, ev.DueAt)
	now := m.opts.Clock.Now()

	m.cueMu.Lock()
	for k, due := range m.played {
		if now.Sub(due) > cueRetention {
			delete(m.played, k)
		}
	}
	if _, done := m.played[key]; done {
		m.cueMu.Unlock()
		return nil
	}
	m.played[key] = ev.DueAt
	m.cueMu.Unlock()

	return m.cue.Play(ctx, ev)
}

// Open abre (ou reaproveita) a sessão do viewer e já reconcilia os timers.
func (m *Manager) Open(ctx context.Context, viewer entity.Viewer) *Session {
	m.mu.Lock()
	s, ok := m.sessions[viewer.ID]
	if ok {
		s.refs++
		// o papel pode ter mudado desde a última conexão
		s.Viewer = viewer
		m.mu.Unlock()
		return s
	}

	opts := m.opts
	opts.Logger = m.logger.With().Str("viewer_id", viewer.ID).Logger()
	s = &Session{
		Viewer:    viewer,
		scheduler: NewScheduler(m.notes, opts),
		inbox:     NewInbox(),
		refs:      1,
		done:      make(chan struct{}),
		subs:      make(map[chan Event]struct{}),
	}
	m.sessions[viewer.ID] = s
	m.mu.Unlock()

	go s.pump()
	m.logger.Info().Str("viewer_id", viewer.ID).Msg("reminder session opened")

	if err := m.refresh(ctx, s); err != nil {
		m.logger.Warn().Err(err).Str("viewer_id", viewer.ID).Msg("initial reminder load failed")
	}
	return s
}

// Release fecha a sessão quando a última view do viewer sai.
func (m *Manager) Release(viewerID string) {
	m.mu.Lock()
	s, ok := m.sessions[viewerID]
	if !ok {
		m.mu.Unlock()
		return
	}
	s.refs--
	if s.refs > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, viewerID)
	m.mu.Unlock()

	s.scheduler.Close()
	<-s.done
	m.logger.Info().Str("viewer_id", viewerID).Msg("reminder session closed")
}

func (m *Manager) Session(viewerID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[viewerID]
	return s, ok
}

// Len é o número de sessões abertas.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) Refresh(ctx context.Context, viewerID string) error {
	s, ok := m.Session(viewerID)
	if !ok {
		return ErrNoSession
	}
	return m.refresh(ctx, s)
}

// RefreshFor recarrega as sessões que enxergam leads do dono informado:
// o próprio dono e os viewers privilegiados.
func (m *Manager) RefreshFor(ctx context.Context, ownerID string) {
	for _, s := range m.snapshot() {
		v := m.viewerOf(s)
		if v.ID == ownerID || v.CanSeeAll() {
			if err := m.refresh(ctx, s); err != nil {
				m.logger.Warn().Err(err).Str("viewer_id", v.ID).Msg("reminder refresh failed")
			}
		}
	}
}

// RefreshAll é a reconciliação periódica de todas as sessões abertas.
func (m *Manager) RefreshAll(ctx context.Context) int {
	sessions := m.snapshot()
	for _, s := range sessions {
		if ctx.Err() != nil {
			break
		}
		if err := m.refresh(ctx, s); err != nil {
			m.logger.Warn().Err(err).Str("viewer_id", m.viewerOf(s).ID).Msg("reminder refresh failed")
		}
	}
	return len(sessions)
}

func (m *Manager) snapshot() []*Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

func (m *Manager) viewerOf(s *Session) entity.Viewer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.Viewer
}

// refresh: falha na leitura mantém os timers atuais. Se a sessão fechar
// durante a leitura, ou se uma leitura iniciada depois já foi aplicada, o
// resultado é descartado.
func (m *Manager) refresh(ctx context.Context, s *Session) error {
	viewer := m.viewerOf(s)
	seq := s.loads.Add(1)

	leads, err := m.leads.ListVisible(ctx, entity.ScopeFor(viewer))

	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if seq < s.applied {
		m.logger.Debug().Str("viewer_id", viewer.ID).Uint64("load", seq).Msg("stale reminder load discarded")
		return err
	}
	s.applied = seq
	if err != nil {
		return err
	}

	if _, err := s.scheduler.Reconcile(leads, m.opts.Clock.Now()); err != nil && !errors.Is(err, ErrSchedulerClosed) {
		return err
	}
	return nil
}

// Close encerra todas as sessões (shutdown do processo).
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.scheduler.Close()
		<-s.done
	}
}
