package reminder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-crm/internal/entity"
)

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

// gatedLoader devolve respostas em ordem; a chamada de número gate fica
// presa até release ser fechado.
type gatedLoader struct {
	mu        sync.Mutex
	calls     int
	responses [][]entity.Lead
	gate      int
	started   chan struct{}
	release   chan struct{}
}

func (g *gatedLoader) ListVisible(ctx context.Context, scope entity.LeadScope) ([]entity.Lead, error) {
	g.mu.Lock()
	n := g.calls
	g.calls++
	g.mu.Unlock()

	if n == g.gate {
		close(g.started)
		<-g.release
	}
	return g.responses[n], nil
}

func newTestManager(clock *fakeClock, loader LeadLoader, notes NoteFetcher) *Manager {
	return NewManager(loader, notes, Options{Clock: clock, Logger: zerolog.Nop()})
}

func TestManager_OpenArmsVisibleLeads(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, entity.LeadScope{OwnerID: "u1"}).
		Return([]entity.Lead{leadAt("1", t0.Add(time.Hour))}, nil)

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})

	assert.Equal(t, 1, s.Scheduler().Len())
	loader.AssertExpectations(t)
}

func TestManager_PrivilegedViewerLoadsEverything(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, entity.LeadScope{}).Return([]entity.Lead{}, nil)

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	m.Open(context.Background(), entity.Viewer{ID: "boss", Role: entity.RoleAdmin})
	loader.AssertCalled(t, "ListVisible", mock.Anything, entity.LeadScope{})
}

func TestManager_ReleaseTearsDownLastView(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).
		Return([]entity.Lead{leadAt("1", t0.Add(time.Hour)), leadAt("2", t0.Add(30*time.Hour))}, nil)

	m := newTestManager(clock, loader, nil)
	viewer := entity.Viewer{ID: "u1", Role: entity.RoleUser}

	s := m.Open(context.Background(), viewer)
	m.Open(context.Background(), viewer)

	m.Release("u1")
	_, ok := m.Session("u1")
	assert.True(t, ok, "second tab still open")
	assert.Equal(t, 2, clock.active())

	m.Release("u1")
	_, ok = m.Session("u1")
	assert.False(t, ok)
	assert.Equal(t, 0, clock.active())
	assert.Equal(t, 0, s.Scheduler().Len())
}

func TestManager_RefreshRearmsAfterEdit(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{leadAt("42", t1)}, nil).Once()
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{leadAt("42", t2)}, nil).Once()

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})
	require.Equal(t, []Key{KeyFor("42", t1)}, s.Scheduler().Pending())

	m.RefreshFor(context.Background(), "u1")
	assert.Equal(t, []Key{KeyFor("42", t2)}, s.Scheduler().Pending())
}

func TestManager_LoadFailureKeepsTimers(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{leadAt("1", t0.Add(time.Hour))}, nil).Once()
	loader.On("ListVisible", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})

	err := m.Refresh(context.Background(), "u1")
	assert.Error(t, err)
	assert.Equal(t, 1, s.Scheduler().Len())
}

func TestManager_RefreshWithoutSession(t *testing.T) {
	m := newTestManager(newFakeClock(t0), new(MockLeadLoader), nil)
	assert.ErrorIs(t, m.Refresh(context.Background(), "nobody"), ErrNoSession)
}

func TestManager_FiredReminderReachesInboxAndSubscribers(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{leadAt("5", t0.Add(time.Minute))}, nil)
	notes := new(MockNoteFetcher)
	notes.On("Latest", mock.Anything, "5").Return(&entity.Note{Body: "bring contract"}, nil)

	m := newTestManager(clock, loader, notes)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})
	_, updates, unsubscribe := s.Subscribe()
	defer unsubscribe()

	clock.Advance(time.Minute)
	ev := receive(t, updates)
	assert.Equal(t, "5", ev.LeadID)

	require.Eventually(t, func() bool { return s.Inbox().Len() == 1 }, time.Second, 10*time.Millisecond)
	cur, ok := s.Inbox().Current()
	require.True(t, ok)
	assert.Equal(t, ev.ID, cur.ID)
}

func TestManager_RefreshAllVisitsEverySession(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{}, nil)

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	m.Open(context.Background(), entity.Viewer{ID: "a", Role: entity.RoleUser})
	m.Open(context.Background(), entity.Viewer{ID: "b", Role: entity.RoleTeamLeader})

	assert.Equal(t, 2, m.RefreshAll(context.Background()))
	loader.AssertNumberOfCalls(t, "ListVisible", 4)
}

func TestManager_StaleLoadDoesNotRearmSupersededReminder(t *testing.T) {
	clock := newFakeClock(t0)
	t1 := t0.Add(time.Hour)
	t2 := t0.Add(2 * time.Hour)
	loader := &gatedLoader{
		responses: [][]entity.Lead{
			{leadAt("42", t1)}, // Open
			{leadAt("42", t1)}, // varredura lida antes da edição
			{leadAt("42", t2)}, // refresh depois da edição
		},
		gate:    1,
		started: make(chan struct{}),
		release: make(chan struct{}),
	}

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})
	require.Equal(t, []Key{KeyFor("42", t1)}, s.Scheduler().Pending())

	swept := make(chan struct{})
	go func() {
		defer close(swept)
		m.RefreshAll(context.Background())
	}()
	<-loader.started

	m.RefreshFor(context.Background(), "u1")
	require.Equal(t, []Key{KeyFor("42", t2)}, s.Scheduler().Pending())

	close(loader.release)
	<-swept

	assert.Equal(t, []Key{KeyFor("42", t2)}, s.Scheduler().Pending())
}

func TestManager_CuePlaysOncePerReminderAcrossSessions(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).Return([]entity.Lead{leadAt("7", t0.Add(time.Hour))}, nil)

	var played atomic.Int32
	cue := CueFunc(func(ctx context.Context, ev Event) error {
		played.Add(1)
		return nil
	})
	m := NewManager(loader, nil, Options{Clock: clock, Cue: cue, Logger: zerolog.Nop()})
	defer m.Close()

	owner := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})
	admin := m.Open(context.Background(), entity.Viewer{ID: "boss", Role: entity.RoleAdmin})

	clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		return owner.Inbox().Len() == 1 && admin.Inbox().Len() == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), played.Load())
}

func TestSession_SubscribeSplitsBacklogFromUpdates(t *testing.T) {
	clock := newFakeClock(t0)
	loader := new(MockLeadLoader)
	loader.On("ListVisible", mock.Anything, mock.Anything).
		Return([]entity.Lead{leadAt("1", t0.Add(time.Minute)), leadAt("2", t0.Add(2*time.Minute))}, nil)

	m := newTestManager(clock, loader, nil)
	defer m.Close()

	s := m.Open(context.Background(), entity.Viewer{ID: "u1", Role: entity.RoleUser})

	clock.Advance(time.Minute)
	require.Eventually(t, func() bool { return s.Inbox().Len() == 1 }, time.Second, 10*time.Millisecond)

	pending, updates, unsubscribe := s.Subscribe()
	defer unsubscribe()
	require.Len(t, pending, 1)
	assert.Equal(t, "1", pending[0].LeadID)
	assert.Empty(t, updates)

	clock.Advance(time.Minute)
	ev := receive(t, updates)
	assert.Equal(t, "2", ev.LeadID)
	assert.Empty(t, updates)
}
