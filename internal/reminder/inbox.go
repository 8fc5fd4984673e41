package reminder

import (
	"errors"
	"sync"
)

var ErrAlertNotFound = errors.New("alerta não encontrado")

// Inbox guarda os lembretes disparados ainda não confirmados, em fila (FIFO).
// Só o primeiro é exibido; os demais esperam a vez. Nada é descartado.
type Inbox struct {
	mu    sync.Mutex
	queue []Event
}

func NewInbox() *Inbox {
	return &Inbox{}
}

func (b *Inbox) Push(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, ev)
}

// Current é o alerta em exibição.
func (b *Inbox) Current() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return Event{}, false
	}
	return b.queue[0], true
}

func (b *Inbox) Pending() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Event, len(b.queue))
	copy(out, b.queue)
	return out
}

func (b *Inbox) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Ack remove o alerta; se era o atual, o próximo da fila passa a ser exibido.
func (b *Inbox) Ack(id string) (next Event, hasNext bool, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.queue {
		if b.queue[i].ID == id {
			b.queue = append(b.queue[:i], b.queue[i+1:]...)
			if len(b.queue) > 0 {
				return b.queue[0], true, nil
			}
			return Event{}, false, nil
		}
	}
	return Event{}, false, ErrAlertNotFound
}
