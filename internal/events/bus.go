package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	// GoalsChanged signals that goal state mutated; consumers re-fetch.
	GoalsChanged Type = "goals_changed"
	// PeriodRollover signals a local-clock period boundary was crossed.
	PeriodRollover Type = "period_rollover"
)

// Event carries no domain payload beyond the period tag and timestamp.
// Subscribers re-fetch state rather than trust event content.
type Event struct {
	Type   Type      `json:"type"`
	Period string    `json:"period,omitempty"`
	At     time.Time `json:"at"`
}

// Bus is an in-process broadcast channel between the engine and its
// observers (HTTP event feed, rollover watcher consumers).
type Bus struct {
	mu   sync.RWMutex
	subs map[string]chan Event
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]chan Event)}
}

// Subscribe registers a new observer and returns its id and channel.
func (b *Bus) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	ch := make(chan Event, 16)
	b.subs[id] = ch
	return id, ch
}

// Unsubscribe removes an observer and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish fans the event out to every subscriber. Publishing never
// blocks: a subscriber with a full buffer misses the event and is
// expected to re-fetch on the next one.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}
