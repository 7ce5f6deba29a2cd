// Package bus implements the in-process event broadcaster: synchronous
// fan-out to listeners in registration order, with per-listener panic
// isolation so one broken consumer cannot block the rest.
package bus

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/neuradash/account-system/internal/api/metrics"
)

// Handler consumes a single event payload.
type Handler func(payload any)

type entry struct {
	id int
	fn Handler
}

// Bus is a local publish/subscribe hub. Listener callbacks are invoked
// synchronously on the emitting goroutine, in registration order.
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string][]entry
	log       zerolog.Logger
}

func New(log zerolog.Logger) *Bus {
	return &Bus{
		listeners: make(map[string][]entry),
		log:       log,
	}
}

// On registers fn for the named event and returns its unsubscribe function.
// Go functions are not comparable, so removal is by the returned closure
// rather than by callback identity.
func (b *Bus) On(event string, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[event] = append(b.listeners[event], entry{id: id, fn: fn})

	return func() { b.off(event, id) }
}

func (b *Bus) off(event string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.listeners[event]
	for i, e := range entries {
		if e.id == id {
			b.listeners[event] = append(entries[:i], entries[i+1:]...)
			return
		}
	}
}

// Emit delivers payload to every listener of event. A panicking listener is
// recovered and logged; later listeners still run.
func (b *Bus) Emit(event string, payload any) {
	b.mu.Lock()
	snapshot := make([]entry, len(b.listeners[event]))
	copy(snapshot, b.listeners[event])
	b.mu.Unlock()

	metrics.EventsEmittedTotal.WithLabelValues(event).Inc()

	for _, e := range snapshot {
		b.invoke(event, e, payload)
	}
}

func (b *Bus) invoke(event string, e entry, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("event", event).
				Int("listener_id", e.id).
				Interface("panic", r).
				Msg("listener panicked")
		}
	}()
	e.fn(payload)
}
