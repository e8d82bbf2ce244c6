package store

import (
	"context"
	"log"
	"sync"
)

// subBufferSize bounds how far a slow subscriber may fall behind before
// events are dropped for it.
const subBufferSize = 64

type memSub struct {
	table string
	f     Filter
	ch    chan Event
}

// MemoryBus is a process-local Bus. It fans every published event out to all
// matching subscriptions in publish order. Used for single-node deployments
// and for driving reconciliation with synthetic events in tests.
type MemoryBus struct {
	mu     sync.Mutex
	subs   map[int]*memSub
	nextID int
	closed bool
}

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]*memSub)}
}

// Publish delivers ev to every matching subscription. A subscriber whose
// buffer is full loses the event rather than blocking the writer.
func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	for _, s := range b.subs {
		if s.table != ev.Table || !s.f.Match(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			log.Printf("store: dropping %s event for slow subscriber on %s", ev.Type, ev.Table)
		}
	}
	return nil
}

// Subscribe opens a subscription on table scoped by f.
func (b *MemoryBus) Subscribe(table string, f Filter) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	s := &memSub{table: table, f: f, ch: make(chan Event, subBufferSize)}
	b.subs[id] = s

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
	return s.ch, cancel
}

// Close tears down every subscription.
func (b *MemoryBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, s := range b.subs {
		delete(b.subs, id)
		close(s.ch)
	}
}
