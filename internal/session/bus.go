package session

import (
	"context"
	"sync"
)

// Bus carries auth-state change events between processes (or within one).
type Bus interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe delivers events until ctx is done or the returned cancel runs.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
}

const subscriberBuffer = 16

// MemoryBus fans events out in-process. Slow subscribers drop events rather
// than block publishers.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]chan Event)}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
			close(done)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()

	return ch, cancel, nil
}
