package lock

import (
	"context"
	"sync"
	"time"

	"shopify-workspace-connector/internal/ports"
)

// MemoryLocker implements Locker for a single process
type MemoryLocker struct {
	mu    sync.Mutex
	held  map[string]heldLock
	seq   uint64
	clock func() time.Time
}

type heldLock struct {
	id        uint64
	expiresAt time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: make(map[string]heldLock), clock: time.Now}
}

var _ ports.Locker = (*MemoryLocker)(nil)

func (l *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock()
	if h, ok := l.held[key]; ok && now.Before(h.expiresAt) {
		return nil, ports.ErrLockHeld
	}
	l.seq++
	id := l.seq
	l.held[key] = heldLock{id: id, expiresAt: now.Add(ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if h, ok := l.held[key]; ok && h.id == id {
				delete(l.held, key)
			}
		})
	}, nil
}
