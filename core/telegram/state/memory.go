package state

import (
	"context"
	"sync"
	"time"
)

type memoryEntry[T any] struct {
	value   T
	expires time.Time
}

// MemoryStore keeps sessions in process memory.
type MemoryStore[T any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]memoryEntry[T]
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store; a non-positive ttl selects DefaultTTL.
func NewMemoryStore[T any](ttl time.Duration) *MemoryStore[T] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore[T]{
		ttl:      ttl,
		sessions: make(map[int64]memoryEntry[T]),
		now:      time.Now,
	}
}

// Get returns the live session for userID.
func (m *MemoryStore[T]) Get(_ context.Context, userID int64) (T, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	e, ok := m.sessions[userID]
	if !ok {
		return zero, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.sessions, userID)
		return zero, false, nil
	}
	return e.value, true, nil
}

// Set stores session for userID.
func (m *MemoryStore[T]) Set(_ context.Context, userID int64, session T) error {
	m.mu.Lock()
	m.sessions[userID] = memoryEntry[T]{value: session, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

// Clear removes the session for userID.
func (m *MemoryStore[T]) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	delete(m.sessions, userID)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore[T]) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for id, e := range m.sessions {
		if !now.Before(e.expires) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *MemoryStore[T]) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Sweep()
			}
		}
	}()
}

var _ Store[struct{}] = (*MemoryStore[struct{}])(nil)
