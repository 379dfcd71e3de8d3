package pending

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	proof   Proof
	expires time.Time
}

// Memory is an in-process Cache. Expired entries are dropped lazily.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[int64]memoryEntry
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]memoryEntry),
	}
}

func (m *Memory) Put(ctx context.Context, userID int64, proof Proof) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
	m.entries[userID] = memoryEntry{proof: proof, expires: now.Add(m.ttl)}
	return nil
}

func (m *Memory) Take(ctx context.Context, userID int64) (Proof, error) {
	if err := ctx.Err(); err != nil {
		return Proof{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[userID]
	if !ok {
		return Proof{}, ErrSessionExpired
	}
	delete(m.entries, userID)
	if !m.now().Before(e.expires) {
		return Proof{}, ErrSessionExpired
	}
	return e.proof, nil
}
