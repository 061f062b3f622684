package testutil

import (
	"context"
	"maps"
	"sync"
)

// MemoryBackend is an in-memory credential backend for tests.
type MemoryBackend struct {
	mu      sync.Mutex
	data    map[string]string
	SaveErr error
	Saves   int
}

func NewMemoryBackend(initial map[string]string) *MemoryBackend {
	return &MemoryBackend{data: maps.Clone(initial)}
}

func (b *MemoryBackend) Load(_ context.Context) (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.data), nil
}

func (b *MemoryBackend) Save(_ context.Context, credentials map[string]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.SaveErr != nil {
		return b.SaveErr
	}
	b.Saves++
	b.data = maps.Clone(credentials)
	return nil
}

// Snapshot returns a copy of the persisted mapping.
func (b *MemoryBackend) Snapshot() map[string]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return maps.Clone(b.data)
}
