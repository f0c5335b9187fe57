package objectstore

import (
	"context"
	"io"
	"sync"
)

// MemoryBackend keeps objects in memory. Used when no bucket is configured.
type MemoryBackend struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ Backend = (*MemoryBackend)(nil)

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{objects: make(map[string][]byte)}
}

func (b *MemoryBackend) Put(_ context.Context, key, _ string, r io.Reader, _ int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.objects[key] = data
	b.mu.Unlock()
	return nil
}

// Get returns a stored object.
func (b *MemoryBackend) Get(key string) ([]byte, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	data, ok := b.objects[key]
	return data, ok
}
