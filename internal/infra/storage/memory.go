package storage

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/speech"
)

// Memory keeps clips in process memory and serves them from the API under
// Prefix. Used when no object storage is configured.
type Memory struct {
	Prefix string

	mu    sync.RWMutex
	clips map[string]domain.Audio
}

func NewMemory(prefix string) *Memory {
	return &Memory{Prefix: prefix, clips: make(map[string]domain.Audio)}
}

func (m *Memory) Put(_ context.Context, key string, audio domain.Audio) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clips[key] = audio
	return m.Prefix + key, nil
}

func (m *Memory) Get(key string) (domain.Audio, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.clips[key]
	return a, ok
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.clips, key)
	return nil
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clips)
}

// Check implements middleware.HealthChecker.
func (m *Memory) Check(context.Context) error { return nil }
