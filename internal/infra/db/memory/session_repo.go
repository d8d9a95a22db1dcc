package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/bryanwahyu/aarogyam/internal/domain/session"
)

// SessionRepository keeps sessions in process memory. Nothing survives a
// restart.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[domain.ID]*domain.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[domain.ID]*domain.Session)}
}

// Save stores a copy of s.
func (r *SessionRepository) Save(_ context.Context, s *domain.Session) error {
	cp := *s
	r.mu.Lock()
	r.sessions[s.ID] = &cp
	r.mu.Unlock()
	return nil
}

// Get returns a copy, so callers mutate freely and persist with Save.
func (r *SessionRepository) Get(_ context.Context, id domain.ID) (*domain.Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *SessionRepository) Delete(_ context.Context, id domain.ID) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Expire(_ context.Context, cutoff time.Time, busy func(domain.ID) bool) ([]*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*domain.Session
	for id, s := range r.sessions {
		if s.UpdatedAt.Before(cutoff) {
			if busy != nil && busy(id) {
				continue
			}
			out = append(out, s)
			delete(r.sessions, id)
		}
	}
	return out, nil
}

func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
