package session

import (
	"context"
	"time"
)

// Repository port for session state. Implementations keep sessions in memory
// only.
type Repository interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id ID) (*Session, error)
	Delete(ctx context.Context, id ID) error
	// Expire removes and returns every session last updated before cutoff,
	// except those for which busy reports true. busy may be nil.
	Expire(ctx context.Context, cutoff time.Time, busy func(ID) bool) ([]*Session, error)
}
