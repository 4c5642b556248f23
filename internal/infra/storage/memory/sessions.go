package memory

import (
	"context"
	"sync"

	"storefront/internal/domain/session"
)

// SessionRepository keeps session snapshots in memory. Update holds the write
// lock for the whole mutation, so transitions on one session never interleave.
type SessionRepository struct {
	mu    sync.Mutex
	items map[string]session.Snapshot
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]session.Snapshot)}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; ok {
		return session.ErrSessionExists
	}
	r.items[s.ID] = s.Snapshot()
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.items[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return session.FromSnapshot(snap), nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*session.Session) error) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap, ok := r.items[id]
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	s := session.FromSnapshot(snap)
	if err := fn(s); err != nil {
		return s, err
	}
	s.Version = snap.Version + 1
	r.items[id] = s.Snapshot()
	return s, nil
}

var _ session.Repository = (*SessionRepository)(nil)
