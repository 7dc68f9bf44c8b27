// Package storage provides the in-memory and SQLite implementations of the
// catalog and session stores.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/ottobrew/internal/domain"
	"github.com/hammamikhairi/ottobrew/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.SessionStore = (*MemoryStore)(nil)
	_ domain.Store        = (*MemoryStore)(nil)
)

// MemoryStore keeps sessions and the whole catalog in maps. Safe for
// concurrent access. Catalog values are copied in and out so callers
// never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	recipes  map[string]*domain.Recipe
	roasters map[string]domain.Roaster
	grinders map[string]domain.Grinder
	brews    map[string]storedBrew
	charts   map[string]domain.ChartConfiguration
	log      *logger.Logger
}

// storedBrew is a brew without its resolved origin, plus the recipe it
// came from.
type storedBrew struct {
	brew     domain.Brew
	recipeID string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.Session),
		recipes:  make(map[string]*domain.Recipe),
		roasters: make(map[string]domain.Roaster),
		grinders: make(map[string]domain.Grinder),
		brews:    make(map[string]storedBrew),
		charts:   make(map[string]domain.ChartConfiguration),
		log:      log,
	}
}

// Save persists a session. Overwrites if it already exists.
func (s *MemoryStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("saving session %s (recipe=%s, status=%s)", session.ID, session.RecipeID, session.Status)
	s.sessions[session.ID] = session.Clone()
	return nil
}

// Load retrieves a session by ID.
func (s *MemoryStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return sess.Clone(), nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// ListActive returns sessions that still need attention: active, paused,
// or finished but not yet logged. Oldest first.
func (s *MemoryStore) ListActive(ctx context.Context) ([]*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Session
	for _, sess := range s.sessions {
		switch sess.Status {
		case domain.SessionActive, domain.SessionPaused, domain.SessionFinished:
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	s.log.Debug("listing active sessions, count=%d", len(out))
	return out, nil
}
