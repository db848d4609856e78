package web

import (
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/dhabedank/cost-analyzer/internal/core"
)

// SessionStore keeps the most recently used sessions. Evicted sessions are
// closed, which releases their workbook.
type SessionStore struct {
	cache   *lru.Cache
	config  core.AnalysisConfig
	factory core.InferencerFactory
}

// NewSessionStore creates a store holding at most size sessions.
func NewSessionStore(size int, cfg core.AnalysisConfig, factory core.InferencerFactory) (*SessionStore, error) {
	cache, err := lru.NewWithEvict(size, func(_ interface{}, value interface{}) {
		value.(*core.Session).Close()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session store: %w", err)
	}
	return &SessionStore{cache: cache, config: cfg, factory: factory}, nil
}

// Get returns the session with id, marking it as recently used.
func (s *SessionStore) Get(id string) (*core.Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*core.Session), true
}

// Create starts an empty session under a fresh id.
func (s *SessionStore) Create() *core.Session {
	session := core.NewSession(uuid.NewString(), s.config, s.factory)
	s.cache.Add(session.ID, session)
	return session
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}

// Purge closes and drops every session.
func (s *SessionStore) Purge() {
	s.cache.Purge()
}
