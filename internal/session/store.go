// internal/session/store.go
//
// Persistence of per-session pagination state.
//
// Context
// -------
// Only page size and page number outlive a process restart or an eviction.
// The total count and row edit states are rebuilt on the next render.  Three
// Store implementations exist, selected by `state.driver`:
//
//	memory  MemoryStore  (default; lost on restart)
//	mysql   MySQLStore   (table panel_session)
//	redis   RedisStore   (one key per session, sliding TTL)
//
// Notes
// -----
//   - Load reports ok == false, nil error, for an unknown session.
//   - Oxford commas, two spaces after periods.
package session

import (
	"context"
	"sync"

	"github.com/yanizio/playeradmin/internal/panel"
)

// Store loads and saves pagination state by session identifier.
type Store interface {
	Load(ctx context.Context, id string) (panel.PaginationState, bool, error)
	Save(ctx context.Context, id string, st panel.PaginationState) error
	Close() error
}

// MemoryStore keeps state in a map.  Safe for concurrent use.
type MemoryStore struct {
	mu sync.RWMutex
	m  map[string]panel.PaginationState
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]panel.PaginationState)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (panel.PaginationState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[id]
	return st, ok, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, st panel.PaginationState) error {
	st.TotalCount = nil
	s.mu.Lock()
	s.m[id] = st
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
