package tenant

import (
	"context"
	"sync"
)

// ActiveStore remembers each principal's active workspace id across sessions.
// It is a cache, never a source of truth: callers must validate the recalled
// id against the fresh membership list and tolerate absent or stale values.
type ActiveStore interface {
	// Remember persists the active workspace id for a principal.
	Remember(ctx context.Context, userID, workspaceID string) error

	// Recall returns the remembered workspace id, or "" when none is stored.
	Recall(ctx context.Context, userID string) (string, error)

	// Forget clears the remembered id.
	Forget(ctx context.Context, userID string) error
}

// MemoryStore is an in-process ActiveStore for tests and single-node setups.
type MemoryStore struct {
	mu     sync.RWMutex
	active map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{active: make(map[string]string)}
}

func (s *MemoryStore) Remember(ctx context.Context, userID, workspaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = workspaceID
	return nil
}

func (s *MemoryStore) Recall(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active[userID], nil
}

func (s *MemoryStore) Forget(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
	return nil
}

var _ ActiveStore = (*MemoryStore)(nil)
