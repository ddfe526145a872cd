// Package drafts keeps in-progress plans between requests. A draft may be
// unreconciled; it is only a persisted plan once the plan service saves it.
package drafts

import (
	"context"
	"errors"
	"sync"

	"github.com/iwvelando/payment-planner/internal/planner"
)

// ErrDraftNotFound is returned when no draft exists for a session.
var ErrDraftNotFound = errors.New("draft not found")

// Store saves one draft per session key.
type Store interface {
	Save(ctx context.Context, sessionID string, draft *planner.AssetPlan) error
	Load(ctx context.Context, sessionID string) (*planner.AssetPlan, error)
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps drafts in process memory without expiry.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]*planner.AssetPlan
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]*planner.AssetPlan)}
}

// Save stores a copy of the draft.
func (s *MemoryStore) Save(_ context.Context, sessionID string, draft *planner.AssetPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionID] = draft.Clone()
	return nil
}

// Load returns a copy of the session's draft.
func (s *MemoryStore) Load(_ context.Context, sessionID string) (*planner.AssetPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	draft, ok := s.drafts[sessionID]
	if !ok {
		return nil, ErrDraftNotFound
	}
	return draft.Clone(), nil
}

// Delete discards the session's draft. Deleting a missing draft is not an
// error.
func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}
