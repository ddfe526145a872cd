// Package memory implements the plan repository in process memory. It backs
// tests and local development when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/payment-planner/internal/planner"
)

// Repository is a mutex-guarded map of plan records.
type Repository struct {
	mu      sync.RWMutex
	records map[string]planner.PlanRecord
	now     func() time.Time
}

// NewRepository creates an empty repository.
func NewRepository() *Repository {
	return &Repository{
		records: make(map[string]planner.PlanRecord),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Save stores a new record.
func (r *Repository) Save(_ context.Context, record planner.PlanRecord) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	record.Version = 1

	r.records[record.ID] = record
	return record.ID, nil
}

// Load returns a record by id.
func (r *Repository) Load(_ context.Context, id string) (planner.PlanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return planner.PlanRecord{}, fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	return record, nil
}

// Update overwrites a record, keeping its owner and creation time.
func (r *Repository) Update(_ context.Context, id string, record planner.PlanRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.records[id]
	if !ok {
		return fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}

	record.ID = id
	record.OwnerID = existing.OwnerID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = r.now()
	record.Version = existing.Version + 1

	r.records[id] = record
	return nil
}

// Delete removes a record.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	delete(r.records, id)
	return nil
}

// List returns the owner's records, newest first.
func (r *Repository) List(_ context.Context, ownerID string) ([]planner.PlanRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := []planner.PlanRecord{}
	for _, record := range r.records {
		if record.OwnerID == ownerID {
			records = append(records, record)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Ping always succeeds.
func (r *Repository) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (r *Repository) Close() error {
	return nil
}
