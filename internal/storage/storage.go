// Package storage defines the plan persistence port. Implementations live in
// the memory and postgres subpackages.
package storage

import (
	"context"

	"github.com/iwvelando/payment-planner/internal/planner"
)

// PlanRepository stores exactly reconciled plan records. Load, Update and
// Delete return an error wrapping planner.ErrNotFound for unknown ids;
// failures of the backing store wrap planner.ErrUpstreamUnavailable.
type PlanRepository interface {
	// Save stores a new record and returns its id. The repository assigns
	// the id, timestamps and version.
	Save(ctx context.Context, record planner.PlanRecord) (string, error)
	Load(ctx context.Context, id string) (planner.PlanRecord, error)
	// Update overwrites a record. The last writer wins; the version is
	// incremented but not checked.
	Update(ctx context.Context, id string, record planner.PlanRecord) error
	Delete(ctx context.Context, id string) error
	// List returns the owner's records, newest first.
	List(ctx context.Context, ownerID string) ([]planner.PlanRecord, error)
	Ping(ctx context.Context) error
	Close() error
}
