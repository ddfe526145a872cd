// Package postgres stores plan records in PostgreSQL. The record is kept as a
// JSONB document next to the columns used for lookups and ordering.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	insertPlan = `INSERT INTO plans (id, owner_id, name, category, document, created_at, updated_at, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, 1)`
	selectPlan = `SELECT id, owner_id, document, created_at, updated_at, version FROM plans WHERE id = $1`
	updatePlan = `UPDATE plans SET name = $2, category = $3, document = $4, updated_at = $5, version = version + 1
WHERE id = $1`
	deletePlan = `DELETE FROM plans WHERE id = $1`
	listPlans  = `SELECT id, owner_id, document, created_at, updated_at, version FROM plans
WHERE owner_id = $1 ORDER BY created_at DESC, id`
)

// invalidTextRepresentation is raised for ids that are not UUIDs.
const invalidTextRepresentation = "22P02"

// Repository implements storage.PlanRepository on database/sql.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// New wraps an open database handle.
func New(db *sql.DB, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Open connects to the configured database, applies the pool settings and
// verifies the connection.
func Open(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Repository, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return New(db, logger), nil
}

// Save inserts a new record.
func (r *Repository) Save(ctx context.Context, record planner.PlanRecord) (string, error) {
	now := r.now()
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	record.Version = 1

	doc, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("failed to encode plan: %w", err)
	}

	_, err = r.db.ExecContext(ctx, insertPlan,
		record.ID, record.OwnerID, record.Name, string(record.Category), doc, record.CreatedAt, record.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to insert plan",
			zap.String("op", "postgres.Save"),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to insert plan: %w: %v", planner.ErrUpstreamUnavailable, err)
	}
	return record.ID, nil
}

// Load returns a record by id.
func (r *Repository) Load(ctx context.Context, id string) (planner.PlanRecord, error) {
	row := r.db.QueryRowContext(ctx, selectPlan, id)
	record, err := scanRecord(row)
	if err != nil {
		return planner.PlanRecord{}, r.mapError("postgres.Load", id, err)
	}
	return record, nil
}

// Update overwrites the record document and bumps its version. The owner and
// creation time columns are left untouched.
func (r *Repository) Update(ctx context.Context, id string, record planner.PlanRecord) error {
	record.ID = id
	record.UpdatedAt = r.now()

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	result, err := r.db.ExecContext(ctx, updatePlan, id, record.Name, string(record.Category), doc, record.UpdatedAt)
	if err != nil {
		return r.mapError("postgres.Update", id, err)
	}
	return affected(result, id)
}

// Delete removes a record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, deletePlan, id)
	if err != nil {
		return r.mapError("postgres.Delete", id, err)
	}
	return affected(result, id)
}

// List returns the owner's records, newest first.
func (r *Repository) List(ctx context.Context, ownerID string) ([]planner.PlanRecord, error) {
	rows, err := r.db.QueryContext(ctx, listPlans, ownerID)
	if err != nil {
		return nil, r.mapError("postgres.List", ownerID, err)
	}
	defer rows.Close()

	records := []planner.PlanRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, r.mapError("postgres.List", ownerID, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError("postgres.List", ownerID, err)
	}
	return records, nil
}

// Ping checks the connection.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
	}
	return nil
}

// Close releases the connection pool.
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord decodes the document and lets the columns win for the fields
// the database owns.
func scanRecord(row scanner) (planner.PlanRecord, error) {
	var (
		id, ownerID          string
		doc                  []byte
		createdAt, updatedAt time.Time
		version              int
	)
	if err := row.Scan(&id, &ownerID, &doc, &createdAt, &updatedAt, &version); err != nil {
		return planner.PlanRecord{}, err
	}

	var record planner.PlanRecord
	if err := json.Unmarshal(doc, &record); err != nil {
		return planner.PlanRecord{}, fmt.Errorf("failed to decode plan %s: %w", id, err)
	}
	record.ID = id
	record.OwnerID = ownerID
	record.CreatedAt = createdAt.UTC()
	record.UpdatedAt = updatedAt.UTC()
	record.Version = version
	return record, nil
}

func affected(result sql.Result, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
	}
	if n == 0 {
		return fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	return nil
}

func (r *Repository) mapError(op, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == invalidTextRepresentation {
		return fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	r.logger.Error("plan query failed",
		zap.String("op", op),
		zap.String("key", id),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %v", planner.ErrUpstreamUnavailable, err)
}
