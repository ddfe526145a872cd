// Package service orchestrates plan persistence, drafts and share
// notifications around the planner engine.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iwvelando/payment-planner/internal/drafts"
	"github.com/iwvelando/payment-planner/internal/metrics"
	"github.com/iwvelando/payment-planner/internal/notify"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/internal/storage"
	"go.uber.org/zap"
)

// Save outcomes recorded in metrics.
const (
	outcomeSaved    = "saved"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// SaveResult describes a stored plan. Warnings report side effects that
// failed without undoing the save.
type SaveResult struct {
	ID       string             `json:"id"`
	Record   planner.PlanRecord `json:"record"`
	Warnings []string           `json:"warnings"`
}

// PlanService stores, loads and shares plans on behalf of an owner.
type PlanService struct {
	logger   *zap.Logger
	engine   *planner.Engine
	repo     storage.PlanRepository
	drafts   drafts.Store
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

// NewPlanService creates a plan service. A nil notifier disables share
// notifications.
func NewPlanService(logger *zap.Logger, engine *planner.Engine, repo storage.PlanRepository, draftStore drafts.Store, notifier notify.Notifier, m *metrics.Metrics) *PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &PlanService{
		logger:   logger,
		engine:   engine,
		repo:     repo,
		drafts:   draftStore,
		notifier: notifier,
		metrics:  m,
	}
}

// Engine returns the planner engine used by the service.
func (s *PlanService) Engine() *planner.Engine {
	return s.engine
}

func requireOwner(owner string) error {
	if owner == "" {
		return &planner.ValidationError{Field: "owner", Reason: "is required"}
	}
	return nil
}

// gate converts a plan into a record when it may be persisted. Credits that
// broke a rule after a price change block the save like a mismatch does.
func (s *PlanService) gate(owner string, plan *planner.AssetPlan) (planner.PlanRecord, error) {
	if violations := plan.Violations(); len(violations) > 0 {
		return planner.PlanRecord{}, violations[0]
	}
	snapshot := plan.Clone()
	snapshot.OwnerID = owner
	return snapshot.ToRecord()
}

// Save persists a new plan for owner. Plans that are not exactly reconciled
// or have no name are rejected without touching the repository.
func (s *PlanService) Save(ctx context.Context, owner string, plan *planner.AssetPlan) (SaveResult, error) {
	if err := requireOwner(owner); err != nil {
		return SaveResult{}, err
	}
	record, err := s.gate(owner, plan)
	if err != nil {
		s.metrics.PlanSave(outcomeRejected)
		return SaveResult{}, err
	}

	id, err := s.repo.Save(ctx, record)
	if err != nil {
		s.metrics.PlanSave(outcomeFailed)
		return SaveResult{}, fmt.Errorf("saving plan: %w", err)
	}
	s.metrics.PlanSave(outcomeSaved)

	record.ID = id
	record.Version = 1
	saved, warnings := s.reload(ctx, record, "service.Save")

	s.logger.Info("saved plan",
		zap.String("op", "service.Save"),
		zap.String("plan", id),
		zap.String("owner", owner),
		zap.String("category", string(saved.Category)),
	)

	result := SaveResult{ID: id, Record: saved, Warnings: warnings}
	if saved.SharedWith != nil {
		result.Warnings = append(result.Warnings, s.share(ctx, saved)...)
	}
	return result, nil
}

// Load returns one of the owner's plan records. Plans of other owners are
// reported as not found.
func (s *PlanService) Load(ctx context.Context, owner, id string) (planner.PlanRecord, error) {
	if err := requireOwner(owner); err != nil {
		return planner.PlanRecord{}, err
	}
	record, err := s.repo.Load(ctx, id)
	if err != nil {
		return planner.PlanRecord{}, err
	}
	if record.OwnerID != owner {
		return planner.PlanRecord{}, fmt.Errorf("plan %s: %w", id, planner.ErrNotFound)
	}
	return record, nil
}

// Plan loads a stored plan as an editable plan.
func (s *PlanService) Plan(ctx context.Context, owner, id string) (*planner.AssetPlan, error) {
	record, err := s.Load(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return s.engine.FromRecord(record)
}

// Report evaluates a stored plan.
func (s *PlanService) Report(ctx context.Context, owner, id string) (planner.Report, error) {
	plan, err := s.Plan(ctx, owner, id)
	if err != nil {
		return planner.Report{}, err
	}
	return s.engine.Evaluate(plan)
}

// Update overwrites one of the owner's plans. The same persistence gate as
// Save applies. A newly added share recipient is notified.
func (s *PlanService) Update(ctx context.Context, owner, id string, plan *planner.AssetPlan) (SaveResult, error) {
	existing, err := s.Load(ctx, owner, id)
	if err != nil {
		return SaveResult{}, err
	}
	record, err := s.gate(owner, plan)
	if err != nil {
		s.metrics.PlanSave(outcomeRejected)
		return SaveResult{}, err
	}

	if err := s.repo.Update(ctx, id, record); err != nil {
		s.metrics.PlanSave(outcomeFailed)
		return SaveResult{}, fmt.Errorf("updating plan: %w", err)
	}
	s.metrics.PlanSave(outcomeSaved)

	record.ID = id
	record.CreatedAt = existing.CreatedAt
	record.Version = existing.Version + 1
	saved, warnings := s.reload(ctx, record, "service.Update")

	s.logger.Info("updated plan",
		zap.String("op", "service.Update"),
		zap.String("plan", id),
		zap.Int("version", saved.Version),
	)

	result := SaveResult{ID: id, Record: saved, Warnings: warnings}
	if saved.SharedWith != nil && (existing.SharedWith == nil || *existing.SharedWith != *saved.SharedWith) {
		result.Warnings = append(result.Warnings, s.share(ctx, saved)...)
	}
	return result, nil
}

// Delete removes one of the owner's plans.
func (s *PlanService) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.Load(ctx, owner, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("deleted plan",
		zap.String("op", "service.Delete"),
		zap.String("plan", id),
	)
	return nil
}

// List returns the owner's plans, newest first.
func (s *PlanService) List(ctx context.Context, owner string) ([]planner.PlanRecord, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, owner)
}

// reload reads back a record the repository has just committed. A failed
// read must not fail the call, since a retry would store the plan twice, so
// the written record is returned with a warning instead.
func (s *PlanService) reload(ctx context.Context, written planner.PlanRecord, op string) (planner.PlanRecord, []string) {
	saved, err := s.repo.Load(ctx, written.ID)
	if err != nil {
		s.logger.Warn("plan stored but could not be read back",
			zap.String("op", op),
			zap.String("plan", written.ID),
			zap.Error(err),
		)
		return written, []string{"plan saved, but the stored copy could not be read back"}
	}
	return saved, []string{}
}

// share sends the plan summary and turns a failure into a warning.
func (s *PlanService) share(ctx context.Context, record planner.PlanRecord) []string {
	plan, err := s.engine.FromRecord(record)
	if err == nil {
		var report planner.Report
		report, err = s.engine.Evaluate(plan)
		if err == nil {
			err = s.notifier.SendPlanSummary(ctx, *record.SharedWith, notify.Summary{PlanID: record.ID, Report: report})
		}
	}

	if err != nil {
		s.metrics.Notification(outcomeFailed)
		s.logger.Warn("plan saved but summary was not sent",
			zap.String("op", "service.share"),
			zap.String("plan", record.ID),
			zap.Error(err),
		)
		return []string{fmt.Sprintf("plan saved, but the summary for %s could not be sent", *record.SharedWith)}
	}
	s.metrics.Notification("sent")
	return nil
}

func draftKey(owner, sessionID string) string {
	return owner + ":" + sessionID
}

// SaveDraft stores an in-progress plan for the owner's session. Drafts need
// not reconcile.
func (s *PlanService) SaveDraft(ctx context.Context, owner, sessionID string, plan *planner.AssetPlan) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	if sessionID == "" {
		return &planner.ValidationError{Field: "session", Reason: "is required"}
	}
	if !plan.Category.IsAsset() {
		return &planner.ValidationError{Field: "category", Reason: fmt.Sprintf("%q is not an asset category", plan.Category)}
	}
	draft := plan.Clone()
	draft.OwnerID = owner

	err := s.drafts.Save(ctx, draftKey(owner, sessionID), draft)
	s.metrics.DraftOperation("save", err)
	return err
}

// LoadDraft returns the owner's draft for a session.
func (s *PlanService) LoadDraft(ctx context.Context, owner, sessionID string) (*planner.AssetPlan, error) {
	if err := requireOwner(owner); err != nil {
		return nil, err
	}
	draft, err := s.drafts.Load(ctx, draftKey(owner, sessionID))
	s.metrics.DraftOperation("load", err)
	if errors.Is(err, drafts.ErrDraftNotFound) {
		return nil, fmt.Errorf("draft %s: %w", sessionID, planner.ErrNotFound)
	}
	return draft, err
}

// DiscardDraft deletes the owner's draft for a session.
func (s *PlanService) DiscardDraft(ctx context.Context, owner, sessionID string) error {
	if err := requireOwner(owner); err != nil {
		return err
	}
	err := s.drafts.Delete(ctx, draftKey(owner, sessionID))
	s.metrics.DraftOperation("delete", err)
	return err
}

// Ping checks the repository.
func (s *PlanService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
