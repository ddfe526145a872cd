package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/iwvelando/payment-planner/internal/config"
	"github.com/iwvelando/payment-planner/internal/metrics"
	"github.com/iwvelando/payment-planner/internal/planner"
	"github.com/iwvelando/payment-planner/internal/quotes"
	"github.com/iwvelando/payment-planner/internal/service"
	"github.com/iwvelando/payment-planner/pkg/constants"
	"github.com/iwvelando/payment-planner/pkg/output"
	"github.com/iwvelando/payment-planner/pkg/validation"
	"go.uber.org/zap"
)

// Options are the dependencies of the HTTP handler.
type Options struct {
	Logger      *zap.Logger
	Plans       *service.PlanService
	Quotes      *quotes.Service
	Metrics     *metrics.Metrics
	Auth        config.AuthConfig
	MaxBodySize int64
	Version     string
}

type handler struct {
	logger      *zap.Logger
	plans       *service.PlanService
	engine      *planner.Engine
	quotes      *quotes.Service
	metrics     *metrics.Metrics
	validate    *validator.Validate
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the planner API.
func NewHandler(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		plans:       opts.Plans,
		engine:      opts.Plans.Engine(),
		quotes:      opts.Quotes,
		metrics:     opts.Metrics,
		validate:    newValidator(),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	router := mux.NewRouter()
	router.Use(h.instrument)

	router.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/version", h.handleVersion).Methods(http.MethodGet)
	router.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware(opts.Auth))

	api.HandleFunc("/plans/evaluate", h.handleEvaluate).Methods(http.MethodPost)
	api.HandleFunc("/quotes", h.handleQuote).Methods(http.MethodPost)
	api.HandleFunc("/plans", h.handleCreatePlan).Methods(http.MethodPost)
	api.HandleFunc("/plans", h.handleListPlans).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}", h.handleGetPlan).Methods(http.MethodGet)
	api.HandleFunc("/plans/{id}", h.handleUpdatePlan).Methods(http.MethodPut)
	api.HandleFunc("/plans/{id}", h.handleDeletePlan).Methods(http.MethodDelete)
	api.HandleFunc("/plans/{id}/report", h.handlePlanReport).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{session}", h.handleSaveDraft).Methods(http.MethodPut)
	api.HandleFunc("/drafts/{session}", h.handleLoadDraft).Methods(http.MethodGet)
	api.HandleFunc("/drafts/{session}", h.handleDiscardDraft).Methods(http.MethodDelete)

	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument records the route template, status and latency of every
// request.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if template, err := current.GetPathTemplate(); err == nil {
				route = template
			}
		}
		elapsed := time.Since(start)
		h.metrics.ObserveHTTP(route, r.Method, rec.status, elapsed)
		h.logger.Debug("served request",
			zap.String("op", "server.instrument"),
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

type evaluateResponse struct {
	Plan   *planner.AssetPlan `json:"plan"`
	Report planner.Report     `json:"report"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.plans.Ping(ctx); err != nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, err.Error(), "server.handleHealth")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	plan, ok := h.decodePlan(w, r, "server.handleEvaluate")
	if !ok {
		return
	}
	report, err := h.engine.Evaluate(plan)
	if err != nil {
		h.respondDomainError(w, err, "server.handleEvaluate")
		return
	}
	h.writeJSON(w, http.StatusOK, evaluateResponse{Plan: plan, Report: report})
}

func (h *handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if !h.decodeJSON(w, r, &req, "server.handleQuote") {
		return
	}
	resp, err := h.quotes.Quote(r.Context(), req.quote())
	if err != nil {
		h.respondDomainError(w, err, "server.handleQuote")
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	plan, ok := h.decodePlan(w, r, "server.handleCreatePlan")
	if !ok {
		return
	}
	result, err := h.plans.Save(r.Context(), owner, plan)
	if err != nil {
		h.respondDomainError(w, err, "server.handleCreatePlan")
		return
	}
	w.Header().Set("Location", "/api/plans/"+result.ID)
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *handler) handleListPlans(w http.ResponseWriter, r *http.Request) {
	records, err := h.plans.List(r.Context(), h.owner(r))
	if err != nil {
		h.respondDomainError(w, err, "server.handleListPlans")
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *handler) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	record, err := h.plans.Load(r.Context(), h.owner(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondDomainError(w, err, "server.handleGetPlan")
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	plan, ok := h.decodePlan(w, r, "server.handleUpdatePlan")
	if !ok {
		return
	}
	result, err := h.plans.Update(r.Context(), owner, mux.Vars(r)["id"], plan)
	if err != nil {
		h.respondDomainError(w, err, "server.handleUpdatePlan")
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *handler) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.Delete(r.Context(), h.owner(r), mux.Vars(r)["id"]); err != nil {
		h.respondDomainError(w, err, "server.handleDeletePlan")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handlePlanReport(w http.ResponseWriter, r *http.Request) {
	outputFormat := r.URL.Query().Get("format")
	if outputFormat == "" {
		outputFormat = constants.OutputFormatJSON
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		h.respondDomainError(w, &planner.ValidationError{Field: "format", Reason: err.Error()}, "server.handlePlanReport")
		return
	}

	report, err := h.plans.Report(r.Context(), h.owner(r), mux.Vars(r)["id"])
	if err != nil {
		h.respondDomainError(w, err, "server.handlePlanReport")
		return
	}

	var buf bytes.Buffer
	if err := output.Write(&buf, outputFormat, report); err != nil {
		h.respondDomainError(w, err, "server.handlePlanReport")
		return
	}
	w.Header().Set("Content-Type", output.ContentType(outputFormat))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write report",
			zap.String("op", "server.handlePlanReport"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleSaveDraft(w http.ResponseWriter, r *http.Request) {
	owner := h.owner(r)
	plan, ok := h.decodePlan(w, r, "server.handleSaveDraft")
	if !ok {
		return
	}
	if err := h.plans.SaveDraft(r.Context(), owner, mux.Vars(r)["session"], plan); err != nil {
		h.respondDomainError(w, err, "server.handleSaveDraft")
		return
	}
	h.respondWithReport(w, plan, http.StatusOK, "server.handleSaveDraft")
}

func (h *handler) handleLoadDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.plans.LoadDraft(r.Context(), h.owner(r), mux.Vars(r)["session"])
	if err != nil {
		h.respondDomainError(w, err, "server.handleLoadDraft")
		return
	}
	h.respondWithReport(w, draft, http.StatusOK, "server.handleLoadDraft")
}

func (h *handler) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.plans.DiscardDraft(r.Context(), h.owner(r), mux.Vars(r)["session"]); err != nil {
		h.respondDomainError(w, err, "server.handleDiscardDraft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) respondWithReport(w http.ResponseWriter, plan *planner.AssetPlan, status int, op string) {
	report, err := h.engine.Evaluate(plan)
	if err != nil {
		h.respondDomainError(w, err, op)
		return
	}
	h.writeJSON(w, status, evaluateResponse{Plan: plan, Report: report})
}

func (h *handler) owner(r *http.Request) string {
	owner, _ := OwnerFromContext(r.Context())
	return owner
}

// decodePlan decodes, validates and builds a plan request body.
func (h *handler) decodePlan(w http.ResponseWriter, r *http.Request, op string) (*planner.AssetPlan, bool) {
	var req planRequest
	if !h.decodeJSON(w, r, &req, op) {
		return nil, false
	}
	plan, err := req.build(h.engine)
	if err != nil {
		h.respondDomainError(w, err, op)
		return nil, false
	}
	return plan, true
}

// decodeJSON reads a size-limited JSON body into dest and validates it.
func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dest interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	if err := h.validate.Struct(dest); err != nil {
		h.respondDomainError(w, validationError(err), op)
		return false
	}
	return true
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Warn("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, errorResponse{Error: msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
