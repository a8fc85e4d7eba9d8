/*
handlers.go - HTTP API handlers for the attendance productivity engine

PURPOSE:
  Exposes punch recording and productivity reports via REST API. Handles
  HTTP request/response and JSON serialization, and delegates to the
  attendance service.

ENDPOINTS:
  Workers:
    GET    /api/workers                      List all workers
    POST   /api/workers                      Create worker
    GET    /api/workers/{id}                 Get worker details
    PUT    /api/workers/{id}                 Update worker

  Punches:
    POST   /api/punches                      Scanner punch (by RFID)
    POST   /api/workers/{id}/punches         Record punch for a worker
    GET    /api/workers/{id}/punches         Punch log (?from&to or ?month)

  Productivity:
    GET    /api/workers/{id}/productivity    Report (?from&to or ?month, ?batch)

  Settings:
    GET    /api/settings/schedule            Current schedule
    PUT    /api/settings/schedule            Replace schedule

  Admin:
    POST   /api/admin/reset                  Clear all data

  Scenarios:
    GET    /api/scenarios                    List demo scenarios
    POST   /api/scenarios/load               Load a demo scenario

RANGE PARAMETERS:
  Either month=YYYY-MM (whole month) or from=YYYY-MM-DD&to=YYYY-MM-DD, both
  inclusive.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Worker not found
  - 409: Conflict (RFID already assigned)
  - 422: Schedule cannot produce a payable work window
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Resetter is implemented by stores that can be wiped for demos.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           attendance.Store
	Service         *attendance.Service
	ScheduleFactory *factory.ScheduleFactory
	Currency        *productivity.CurrencyFormatter

	// Track currently loaded scenario
	mu              sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store attendance.Store) *Handler {
	return &Handler{
		Store:           store,
		Service:         attendance.NewService(store),
		ScheduleFactory: factory.NewScheduleFactory(),
		Currency:        productivity.DefaultCurrencyFormatter(),
	}
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Service.Workers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workers", err)
		return
	}

	dtos := make([]WorkerDTO, len(workers))
	for i, wk := range workers {
		dtos[i] = toWorkerDTO(wk)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWorker returns a single worker.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := h.Service.Worker(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*worker))
}

// CreateWorker creates a new worker.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.ID != "" {
		if _, err := h.Service.Worker(r.Context(), req.ID); err == nil {
			writeError(w, http.StatusConflict, "Worker already exists", nil)
			return
		}
	}

	saved, err := h.Service.SaveWorker(r.Context(), workerFromRequest(req))
	if err != nil {
		writeServiceError(w, "Failed to create worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(*saved))
}

// UpdateWorker replaces an existing worker's profile.
func (h *Handler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.Service.Worker(r.Context(), id)
	if err != nil {
		writeServiceError(w, "Failed to get worker", err)
		return
	}

	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	worker := workerFromRequest(req)
	worker.ID = id
	worker.CreatedAt = existing.CreatedAt

	saved, err := h.Service.SaveWorker(r.Context(), worker)
	if err != nil {
		writeServiceError(w, "Failed to update worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*saved))
}

func workerFromRequest(req CreateWorkerRequest) attendance.Worker {
	return attendance.Worker{
		ID:         strings.TrimSpace(req.ID),
		Name:       req.Name,
		RFID:       strings.TrimSpace(req.RFID),
		Department: req.Department,
		Email:      req.Email,
		Salary:     req.Salary,
	}
}

// =============================================================================
// PUNCH HANDLERS
// =============================================================================

// RecordPunch records a punch for the worker in the URL.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req CreatePunchRequest
	if err := decodeOptionalBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.recordPunch(w, r, attendance.PunchInput{
		WorkerID: chi.URLParam(r, "id"),
		Date:     req.Date,
		Time:     req.Time,
		Presence: req.Presence,
	})
}

// ScanPunch records a punch identified only by RFID, as sent by a reader.
func (h *Handler) ScanPunch(w http.ResponseWriter, r *http.Request) {
	var req CreatePunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.RFID) == "" {
		writeError(w, http.StatusBadRequest, "rfid is required", nil)
		return
	}

	h.recordPunch(w, r, attendance.PunchInput{
		RFID:     req.RFID,
		Date:     req.Date,
		Time:     req.Time,
		Presence: req.Presence,
	})
}

func (h *Handler) recordPunch(w http.ResponseWriter, r *http.Request, in attendance.PunchInput) {
	rec, err := h.Service.RecordPunch(r.Context(), in)
	if err != nil {
		writeServiceError(w, "Failed to record punch", err)
		return
	}
	writeJSON(w, http.StatusCreated, toPunchDTO(*rec))
}

// ListPunches returns a worker's punch log over a range.
func (h *Handler) ListPunches(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	punches, err := h.Service.Punches(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		writeServiceError(w, "Failed to list punches", err)
		return
	}

	dtos := make([]PunchDTO, len(punches))
	for i, p := range punches {
		dtos[i] = toPunchDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PRODUCTIVITY HANDLERS
// =============================================================================

// GetProductivity computes the productivity report for a worker.
func (h *Handler) GetProductivity(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	ctx := r.Context()
	worker, err := h.Service.Worker(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, "Failed to get worker", err)
		return
	}

	report, err := h.Service.Productivity(ctx, worker.ID, period, r.URL.Query().Get("batch"))
	if err != nil {
		writeServiceError(w, "Failed to compute productivity", err)
		return
	}

	writeJSON(w, http.StatusOK, toProductivityReportDTO(report, *worker, h.Currency))
}

// parsePeriod reads month=YYYY-MM or from/to=YYYY-MM-DD query parameters.
func parsePeriod(r *http.Request) (productivity.Period, error) {
	q := r.URL.Query()
	if month := q.Get("month"); month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return productivity.Period{}, fmt.Errorf("%w: month %q (use YYYY-MM)", productivity.ErrInvalidDate, month)
		}
		start := productivity.NewDate(t.Year(), t.Month(), 1)
		return productivity.Period{Start: start, End: start.AddDays(start.Time.AddDate(0, 1, -1).Day() - 1)}, nil
	}

	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		return productivity.Period{}, errors.New("from and to are required (YYYY-MM-DD), or month (YYYY-MM)")
	}
	return productivity.NewPeriod(from, to)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSchedule returns the schedule currently in effect.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.Service.Schedule(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load schedule", err)
		return
	}

	resp := ScheduleResponse{Schedule: h.ScheduleFactory.ToJSON(cfg)}
	if issues, err := h.ScheduleFactory.Validate(cfg); err == nil {
		resp.Issues = issues
	} else {
		resp.Issues = []string{err.Error()}
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateSchedule validates and replaces the schedule.
func (h *Handler) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	var req factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg := h.ScheduleFactory.FromJSON(req)
	issues, err := h.Service.SaveSchedule(r.Context(), cfg)
	if err != nil {
		writeServiceError(w, "Failed to save schedule", err)
		return
	}

	writeJSON(w, http.StatusOK, ScheduleResponse{
		Schedule: h.ScheduleFactory.ToJSON(cfg),
		Issues:   issues,
	})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		return errors.New("store does not support reset")
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}

	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps attendance and engine errors to a status code.
func writeServiceError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case attendance.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, attendance.ErrDuplicateRFID):
		status = http.StatusConflict
	case errors.Is(err, productivity.ErrInvalidSchedule):
		status = http.StatusUnprocessableEntity
	case attendance.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeError(w, status, message, err)
}

// decodeOptionalBody decodes JSON into v, accepting an empty body.
func decodeOptionalBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
