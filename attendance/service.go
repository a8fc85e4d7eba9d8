package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/productivity"
)

// punchTimeLayout is the form punches are stored in when the clock is taken
// from the server.
const punchTimeLayout = "3:04:05 PM"

// Service coordinates the store and the productivity engine.
type Service struct {
	store    Store
	schedule *factory.ScheduleFactory
	now      func() time.Time
}

// NewService creates a service backed by store.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		schedule: factory.NewScheduleFactory(),
		now:      time.Now,
	}
}

// WithClock overrides the clock used for server-stamped punches.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// =============================================================================
// WORKERS
// =============================================================================

// SaveWorker validates and stores a worker, assigning an id if missing.
func (s *Service) SaveWorker(ctx context.Context, w Worker) (*Worker, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidWorker)
	}
	if w.Salary.Valid && w.Salary.Decimal.IsNegative() {
		return nil, fmt.Errorf("%w: salary must not be negative", ErrInvalidWorker)
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now().UTC()
	}
	if err := s.store.SaveWorker(ctx, w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Worker returns a worker by id.
func (s *Service) Worker(ctx context.Context, id string) (*Worker, error) {
	return s.store.GetWorker(ctx, id)
}

// Workers lists all workers.
func (s *Service) Workers(ctx context.Context) ([]Worker, error) {
	return s.store.ListWorkers(ctx)
}

// =============================================================================
// PUNCHES
// =============================================================================

// PunchInput is a punch as submitted by a scanner or an admin form.
// Empty fields are filled from the server clock; an empty Presence toggles
// the worker's last punch of the day (first punch of the day is IN).
type PunchInput struct {
	WorkerID string
	RFID     string
	Date     string
	Time     string
	Presence string
}

// RecordPunch validates a punch, resolves its worker and appends it to the log.
func (s *Service) RecordPunch(ctx context.Context, in PunchInput) (*PunchRecord, error) {
	worker, err := s.resolveWorker(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := PunchRecord{
		ID:         uuid.NewString(),
		WorkerID:   worker.ID,
		RFID:       worker.RFID,
		Date:       productivity.DateOf(now),
		Time:       now.Format(punchTimeLayout),
		RecordedAt: now.UTC(),
	}

	if in.Date != "" {
		if rec.Date, err = productivity.ParseDate(in.Date); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPunch, err)
		}
	}
	if t := strings.TrimSpace(in.Time); t != "" {
		if _, err := productivity.ParseClockTime(t); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPunch, err)
		}
		rec.Time = t
	}

	if in.Presence != "" {
		if rec.Presence, err = ParsePresence(in.Presence); err != nil {
			return nil, err
		}
	} else if rec.Presence, err = s.nextPresence(ctx, worker.ID, rec.Date); err != nil {
		return nil, err
	}

	if err := s.store.AppendPunch(ctx, rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Service) resolveWorker(ctx context.Context, in PunchInput) (*Worker, error) {
	switch {
	case in.WorkerID != "":
		return s.store.GetWorker(ctx, in.WorkerID)
	case strings.TrimSpace(in.RFID) != "":
		return s.store.GetWorkerByRFID(ctx, strings.TrimSpace(in.RFID))
	default:
		return nil, fmt.Errorf("%w: worker id or rfid is required", ErrInvalidPunch)
	}
}

// nextPresence is IN unless the worker's last recorded punch that day was IN.
func (s *Service) nextPresence(ctx context.Context, workerID string, day productivity.Date) (bool, error) {
	punches, err := s.store.ListPunches(ctx, workerID, day, day)
	if err != nil {
		return false, err
	}
	if len(punches) == 0 {
		return true, nil
	}
	return !punches[len(punches)-1].Presence, nil
}

// Punches lists a worker's punches in [from, to].
func (s *Service) Punches(ctx context.Context, workerID string, period productivity.Period) ([]PunchRecord, error) {
	if _, err := s.store.GetWorker(ctx, workerID); err != nil {
		return nil, err
	}
	return s.store.ListPunches(ctx, workerID, period.Start, period.End)
}

// =============================================================================
// SCHEDULE SETTINGS
// =============================================================================

// Schedule returns the saved schedule, or the standard preset if none is saved.
func (s *Service) Schedule(ctx context.Context) (productivity.ScheduleConfig, error) {
	doc, err := s.store.GetSchedule(ctx)
	if err != nil {
		return productivity.ScheduleConfig{}, err
	}
	if doc == "" {
		doc = factory.StandardScheduleJSON()
	}
	return s.schedule.ParseSchedule(doc)
}

// SaveSchedule validates and stores the schedule. Non-fatal issues found
// while resolving it are returned alongside.
func (s *Service) SaveSchedule(ctx context.Context, cfg productivity.ScheduleConfig) ([]string, error) {
	issues, err := s.schedule.Validate(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := s.schedule.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveSchedule(ctx, doc); err != nil {
		return nil, err
	}
	return issues, nil
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

// Productivity computes the report for one worker. A non-empty batch
// overrides the saved selected batch for this call only.
func (s *Service) Productivity(ctx context.Context, workerID string, period productivity.Period, batch string) (*productivity.Report, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	worker, err := s.store.GetWorker(ctx, workerID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.Schedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	if batch = strings.TrimSpace(batch); batch != "" {
		cfg.SelectedBatch = batch
	}

	records, err := s.store.ListPunches(ctx, workerID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	punches := make([]productivity.Punch, len(records))
	for i, r := range records {
		punches[i] = r.Punch()
	}

	return productivity.Compute(punches, period, cfg, worker.Profile())
}

// IsNotFound reports whether err means the requested record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkerNotFound)
}

// IsClientError reports whether err was caused by invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidPresence) ||
		errors.Is(err, ErrInvalidPunch) ||
		errors.Is(err, ErrInvalidWorker) ||
		productivity.IsClientError(err)
}
