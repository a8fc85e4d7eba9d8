/*
Package attendance records workers and their punches and feeds them to the
productivity engine.

PURPOSE:
  The productivity package is pure: it takes punches, a schedule and a
  worker and returns a report. This package owns everything around that
  call: persistence of workers, the punch log and the schedule settings,
  normalization of punch input from scanners and forms, and assembling
  the engine inputs for one worker over one range.

STORE INTERFACE:
  Store is implemented by attendance/store (in-memory, for tests and demos)
  and store/sqlite (persistent). The punch log is append-only; corrections
  are new punches.

SEE ALSO:
  - service.go: Service (RecordPunch, Productivity)
  - productivity/engine.go: Compute
*/
package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrWorkerNotFound is returned when no worker matches an id or RFID.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrDuplicateRFID is returned when an RFID tag is already assigned to
	// another worker.
	ErrDuplicateRFID = errors.New("rfid already assigned")

	// ErrInvalidPresence is returned for presence values that are neither
	// IN nor OUT.
	ErrInvalidPresence = errors.New("invalid presence value")

	// ErrInvalidPunch is returned for punches missing a worker, date or time.
	ErrInvalidPunch = errors.New("invalid punch")

	// ErrInvalidWorker is returned when a worker has no id or name, or a
	// negative salary.
	ErrInvalidWorker = errors.New("invalid worker")
)

// =============================================================================
// RECORDS
// =============================================================================

// Worker is a stored worker profile.
type Worker struct {
	ID         string
	Name       string
	RFID       string
	Department string
	Email      string
	Salary     decimal.NullDecimal
	CreatedAt  time.Time
}

// Profile returns the engine view of the worker.
func (w Worker) Profile() productivity.Worker {
	return productivity.Worker{
		ID:         w.ID,
		Name:       w.Name,
		RFID:       w.RFID,
		Department: w.Department,
		Email:      w.Email,
		Salary:     w.Salary,
	}
}

// PunchRecord is one row of the punch log. Time is kept as entered
// ("8:55:00 AM"); the engine parses it.
type PunchRecord struct {
	ID         string
	WorkerID   string
	Date       productivity.Date
	Time       string
	Presence   bool // true = IN
	RFID       string
	RecordedAt time.Time
}

// Punch returns the engine view of the record.
func (p PunchRecord) Punch() productivity.Punch {
	return productivity.Punch{
		TimeText:     p.Time,
		IsPresenceIn: p.Presence,
		Date:         p.Date,
		WorkerID:     p.WorkerID,
	}
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists workers, punches and the schedule settings document.
type Store interface {
	// SaveWorker inserts or updates a worker by id.
	SaveWorker(ctx context.Context, w Worker) error

	// GetWorker returns ErrWorkerNotFound for unknown ids.
	GetWorker(ctx context.Context, id string) (*Worker, error)

	// GetWorkerByRFID returns ErrWorkerNotFound for unknown tags.
	GetWorkerByRFID(ctx context.Context, rfid string) (*Worker, error)

	// ListWorkers returns all workers ordered by name.
	ListWorkers(ctx context.Context) ([]Worker, error)

	// AppendPunch adds a punch to the log.
	AppendPunch(ctx context.Context, p PunchRecord) error

	// ListPunches returns a worker's punches with from <= Date <= to, in
	// the order they were recorded.
	ListPunches(ctx context.Context, workerID string, from, to productivity.Date) ([]PunchRecord, error)

	// SaveSchedule replaces the schedule settings document.
	SaveSchedule(ctx context.Context, scheduleJSON string) error

	// GetSchedule returns the schedule settings document, or "" if none
	// has been saved.
	GetSchedule(ctx context.Context) (string, error)
}
