/*
Package sqlite provides a SQLite-backed implementation of attendance.Store.

PURPOSE:
  Persists workers, the punch log and the schedule settings document. In
  production the same schema runs on PostgreSQL with minor dialect changes.

APPEND-ONLY ENFORCEMENT:
  The punches table is never updated or deleted from outside Reset.
  A wrong punch is corrected by recording another one; the engine's pairing
  rules absorb duplicates.

KEY TABLES:
  workers:  Worker profiles; salary stored as decimal text (NULL = unknown)
  punches:  Punch log; date as 2006-01-02 text, time as entered
  settings: Key/value documents (key "schedule" holds the schedule JSON)

INDEXES:
  - idx_punches_worker_date: Report loading (hot path)
  - idx_workers_rfid: Scanner lookups, unique when set

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so report reads do not
  block punch writes.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := attendance.NewService(store)

SEE ALSO:
  - attendance/store.go: Interface definition
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/productivity"
)

const scheduleKey = "schedule"

// Store implements attendance.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ attendance.Store = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Workers
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		rfid TEXT,
		department TEXT,
		email TEXT,
		salary TEXT,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_workers_rfid
		ON workers(rfid COLLATE NOCASE) WHERE rfid IS NOT NULL;

	-- Punches (append-only log)
	CREATE TABLE IF NOT EXISTS punches (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		worker_id TEXT NOT NULL REFERENCES workers(id),
		punch_date TEXT NOT NULL,
		punch_time TEXT NOT NULL,
		presence INTEGER NOT NULL,
		rfid TEXT,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_punches_worker_date
		ON punches(worker_id, punch_date);

	-- Settings documents
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKERS
// =============================================================================

// SaveWorker inserts or updates a worker.
func (s *Store) SaveWorker(ctx context.Context, w attendance.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO workers (id, name, rfid, department, email, salary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			rfid = excluded.rfid,
			department = excluded.department,
			email = excluded.email,
			salary = excluded.salary
	`

	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		w.ID, w.Name,
		nullString(w.RFID),
		w.Department, w.Email,
		nullDecimal(w.Salary),
		createdAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s", attendance.ErrDuplicateRFID, w.RFID)
		}
		return fmt.Errorf("failed to save worker: %w", err)
	}
	return nil
}

// GetWorker retrieves a worker by ID.
func (s *Store) GetWorker(ctx context.Context, id string) (*attendance.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryWorker(ctx, "SELECT "+workerColumns+" FROM workers WHERE id = ?", id)
}

// GetWorkerByRFID retrieves a worker by RFID tag, ignoring case.
func (s *Store) GetWorkerByRFID(ctx context.Context, rfid string) (*attendance.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryWorker(ctx, "SELECT "+workerColumns+" FROM workers WHERE rfid = ? COLLATE NOCASE", rfid)
}

// ListWorkers returns all workers ordered by name.
func (s *Store) ListWorkers(ctx context.Context) ([]attendance.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT "+workerColumns+" FROM workers ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []attendance.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

const workerColumns = "id, name, rfid, department, email, salary, created_at"

func (s *Store) queryWorker(ctx context.Context, query string, args ...any) (*attendance.Worker, error) {
	w, err := scanWorker(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, attendance.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWorker(row scanner) (attendance.Worker, error) {
	var (
		w         attendance.Worker
		rfid      sql.NullString
		salary    sql.NullString
		createdAt string
	)
	if err := row.Scan(&w.ID, &w.Name, &rfid, &w.Department, &w.Email, &salary, &createdAt); err != nil {
		return w, err
	}
	w.RFID = rfid.String
	if salary.Valid {
		d, err := decimal.NewFromString(salary.String)
		if err != nil {
			return w, fmt.Errorf("worker %s: invalid stored salary %q: %w", w.ID, salary.String, err)
		}
		w.Salary = decimal.NewNullDecimal(d)
	}
	w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return w, nil
}

// =============================================================================
// PUNCHES
// =============================================================================

// AppendPunch adds a punch to the log.
func (s *Store) AppendPunch(ctx context.Context, p attendance.PunchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO punches (id, worker_id, punch_date, punch_time, presence, rfid, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	recordedAt := p.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.WorkerID,
		p.Date.String(), p.Time,
		p.Presence,
		nullString(p.RFID),
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return fmt.Errorf("%w: %s", attendance.ErrWorkerNotFound, p.WorkerID)
		}
		return fmt.Errorf("failed to append punch: %w", err)
	}
	return nil
}

// ListPunches returns a worker's punches in [from, to] in recording order.
func (s *Store) ListPunches(ctx context.Context, workerID string, from, to productivity.Date) ([]attendance.PunchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, worker_id, punch_date, punch_time, presence, rfid, recorded_at
		FROM punches
		WHERE worker_id = ? AND punch_date >= ? AND punch_date <= ?
		ORDER BY punch_date ASC, seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, workerID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.PunchRecord
	for rows.Next() {
		var (
			p          attendance.PunchRecord
			date       string
			rfid       sql.NullString
			recordedAt string
		)
		if err := rows.Scan(&p.ID, &p.WorkerID, &date, &p.Time, &p.Presence, &rfid, &recordedAt); err != nil {
			return nil, err
		}
		if p.Date, err = productivity.ParseDate(date); err != nil {
			return nil, fmt.Errorf("punch %s: %w", p.ID, err)
		}
		p.RFID = rfid.String
		p.RecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
		punches = append(punches, p)
	}
	return punches, rows.Err()
}

// =============================================================================
// SETTINGS
// =============================================================================

// SaveSchedule replaces the schedule settings document.
func (s *Store) SaveSchedule(ctx context.Context, scheduleJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, scheduleKey, scheduleJSON, time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetSchedule returns the schedule settings document, or "" if none is saved.
func (s *Store) GetSchedule(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", scheduleKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"punches", "workers", "settings"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullDecimal(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
