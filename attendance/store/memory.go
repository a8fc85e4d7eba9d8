// Package store provides attendance.Store implementations.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	workers  map[string]attendance.Worker
	punches  map[string][]attendance.PunchRecord
	schedule string
}

func NewMemory() *Memory {
	return &Memory{
		workers: make(map[string]attendance.Worker),
		punches: make(map[string][]attendance.PunchRecord),
	}
}

func (m *Memory) SaveWorker(_ context.Context, w attendance.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.workers {
		if id != w.ID && w.RFID != "" && strings.EqualFold(other.RFID, w.RFID) {
			return fmt.Errorf("%w: %s", attendance.ErrDuplicateRFID, w.RFID)
		}
	}
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) GetWorker(_ context.Context, id string) (*attendance.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workers[id]
	if !ok {
		return nil, attendance.ErrWorkerNotFound
	}
	return &w, nil
}

func (m *Memory) GetWorkerByRFID(_ context.Context, rfid string) (*attendance.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, w := range m.workers {
		if w.RFID != "" && strings.EqualFold(w.RFID, rfid) {
			return &w, nil
		}
	}
	return nil, attendance.ErrWorkerNotFound
}

func (m *Memory) ListWorkers(_ context.Context) ([]attendance.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]attendance.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// AppendPunch adds a punch. Append-only; order of arrival is kept.
func (m *Memory) AppendPunch(_ context.Context, p attendance.PunchRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.punches[p.WorkerID] = append(m.punches[p.WorkerID], p)
	return nil
}

func (m *Memory) ListPunches(_ context.Context, workerID string, from, to productivity.Date) ([]attendance.PunchRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []attendance.PunchRecord
	for _, p := range m.punches[workerID] {
		if from.BeforeOrEqual(p.Date) && p.Date.BeforeOrEqual(to) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *Memory) SaveSchedule(_ context.Context, scheduleJSON string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedule = scheduleJSON
	return nil
}

func (m *Memory) GetSchedule(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.schedule, nil
}

// Reset clears all data (for testing/demo).
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers = make(map[string]attendance.Worker)
	m.punches = make(map[string][]attendance.PunchRecord)
	m.schedule = ""
	return nil
}

var _ attendance.Store = (*Memory)(nil)
