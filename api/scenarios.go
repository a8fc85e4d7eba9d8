/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	attendance data for testing and demos. Each scenario creates workers,
	saves a schedule and records punches that exercise specific rules.

AVAILABLE SCENARIOS:

	full-month:     September 2025, two absences, 26000 -> 24000
	late-arrivals:  Late arrival and early departure beyond the grace
	shift-batches:  Evening batch with flat per-block deductions
	messy-punches:  Duplicate, missing and malformed punches, Sunday work

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save the schedule document
 3. Create workers
 4. Record punches through the service (malformed ones go straight to the store)

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "full-month"}

	GET /api/workers/w-asha/productivity?month=2025-09

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description and range
 2. Create loader function: loadXxxScenario(ctx)
 3. Add case to LoadScenario handler

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: ResetDatabase
  - factory/schedule.go: Schedule presets
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "full-month",
		Name:        "Full Month",
		Description: "General shift for September 2025: on time every day except two absences",
		Category:    "payroll",
		From:        "2025-09-01",
		To:          "2025-09-30",
		WorkerIDs:   []string{"w-asha"},
	},
	{
		ID:          "late-arrivals",
		Name:        "Late Arrivals",
		Description: "Late arrival and early departure past the 15 minute grace, one within it",
		Category:    "permission",
		From:        "2025-06-01",
		To:          "2025-06-07",
		WorkerIDs:   []string{"w-ravi"},
	},
	{
		ID:          "shift-batches",
		Name:        "Shift Batches",
		Description: "Evening batch with paid tea break, unpaid dinner break and 100 per started block",
		Category:    "schedule",
		From:        "2025-06-02",
		To:          "2025-06-04",
		WorkerIDs:   []string{"w-meena"},
	},
	{
		ID:          "messy-punches",
		Name:        "Messy Punches",
		Description: "Duplicate INs, a missing OUT, a malformed time, Sunday work and a worker without salary",
		Category:    "data-quality",
		From:        "2025-06-01",
		To:          "2025-06-07",
		WorkerIDs:   []string{"w-kiran", "w-dev"},
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	if current == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{ID: current, Name: current})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var load func(context.Context) error
	switch req.ScenarioID {
	case "full-month":
		load = h.loadFullMonthScenario
	case "late-arrivals":
		load = h.loadLateArrivalsScenario
	case "shift-batches":
		load = h.loadShiftBatchesScenario
	case "messy-punches":
		load = h.loadMessyPunchesScenario
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := load(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load scenario: %v", err), err)
		return
	}

	h.mu.Lock()
	h.currentScenario = req.ScenarioID
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func (h *Handler) loadFullMonthScenario(ctx context.Context) error {
	// General shift 09:00-19:00, 540 standard minutes, 26 working days.
	// Two absences at 1000/day leave 24000.
	if err := h.Store.SaveSchedule(ctx, factory.StandardScheduleJSON()); err != nil {
		return err
	}
	if err := h.createWorker(ctx, "w-asha", "Asha Menon", "RF-1001", "Assembly", 26000); err != nil {
		return err
	}

	period := productivity.Period{
		Start: productivity.NewDate(2025, time.September, 1),
		End:   productivity.NewDate(2025, time.September, 30),
	}
	for _, d := range period.Days() {
		if d.IsWeeklyOff() || d.Time.Day() == 3 || d.Time.Day() == 10 {
			continue
		}
		if err := h.recordDay(ctx, "w-asha", d, "8:55:00 AM", "7:05:00 PM"); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadLateArrivalsScenario(ctx context.Context) error {
	// 27000 over 6 working days: 4500/day, 8.33/min over 540 minutes.
	// 15 + 5 chargeable minutes cost 166.67.
	if err := h.Store.SaveSchedule(ctx, factory.StandardScheduleJSON()); err != nil {
		return err
	}
	if err := h.createWorker(ctx, "w-ravi", "Ravi Kumar", "RF-1002", "Packing", 27000); err != nil {
		return err
	}

	days := []struct {
		day     int
		in, out string
	}{
		{2, "8:58 AM", "7:02 PM"},
		{3, "9:30 AM", "7:00 PM"}, // late 30, 15 chargeable
		{4, "9:00 AM", "6:40 PM"}, // early 20, 5 chargeable
		{5, "9:10 AM", "7:00 PM"}, // late 10, within grace
		{6, "9:00 AM", "7:00 PM"},
		{7, "8:45 AM", "7:15 PM"},
	}
	for _, d := range days {
		if err := h.recordDay(ctx, "w-ravi", productivity.NewDate(2025, time.June, d.day), d.in, d.out); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadShiftBatchesScenario(ctx context.Context) error {
	// Evening 14:00-22:00 minus the unpaid 18:00-18:30 break: 450 minutes.
	// Late 25 with 10 grace leaves 15 chargeable, two started blocks.
	if err := h.Store.SaveSchedule(ctx, factory.ShiftedScheduleJSON("Evening", 100)); err != nil {
		return err
	}
	if err := h.createWorker(ctx, "w-meena", "Meena Pillai", "RF-1003", "Dispatch", 18000); err != nil {
		return err
	}

	days := []struct {
		day     int
		in, out string
	}{
		{2, "1:55 PM", "10:05 PM"},
		{3, "2:25 PM", "10:00 PM"},
		{4, "2:00 PM", "10:00 PM"},
	}
	for _, d := range days {
		if err := h.recordDay(ctx, "w-meena", productivity.NewDate(2025, time.June, d.day), d.in, d.out); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadMessyPunchesScenario(ctx context.Context) error {
	if err := h.Store.SaveSchedule(ctx, factory.StandardScheduleJSON()); err != nil {
		return err
	}
	if err := h.createWorker(ctx, "w-kiran", "Kiran Rao", "RF-1004", "Assembly", 26000); err != nil {
		return err
	}
	if _, err := h.Service.SaveWorker(ctx, attendance.Worker{ID: "w-dev", Name: "Dev Shah", RFID: "RF-1005"}); err != nil {
		return err
	}

	june := func(d int) string { return productivity.NewDate(2025, time.June, d).String() }
	inputs := []attendance.PunchInput{
		// Sunday overtime, reported but never paid
		{WorkerID: "w-kiran", Date: june(1), Time: "10:00 AM", Presence: "IN"},
		{WorkerID: "w-kiran", Date: june(1), Time: "1:00 PM", Presence: "OUT"},
		// double tap at the reader
		{WorkerID: "w-kiran", Date: june(2), Time: "8:50 AM", Presence: "IN"},
		{WorkerID: "w-kiran", Date: june(2), Time: "8:52 AM", Presence: "IN"},
		{WorkerID: "w-kiran", Date: june(2), Time: "7:10 PM", Presence: "OUT"},
		// forgot to punch out
		{WorkerID: "w-kiran", Date: june(3), Time: "9:00 AM", Presence: "IN"},
		// reader stuck on IN
		{WorkerID: "w-kiran", Date: june(5), Time: "9:00 AM", Presence: "IN"},
		{WorkerID: "w-kiran", Date: june(5), Time: "7:00 PM", Presence: "IN"},
		{WorkerID: "w-dev", Date: june(2), Time: "9:00 AM", Presence: "IN"},
		{WorkerID: "w-dev", Date: june(2), Time: "7:00 PM", Presence: "OUT"},
	}
	for _, in := range inputs {
		if _, err := h.Service.RecordPunch(ctx, in); err != nil {
			return err
		}
	}

	// Imported from a legacy export without validation.
	legacy := []attendance.PunchRecord{
		{WorkerID: "w-kiran", Date: productivity.NewDate(2025, time.June, 4), Time: "25:99 XM", Presence: true},
		{WorkerID: "w-kiran", Date: productivity.NewDate(2025, time.June, 4), Time: "7:00 PM", Presence: false},
	}
	for _, p := range legacy {
		p.ID = uuid.NewString()
		p.RecordedAt = time.Now().UTC()
		if err := h.Store.AppendPunch(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) createWorker(ctx context.Context, id, name, rfid, department string, salary int64) error {
	_, err := h.Service.SaveWorker(ctx, attendance.Worker{
		ID:         id,
		Name:       name,
		RFID:       rfid,
		Department: department,
		Salary:     decimal.NewNullDecimal(decimal.NewFromInt(salary)),
	})
	return err
}

// recordDay records alternating IN/OUT punches for one date.
func (h *Handler) recordDay(ctx context.Context, workerID string, day productivity.Date, times ...string) error {
	for i, t := range times {
		presence := "IN"
		if i%2 == 1 {
			presence = "OUT"
		}
		if _, err := h.Service.RecordPunch(ctx, attendance.PunchInput{
			WorkerID: workerID,
			Date:     day.String(),
			Time:     t,
			Presence: presence,
		}); err != nil {
			return fmt.Errorf("%s %s %s: %w", workerID, day, t, err)
		}
	}
	return nil
}
