/*
handlers_test.go - HTTP tests for API handlers

Tests for:
- Worker CRUD and error mapping
- Punch recording (toggle, scanner, validation)
- Range parsing
- Schedule settings
- Productivity report shape
*/
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/productivity-engine/attendance/store"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/store/sqlite"
)

var fixedNow = time.Date(2025, time.June, 2, 9, 5, 30, 0, time.UTC)

func newTestServer(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := NewHandler(s)
	h.Service.WithClock(func() time.Time { return fixedNow })
	return h, NewRouter(h, RouterConfig{StaticDir: t.TempDir()})
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, path, nil)
	case string:
		req = httptest.NewRequest(method, path, strings.NewReader(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(data))
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func createWorker(t *testing.T, router http.Handler, body map[string]any) WorkerDTO {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/workers", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[WorkerDTO](t, rec)
}

// =============================================================================
// WORKERS
// =============================================================================

func TestWorkers_CreateListGet(t *testing.T) {
	_, router := newTestServer(t)

	// GIVEN: A worker created with a salary given as a number
	created := createWorker(t, router, map[string]any{"name": "Asha", "rfid": "RF-1", "salary": 26000})

	// THEN: An id is assigned and the salary is kept
	assert.NotEmpty(t, created.ID)
	require.NotNil(t, created.Salary)
	assert.Equal(t, "26000", created.Salary.String())

	rec := do(t, router, http.MethodGet, "/api/workers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]WorkerDTO](t, rec), 1)

	rec = do(t, router, http.MethodGet, "/api/workers/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Asha", decode[WorkerDTO](t, rec).Name)

	rec = do(t, router, http.MethodGet, "/api/workers/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWorkers_SalaryOptional(t *testing.T) {
	_, router := newTestServer(t)

	created := createWorker(t, router, map[string]any{"name": "Dev"})

	assert.Nil(t, created.Salary)
}

func TestCreateWorker_Errors(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha", "rfid": "RF-1"})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"malformed body", "{", http.StatusBadRequest},
		{"missing name", map[string]any{"rfid": "RF-9"}, http.StatusBadRequest},
		{"negative salary", map[string]any{"name": "X", "salary": "-1"}, http.StatusBadRequest},
		{"duplicate rfid", map[string]any{"name": "Ravi", "rfid": "rf-1"}, http.StatusConflict},
		{"existing id", map[string]any{"id": "w-1", "name": "Asha again"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/workers", tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestUpdateWorker(t *testing.T) {
	_, router := newTestServer(t)
	created := createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha", "salary": 26000})

	rec := do(t, router, http.MethodPut, "/api/workers/w-1", map[string]any{"name": "Asha Menon", "salary": "27000.50"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated := decode[WorkerDTO](t, rec)
	assert.Equal(t, "Asha Menon", updated.Name)
	assert.Equal(t, "27000.5", updated.Salary.String())
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	rec = do(t, router, http.MethodPut, "/api/workers/ghost", map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// =============================================================================
// PUNCHES
// =============================================================================

func TestRecordPunch_DefaultsAndToggle(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha"})

	// WHEN: Two punches with no body
	first := do(t, router, http.MethodPost, "/api/workers/w-1/punches", nil)
	second := do(t, router, http.MethodPost, "/api/workers/w-1/punches", nil)

	// THEN: Server clock is used and presence alternates
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	p1, p2 := decode[PunchDTO](t, first), decode[PunchDTO](t, second)
	assert.Equal(t, "2025-06-02", p1.Date)
	assert.Equal(t, "9:05:30 AM", p1.Time)
	assert.Equal(t, "IN", p1.Presence)
	assert.Equal(t, "OUT", p2.Presence)
}

func TestRecordPunch_Explicit(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha"})

	rec := do(t, router, http.MethodPost, "/api/workers/w-1/punches",
		CreatePunchRequest{Date: "2025-06-03", Time: "7:05 PM", Presence: "out"})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[PunchDTO](t, rec)
	assert.Equal(t, "2025-06-03", p.Date)
	assert.Equal(t, "7:05 PM", p.Time)
	assert.Equal(t, "OUT", p.Presence)
	assert.Equal(t, "w-1", p.WorkerID)
}

func TestRecordPunch_Errors(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha"})

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown worker", "/api/workers/ghost/punches", nil, http.StatusNotFound},
		{"bad time", "/api/workers/w-1/punches", CreatePunchRequest{Time: "25:99"}, http.StatusBadRequest},
		{"bad date", "/api/workers/w-1/punches", CreatePunchRequest{Date: "02/06/2025"}, http.StatusBadRequest},
		{"bad presence", "/api/workers/w-1/punches", CreatePunchRequest{Presence: "maybe"}, http.StatusBadRequest},
		{"malformed body", "/api/workers/w-1/punches", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestScanPunch(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha", "rfid": "RF-1"})

	// WHEN: The reader sends the tag in a different case
	rec := do(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{RFID: " rf-1 "})

	// THEN: The punch is attributed to the tag owner
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[PunchDTO](t, rec)
	assert.Equal(t, "w-1", p.WorkerID)
	assert.Equal(t, "IN", p.Presence)
	assert.Equal(t, "RF-1", p.RFID)

	rec = do(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{RFID: "RF-404"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListPunches(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha"})
	for _, p := range []CreatePunchRequest{
		{Date: "2025-05-31", Time: "9:00 AM"},
		{Date: "2025-06-02", Time: "9:00 AM"},
		{Date: "2025-06-02", Time: "7:00 PM"},
	} {
		rec := do(t, router, http.MethodPost, "/api/workers/w-1/punches", p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := do(t, router, http.MethodGet, "/api/workers/w-1/punches?month=2025-06", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	punches := decode[[]PunchDTO](t, rec)
	require.Len(t, punches, 2)
	assert.Equal(t, "IN", punches[0].Presence)
	assert.Equal(t, "OUT", punches[1].Presence)

	rec = do(t, router, http.MethodGet, "/api/workers/w-1/punches?from=2025-05-01&to=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]PunchDTO](t, rec), 3)
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		query    string
		from, to string
		wantErr  bool
	}{
		{query: "month=2025-02", from: "2025-02-01", to: "2025-02-28"},
		{query: "month=2024-02", from: "2024-02-01", to: "2024-02-29"},
		{query: "month=2025-12", from: "2025-12-01", to: "2025-12-31"},
		{query: "from=2025-06-01&to=2025-06-01", from: "2025-06-01", to: "2025-06-01"},
		{query: "month=2025-13", wantErr: true},
		{query: "from=2025-06-01", wantErr: true},
		{query: "from=2025-06-10&to=2025-06-01", wantErr: true},
		{query: "from=June&to=2025-06-01", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := parsePeriod(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.from, p.Start.String())
			assert.Equal(t, tt.to, p.End.String())
		})
	}
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

func TestGetProductivity(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha", "salary": 27000})
	for _, p := range []CreatePunchRequest{
		{Date: "2025-06-02", Time: "8:55:00 AM"},
		{Date: "2025-06-02", Time: "7:05:00 PM"},
	} {
		rec := do(t, router, http.MethodPost, "/api/workers/w-1/punches", p)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	// WHEN: Requesting one present day and one Sunday
	rec := do(t, router, http.MethodGet, "/api/workers/w-1/productivity?from=2025-06-01&to=2025-06-02", nil)

	// THEN: Rows, summary and breakdown are all present
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[ProductivityReportDTO](t, rec)
	assert.Equal(t, "General", report.Batch)
	assert.Equal(t, 540, report.StandardWorkingMinutes)

	require.Len(t, report.Report, 2)
	assert.Equal(t, "Sunday", report.Report[0].Status)
	assert.Equal(t, "Present", report.Report[1].Status)
	assert.Equal(t, "540", report.Report[1].WorkedMinutes)
	assert.Equal(t, "100%", report.Report[1].Productivity)

	assert.Equal(t, "₹27,000.00", report.FinalSummary["final_salary"])
	assert.Equal(t, "1", report.FinalSummary["working_days_in_period"])

	require.Len(t, report.DailyBreakdown, 2)
	day := report.DailyBreakdown[1]
	require.NotNil(t, day.FirstIn)
	assert.Equal(t, "8:55 AM", *day.FirstIn)
	assert.Equal(t, "540", day.WorkedMinutes.String())
	assert.Len(t, day.Segments, 1)
	assert.Nil(t, report.DailyBreakdown[0].FirstIn)
}

func TestGetProductivity_Errors(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"id": "w-1", "name": "Asha"})

	rec := do(t, router, http.MethodGet, "/api/workers/ghost/productivity?month=2025-06", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/workers/w-1/productivity?from=2025-06-10&to=2025-06-01", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/workers/w-1/productivity", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SETTINGS
// =============================================================================

func TestSchedule_DefaultAndUpdate(t *testing.T) {
	_, router := newTestServer(t)

	// GIVEN: Nothing saved, the standard preset is in effect
	rec := do(t, router, http.MethodGet, "/api/settings/schedule", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	current := decode[ScheduleResponse](t, rec)
	assert.Equal(t, "General", current.Schedule.SelectedBatch)
	assert.Equal(t, 15, current.Schedule.PermissionGraceMinutes)
	assert.Empty(t, current.Issues)

	// WHEN: Saving the shifted preset with an unknown batch selected
	shifted, err := factory.NewScheduleFactory().ParseSchedule(factory.ShiftedScheduleJSON("Night", 50))
	require.NoError(t, err)
	rec = do(t, router, http.MethodPut, "/api/settings/schedule", factory.NewScheduleFactory().ToJSON(shifted))

	// THEN: It is saved and the fallback is reported
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decode[ScheduleResponse](t, rec)
	assert.Equal(t, "Night", saved.Schedule.SelectedBatch)
	require.Len(t, saved.Issues, 1)
	assert.Contains(t, saved.Issues[0], "not found")

	rec = do(t, router, http.MethodGet, "/api/settings/schedule", nil)
	assert.Len(t, decode[ScheduleResponse](t, rec).Schedule.Batches, 2)
}

func TestSchedule_Rejected(t *testing.T) {
	_, router := newTestServer(t)

	rec := do(t, router, http.MethodPut, "/api/settings/schedule", `{"permission_grace_minutes": -5}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "permission_grace_minutes")

	rec = do(t, router, http.MethodPut, "/api/settings/schedule", `{"batches": "none"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Rejected documents leave the previous schedule in place
	rec = do(t, router, http.MethodGet, "/api/settings/schedule", nil)
	assert.Equal(t, 15, decode[ScheduleResponse](t, rec).Schedule.PermissionGraceMinutes)
}

// =============================================================================
// ADMIN
// =============================================================================

func TestResetAndHealth(t *testing.T) {
	_, router := newTestServer(t)
	createWorker(t, router, map[string]any{"name": "Asha"})

	rec := do(t, router, http.MethodPost, "/api/admin/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/workers", nil)
	assert.Empty(t, decode[[]WorkerDTO](t, rec))

	rec = do(t, router, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandler_MemoryStore(t *testing.T) {
	// GIVEN: The handler running on the in-memory store
	h := NewHandler(store.NewMemory())
	router := NewRouter(h, RouterConfig{})

	// WHEN/THEN: It serves the same API
	created := createWorker(t, router, map[string]any{"name": "Asha", "rfid": "RF-1"})
	rec := do(t, router, http.MethodPost, "/api/punches", CreatePunchRequest{RFID: "RF-1", Date: "2025-06-02", Time: "9:00 AM"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, created.ID, decode[PunchDTO](t, rec).WorkerID)

	rec = do(t, router, http.MethodPost, "/api/admin/reset", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
