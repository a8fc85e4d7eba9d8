package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/attendance/store"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fixedClock is Monday 2 June 2025, 9:05:30 AM.
func fixedClock() time.Time {
	return time.Date(2025, time.June, 2, 9, 5, 30, 0, time.UTC)
}

func newService(t *testing.T) (*attendance.Service, *attendance.Worker) {
	t.Helper()
	svc := attendance.NewService(store.NewMemory()).WithClock(fixedClock)
	w, err := svc.SaveWorker(context.Background(), attendance.Worker{
		Name:   "Asha",
		RFID:   "RF-100",
		Salary: decimal.NewNullDecimal(decimal.NewFromInt(27000)),
	})
	require.NoError(t, err)
	return svc, w
}

func june(from, to int) productivity.Period {
	return productivity.Period{
		Start: productivity.NewDate(2025, time.June, from),
		End:   productivity.NewDate(2025, time.June, to),
	}
}

// =============================================================================
// WORKERS
// =============================================================================

func TestSaveWorker_AssignsIDAndValidates(t *testing.T) {
	svc, w := newService(t)
	ctx := context.Background()

	assert.NotEmpty(t, w.ID)
	assert.Equal(t, fixedClock(), w.CreatedAt)

	_, err := svc.SaveWorker(ctx, attendance.Worker{Name: "  "})
	assert.ErrorIs(t, err, attendance.ErrInvalidWorker)

	_, err = svc.SaveWorker(ctx, attendance.Worker{Name: "Neg", Salary: decimal.NewNullDecimal(decimal.NewFromInt(-1))})
	assert.ErrorIs(t, err, attendance.ErrInvalidWorker)
	assert.True(t, attendance.IsClientError(err))

	got, err := svc.Worker(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)

	_, err = svc.Worker(ctx, "missing")
	assert.True(t, attendance.IsNotFound(err))
}

// =============================================================================
// PUNCHES
// =============================================================================

func TestRecordPunch_ServerClockAndToggle(t *testing.T) {
	// GIVEN: A scanner that sends only the RFID
	svc, w := newService(t)
	ctx := context.Background()

	// WHEN: Scanning twice
	first, err := svc.RecordPunch(ctx, attendance.PunchInput{RFID: "rf-100"})
	require.NoError(t, err)
	second, err := svc.RecordPunch(ctx, attendance.PunchInput{RFID: "RF-100"})
	require.NoError(t, err)

	// THEN: Stamped with the server clock, IN then OUT
	assert.Equal(t, w.ID, first.WorkerID)
	assert.Equal(t, "2025-06-02", first.Date.String())
	assert.Equal(t, "9:05:30 AM", first.Time)
	assert.True(t, first.Presence)
	assert.False(t, second.Presence)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestRecordPunch_ExplicitFields(t *testing.T) {
	svc, w := newService(t)
	ctx := context.Background()

	rec, err := svc.RecordPunch(ctx, attendance.PunchInput{
		WorkerID: w.ID,
		Date:     "2025-06-03",
		Time:     "7:05 PM",
		Presence: "OUT",
	})
	require.NoError(t, err)

	assert.Equal(t, "2025-06-03", rec.Date.String())
	assert.Equal(t, "7:05 PM", rec.Time)
	assert.False(t, rec.Presence)
}

func TestRecordPunch_Rejects(t *testing.T) {
	svc, w := newService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input attendance.PunchInput
		want  error
	}{
		{"no worker", attendance.PunchInput{}, attendance.ErrInvalidPunch},
		{"unknown worker", attendance.PunchInput{WorkerID: "nobody"}, attendance.ErrWorkerNotFound},
		{"unknown rfid", attendance.PunchInput{RFID: "RF-999"}, attendance.ErrWorkerNotFound},
		{"bad date", attendance.PunchInput{WorkerID: w.ID, Date: "02/06/2025"}, attendance.ErrInvalidPunch},
		{"bad time", attendance.PunchInput{WorkerID: w.ID, Time: "08:55:00"}, attendance.ErrInvalidPunch},
		{"bad presence", attendance.PunchInput{WorkerID: w.ID, Presence: "maybe"}, attendance.ErrInvalidPresence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RecordPunch(ctx, tt.input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	punches, err := svc.Punches(ctx, w.ID, june(1, 30))
	require.NoError(t, err)
	assert.Empty(t, punches)
}

// =============================================================================
// SCHEDULE
// =============================================================================

func TestSchedule_DefaultsToStandardPreset(t *testing.T) {
	svc, _ := newService(t)

	cfg, err := svc.Schedule(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "General", cfg.SelectedBatch)
	assert.Equal(t, 15, cfg.PermissionGraceMinutes)
}

func TestSaveSchedule_ValidatesAndPersists(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	f := factory.NewScheduleFactory()

	cfg, err := f.ParseSchedule(factory.ShiftedScheduleJSON("Night", 0))
	require.NoError(t, err)

	issues, err := svc.SaveSchedule(ctx, cfg)
	require.NoError(t, err)
	assert.Len(t, issues, 1, "unknown batch is reported, not rejected")

	saved, err := svc.Schedule(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Night", saved.SelectedBatch)
	assert.Len(t, saved.Batches, 2)

	cfg.PermissionGraceMinutes = -1
	_, err = svc.SaveSchedule(ctx, cfg)
	assert.ErrorIs(t, err, productivity.ErrInvalidSchedule)
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

func TestProductivity_FromStoredPunches(t *testing.T) {
	// GIVEN: A full Monday, a late Tuesday and nothing on Wednesday
	svc, w := newService(t)
	ctx := context.Background()
	for _, in := range []attendance.PunchInput{
		{WorkerID: w.ID, Date: "2025-06-02", Time: "8:55:00 AM", Presence: "in"},
		{WorkerID: w.ID, Date: "2025-06-02", Time: "7:05:00 PM", Presence: "out"},
		{WorkerID: w.ID, Date: "2025-06-03", Time: "9:40 AM", Presence: "in"},
		{WorkerID: w.ID, Date: "2025-06-03", Time: "7:00 PM", Presence: "out"},
	} {
		_, err := svc.RecordPunch(ctx, in)
		require.NoError(t, err)
	}

	// WHEN: Computing for the three days
	report, err := svc.Productivity(ctx, w.ID, june(2, 4), "")
	require.NoError(t, err)

	// THEN: 9000/day, 9000/540 per minute, 25 chargeable minutes
	s := report.Summary
	assert.Equal(t, 2, s.PresentDays)
	assert.Equal(t, 1, s.AbsentDays)
	assert.True(t, s.PerDaySalary.Equal(decimal.NewFromInt(9000)))
	assert.True(t, s.AbsentDeduction.Equal(decimal.NewFromInt(9000)))
	assert.Equal(t, "416.67", s.PermissionDeduction.String())
	assert.Equal(t, "17583.33", s.FinalSalary.String())
	assert.Equal(t, w.ID, report.Worker.ID)
}

func TestProductivity_BatchOverride(t *testing.T) {
	svc, w := newService(t)
	ctx := context.Background()
	cfg, err := factory.NewScheduleFactory().ParseSchedule(factory.ShiftedScheduleJSON("Morning", 0))
	require.NoError(t, err)
	_, err = svc.SaveSchedule(ctx, cfg)
	require.NoError(t, err)

	report, err := svc.Productivity(ctx, w.ID, june(2, 2), "evening")
	require.NoError(t, err)

	assert.Equal(t, "Evening", report.Schedule.BatchName)
	assert.Equal(t, 450, report.Summary.StandardWorkingMinutes)
}

func TestProductivity_Errors(t *testing.T) {
	svc, w := newService(t)
	ctx := context.Background()

	_, err := svc.Productivity(ctx, "nobody", june(1, 2), "")
	assert.True(t, attendance.IsNotFound(err))

	_, err = svc.Productivity(ctx, w.ID, june(5, 1), "")
	assert.ErrorIs(t, err, productivity.ErrInvalidRange)
	assert.True(t, attendance.IsClientError(err))
}

// =============================================================================
// PRESENCE
// =============================================================================

func TestParsePresence(t *testing.T) {
	for _, s := range []string{"in", "IN", "true", "1", "Present", "Punch In", " check  in "} {
		got, err := attendance.ParsePresence(s)
		require.NoError(t, err, s)
		assert.True(t, got, s)
	}
	for _, s := range []string{"out", "OUT", "false", "0", "absent", "punch_out"} {
		got, err := attendance.ParsePresence(s)
		require.NoError(t, err, s)
		assert.False(t, got, s)
	}
	_, err := attendance.ParsePresence("")
	assert.ErrorIs(t, err, attendance.ErrInvalidPresence)
}
