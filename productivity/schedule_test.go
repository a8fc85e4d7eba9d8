package productivity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoBatches() ScheduleConfig {
	return ScheduleConfig{
		Batches: []Batch{
			{Name: "Morning", Start: "06:00", End: "14:00"},
			{Name: "General", Start: "09:00", End: "19:00"},
		},
		SelectedBatch: "General",
		LunchFrom:     "13:00",
		LunchTo:       "14:00",
	}
}

func TestResolveSchedule_SelectsNamedBatch(t *testing.T) {
	rs, err := ResolveSchedule(twoBatches())
	require.NoError(t, err)

	assert.Equal(t, "General", rs.BatchName)
	assert.Equal(t, AtMinute(540), rs.WorkStart)
	assert.Equal(t, AtMinute(1140), rs.WorkEnd)
	assert.Equal(t, 540, rs.StandardWorkingMinutes)
	require.NotNil(t, rs.Lunch)
	assert.False(t, rs.Lunch.Paid)
	assert.Empty(t, rs.Issues)
}

func TestResolveSchedule_MatchIsCaseInsensitive(t *testing.T) {
	cfg := twoBatches()
	cfg.SelectedBatch = " morning "

	rs, err := ResolveSchedule(cfg)
	require.NoError(t, err)

	assert.Equal(t, "Morning", rs.BatchName)
	// lunch 13-14 overlaps the last hour of 06-14
	assert.Equal(t, 420, rs.StandardWorkingMinutes)
}

func TestResolveSchedule_UnknownBatchFallsBackToDefault(t *testing.T) {
	cfg := twoBatches()
	cfg.SelectedBatch = "Night"

	rs, err := ResolveSchedule(cfg)
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchName, rs.BatchName)
	assert.Equal(t, AtMinute(DefaultWorkStart), rs.WorkStart)
	assert.Equal(t, AtMinute(DefaultWorkEnd), rs.WorkEnd)
	require.Len(t, rs.Issues, 1)
	assert.Contains(t, rs.Issues[0], "not found")
}

func TestResolveSchedule_NoBatchesUsesDefaultSilently(t *testing.T) {
	rs, err := ResolveSchedule(ScheduleConfig{})
	require.NoError(t, err)

	assert.Equal(t, 600, rs.StandardWorkingMinutes)
	assert.Nil(t, rs.Lunch)
	assert.Empty(t, rs.Issues)
}

func TestResolveSchedule_InvertedIntervalsIgnored(t *testing.T) {
	cfg := twoBatches()
	cfg.Batches = append(cfg.Batches, Batch{Name: "Broken", Start: "18:00", End: "08:00"})
	cfg.LunchFrom, cfg.LunchTo = "14:00", "13:00"
	cfg.Breaks = []BreakInterval{{From: "16:15", To: "16:00"}}

	rs, err := ResolveSchedule(cfg)
	require.NoError(t, err)

	assert.Nil(t, rs.Lunch)
	assert.Empty(t, rs.Breaks)
	assert.Equal(t, 600, rs.StandardWorkingMinutes)
	assert.Len(t, rs.Issues, 3)
}

func TestResolveSchedule_LunchOutsideWindowDoesNotReduceStandard(t *testing.T) {
	cfg := twoBatches()
	cfg.LunchFrom, cfg.LunchTo = "20:00", "21:00"

	rs, err := ResolveSchedule(cfg)
	require.NoError(t, err)

	assert.Equal(t, 600, rs.StandardWorkingMinutes)
}

func TestResolveSchedule_FatalErrors(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*ScheduleConfig)
		field string
	}{
		{
			name:  "malformed batch time",
			mod:   func(c *ScheduleConfig) { c.Batches[1].Start = "nine" },
			field: "batches[1].start",
		},
		{
			name:  "malformed lunch",
			mod:   func(c *ScheduleConfig) { c.LunchTo = "25:00" },
			field: "lunch.to",
		},
		{
			name:  "malformed break",
			mod:   func(c *ScheduleConfig) { c.Breaks = []BreakInterval{{From: "x", To: "16:00"}} },
			field: "breaks[0].from",
		},
		{
			name:  "negative grace",
			mod:   func(c *ScheduleConfig) { c.PermissionGraceMinutes = -1 },
			field: "permission_grace_minutes",
		},
		{
			name:  "negative block amount",
			mod:   func(c *ScheduleConfig) { c.SalaryDeductionPerExcessBlock = decimal.NewFromInt(-5) },
			field: "salary_deduction_per_excess_block",
		},
		{
			name: "nothing left to pay",
			mod: func(c *ScheduleConfig) {
				c.SelectedBatch = "Morning"
				c.Breaks = []BreakInterval{{From: "06:00", To: "13:00"}}
			},
			field: "standard_working_minutes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := twoBatches()
			tt.mod(&cfg)

			rs, err := ResolveSchedule(cfg)

			assert.Nil(t, rs)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
			var se *InvalidScheduleError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
			assert.True(t, IsClientError(err))
		})
	}
}

func TestOverlap(t *testing.T) {
	assert.Equal(t, 60, overlap(0, 120, 60, 180))
	assert.Equal(t, 0, overlap(0, 60, 60, 120))
	assert.Equal(t, 30, overlap(10, 40, 0, 100))
	assert.Equal(t, 0, overlap(100, 50, 0, 200))
}
