/*
Package productivity turns a worker's raw punch stream into attendance,
worked time and a prorated salary.

PURPOSE:
  Reconciles irregular, possibly incomplete clock events against a
  declarative work schedule (batches, lunch window, paid/unpaid breaks,
  grace period, weekly off) and produces a financially consistent,
  auditable report for one worker over one date range.

PIPELINE (each stage is a pure function over immutable inputs):
  1. ResolveSchedule   - pick the batch, derive windows in minutes
  2. ParseClockTime    - punch text to seconds since midnight
  3. ExpandCalendar    - every date in range, Sunday = weekly off
  4. groupPunches      - bucket punches by date, stable sort by time
  5. calculateWork     - IN->OUT segments, clipped, lunch/breaks removed
  6. assessPermission  - late arrival / early departure beyond grace
  7. aggregatePayroll  - per-day and per-minute rates, deductions
  8. Report.Rows       - display rows and summary fields

DESIGN PRINCIPLES:
  1. Purity: no I/O, no package-level configuration, inputs never mutated
  2. Determinism: identical inputs give identical reports
  3. Precision: time in integer seconds, money in decimal.Decimal
  4. Degrade, don't abort: only range and schedule problems are fatal

USAGE:
  report, err := productivity.Compute(punches, period, schedule, worker)

SEE ALSO:
  - engine.go: Compute
  - schedule.go: Schedule resolution
  - payroll.go: Proration rules
*/
package productivity

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// INPUTS
// =============================================================================

// Punch is a single attendance event as recorded by the attendance store.
type Punch struct {
	TimeText     string
	IsPresenceIn bool
	Date         Date
	WorkerID     string
}

// Worker identifies the person a report is computed for.
// A null Salary is treated as zero with an advisory.
type Worker struct {
	ID         string
	Name       string
	RFID       string
	Department string
	Email      string
	Salary     decimal.NullDecimal
}

// Batch is a named shift.
type Batch struct {
	Name  string
	Start string
	End   string
}

// BreakInterval is a recurring daily break. Unpaid breaks are removed from
// worked time; paid breaks are not.
type BreakInterval struct {
	From string
	To   string
	Paid bool
}

// ScheduleConfig is the per-call work schedule.
type ScheduleConfig struct {
	Batches       []Batch
	SelectedBatch string

	LunchFrom string
	LunchTo   string
	LunchPaid bool

	Breaks []BreakInterval

	PermissionGraceMinutes int

	// SalaryDeductionPerExcessBlock, when positive, charges a flat amount per
	// started grace-sized block of chargeable permission minutes instead of
	// the per-minute rate.
	SalaryDeductionPerExcessBlock decimal.Decimal

	ConsiderOvertime bool
	DeductSalary     bool
}

// =============================================================================
// OUTPUTS
// =============================================================================

// DayStatus tags a DayOutcome.
type DayStatus string

const (
	StatusPresent   DayStatus = "Present"
	StatusAbsent    DayStatus = "Absent"
	StatusWeeklyOff DayStatus = "Sunday"
)

// Segment is one IN->OUT pair and the seconds it contributed.
type Segment struct {
	In            ClockTime
	Out           ClockTime
	WorkedSeconds int
}

// Presence holds the time fields of a day that has punches.
type Presence struct {
	FirstIn    ClockTime
	LastOut    ClockTime
	PunchCount int
	Segments   []Segment

	WorkedMinutes     decimal.Decimal
	OvertimeMinutes   decimal.Decimal
	LateMinutes       decimal.Decimal
	EarlyLeaveMinutes decimal.Decimal
	PermissionMinutes decimal.Decimal

	ProductivityPercent int
}

// DayOutcome is the classification of one calendar date.
//
// Presence is set for Present days. Weekly-off days with punches also carry a
// read-only Presence (first/last punch and count, zero minutes). Absent days
// never do.
type DayOutcome struct {
	Date      Date
	Status    DayStatus
	Presence  *Presence
	Deduction decimal.Decimal
	Issues    []string
}

// Summary aggregates a report.
type Summary struct {
	TotalCalendarDays   int
	WeeklyOffDays       int
	WorkingDaysInPeriod int
	AbsentDays          int
	PresentDays         int

	StandardWorkingMinutes int
	TotalWorkedMinutes     decimal.Decimal
	TotalOvertimeMinutes   decimal.Decimal
	TotalPermissionMinutes decimal.Decimal
	TotalPossibleMinutes   decimal.Decimal

	OverallProductivityPercent    int
	AverageDailyWorkedMinutes     decimal.Decimal
	AverageDailyPermissionMinutes decimal.Decimal

	PunctualityViolations int
	PunctualityScore      int

	OriginalSalary      decimal.Decimal
	PerDaySalary        decimal.Decimal
	PerMinuteRate       decimal.Decimal
	AbsentDeduction     decimal.Decimal
	PermissionDeduction decimal.Decimal
	FinalSalary         decimal.Decimal

	// Advisories collects non-fatal, report-wide conditions.
	Advisories []string
}

// Report is the result of one Compute call. It is owned by the caller.
type Report struct {
	Worker   Worker
	Period   Period
	Schedule ResolvedSchedule
	Days     []DayOutcome
	Summary  Summary
}
