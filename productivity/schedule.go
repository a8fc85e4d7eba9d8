/*
schedule.go - Schedule resolution

PURPOSE:
  Resolves a ScheduleConfig into concrete windows (seconds since midnight)
  for one call. Everything downstream reads the ResolvedSchedule; nobody
  re-parses configuration strings.

RULES:
  - The selected batch is looked up by name. Missing or invalid batches fall
    back to DefaultWorkStart-DefaultWorkEnd (09:00-19:00).
  - Unparsable or out-of-range clock values are fatal.
  - Batches, lunch and breaks whose start is not before their end are
    ignored with an issue.
  - StandardWorkingMinutes = window - unpaid lunch - unpaid breaks, where
    lunch and breaks only count for the part inside the work window.
    Overlaps between lunch and breaks are not deduplicated.
  - A non-positive StandardWorkingMinutes is fatal.
*/
package productivity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DefaultBatchName = "default"
	DefaultWorkStart = 9 * 60
	DefaultWorkEnd   = 19 * 60
)

// Window is a [Start, End) interval of the working day, in seconds.
type Window struct {
	Start ClockTime
	End   ClockTime
	Paid  bool
}

func (w Window) Seconds() int { return int(w.End - w.Start) }

// ResolvedSchedule is a ScheduleConfig reduced to numbers.
type ResolvedSchedule struct {
	BatchName string
	WorkStart ClockTime
	WorkEnd   ClockTime

	Lunch  *Window
	Breaks []Window

	StandardWorkingMinutes int
	GraceMinutes           int
	ConsiderOvertime       bool
	DeductSalary           bool
	DeductionPerBlock      decimal.Decimal

	Issues []string
}

// WindowSeconds is the length of the work window.
func (s ResolvedSchedule) WindowSeconds() int { return int(s.WorkEnd - s.WorkStart) }

func (s ResolvedSchedule) graceSeconds() int { return s.GraceMinutes * secondsPerMinute }

func (s ResolvedSchedule) standardSeconds() int { return s.StandardWorkingMinutes * secondsPerMinute }

// unpaid returns the windows removed from worked time.
func (s ResolvedSchedule) unpaid() []Window {
	var out []Window
	if s.Lunch != nil && !s.Lunch.Paid {
		out = append(out, *s.Lunch)
	}
	for _, b := range s.Breaks {
		if !b.Paid {
			out = append(out, b)
		}
	}
	return out
}

// ResolveSchedule validates cfg and selects cfg.SelectedBatch.
func ResolveSchedule(cfg ScheduleConfig) (*ResolvedSchedule, error) {
	if cfg.PermissionGraceMinutes < 0 {
		return nil, &InvalidScheduleError{
			Field:  "permission_grace_minutes",
			Value:  fmt.Sprint(cfg.PermissionGraceMinutes),
			Reason: "must not be negative",
		}
	}
	if cfg.SalaryDeductionPerExcessBlock.IsNegative() {
		return nil, &InvalidScheduleError{
			Field:  "salary_deduction_per_excess_block",
			Value:  cfg.SalaryDeductionPerExcessBlock.String(),
			Reason: "must not be negative",
		}
	}

	rs := &ResolvedSchedule{
		GraceMinutes:      cfg.PermissionGraceMinutes,
		ConsiderOvertime:  cfg.ConsiderOvertime,
		DeductSalary:      cfg.DeductSalary,
		DeductionPerBlock: cfg.SalaryDeductionPerExcessBlock,
	}

	selected, err := selectBatch(cfg, rs)
	if err != nil {
		return nil, err
	}
	rs.BatchName = selected.name
	rs.WorkStart = AtMinute(selected.start)
	rs.WorkEnd = AtMinute(selected.end)

	if cfg.LunchFrom != "" || cfg.LunchTo != "" {
		lunch, ok, err := resolveInterval("lunch", cfg.LunchFrom, cfg.LunchTo, cfg.LunchPaid)
		if err != nil {
			return nil, err
		}
		if ok {
			rs.Lunch = &lunch
		} else {
			rs.Issues = append(rs.Issues, fmt.Sprintf("lunch %s-%s ignored: start not before end", cfg.LunchFrom, cfg.LunchTo))
		}
	}

	for i, b := range cfg.Breaks {
		w, ok, err := resolveInterval(fmt.Sprintf("breaks[%d]", i), b.From, b.To, b.Paid)
		if err != nil {
			return nil, err
		}
		if !ok {
			rs.Issues = append(rs.Issues, fmt.Sprintf("break %s-%s ignored: start not before end", b.From, b.To))
			continue
		}
		rs.Breaks = append(rs.Breaks, w)
	}

	net := rs.WindowSeconds()
	for _, w := range rs.unpaid() {
		net -= overlap(w.Start, w.End, rs.WorkStart, rs.WorkEnd)
	}
	rs.StandardWorkingMinutes = net / secondsPerMinute
	if rs.StandardWorkingMinutes <= 0 {
		return nil, &InvalidScheduleError{
			Field:  "standard_working_minutes",
			Value:  fmt.Sprint(rs.StandardWorkingMinutes),
			Reason: "schedule pays for no working minutes",
		}
	}
	return rs, nil
}

type batchBounds struct {
	name       string
	start, end int
}

// selectBatch validates every configured batch, then picks the selected one.
func selectBatch(cfg ScheduleConfig, rs *ResolvedSchedule) (batchBounds, error) {
	var found *batchBounds
	for i, b := range cfg.Batches {
		start, err := parseBound(fmt.Sprintf("batches[%d].start", i), b.Start)
		if err != nil {
			return batchBounds{}, err
		}
		end, err := parseBound(fmt.Sprintf("batches[%d].end", i), b.End)
		if err != nil {
			return batchBounds{}, err
		}
		if start >= end {
			rs.Issues = append(rs.Issues, fmt.Sprintf("batch %q ignored: start %s not before end %s", b.Name, b.Start, b.End))
			continue
		}
		if found == nil && strings.EqualFold(strings.TrimSpace(b.Name), strings.TrimSpace(cfg.SelectedBatch)) {
			found = &batchBounds{name: b.Name, start: start, end: end}
		}
	}
	if found != nil {
		return *found, nil
	}
	if cfg.SelectedBatch != "" {
		rs.Issues = append(rs.Issues, fmt.Sprintf("batch %q not found, using default 09:00-19:00", cfg.SelectedBatch))
	}
	return batchBounds{name: DefaultBatchName, start: DefaultWorkStart, end: DefaultWorkEnd}, nil
}

func resolveInterval(field, from, to string, paid bool) (Window, bool, error) {
	start, err := parseBound(field+".from", from)
	if err != nil {
		return Window{}, false, err
	}
	end, err := parseBound(field+".to", to)
	if err != nil {
		return Window{}, false, err
	}
	if start >= end {
		return Window{}, false, nil
	}
	return Window{Start: AtMinute(start), End: AtMinute(end), Paid: paid}, true, nil
}

func parseBound(field, value string) (int, error) {
	m, err := ParseTimeOfDay(value)
	if err != nil {
		return 0, &InvalidScheduleError{Field: field, Value: value, Reason: "not a time of day"}
	}
	if m < 0 || m >= minutesPerDay {
		return 0, &InvalidScheduleError{Field: field, Value: value, Reason: "outside 00:00-23:59"}
	}
	return m, nil
}

// overlap returns the length of [a0, a1) ∩ [b0, b1), or 0.
func overlap(a0, a1, b0, b1 ClockTime) int {
	lo, hi := a0, a1
	if b0 > lo {
		lo = b0
	}
	if b1 < hi {
		hi = b1
	}
	if hi <= lo {
		return 0
	}
	return int(hi - lo)
}
