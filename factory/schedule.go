/*
Package factory provides JSON to Go schedule conversion.

PURPOSE:
  Converts the JSON schedule settings document into a
  productivity.ScheduleConfig. Shift batches, lunch, breaks and deduction
  rules are edited by administrators and stored as a single settings
  document, so no code change is needed to move a shift or change the grace.

JSON SCHEMA:
  {
    "batches": [
      {"name": "General", "from": "09:00", "to": "19:00"},
      {"name": "Morning", "from": "06:00", "to": "14:00"}
    ],
    "selected_batch": "General",
    "lunch_from": "13:00",
    "lunch_to": "14:00",
    "lunch_paid": false,
    "breaks": [{"from": "16:00", "to": "16:15", "paid": true}],
    "permission_grace_minutes": 15,
    "salary_deduction_per_excess_block": "0",
    "consider_overtime": false,
    "deduct_salary": true
  }

DEFAULTS:
  - deduct_salary: true when omitted
  - salary_deduction_per_excess_block: 0 (per-minute charging)
  - no batches: the engine falls back to 09:00-19:00

USAGE:
  f := factory.NewScheduleFactory()
  cfg, err := f.ParseSchedule(factory.StandardScheduleJSON())

SEE ALSO:
  - productivity/schedule.go: Schedule resolution and validation
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of the schedule settings.
type ScheduleJSON struct {
	Batches                       []BatchJSON     `json:"batches"`
	SelectedBatch                 string          `json:"selected_batch,omitempty"`
	LunchFrom                     string          `json:"lunch_from,omitempty"`
	LunchTo                       string          `json:"lunch_to,omitempty"`
	LunchPaid                     bool            `json:"lunch_paid,omitempty"`
	Breaks                        []BreakJSON     `json:"breaks,omitempty"`
	PermissionGraceMinutes        int             `json:"permission_grace_minutes"`
	SalaryDeductionPerExcessBlock decimal.Decimal `json:"salary_deduction_per_excess_block"`
	ConsiderOvertime              bool            `json:"consider_overtime,omitempty"`
	DeductSalary                  *bool           `json:"deduct_salary,omitempty"` // Default true
}

// BatchJSON represents a named shift.
type BatchJSON struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// BreakJSON represents a break interval.
type BreakJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
	Paid bool   `json:"paid,omitempty"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedules to Go structs.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule parses a JSON string into a ScheduleConfig. The result is
// not resolved; call Validate or productivity.ResolveSchedule for that.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (productivity.ScheduleConfig, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return productivity.ScheduleConfig{}, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj), nil
}

// FromJSON converts ScheduleJSON to productivity.ScheduleConfig.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) productivity.ScheduleConfig {
	cfg := productivity.ScheduleConfig{
		SelectedBatch:                 strings.TrimSpace(sj.SelectedBatch),
		LunchFrom:                     sj.LunchFrom,
		LunchTo:                       sj.LunchTo,
		LunchPaid:                     sj.LunchPaid,
		PermissionGraceMinutes:        sj.PermissionGraceMinutes,
		SalaryDeductionPerExcessBlock: sj.SalaryDeductionPerExcessBlock,
		ConsiderOvertime:              sj.ConsiderOvertime,
		DeductSalary:                  true,
	}
	if sj.DeductSalary != nil {
		cfg.DeductSalary = *sj.DeductSalary
	}
	for _, b := range sj.Batches {
		cfg.Batches = append(cfg.Batches, productivity.Batch{Name: b.Name, Start: b.From, End: b.To})
	}
	for _, b := range sj.Breaks {
		cfg.Breaks = append(cfg.Breaks, productivity.BreakInterval{From: b.From, To: b.To, Paid: b.Paid})
	}
	return cfg
}

// ToJSON converts a ScheduleConfig to ScheduleJSON.
func (f *ScheduleFactory) ToJSON(cfg productivity.ScheduleConfig) ScheduleJSON {
	deduct := cfg.DeductSalary
	sj := ScheduleJSON{
		Batches:                       []BatchJSON{},
		SelectedBatch:                 cfg.SelectedBatch,
		LunchFrom:                     cfg.LunchFrom,
		LunchTo:                       cfg.LunchTo,
		LunchPaid:                     cfg.LunchPaid,
		PermissionGraceMinutes:        cfg.PermissionGraceMinutes,
		SalaryDeductionPerExcessBlock: cfg.SalaryDeductionPerExcessBlock,
		ConsiderOvertime:              cfg.ConsiderOvertime,
		DeductSalary:                  &deduct,
	}
	for _, b := range cfg.Batches {
		sj.Batches = append(sj.Batches, BatchJSON{Name: b.Name, From: b.Start, To: b.End})
	}
	for _, b := range cfg.Breaks {
		sj.Breaks = append(sj.Breaks, BreakJSON{From: b.From, To: b.To, Paid: b.Paid})
	}
	return sj
}

// Marshal renders cfg as the JSON settings document.
func (f *ScheduleFactory) Marshal(cfg productivity.ScheduleConfig) (string, error) {
	data, err := json.Marshal(f.ToJSON(cfg))
	if err != nil {
		return "", fmt.Errorf("failed to encode schedule JSON: %w", err)
	}
	return string(data), nil
}

// Validate resolves cfg to surface fatal schedule errors before it is saved.
// Non-fatal problems (ignored intervals, unknown batch) are returned as issues.
func (f *ScheduleFactory) Validate(cfg productivity.ScheduleConfig) ([]string, error) {
	rs, err := productivity.ResolveSchedule(cfg)
	if err != nil {
		return nil, err
	}
	return rs.Issues, nil
}

// =============================================================================
// PRESET SCHEDULES
// =============================================================================

// StandardScheduleJSON is the general shift: 09:00-19:00 with an unpaid
// 13:00-14:00 lunch, 15 minutes grace and per-minute deductions.
func StandardScheduleJSON() string {
	return `{
		"batches": [
			{"name": "General", "from": "09:00", "to": "19:00"}
		],
		"selected_batch": "General",
		"lunch_from": "13:00",
		"lunch_to": "14:00",
		"lunch_paid": false,
		"permission_grace_minutes": 15,
		"salary_deduction_per_excess_block": "0",
		"consider_overtime": false,
		"deduct_salary": true
	}`
}

// ShiftedScheduleJSON offers a morning and an evening batch with paid tea
// breaks and a flat deduction per started block of excess permission.
func ShiftedScheduleJSON(selected string, perBlock int) string {
	return fmt.Sprintf(`{
		"batches": [
			{"name": "Morning", "from": "06:00", "to": "14:00"},
			{"name": "Evening", "from": "14:00", "to": "22:00"}
		],
		"selected_batch": %q,
		"lunch_from": "10:00",
		"lunch_to": "10:30",
		"breaks": [
			{"from": "08:00", "to": "08:10", "paid": true},
			{"from": "18:00", "to": "18:30"}
		],
		"permission_grace_minutes": 10,
		"salary_deduction_per_excess_block": "%d",
		"deduct_salary": true
	}`, selected, perBlock)
}
