/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Workers:
    WorkerDTO, CreateWorkerRequest

  Punches:
    PunchDTO, CreatePunchRequest

  Productivity:
    ProductivityReportDTO (report rows, finalSummary, dailyBreakdown)

  Settings:
    ScheduleResponse (wraps factory.ScheduleJSON)

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Validation is done in the attendance service, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON type
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/productivity-engine/attendance"
	"github.com/warp/productivity-engine/factory"
	"github.com/warp/productivity-engine/productivity"
)

// =============================================================================
// WORKERS
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	RFID       string           `json:"rfid,omitempty"`
	Department string           `json:"department,omitempty"`
	Email      string           `json:"email,omitempty"`
	Salary     *decimal.Decimal `json:"salary"`
	CreatedAt  string           `json:"created_at,omitempty"`
}

// CreateWorkerRequest is the request to create or update a worker.
type CreateWorkerRequest struct {
	ID         string              `json:"id"`
	Name       string              `json:"name"`
	RFID       string              `json:"rfid"`
	Department string              `json:"department"`
	Email      string              `json:"email"`
	Salary     decimal.NullDecimal `json:"salary"`
}

func toWorkerDTO(w attendance.Worker) WorkerDTO {
	dto := WorkerDTO{
		ID:         w.ID,
		Name:       w.Name,
		RFID:       w.RFID,
		Department: w.Department,
		Email:      w.Email,
	}
	if w.Salary.Valid {
		salary := w.Salary.Decimal
		dto.Salary = &salary
	}
	if !w.CreatedAt.IsZero() {
		dto.CreatedAt = w.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// PUNCHES
// =============================================================================

// PunchDTO represents one punch in API responses.
type PunchDTO struct {
	ID         string `json:"id"`
	WorkerID   string `json:"worker_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Presence   string `json:"presence"` // IN or OUT
	RFID       string `json:"rfid,omitempty"`
	RecordedAt string `json:"recorded_at,omitempty"`
}

// CreatePunchRequest records a punch. All fields are optional when the
// worker is in the URL: date and time default to the server clock and
// presence toggles the last punch of the day.
type CreatePunchRequest struct {
	RFID     string `json:"rfid,omitempty"`
	Date     string `json:"date,omitempty"`
	Time     string `json:"time,omitempty"`
	Presence string `json:"presence,omitempty"`
}

func toPunchDTO(p attendance.PunchRecord) PunchDTO {
	dto := PunchDTO{
		ID:       p.ID,
		WorkerID: p.WorkerID,
		Date:     p.Date.String(),
		Time:     p.Time,
		Presence: attendance.PresenceLabel(p.Presence),
		RFID:     p.RFID,
	}
	if !p.RecordedAt.IsZero() {
		dto.RecordedAt = p.RecordedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// PRODUCTIVITY
// =============================================================================

// ProductivityReportDTO is the full report for one worker over one range.
// Report rows and the summary map are display-ready strings read verbatim by
// exporters; DailyBreakdown carries the raw numbers for UI tables.
type ProductivityReportDTO struct {
	Worker                 WorkerDTO           `json:"worker"`
	From                   string              `json:"from"`
	To                     string              `json:"to"`
	Batch                  string              `json:"batch"`
	StandardWorkingMinutes int                 `json:"standard_working_minutes"`
	ScheduleIssues         []string            `json:"schedule_issues,omitempty"`
	Report                 []ReportRowDTO      `json:"report"`
	FinalSummary           map[string]string   `json:"finalSummary"`
	DailyBreakdown         []DailyBreakdownDTO `json:"dailyBreakdown"`
}

// ReportRowDTO is one display row.
type ReportRowDTO struct {
	Date              string   `json:"date"`
	Weekday           string   `json:"weekday"`
	Status            string   `json:"status"`
	FirstIn           string   `json:"first_in"`
	LastOut           string   `json:"last_out"`
	PunchCount        int      `json:"punch_count"`
	WorkedMinutes     string   `json:"worked_minutes"`
	WorkedHours       string   `json:"worked_hours"`
	PermissionMinutes string   `json:"permission_minutes"`
	Productivity      string   `json:"productivity"`
	Deduction         string   `json:"deduction"`
	Issues            []string `json:"issues,omitempty"`
}

// DailyBreakdownDTO is one day with unformatted values.
type DailyBreakdownDTO struct {
	Date                string          `json:"date"`
	Status              string          `json:"status"`
	FirstIn             *string         `json:"first_in,omitempty"`
	LastOut             *string         `json:"last_out,omitempty"`
	PunchCount          int             `json:"punch_count"`
	Segments            []SegmentDTO    `json:"segments,omitempty"`
	WorkedMinutes       decimal.Decimal `json:"worked_minutes"`
	OvertimeMinutes     decimal.Decimal `json:"overtime_minutes"`
	LateMinutes         decimal.Decimal `json:"late_minutes"`
	EarlyLeaveMinutes   decimal.Decimal `json:"early_leave_minutes"`
	PermissionMinutes   decimal.Decimal `json:"permission_minutes"`
	ProductivityPercent int             `json:"productivity_percent"`
	Deduction           decimal.Decimal `json:"deduction"`
	Issues              []string        `json:"issues,omitempty"`
}

// SegmentDTO is one IN->OUT interval.
type SegmentDTO struct {
	In            string          `json:"in"`
	Out           string          `json:"out"`
	WorkedMinutes decimal.Decimal `json:"worked_minutes"`
}

func toProductivityReportDTO(report *productivity.Report, worker attendance.Worker, currency *productivity.CurrencyFormatter) ProductivityReportDTO {
	rows := report.Rows(currency)
	productivity.SortRows(rows)

	dto := ProductivityReportDTO{
		Worker:                 toWorkerDTO(worker),
		From:                   report.Period.Start.String(),
		To:                     report.Period.End.String(),
		Batch:                  report.Schedule.BatchName,
		StandardWorkingMinutes: report.Schedule.StandardWorkingMinutes,
		ScheduleIssues:         report.Schedule.Issues,
		Report:                 make([]ReportRowDTO, len(rows)),
		FinalSummary:           report.Summary.Fields(currency),
		DailyBreakdown:         make([]DailyBreakdownDTO, len(report.Days)),
	}

	for i, r := range rows {
		dto.Report[i] = ReportRowDTO(r)
	}

	zero := decimal.Zero
	for i, d := range report.Days {
		day := DailyBreakdownDTO{
			Date:              d.Date.String(),
			Status:            string(d.Status),
			WorkedMinutes:     zero,
			OvertimeMinutes:   zero,
			LateMinutes:       zero,
			EarlyLeaveMinutes: zero,
			PermissionMinutes: zero,
			Deduction:         d.Deduction,
			Issues:            d.Issues,
		}
		if p := d.Presence; p != nil {
			firstIn, lastOut := p.FirstIn.String(), p.LastOut.String()
			day.FirstIn = &firstIn
			day.LastOut = &lastOut
			day.PunchCount = p.PunchCount
			day.WorkedMinutes = p.WorkedMinutes.Round(2)
			day.OvertimeMinutes = p.OvertimeMinutes.Round(2)
			day.LateMinutes = p.LateMinutes.Round(2)
			day.EarlyLeaveMinutes = p.EarlyLeaveMinutes.Round(2)
			day.PermissionMinutes = p.PermissionMinutes.Round(2)
			day.ProductivityPercent = p.ProductivityPercent
			for _, s := range p.Segments {
				day.Segments = append(day.Segments, SegmentDTO{
					In:            s.In.String(),
					Out:           s.Out.String(),
					WorkedMinutes: decimal.NewFromInt(int64(s.WorkedSeconds)).Div(decimal.NewFromInt(60)).Round(2),
				})
			}
		}
		dto.DailyBreakdown[i] = day
	}
	return dto
}

// =============================================================================
// SETTINGS
// =============================================================================

// ScheduleResponse returns the schedule with any non-fatal resolution issues.
type ScheduleResponse struct {
	Schedule factory.ScheduleJSON `json:"schedule"`
	Issues   []string             `json:"issues,omitempty"`
}

// =============================================================================
// SCENARIOS
// =============================================================================

// ScenarioDTO describes a demo scenario and the range it covers.
type ScenarioDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	From        string   `json:"from"`
	To          string   `json:"to"`
	WorkerIDs   []string `json:"worker_ids"`
}

// LoadScenarioRequest is the request to load a scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
