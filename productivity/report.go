/*
report.go - Display rows and summary fields

PURPOSE:
  Renders a Report for consumers that read it verbatim: the UI daily table
  and the export component. Rows carry a stable ISO date key so they can be
  re-sorted without re-deriving anything from punches.

  Money is formatted through a CurrencyFormatter, which uses x/text's
  message printer for locale-aware digit grouping.
*/
package productivity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder shown for time fields that do not apply to a day.
const Placeholder = "-"

// CurrencyFormatter renders amounts as symbol + grouped fixed-point number.
type CurrencyFormatter struct {
	Symbol  string
	printer *message.Printer
}

// NewCurrencyFormatter creates a formatter for the given locale.
func NewCurrencyFormatter(symbol string, tag language.Tag) *CurrencyFormatter {
	return &CurrencyFormatter{Symbol: symbol, printer: message.NewPrinter(tag)}
}

// DefaultCurrencyFormatter formats rupees with English grouping (₹1,234.50).
func DefaultCurrencyFormatter() *CurrencyFormatter {
	return NewCurrencyFormatter("₹", language.English)
}

// Format renders d rounded to two places.
func (f *CurrencyFormatter) Format(d decimal.Decimal) string {
	return f.Symbol + f.printer.Sprintf("%.2f", d.Round(moneyPlaces).InexactFloat64())
}

// ReportRow is one calendar date as shown to people.
type ReportRow struct {
	Date              string
	Weekday           string
	Status            string
	FirstIn           string
	LastOut           string
	PunchCount        int
	WorkedMinutes     string
	WorkedHours       string
	PermissionMinutes string
	Productivity      string
	Deduction         string
	Issues            []string
}

// Rows renders every day of the report in chronological order.
func (r *Report) Rows(f *CurrencyFormatter) []ReportRow {
	rows := make([]ReportRow, len(r.Days))
	for i, d := range r.Days {
		row := ReportRow{
			Date:              d.Date.String(),
			Weekday:           d.Date.Weekday().String(),
			Status:            string(d.Status),
			FirstIn:           Placeholder,
			LastOut:           Placeholder,
			WorkedMinutes:     Placeholder,
			WorkedHours:       Placeholder,
			PermissionMinutes: Placeholder,
			Productivity:      Placeholder,
			Deduction:         f.Format(d.Deduction),
			Issues:            append([]string(nil), d.Issues...),
		}
		if p := d.Presence; p != nil {
			row.FirstIn = p.FirstIn.String()
			row.LastOut = p.LastOut.String()
			row.PunchCount = p.PunchCount
		}
		if p := d.Presence; p != nil && d.Status == StatusPresent {
			row.WorkedMinutes = p.WorkedMinutes.Round(moneyPlaces).String()
			row.WorkedHours = FormatDuration(int(p.WorkedMinutes.Mul(sixty).IntPart()))
			row.PermissionMinutes = p.PermissionMinutes.Round(moneyPlaces).String()
			row.Productivity = strconv.Itoa(p.ProductivityPercent) + "%"
		}
		rows[i] = row
	}
	return rows
}

// SortRows orders rows by date key, keeping the relative order of equal keys.
func SortRows(rows []ReportRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
}

// Fields renders the summary as the flat key/value map read by exporters.
func (s Summary) Fields(f *CurrencyFormatter) map[string]string {
	minutes := func(d decimal.Decimal) string { return d.Round(moneyPlaces).String() }
	hours := func(d decimal.Decimal) string { return FormatDuration(int(d.Mul(sixty).IntPart())) }

	fields := map[string]string{
		"total_calendar_days":              strconv.Itoa(s.TotalCalendarDays),
		"weekly_off_days":                  strconv.Itoa(s.WeeklyOffDays),
		"working_days_in_period":           strconv.Itoa(s.WorkingDaysInPeriod),
		"present_days":                     strconv.Itoa(s.PresentDays),
		"absent_days":                      strconv.Itoa(s.AbsentDays),
		"standard_working_minutes":         strconv.Itoa(s.StandardWorkingMinutes),
		"total_worked_minutes":             minutes(s.TotalWorkedMinutes),
		"total_worked_hours":               hours(s.TotalWorkedMinutes),
		"total_overtime_minutes":           minutes(s.TotalOvertimeMinutes),
		"total_permission_minutes":         minutes(s.TotalPermissionMinutes),
		"total_permission_hours":           hours(s.TotalPermissionMinutes),
		"total_possible_hours":             hours(s.TotalPossibleMinutes),
		"overall_productivity_percentage":  strconv.Itoa(s.OverallProductivityPercent),
		"average_daily_working_minutes":    minutes(s.AverageDailyWorkedMinutes),
		"average_daily_permission_minutes": minutes(s.AverageDailyPermissionMinutes),
		"punctuality_violations":           strconv.Itoa(s.PunctualityViolations),
		"punctuality_score":                strconv.Itoa(s.PunctualityScore),
		"original_salary":                  f.Format(s.OriginalSalary),
		"per_day_salary":                   f.Format(s.PerDaySalary),
		"per_minute_rate":                  s.PerMinuteRate.Round(4).String(),
		"absent_deduction":                 f.Format(s.AbsentDeduction),
		"permission_deduction":             f.Format(s.PermissionDeduction),
		"final_salary":                     f.Format(s.FinalSalary),
	}
	if len(s.Advisories) > 0 {
		fields["advisories"] = strings.Join(s.Advisories, "; ")
	}
	return fields
}
