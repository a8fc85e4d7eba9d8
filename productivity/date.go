package productivity

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE - Calendar date without a clock component
// =============================================================================

// DateLayout is the stable, sortable key used for dates on the wire and in rows.
const DateLayout = "2006-01-02"

// Date is a naive calendar date. All dates are pinned to midnight UTC so that
// equality and day arithmetic never depend on the host timezone.
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date, read in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses an ISO date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.Time.Before(other.Time) }
func (d Date) After(other Date) bool         { return d.Time.After(other.Time) }
func (d Date) Equal(other Date) bool         { return d.Time.Equal(other.Time) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsWeeklyOff() bool     { return d.Weekday() == time.Sunday }
func (d Date) IsZero() bool          { return d.Time.IsZero() }
func (d Date) String() string        { return d.Time.Format(DateLayout) }

// =============================================================================
// PERIOD - Inclusive query range
// =============================================================================

// Period is the inclusive [Start, End] range a report covers.
type Period struct {
	Start Date
	End   Date
}

// NewPeriod builds a validated period from two ISO dates.
func NewPeriod(from, to string) (Period, error) {
	start, err := ParseDate(from)
	if err != nil {
		return Period{}, err
	}
	end, err := ParseDate(to)
	if err != nil {
		return Period{}, err
	}
	p := Period{Start: start, End: end}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate rejects periods that end before they start.
func (p Period) Validate() error {
	if p.Start.After(p.End) {
		return &InvalidRangeError{From: p.Start, To: p.End}
	}
	return nil
}

// Contains returns true if the date is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns every date in the period. An inverted period yields nil.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
