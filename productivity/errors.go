/*
errors.go - Error types for the productivity engine

ERROR CATEGORIES:
  1. Fatal - the whole computation is rejected and no report is returned
     (InvalidRangeError, InvalidScheduleError).
  2. Advisory - bad input that only degrades one day or one field. These are
     never returned as errors; they surface as strings in DayOutcome.Issues or
     Summary.Advisories.

USAGE:
  report, err := productivity.Compute(punches, period, schedule, worker)
  if errors.Is(err, productivity.ErrInvalidRange) {
      // 400 to the caller
  }
*/
package productivity

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidRange is returned when the query range ends before it starts.
	ErrInvalidRange = errors.New("invalid range: from date after to date")

	// ErrInvalidSchedule is returned when the schedule cannot produce a
	// positive number of paid minutes or carries malformed clock values.
	ErrInvalidSchedule = errors.New("invalid schedule")

	// ErrInvalidDate is returned when a date is not in 2006-01-02 form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrUnparsableTime is returned by ParseClockTime. Compute never returns
	// it; the punch is treated as midnight and the day gets an issue.
	ErrUnparsableTime = errors.New("unparsable time")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidRangeError reports a query range whose bounds are out of order.
type InvalidRangeError struct {
	From Date
	To   Date
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid range: %s is after %s", e.From, e.To)
}

func (e *InvalidRangeError) Unwrap() error { return ErrInvalidRange }

// InvalidScheduleError reports the schedule field that made the schedule unusable.
type InvalidScheduleError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidScheduleError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid schedule: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid schedule: %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidScheduleError) Unwrap() error { return ErrInvalidSchedule }

// UnparsableTimeError carries the raw text that failed to parse.
type UnparsableTimeError struct {
	Text string
}

func (e *UnparsableTimeError) Error() string {
	return fmt.Sprintf("unparsable time %q", e.Text)
}

func (e *UnparsableTimeError) Unwrap() error { return ErrUnparsableTime }

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidSchedule) ||
		errors.Is(err, ErrUnparsableTime)
}
