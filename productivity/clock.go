/*
clock.go - Time-of-day parsing and formatting

PURPOSE:
  Punches arrive as 12-hour clock strings ("8:55:00 AM", seconds optional)
  and schedules as 24-hour strings ("09:00"). Both are reduced to integer
  seconds since midnight, so segment arithmetic is exact to the second and
  only converted to fractional minutes at the edges of the engine.

FORMATS:
  Punch text:    H:MM:SS AM/PM, H:MM AM/PM (case-insensitive, space optional)
  Schedule text: HH:MM (24h), also accepts the punch formats
  Display:       h:mm AM/PM
  Durations:     HH:MM
*/
package productivity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	minutesPerDay    = 24 * 60
)

var sixty = decimal.NewFromInt(secondsPerMinute)

// ClockTime is a naive time of day in seconds since midnight.
type ClockTime int

var punchLayouts = []string{"3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM"}

var scheduleLayouts = []string{"15:04", "15:04:05"}

// ParseClockTime parses a punch timestamp in 12-hour form.
func ParseClockTime(text string) (ClockTime, error) {
	value := strings.ToUpper(strings.TrimSpace(text))
	for _, layout := range punchLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return clockOf(t), nil
		}
	}
	return 0, &UnparsableTimeError{Text: text}
}

// ParseTimeOfDay parses a schedule boundary into whole minutes since midnight.
// Seconds, if given, are dropped.
func ParseTimeOfDay(text string) (int, error) {
	value := strings.ToUpper(strings.TrimSpace(text))
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return int(clockOf(t)) / secondsPerMinute, nil
		}
	}
	c, err := ParseClockTime(value)
	if err != nil {
		return 0, err
	}
	return int(c) / secondsPerMinute, nil
}

func clockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*secondsPerHour + t.Minute()*secondsPerMinute + t.Second())
}

// AtMinute returns the clock time for whole minutes since midnight.
func AtMinute(m int) ClockTime { return ClockTime(m * secondsPerMinute) }

// Minutes returns the fractional minutes since midnight.
func (c ClockTime) Minutes() decimal.Decimal { return minutesOf(int(c)) }

// String formats as h:mm AM/PM.
func (c ClockTime) String() string {
	return time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC).
		Add(time.Duration(c) * time.Second).
		Format("3:04 PM")
}

// minutesOf converts a second count to fractional minutes.
func minutesOf(seconds int) decimal.Decimal {
	return decimal.NewFromInt(int64(seconds)).Div(sixty)
}

// FormatDuration renders seconds as HH:MM, truncating leftover seconds.
func FormatDuration(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	total := seconds / secondsPerMinute
	return fmt.Sprintf("%s%02d:%02d", sign, total/60, total%60)
}

// formatMinutes renders seconds as a short minute count for issue text ("12.5").
func formatMinutes(seconds int) string {
	return minutesOf(seconds).Round(2).String()
}
