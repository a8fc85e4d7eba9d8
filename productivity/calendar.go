package productivity

import (
	"fmt"
	"sort"
)

// =============================================================================
// CALENDAR EXPANDER
// =============================================================================

// CalendarDay is one date of the query range.
type CalendarDay struct {
	Date      Date
	WeeklyOff bool
}

// ExpandCalendar lists every date of p, whether or not it has punches.
// Sunday is the only weekly-off rule; there is no holiday calendar.
func ExpandCalendar(p Period) ([]CalendarDay, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	dates := p.Days()
	days := make([]CalendarDay, len(dates))
	for i, d := range dates {
		days[i] = CalendarDay{Date: d, WeeklyOff: d.IsWeeklyOff()}
	}
	return days, nil
}

// =============================================================================
// DAY GROUPER
// =============================================================================

// normalizedPunch is a punch with its parsed clock time. The source Punch
// is copied, never referenced.
type normalizedPunch struct {
	At    ClockTime
	In    bool
	Issue string
}

type grouping struct {
	byDate     map[string][]normalizedPunch
	advisories []string
}

// groupPunches normalizes the punches inside p and buckets them by their own
// date. Within a date punches are stably sorted by time, so ties keep input
// order. Punches tagged with another worker's id are dropped.
func groupPunches(punches []Punch, p Period, workerID string) grouping {
	g := grouping{byDate: make(map[string][]normalizedPunch)}
	outside, foreign := 0, 0

	for _, punch := range punches {
		if workerID != "" && punch.WorkerID != "" && punch.WorkerID != workerID {
			foreign++
			continue
		}
		if !p.Contains(punch.Date) {
			outside++
			continue
		}
		np := normalizedPunch{In: punch.IsPresenceIn}
		at, err := ParseClockTime(punch.TimeText)
		if err != nil {
			np.Issue = fmt.Sprintf("unparsable time %q treated as 12:00 AM", punch.TimeText)
		} else {
			np.At = at
		}
		key := punch.Date.String()
		g.byDate[key] = append(g.byDate[key], np)
	}

	for _, day := range g.byDate {
		sort.SliceStable(day, func(i, j int) bool { return day[i].At < day[j].At })
	}

	if outside > 0 {
		g.advisories = append(g.advisories, fmt.Sprintf("%d punch(es) outside %s ignored", outside, p))
	}
	if foreign > 0 {
		g.advisories = append(g.advisories, fmt.Sprintf("%d punch(es) for another worker ignored", foreign))
	}
	return g
}
