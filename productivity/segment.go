package productivity

import "fmt"

// =============================================================================
// SEGMENT CALCULATOR
// =============================================================================

type workResult struct {
	workedSeconds   int
	overtimeSeconds int
	segments        []Segment
	issues          []string
}

type punchPair struct {
	in, out ClockTime
}

// pairPunches pairs each IN with the next later OUT. A repeated IN keeps the
// earliest open IN; an OUT with nothing open is ignored.
//
// If the flags produce no pair although the day has two or more punches and
// at least one IN, the tagging is treated as unreliable and punches are
// paired by position (even index = IN, odd = OUT). dangling is the index of
// an IN left without an OUT, or -1.
func pairPunches(day []normalizedPunch) (pairs []punchPair, positional bool, dangling int) {
	open := -1
	hasIn := false
	for i, p := range day {
		if p.In {
			hasIn = true
			if open < 0 {
				open = i
			}
			continue
		}
		if open >= 0 {
			pairs = append(pairs, punchPair{in: day[open].At, out: p.At})
			open = -1
		}
	}
	dangling = open

	if len(pairs) == 0 && len(day) >= 2 && hasIn {
		for i := 0; i+1 < len(day); i += 2 {
			pairs = append(pairs, punchPair{in: day[i].At, out: day[i+1].At})
		}
		if len(day)%2 == 1 {
			return pairs, true, len(day) - 1
		}
		return pairs, true, -1
	}
	return pairs, false, dangling
}

// calculateWork sums the chargeable seconds of a day's segments. Each segment
// is clipped to the work window (open-ended after WorkStart when overtime is
// considered) and loses its overlap with every unpaid lunch/break window.
func calculateWork(day []normalizedPunch, s *ResolvedSchedule) workResult {
	var res workResult

	pairs, positional, dangling := pairPunches(day)
	if positional {
		res.issues = append(res.issues, "presence flags inconsistent, punches paired by position")
	}
	if dangling >= 0 {
		res.issues = append(res.issues, fmt.Sprintf("IN at %s has no matching OUT", day[dangling].At))
	}

	clipEnd := s.WorkEnd
	if s.ConsiderOvertime {
		clipEnd = ClockTime(secondsPerDay)
	}
	unpaid := s.unpaid()

	for _, p := range pairs {
		in := max(p.in, s.WorkStart)
		out := min(p.out, clipEnd)
		if out <= in {
			continue
		}

		worked := int(out - in)
		for _, w := range unpaid {
			worked -= overlap(in, out, w.Start, w.End)
		}
		worked = max(worked, 0)

		if s.ConsiderOvertime {
			res.overtimeSeconds += overlap(in, out, s.WorkEnd, ClockTime(secondsPerDay))
		}
		res.workedSeconds += worked
		res.segments = append(res.segments, Segment{In: p.in, Out: p.out, WorkedSeconds: worked})
	}

	if !s.ConsiderOvertime && res.workedSeconds > s.standardSeconds() {
		res.issues = append(res.issues, fmt.Sprintf("worked time capped at %d standard minutes", s.StandardWorkingMinutes))
		res.workedSeconds = s.standardSeconds()
	}
	return res
}
