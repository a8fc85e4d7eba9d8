package productivity

import "fmt"

// =============================================================================
// PERMISSION POLICY
// =============================================================================

// permissionResult holds one day's late-arrival and early-departure figures.
// Raw values are clamped to the work window length so a single stray punch far
// outside the window cannot be charged more than a full day.
type permissionResult struct {
	lateSeconds       int
	earlySeconds      int
	chargeableLate    int
	chargeableEarly   int
	violations        int
	earlyLeaveChecked bool
	issues            []string
}

func (r permissionResult) chargeableSeconds() int { return r.chargeableLate + r.chargeableEarly }

// assessPermission measures lateness from the first punch and early departure
// from the last punch of a sorted day. Early departure needs at least two
// punches. Grace is applied once per event type; only minutes beyond it are
// chargeable, and each chargeable event is one punctuality violation.
func assessPermission(day []normalizedPunch, s *ResolvedSchedule) permissionResult {
	var res permissionResult
	if len(day) == 0 {
		return res
	}
	window := s.WindowSeconds()
	grace := s.graceSeconds()

	first := day[0].At
	res.lateSeconds = min(max(int(first-s.WorkStart), 0), window)
	if res.lateSeconds > 0 {
		res.chargeableLate = res.charge("late arrival", res.lateSeconds, grace)
	}

	if len(day) > 1 {
		res.earlyLeaveChecked = true
		last := day[len(day)-1].At
		res.earlySeconds = min(max(int(s.WorkEnd-last), 0), window)
		if res.earlySeconds > 0 {
			res.chargeableEarly = res.charge("early departure", res.earlySeconds, grace)
		}
	}
	return res
}

func (r *permissionResult) charge(event string, seconds, grace int) int {
	if seconds <= grace {
		r.issues = append(r.issues, fmt.Sprintf("%s %s min within %s min grace", event, formatMinutes(seconds), formatMinutes(grace)))
		return 0
	}
	chargeable := seconds - grace
	r.violations++
	r.issues = append(r.issues, fmt.Sprintf("%s %s min, %s min chargeable", event, formatMinutes(seconds), formatMinutes(chargeable)))
	return chargeable
}
