package productivity

import (
	"github.com/shopspring/decimal"
)

// Compute builds the productivity report for one worker over one period.
//
// punches must belong to the worker (punches tagged with another WorkerID are
// dropped). Neither punches nor schedule are modified. Only an inverted
// period or an unusable schedule return an error; every other input problem
// is reported as an issue or advisory on the returned report.
func Compute(punches []Punch, period Period, schedule ScheduleConfig, worker Worker) (*Report, error) {
	calendar, err := ExpandCalendar(period)
	if err != nil {
		return nil, err
	}
	sched, err := ResolveSchedule(schedule)
	if err != nil {
		return nil, err
	}

	grouped := groupPunches(punches, period, worker.ID)
	salary, salaryAdvisory := resolveSalary(worker)

	summary := Summary{
		TotalCalendarDays:      len(calendar),
		StandardWorkingMinutes: sched.StandardWorkingMinutes,
		Advisories:             grouped.advisories,
	}
	if salaryAdvisory != "" {
		summary.Advisories = append(summary.Advisories, salaryAdvisory)
	}
	if !sched.DeductSalary {
		summary.Advisories = append(summary.Advisories, "salary deduction disabled, deductions not applied")
	}

	days := make([]DayOutcome, len(calendar))
	charges := make([]dayCharge, len(calendar))
	var (
		workedSeconds, overtimeSeconds, chargeableSeconds int
		blocks, punctualityChecks                         int
	)

	for i, cd := range calendar {
		dayPunches := grouped.byDate[cd.Date.String()]
		out := DayOutcome{Date: cd.Date, Deduction: decimal.Zero}

		switch {
		case cd.WeeklyOff:
			out.Status = StatusWeeklyOff
			summary.WeeklyOffDays++
			if len(dayPunches) > 0 {
				out.Presence = readOnlyPresence(dayPunches)
				out.Issues = append(punchIssues(dayPunches), "punches on weekly off are not counted")
			}

		case len(dayPunches) == 0:
			out.Status = StatusAbsent
			summary.AbsentDays++
			charges[i] = dayCharge{absent: true}

		default:
			out.Status = StatusPresent
			summary.PresentDays++

			work := calculateWork(dayPunches, sched)
			perm := assessPermission(dayPunches, sched)

			out.Presence = &Presence{
				FirstIn:             dayPunches[0].At,
				LastOut:             dayPunches[len(dayPunches)-1].At,
				PunchCount:          len(dayPunches),
				Segments:            work.segments,
				WorkedMinutes:       minutesOf(work.workedSeconds),
				OvertimeMinutes:     minutesOf(work.overtimeSeconds),
				LateMinutes:         minutesOf(perm.lateSeconds),
				EarlyLeaveMinutes:   minutesOf(perm.earlySeconds),
				PermissionMinutes:   minutesOf(perm.chargeableSeconds()),
				ProductivityPercent: percent(work.workedSeconds, sched.standardSeconds()),
			}
			out.Issues = append(punchIssues(dayPunches), work.issues...)
			out.Issues = append(out.Issues, perm.issues...)

			workedSeconds += work.workedSeconds
			overtimeSeconds += work.overtimeSeconds
			chargeableSeconds += perm.chargeableSeconds()
			summary.PunctualityViolations += perm.violations
			punctualityChecks++
			if perm.earlyLeaveChecked {
				punctualityChecks++
			}

			dayBlocks := excessBlocks(perm.chargeableLate, sched.GraceMinutes) +
				excessBlocks(perm.chargeableEarly, sched.GraceMinutes)
			blocks += dayBlocks
			charges[i] = dayCharge{chargeableSeconds: perm.chargeableSeconds(), blocks: dayBlocks}
		}
		days[i] = out
	}

	summary.WorkingDaysInPeriod = summary.TotalCalendarDays - summary.WeeklyOffDays

	pay := aggregatePayroll(payrollInput{
		salary:            salary,
		workingDays:       summary.WorkingDaysInPeriod,
		absentDays:        summary.AbsentDays,
		standardMinutes:   sched.StandardWorkingMinutes,
		chargeableSeconds: chargeableSeconds,
		excessBlocks:      blocks,
		perBlock:          sched.DeductionPerBlock,
		deduct:            sched.DeductSalary,
	})

	if sched.DeductSalary {
		for i, c := range charges {
			switch {
			case c.absent:
				days[i].Deduction = roundMoney(pay.PerDaySalary)
			case c.chargeableSeconds > 0:
				days[i].Deduction = pay.dayPermissionCharge(c.chargeableSeconds, c.blocks, sched.DeductionPerBlock)
			}
		}
	}

	possibleSeconds := summary.WorkingDaysInPeriod * sched.standardSeconds()
	summary.TotalWorkedMinutes = minutesOf(workedSeconds)
	summary.TotalOvertimeMinutes = minutesOf(overtimeSeconds)
	summary.TotalPermissionMinutes = minutesOf(chargeableSeconds)
	summary.TotalPossibleMinutes = minutesOf(possibleSeconds)
	summary.OverallProductivityPercent = percent(workedSeconds, possibleSeconds)
	summary.AverageDailyWorkedMinutes = decimal.Zero
	summary.AverageDailyPermissionMinutes = decimal.Zero
	if summary.PresentDays > 0 {
		n := decimal.NewFromInt(int64(summary.PresentDays))
		summary.AverageDailyWorkedMinutes = summary.TotalWorkedMinutes.Div(n).Round(moneyPlaces)
		summary.AverageDailyPermissionMinutes = summary.TotalPermissionMinutes.Div(n).Round(moneyPlaces)
	}
	summary.PunctualityScore = 100
	if punctualityChecks > 0 {
		summary.PunctualityScore = percent(punctualityChecks-summary.PunctualityViolations, punctualityChecks)
	}

	summary.OriginalSalary = pay.OriginalSalary
	summary.PerDaySalary = pay.PerDaySalary
	summary.PerMinuteRate = pay.PerMinuteRate
	summary.AbsentDeduction = pay.AbsentDeduction
	summary.PermissionDeduction = pay.PermissionDeduction
	summary.FinalSalary = pay.FinalSalary

	return &Report{
		Worker:   worker,
		Period:   period,
		Schedule: *sched,
		Days:     days,
		Summary:  summary,
	}, nil
}

type dayCharge struct {
	absent            bool
	chargeableSeconds int
	blocks            int
}

func resolveSalary(w Worker) (decimal.Decimal, string) {
	if !w.Salary.Valid {
		return decimal.Zero, "worker salary missing, treated as 0"
	}
	if w.Salary.Decimal.IsNegative() {
		return decimal.Zero, "worker salary negative, treated as 0"
	}
	return w.Salary.Decimal, ""
}

func readOnlyPresence(day []normalizedPunch) *Presence {
	return &Presence{
		FirstIn:           day[0].At,
		LastOut:           day[len(day)-1].At,
		PunchCount:        len(day),
		WorkedMinutes:     decimal.Zero,
		OvertimeMinutes:   decimal.Zero,
		LateMinutes:       decimal.Zero,
		EarlyLeaveMinutes: decimal.Zero,
		PermissionMinutes: decimal.Zero,
	}
}

func punchIssues(day []normalizedPunch) []string {
	var issues []string
	for _, p := range day {
		if p.Issue != "" {
			issues = append(issues, p.Issue)
		}
	}
	return issues
}

// percent returns round(part/whole*100), or 0 for an empty whole.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(0).
		IntPart())
}
