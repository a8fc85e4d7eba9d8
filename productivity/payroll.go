/*
payroll.go - Salary proration and deductions

PRORATION POLICY (the only one):
  PerDaySalary  = salary / WorkingDaysInPeriod        (0 when no working days)
  PerMinuteRate = PerDaySalary / StandardWorkingMinutes (0 when no minutes)

DEDUCTIONS:
  AbsentDeduction     = AbsentDays x PerDaySalary
  PermissionDeduction = chargeable minutes x PerMinuteRate
                        or, with a per-block amount configured,
                        started grace-sized blocks x amount
  FinalSalary         = max(0, salary - AbsentDeduction - PermissionDeduction)

ROUNDING:
  Rates keep full precision. Deductions are rounded to 2 places before the
  final salary is derived from them, so the summary adds up to the cent.
*/
package productivity

import (
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

type payrollInput struct {
	salary          decimal.Decimal
	workingDays     int
	absentDays      int
	standardMinutes int

	chargeableSeconds int
	excessBlocks      int
	perBlock          decimal.Decimal

	deduct bool
}

// Payroll is the monetary part of a report.
type Payroll struct {
	OriginalSalary      decimal.Decimal
	PerDaySalary        decimal.Decimal
	PerMinuteRate       decimal.Decimal
	AbsentDeduction     decimal.Decimal
	PermissionDeduction decimal.Decimal
	FinalSalary         decimal.Decimal
}

func aggregatePayroll(in payrollInput) Payroll {
	p := Payroll{
		OriginalSalary:      in.salary,
		PerDaySalary:        decimal.Zero,
		PerMinuteRate:       decimal.Zero,
		AbsentDeduction:     decimal.Zero,
		PermissionDeduction: decimal.Zero,
	}
	if in.workingDays > 0 {
		p.PerDaySalary = in.salary.Div(decimal.NewFromInt(int64(in.workingDays)))
	}
	if in.standardMinutes > 0 {
		p.PerMinuteRate = p.PerDaySalary.Div(decimal.NewFromInt(int64(in.standardMinutes)))
	}

	if in.deduct {
		p.AbsentDeduction = roundMoney(p.PerDaySalary.Mul(decimal.NewFromInt(int64(in.absentDays))))
		if in.perBlock.IsPositive() {
			p.PermissionDeduction = roundMoney(in.perBlock.Mul(decimal.NewFromInt(int64(in.excessBlocks))))
		} else {
			p.PermissionDeduction = roundMoney(minutesOf(in.chargeableSeconds).Mul(p.PerMinuteRate))
		}
	}

	p.FinalSalary = decimal.Max(decimal.Zero, in.salary.Sub(p.AbsentDeduction).Sub(p.PermissionDeduction))
	return p
}

// dayPermissionCharge is the deduction shown on a single present day.
func (p Payroll) dayPermissionCharge(chargeableSeconds, blocks int, perBlock decimal.Decimal) decimal.Decimal {
	if perBlock.IsPositive() {
		return roundMoney(perBlock.Mul(decimal.NewFromInt(int64(blocks))))
	}
	return roundMoney(minutesOf(chargeableSeconds).Mul(p.PerMinuteRate))
}

// excessBlocks counts started grace-sized blocks of chargeable time. Without a
// grace allowance every chargeable minute is its own block.
func excessBlocks(chargeableSeconds, graceMinutes int) int {
	if chargeableSeconds <= 0 {
		return 0
	}
	block := max(graceMinutes, 1) * secondsPerMinute
	return (chargeableSeconds + block - 1) / block
}

func roundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(moneyPlaces) }
