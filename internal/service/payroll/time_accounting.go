package payroll

import (
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// TimeAccountingPolicy converts attendance into gross salary.
type TimeAccountingPolicy struct {
	StandardDays          int
	StandardHoursPerShift int
	OvertimeMultiplier    decimal.Decimal
}

func DefaultTimeAccountingPolicy() TimeAccountingPolicy {
	return TimeAccountingPolicy{
		StandardDays:          20,
		StandardHoursPerShift: 8,
		OvertimeMultiplier:    decimal.NewFromFloat(1.5),
	}
}

// StandardHours is the monthly hour count that earns the full base salary.
func (p TimeAccountingPolicy) StandardHours() decimal.Decimal {
	return decimal.NewFromInt(int64(p.StandardDays * p.StandardHoursPerShift))
}

// HourlyRate is baseSalary spread over the standard month.
func (p TimeAccountingPolicy) HourlyRate(baseSalary decimal.Decimal) decimal.Decimal {
	return baseSalary.Div(p.StandardHours())
}

// ComputeGrossSalary returns the gross salary breakdown for one period.
//
// No records means full attendance and gross equals baseSalary. Records
// without recorded hours (open shifts) are ignored. Each shift counts up to
// StandardHoursPerShift as regular time and the remainder as overtime.
// Once regular hours reach the standard month the regular component is the
// base salary itself, otherwise it is paid per hour.
func (p TimeAccountingPolicy) ComputeGrossSalary(baseSalary decimal.Decimal, records []attendance.Attendance) payroll.GrossBreakdown {
	hourlyRate := p.HourlyRate(baseSalary)

	if len(records) == 0 {
		return payroll.GrossBreakdown{
			BaseSalary:     baseSalary,
			HourlyRate:     hourlyRate.Round(2),
			RegularHours:   decimal.Zero,
			OvertimeHours:  decimal.Zero,
			RegularPay:     baseSalary,
			OvertimePay:    decimal.Zero,
			Gross:          baseSalary,
			FullAttendance: true,
		}
	}

	shift := decimal.NewFromInt(int64(p.StandardHoursPerShift))
	regularHours := decimal.Zero
	overtimeHours := decimal.Zero

	for _, r := range records {
		if !r.HasRecordedHours() {
			continue
		}
		if r.HoursWorked.LessThanOrEqual(shift) {
			regularHours = regularHours.Add(r.HoursWorked)
			continue
		}
		regularHours = regularHours.Add(shift)
		overtimeHours = overtimeHours.Add(r.HoursWorked.Sub(shift))
	}

	overtimePay := overtimeHours.Mul(hourlyRate).Mul(p.OvertimeMultiplier).Round(2)

	fullAttendance := regularHours.GreaterThanOrEqual(p.StandardHours())
	regularPay := regularHours.Mul(hourlyRate).Round(2)
	if fullAttendance {
		regularPay = baseSalary
	}

	return payroll.GrossBreakdown{
		BaseSalary:     baseSalary,
		HourlyRate:     hourlyRate.Round(2),
		RegularHours:   regularHours,
		OvertimeHours:  overtimeHours,
		RegularPay:     regularPay,
		OvertimePay:    overtimePay,
		Gross:          regularPay.Add(overtimePay),
		FullAttendance: fullAttendance,
	}
}
