package payroll

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func shifts(hours ...string) []attendance.Attendance {
	records := make([]attendance.Attendance, 0, len(hours))
	day := time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)
	for i, h := range hours {
		clockIn := day.AddDate(0, 0, i)
		clockOut := clockIn.Add(time.Hour)
		records = append(records, attendance.Attendance{
			EmployeeID:  "e-1",
			Date:        attendance.DateOf(clockIn),
			ClockIn:     clockIn,
			ClockOut:    &clockOut,
			HoursWorked: dec(h),
		})
	}
	return records
}

func repeat(h string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = h
	}
	return out
}

func TestComputeGrossSalary(t *testing.T) {
	policy := DefaultTimeAccountingPolicy()

	tests := []struct {
		name         string
		base         string
		records      []attendance.Attendance
		wantGross    string
		wantRegular  string
		wantOvertime string
		wantFull     bool
	}{
		{
			name:        "no records pays base salary",
			base:        "900000",
			records:     nil,
			wantGross:   "900000",
			wantRegular: "0", wantOvertime: "0",
			wantFull: true,
		},
		{
			name:        "full month of standard shifts",
			base:        "900000",
			records:     shifts(repeat("8", 20)...),
			wantGross:   "900000",
			wantRegular: "160", wantOvertime: "0",
			wantFull: true,
		},
		{
			name:        "half month paid per hour",
			base:        "900000",
			records:     shifts(repeat("8", 10)...),
			wantGross:   "450000",
			wantRegular: "80", wantOvertime: "0",
		},
		{
			name: "single long shift splits into overtime",
			base: "900000",
			// 8 * 5625 + 2 * 5625 * 1.5
			records:     shifts("10"),
			wantGross:   "61875",
			wantRegular: "8", wantOvertime: "2",
		},
		{
			name:        "full attendance keeps base and adds overtime",
			base:        "900000",
			records:     shifts(append(repeat("8", 19), "10")...),
			wantGross:   "916875",
			wantRegular: "160", wantOvertime: "2",
			wantFull: true,
		},
		{
			name:        "short shifts never produce overtime",
			base:        "800000",
			records:     shifts("4", "7.5", "8"),
			wantGross:   "97500",
			wantRegular: "19.5", wantOvertime: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.ComputeGrossSalary(dec(tt.base), tt.records)

			assert.True(t, dec(tt.wantGross).Equal(got.Gross), "gross: got %s", got.Gross)
			assert.True(t, dec(tt.wantRegular).Equal(got.RegularHours), "regular hours: got %s", got.RegularHours)
			assert.True(t, dec(tt.wantOvertime).Equal(got.OvertimeHours), "overtime hours: got %s", got.OvertimeHours)
			assert.Equal(t, tt.wantFull, got.FullAttendance)
			assert.True(t, got.Gross.Equal(got.RegularPay.Add(got.OvertimePay)))
		})
	}
}

func TestComputeGrossSalary_IgnoresOpenShifts(t *testing.T) {
	policy := DefaultTimeAccountingPolicy()
	records := shifts("8")
	records = append(records, attendance.Attendance{
		EmployeeID: "e-1",
		Date:       time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		ClockIn:    time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC),
	})

	got := policy.ComputeGrossSalary(dec("900000"), records)

	assert.True(t, dec("45000").Equal(got.Gross), "got %s", got.Gross)
}

func TestComputeGrossSalary_OvertimeFormula(t *testing.T) {
	policy := DefaultTimeAccountingPolicy()
	base := dec("1000000")
	rate := policy.HourlyRate(base)

	for _, h := range []string{"8.25", "9", "11.5", "12"} {
		got := policy.ComputeGrossSalary(base, shifts(h))
		want := dec(h).Sub(dec("8")).Mul(rate).Mul(dec("1.5")).Round(2)
		assert.True(t, want.Equal(got.OvertimePay), "hours %s: want %s got %s", h, want, got.OvertimePay)
	}
}

func TestComputeStatutoryDeductions(t *testing.T) {
	rates := DefaultDeductionRates()

	got := rates.ComputeStatutoryDeductions(dec("1000000"))

	assert.True(t, dec("100000").Equal(got.Pension))
	assert.True(t, dec("70000").Equal(got.Health))
	assert.True(t, dec("170000").Equal(got.Total))
	require.Len(t, got.LineItems, 2)
	assert.Equal(t, payroll.ConceptPension, got.LineItems[0].Concept)
	assert.Equal(t, payroll.ConceptHealth, got.LineItems[1].Concept)
}

func TestComputeStatutoryDeductions_LinesSumToTotal(t *testing.T) {
	rates := DefaultDeductionRates()

	for _, g := range []string{"0", "1234.56", "916875", "61875", "999999.99"} {
		got := rates.ComputeStatutoryDeductions(dec(g))
		sum := decimal.Zero
		for _, line := range got.LineItems {
			sum = sum.Add(line.Amount)
		}
		assert.True(t, got.Total.Equal(sum), "gross %s", g)
		assert.True(t, got.Total.Equal(got.Pension.Add(got.Health)), "gross %s", g)
	}
}

func TestComputeStatutoryDeductions_CustomRates(t *testing.T) {
	rates := DeductionRates{Pension: dec("0.12"), Health: dec("0.05")}

	got := rates.ComputeStatutoryDeductions(dec("500000"))

	assert.True(t, dec("60000").Equal(got.Pension))
	assert.True(t, dec("25000").Equal(got.Health))
}

func TestResolvePeriod(t *testing.T) {
	p, err := ResolvePeriod(2, 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), p.Start)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), p.End)
	assert.Equal(t, "02/2024", p.Label())

	_, err = ResolvePeriod(13, 2024)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)

	_, err = ResolvePeriod(0, 2024)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestPreviousPeriod(t *testing.T) {
	p := PreviousPeriod(time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, 12, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), p.End)
}
