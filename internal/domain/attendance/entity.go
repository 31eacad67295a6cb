package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attendance is one clock-in/clock-out record for an employee on a date.
// ClockOut is nil while the shift is open; HoursWorked stays zero until then.
type Attendance struct {
	ID          string
	EmployeeID  string
	CompanyID   string
	Date        time.Time
	ClockIn     time.Time
	ClockOut    *time.Time
	HoursWorked decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOpen reports whether the shift has no exit time yet.
func (a Attendance) IsOpen() bool {
	return a.ClockOut == nil
}

// HasRecordedHours reports whether the record carries worked hours usable by payroll.
func (a Attendance) HasRecordedHours() bool {
	return a.ClockOut != nil && a.HoursWorked.IsPositive()
}

// Close sets the exit time once and derives the worked hours, rounded to
// hundredths of an hour.
func (a *Attendance) Close(at time.Time) error {
	if a.ClockOut != nil {
		return ErrAlreadyCheckedOut
	}
	if at.Before(a.ClockIn) {
		return ErrClockOutBeforeClockIn
	}

	minutes := decimal.NewFromInt(int64(at.Sub(a.ClockIn) / time.Minute))
	a.ClockOut = &at
	a.HoursWorked = minutes.Div(decimal.NewFromInt(60)).Round(2)
	return nil
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
