package attendance

import (
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type MyAttendanceFilter struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	start, startOK := validator.IsValidDate(f.StartDate)
	if !startOK {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be in YYYY-MM-DD format"})
	}
	end, endOK := validator.IsValidDate(f.EndDate)
	if !endOK {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be in YYYY-MM-DD format"})
	}
	if startOK && endOK && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: ErrInvalidDateRange.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Date        string          `json:"date"`
	ClockIn     string          `json:"clock_in"`
	ClockOut    *string         `json:"clock_out,omitempty"`
	HoursWorked decimal.Decimal `json:"hours_worked"`
}
