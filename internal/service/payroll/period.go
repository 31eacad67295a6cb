package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
)

// ResolvePeriod returns the UTC calendar boundaries of month/year.
func ResolvePeriod(month, year int) (payroll.Period, error) {
	if month < 1 || month > 12 || year < 1 {
		return payroll.Period{}, fmt.Errorf("%w: %02d/%d", payroll.ErrInvalidPeriod, month, year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	return payroll.Period{Month: month, Year: year, Start: start, End: end}, nil
}

// PreviousPeriod returns the calendar month before the one containing t.
func PreviousPeriod(t time.Time) payroll.Period {
	first := time.Date(t.UTC().Year(), t.UTC().Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	period, _ := ResolvePeriod(int(first.Month()), first.Year())
	return period
}

func generationLockKey(employeeID string, period payroll.Period) string {
	return fmt.Sprintf("payroll:generate:%s:%04d-%02d", employeeID, period.Year, period.Month)
}

func (s *PayrollServiceImpl) ensureNoActiveSettlement(ctx context.Context, employeeID string, period payroll.Period, companyID string) error {
	existing, err := s.payrollRepo.GetActiveSettlementByEmployeePeriod(ctx, employeeID, period.Month, period.Year, companyID)
	if err == nil {
		return &payroll.DuplicateSettlementError{
			EmployeeID: employeeID,
			Month:      period.Month,
			Year:       period.Year,
			ExistingID: existing.ID,
		}
	}
	if errors.Is(err, payroll.ErrSettlementNotFound) {
		return nil
	}
	return err
}
