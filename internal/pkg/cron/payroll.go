package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
	payrollService "github.com/cmlabs-hris/payroll-settlement/internal/service/payroll"
)

const systemUserID = "system:payroll-scheduler"

type PayrollJobs struct {
	employeeRepo   employee.EmployeeRepository
	payrollService payroll.PayrollService
	now            func() time.Time
}

func NewPayrollJobs(employeeRepo employee.EmployeeRepository, payrollService payroll.PayrollService) *PayrollJobs {
	return &PayrollJobs{
		employeeRepo:   employeeRepo,
		payrollService: payrollService,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("generate_previous_period_settlements", interval, j.GeneratePreviousPeriod)
}

// GeneratePreviousPeriod creates pending settlements for last month for every
// active employee of every company. Existing settlements are skipped.
func (j *PayrollJobs) GeneratePreviousPeriod(ctx context.Context) error {
	companyIDs, err := j.employeeRepo.GetActiveCompanyIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	prev := payrollService.PreviousPeriod(j.now())
	req := payroll.GenerateForPeriodRequest{
		PeriodMonth: prev.Month,
		PeriodYear:  prev.Year,
	}

	slog.Info("Cron: Generating settlements", "period_month", req.PeriodMonth, "period_year", req.PeriodYear, "companies", len(companyIDs))

	var errs []error
	for _, companyID := range companyIDs {
		if err := ctx.Err(); err != nil {
			return err
		}

		companyCtx := jwt.ContextWithActor(ctx, user.Actor{
			UserID:    systemUserID,
			CompanyID: companyID,
			Role:      user.RoleSystem,
		})

		result, err := j.payrollService.GenerateForPeriod(companyCtx, req)
		if err != nil {
			slog.Error("Cron: Settlement generation failed", "company_id", companyID, "error", err)
			errs = append(errs, fmt.Errorf("company %s: %w", companyID, err))
			continue
		}

		slog.Info("Cron: Settlements generated",
			"company_id", companyID,
			"created", len(result.Created),
			"skipped", len(result.Skipped),
		)
	}

	return errors.Join(errs...)
}
