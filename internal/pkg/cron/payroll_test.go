package cron

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/lock"
	"github.com/cmlabs-hris/payroll-settlement/internal/repository/memory"
	payrollService "github.com/cmlabs-hris/payroll-settlement/internal/service/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayrollJobs_GeneratePreviousPeriod(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	salary := decimal.NewFromInt(900000)

	seed := []employee.Employee{
		{ID: "a-1", CompanyID: "company-a", FullName: "Ana", BaseSalary: &salary},
		{ID: "a-2", CompanyID: "company-a", FullName: "Bruno"},
		{ID: "b-1", CompanyID: "company-b", FullName: "Carla", BaseSalary: &salary},
		{ID: "b-2", CompanyID: "company-b", FullName: "Diego", BaseSalary: &salary, EmploymentStatus: employee.EmploymentStatusResigned},
	}
	for _, e := range seed {
		_, err := store.SaveEmployee(ctx, e)
		require.NoError(t, err)
	}

	employeeRepo := memory.NewEmployeeRepository(store)
	svc := payrollService.NewPayrollService(
		store,
		memory.NewPayrollRepository(store),
		employeeRepo,
		memory.NewAttendanceRepository(store),
		lock.NewLocalLocker(),
		payrollService.DefaultConfig(),
	)

	jobs := NewPayrollJobs(employeeRepo, svc)
	jobs.now = func() time.Time { return time.Date(2024, 1, 3, 1, 0, 0, 0, time.UTC) }

	scheduler := NewScheduler()
	jobs.RegisterJobs(scheduler, time.Hour)
	require.NoError(t, scheduler.RunOnce(ctx))

	// Second run only finds existing settlements.
	require.NoError(t, scheduler.RunOnce(ctx))

	month, year := 12, 2023
	for companyID, want := range map[string]int{"company-a": 1, "company-b": 1} {
		viewer := jwt.ContextWithActor(ctx, user.Actor{UserID: "viewer", CompanyID: companyID, Role: user.RoleOwner})
		list, err := svc.ListSettlements(viewer, payroll.SettlementFilter{PeriodMonth: &month, PeriodYear: &year})
		require.NoError(t, err)
		assert.Len(t, list.Data, want, companyID)
		for _, s := range list.Data {
			assert.Equal(t, string(payroll.SettlementStatusPending), s.Status)
			assert.True(t, salary.Equal(s.GrossSalary))
		}
	}
}
