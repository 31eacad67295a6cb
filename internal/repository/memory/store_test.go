package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const companyID = "company-1"

func newSettlement(employeeID string, month, year int) payroll.Settlement {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return payroll.Settlement{
		EmployeeID:  employeeID,
		CompanyID:   companyID,
		Period:      payroll.Period{Month: month, Year: year, Start: start, End: start.AddDate(0, 1, -1)},
		Status:      payroll.SettlementStatusPending,
		GrossSalary: decimal.NewFromInt(1000),
		NetSalary:   decimal.NewFromInt(830),
		CreatedAt:   time.Now().UTC(),
	}
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPayrollRepository(store)

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		created, err := repo.CreateSettlement(ctx, newSettlement("e-1", 3, 2024))
		require.NoError(t, err)
		_, err = repo.CreateDeductions(ctx, []payroll.Deduction{{SettlementID: created.ID, Concept: payroll.ConceptPension, Amount: decimal.NewFromInt(100)}})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetActiveSettlementByEmployeePeriod(ctx, "e-1", 3, 2024, companyID)
	assert.ErrorIs(t, err, payroll.ErrSettlementNotFound)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPayrollRepository(store)

	var id string
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		created, err := repo.CreateSettlement(ctx, newSettlement("e-1", 3, 2024))
		id = created.ID
		return err
	})
	require.NoError(t, err)

	got, err := repo.GetSettlementByID(ctx, id, companyID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCreateSettlement_ActiveUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewPayrollRepository(store)

	first, err := repo.CreateSettlement(ctx, newSettlement("e-1", 6, 2024))
	require.NoError(t, err)

	_, err = repo.CreateSettlement(ctx, newSettlement("e-1", 6, 2024))
	var dup *payroll.DuplicateSettlementError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingID)

	// A rejected settlement frees the period.
	rejected := first
	reason := "wrong hours"
	now := time.Now().UTC()
	rejected.Status = payroll.SettlementStatusRejected
	rejected.RejectionReason = &reason
	rejected.RejectedAt = &now
	_, err = repo.UpdateSettlementStatus(ctx, rejected, first.Version)
	require.NoError(t, err)

	_, err = repo.CreateSettlement(ctx, newSettlement("e-1", 6, 2024))
	assert.NoError(t, err)
}

func TestUpdateSettlementStatus_StaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository(NewStore())

	created, err := repo.CreateSettlement(ctx, newSettlement("e-1", 1, 2024))
	require.NoError(t, err)

	approved := created
	approved.Status = payroll.SettlementStatusApproved
	updated, err := repo.UpdateSettlementStatus(ctx, approved, created.Version)
	require.NoError(t, err)
	assert.Equal(t, created.Version+1, updated.Version)

	_, err = repo.UpdateSettlementStatus(ctx, approved, created.Version)
	assert.ErrorIs(t, err, payroll.ErrConcurrentModification)
}

func TestGetSettlementByID_OtherCompany(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository(NewStore())

	created, err := repo.CreateSettlement(ctx, newSettlement("e-1", 1, 2024))
	require.NoError(t, err)

	_, err = repo.GetSettlementByID(ctx, created.ID, "company-2")
	assert.ErrorIs(t, err, payroll.ErrSettlementNotFound)
}

func TestListSettlements_FilterAndPaginate(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository(NewStore())

	for month := 1; month <= 5; month++ {
		_, err := repo.CreateSettlement(ctx, newSettlement("e-1", month, 2024))
		require.NoError(t, err)
	}
	_, err := repo.CreateSettlement(ctx, newSettlement("e-2", 5, 2024))
	require.NoError(t, err)

	page, total, err := repo.ListSettlements(ctx, companyID, payroll.SettlementFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, page, 2)
	assert.Equal(t, 5, page[0].Period.Month)

	month := 5
	filtered, total, err := repo.ListSettlements(ctx, companyID, payroll.SettlementFilter{PeriodMonth: &month, Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, filtered, 2)

	empty, _, err := repo.ListSettlements(ctx, companyID, payroll.SettlementFilter{Page: 10, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetPeriodSummary_SkipsRejectedTotals(t *testing.T) {
	ctx := context.Background()
	repo := NewPayrollRepository(NewStore())

	first, err := repo.CreateSettlement(ctx, newSettlement("e-1", 2, 2024))
	require.NoError(t, err)
	_, err = repo.CreateSettlement(ctx, newSettlement("e-2", 2, 2024))
	require.NoError(t, err)

	first.Status = payroll.SettlementStatusRejected
	_, err = repo.UpdateSettlementStatus(ctx, first, first.Version)
	require.NoError(t, err)

	summary, err := repo.GetPeriodSummary(ctx, companyID, 2, 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSettlements)
	assert.Equal(t, 1, summary.RejectedCount)
	assert.Equal(t, 1, summary.PendingCount)
	assert.True(t, decimal.NewFromInt(1000).Equal(summary.TotalGrossSalary))
	assert.True(t, decimal.NewFromInt(830).Equal(summary.TotalNetSalary))
}

func TestAttendance_OneOpenRecordPerDay(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(NewStore())

	clockIn := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	open := attendance.Attendance{EmployeeID: "e-1", CompanyID: companyID, Date: attendance.DateOf(clockIn), ClockIn: clockIn}

	created, err := repo.Create(ctx, open)
	require.NoError(t, err)

	_, err = repo.Create(ctx, open)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	session, err := repo.GetOpenSession(ctx, "e-1", companyID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.ID)

	require.NoError(t, session.Close(clockIn.Add(8*time.Hour)))
	require.NoError(t, repo.Close(ctx, session))
	assert.ErrorIs(t, repo.Close(ctx, session), attendance.ErrAlreadyCheckedOut)

	_, err = repo.GetOpenSession(ctx, "e-1", companyID)
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	records, err := repo.ListByEmployeePeriod(ctx, "e-1",
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), companyID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, decimal.NewFromInt(8).Equal(records[0].HoursWorked))
}

func TestEmployees_ActiveLookups(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := NewEmployeeRepository(store)
	salary := decimal.NewFromInt(900000)

	_, err := store.SaveEmployee(ctx, employee.Employee{ID: "e-2", CompanyID: companyID, FullName: "Bea", BaseSalary: &salary})
	require.NoError(t, err)
	_, err = store.SaveEmployee(ctx, employee.Employee{ID: "e-1", CompanyID: companyID, FullName: "Ana", BaseSalary: &salary})
	require.NoError(t, err)
	_, err = store.SaveEmployee(ctx, employee.Employee{ID: "e-3", CompanyID: "company-2", FullName: "Cid", EmploymentStatus: employee.EmploymentStatusResigned})
	require.NoError(t, err)

	active, err := repo.GetActiveByCompanyID(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Ana", active[0].FullName)

	companies, err := repo.GetActiveCompanyIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{companyID}, companies)

	_, err = repo.GetByID(ctx, "e-1", "company-2")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
