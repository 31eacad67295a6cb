package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/lock"
)

// Config carries the calculation parameters of the engine.
type Config struct {
	Policy TimeAccountingPolicy
	Rates  DeductionRates
	// Now defaults to time.Now in UTC.
	Now func() time.Time
}

func DefaultConfig() Config {
	return Config{
		Policy: DefaultTimeAccountingPolicy(),
		Rates:  DefaultDeductionRates(),
	}
}

type PayrollServiceImpl struct {
	tx             payroll.Transactor
	payrollRepo    payroll.PayrollRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	locker         lock.Locker
	cfg            Config
}

func NewPayrollService(
	tx payroll.Transactor,
	payrollRepo payroll.PayrollRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	locker lock.Locker,
	cfg Config,
) payroll.PayrollService {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &PayrollServiceImpl{
		tx:             tx,
		payrollRepo:    payrollRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		locker:         locker,
		cfg:            cfg,
	}
}

func authorize(ctx context.Context, permission user.Permission) (user.Actor, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return user.Actor{}, err
	}
	if !actor.Can(permission) {
		return user.Actor{}, fmt.Errorf("%w: role %q lacks %s", payroll.ErrForbiddenAction, actor.Role, permission)
	}
	return actor, nil
}

// persistenceFailure leaves typed domain errors untouched and tags anything
// else that aborted a unit of work as a PersistenceError.
func persistenceFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	if payroll.IsClientError(err) || payroll.IsNotFound(err) || payroll.IsConflict(err) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &payroll.PersistenceError{Op: op, Err: err}
}

// ========== GENERATION ==========

func (s *PayrollServiceImpl) GenerateSettlement(ctx context.Context, req payroll.GenerateSettlementRequest) (payroll.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettlementResponse{}, err
	}

	period, err := ResolvePeriod(req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollGenerate)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	settlement, err := s.generateLocked(ctx, actor.CompanyID, req.EmployeeID, period)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	return mapToSettlementResponse(settlement), nil
}

func (s *PayrollServiceImpl) GenerateForPeriod(ctx context.Context, req payroll.GenerateForPeriodRequest) (payroll.GenerateForPeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateForPeriodResponse{}, err
	}

	period, err := ResolvePeriod(req.PeriodMonth, req.PeriodYear)
	if err != nil {
		return payroll.GenerateForPeriodResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollGenerate)
	if err != nil {
		return payroll.GenerateForPeriodResponse{}, err
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		employees, err := s.employeeRepo.GetActiveByCompanyID(ctx, actor.CompanyID)
		if err != nil {
			return payroll.GenerateForPeriodResponse{}, persistenceFailure("list active employees", err)
		}
		for _, emp := range employees {
			employeeIDs = append(employeeIDs, emp.ID)
		}
	}

	result := payroll.GenerateForPeriodResponse{
		PeriodMonth: period.Month,
		PeriodYear:  period.Year,
		Created:     []payroll.SettlementResponse{},
		Skipped:     []payroll.SkippedEmployee{},
	}

	for _, employeeID := range employeeIDs {
		settlement, err := s.generateLocked(ctx, actor.CompanyID, employeeID, period)
		if err != nil {
			reason, skippable := skipReason(err)
			if !skippable {
				return payroll.GenerateForPeriodResponse{}, err
			}
			result.Skipped = append(result.Skipped, payroll.SkippedEmployee{EmployeeID: employeeID, Reason: reason})
			continue
		}
		result.Created = append(result.Created, mapToSettlementResponse(settlement))
	}

	slog.Info("Payroll: period generation finished",
		"company_id", actor.CompanyID,
		"period", period.Label(),
		"created", len(result.Created),
		"skipped", len(result.Skipped))

	return result, nil
}

func skipReason(err error) (string, bool) {
	switch {
	case errors.Is(err, payroll.ErrDuplicateSettlement):
		return "active settlement already exists", true
	case errors.Is(err, payroll.ErrEmployeeHasNoBaseSalary):
		return "employee has no base salary", true
	case errors.Is(err, employee.ErrEmployeeNotFound):
		return "employee not found", true
	case errors.Is(err, payroll.ErrSettlementLocked):
		return "generation already in progress", true
	case errors.Is(err, payroll.ErrNegativeNetSalary):
		return "net salary would be negative", true
	}
	return "", false
}

// generateLocked serializes generation per employee and period before the
// unique index has a chance to reject the loser.
func (s *PayrollServiceImpl) generateLocked(ctx context.Context, companyID, employeeID string, period payroll.Period) (payroll.Settlement, error) {
	release, err := s.locker.Obtain(ctx, generationLockKey(employeeID, period))
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return payroll.Settlement{}, payroll.ErrSettlementLocked
		}
		return payroll.Settlement{}, persistenceFailure("obtain generation lock", err)
	}
	defer release()

	return s.generate(ctx, companyID, employeeID, period)
}

func (s *PayrollServiceImpl) generate(ctx context.Context, companyID, employeeID string, period payroll.Period) (payroll.Settlement, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID, companyID)
	if err != nil {
		return payroll.Settlement{}, persistenceFailure("get employee", err)
	}
	if !emp.HasBaseSalary() {
		return payroll.Settlement{}, payroll.ErrEmployeeHasNoBaseSalary
	}

	var created payroll.Settlement
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.ensureNoActiveSettlement(ctx, employeeID, period, companyID); err != nil {
			return err
		}

		records, err := s.attendanceRepo.ListByEmployeePeriod(ctx, employeeID, period.Start, period.End, companyID)
		if err != nil {
			return fmt.Errorf("failed to list attendance: %w", err)
		}

		gross := s.cfg.Policy.ComputeGrossSalary(*emp.BaseSalary, records)
		deductions := s.cfg.Rates.ComputeStatutoryDeductions(gross.Gross)
		net := gross.Gross.Sub(deductions.Total)
		if net.IsNegative() {
			return payroll.ErrNegativeNetSalary
		}

		now := s.cfg.Now()
		created, err = s.payrollRepo.CreateSettlement(ctx, payroll.Settlement{
			EmployeeID:      employeeID,
			CompanyID:       companyID,
			Period:          period,
			Status:          payroll.SettlementStatusPending,
			BaseSalary:      gross.BaseSalary,
			RegularHours:    gross.RegularHours,
			OvertimeHours:   gross.OvertimeHours,
			RegularPay:      gross.RegularPay,
			OvertimePay:     gross.OvertimePay,
			GrossSalary:     gross.Gross,
			TotalDeductions: deductions.Total,
			NetSalary:       net,
			Version:         1,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
		if err != nil {
			return err
		}

		lines := make([]payroll.Deduction, 0, len(deductions.LineItems))
		for _, item := range deductions.LineItems {
			item.SettlementID = created.ID
			item.CreatedAt = now
			lines = append(lines, item)
		}
		if _, err := s.payrollRepo.CreateDeductions(ctx, lines); err != nil {
			return fmt.Errorf("failed to create deductions: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.Settlement{}, persistenceFailure("generate settlement", err)
	}

	created.EmployeeName = &emp.FullName

	slog.Info("Payroll: settlement generated",
		"settlement_id", created.ID,
		"employee_id", employeeID,
		"period", period.Label(),
		"gross_salary", created.GrossSalary.String(),
		"net_salary", created.NetSalary.String())

	return created, nil
}

// ========== TRANSITIONS ==========

func (s *PayrollServiceImpl) ApproveSettlement(ctx context.Context, id string) (payroll.SettlementResponse, error) {
	actor, err := authorize(ctx, user.PermissionPayrollApprove)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	now := s.cfg.Now()
	updated, err := s.transition(ctx, "approve settlement", id, actor.CompanyID, func(st *payroll.Settlement) error {
		return st.Approve(actor.UserID, now)
	})
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	slog.Info("Payroll: settlement approved", "settlement_id", updated.ID, "approved_by", actor.UserID)
	return mapToSettlementResponse(updated), nil
}

func (s *PayrollServiceImpl) RejectSettlement(ctx context.Context, req payroll.RejectSettlementRequest) (payroll.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.SettlementResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollApprove)
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	now := s.cfg.Now()
	updated, err := s.transition(ctx, "reject settlement", req.ID, actor.CompanyID, func(st *payroll.Settlement) error {
		return st.Reject(req.Reason, now)
	})
	if err != nil {
		return payroll.SettlementResponse{}, err
	}

	slog.Info("Payroll: settlement rejected", "settlement_id", updated.ID, "rejected_by", actor.UserID)
	return mapToSettlementResponse(updated), nil
}

func (s *PayrollServiceImpl) transition(ctx context.Context, op, id, companyID string, apply func(*payroll.Settlement) error) (payroll.Settlement, error) {
	var updated payroll.Settlement
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.payrollRepo.GetSettlementForUpdate(ctx, id, companyID)
		if err != nil {
			return err
		}
		updated, err = s.applyTransition(ctx, current, apply)
		return err
	})
	if err != nil {
		return payroll.Settlement{}, persistenceFailure(op, err)
	}
	return updated, nil
}

// applyTransition runs the guard on the locked row and writes it back under
// the version it was read with.
func (s *PayrollServiceImpl) applyTransition(ctx context.Context, current payroll.Settlement, apply func(*payroll.Settlement) error) (payroll.Settlement, error) {
	expectedVersion := current.Version
	if err := apply(&current); err != nil {
		return payroll.Settlement{}, err
	}
	current.UpdatedAt = s.cfg.Now()
	return s.payrollRepo.UpdateSettlementStatus(ctx, current, expectedVersion)
}

// ========== READ ACCESSORS ==========

func (s *PayrollServiceImpl) GetSettlement(ctx context.Context, id string) (payroll.SettlementDetailResponse, error) {
	actor, err := authorize(ctx, user.PermissionPayrollView)
	if err != nil {
		return payroll.SettlementDetailResponse{}, err
	}

	settlement, err := s.payrollRepo.GetSettlementByID(ctx, id, actor.CompanyID)
	if err != nil {
		return payroll.SettlementDetailResponse{}, persistenceFailure("get settlement", err)
	}

	deductions, err := s.payrollRepo.GetDeductionsBySettlementID(ctx, settlement.ID)
	if err != nil {
		return payroll.SettlementDetailResponse{}, persistenceFailure("get deductions", err)
	}

	detail := payroll.SettlementDetailResponse{
		Settlement: mapToSettlementResponse(settlement),
		Deductions: mapToDeductionResponses(deductions),
	}

	if settlement.Status != payroll.SettlementStatusPaid {
		return detail, nil
	}

	salary, err := s.payrollRepo.GetSalaryPaymentBySettlementID(ctx, settlement.ID)
	switch {
	case err == nil:
		resp := mapToSalaryPaymentResponse(salary)
		detail.SalaryPayment = &resp
	case !errors.Is(err, payroll.ErrSalaryPaymentNotFound):
		return payroll.SettlementDetailResponse{}, persistenceFailure("get salary payment", err)
	}

	provisional, err := s.payrollRepo.GetProvisionalPaymentBySettlementID(ctx, settlement.ID)
	switch {
	case err == nil:
		resp := mapToProvisionalPaymentResponse(provisional)
		detail.ProvisionalPayment = &resp
	case !errors.Is(err, payroll.ErrProvisionalPaymentNotFound):
		return payroll.SettlementDetailResponse{}, persistenceFailure("get provisional payment", err)
	}

	return detail, nil
}

func (s *PayrollServiceImpl) ListSettlements(ctx context.Context, filter payroll.SettlementFilter) (payroll.ListSettlementResponse, error) {
	if err := filter.Validate(); err != nil {
		return payroll.ListSettlementResponse{}, err
	}
	filter.Normalize()

	actor, err := authorize(ctx, user.PermissionPayrollView)
	if err != nil {
		return payroll.ListSettlementResponse{}, err
	}

	settlements, total, err := s.payrollRepo.ListSettlements(ctx, actor.CompanyID, filter)
	if err != nil {
		return payroll.ListSettlementResponse{}, persistenceFailure("list settlements", err)
	}

	return payroll.ListSettlementResponse{
		Data:       mapToSettlementResponses(settlements),
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}, nil
}

func (s *PayrollServiceImpl) GetPeriodSummary(ctx context.Context, month, year int) (payroll.PeriodSummaryResponse, error) {
	period, err := ResolvePeriod(month, year)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	actor, err := authorize(ctx, user.PermissionPayrollView)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, err
	}

	summary, err := s.payrollRepo.GetPeriodSummary(ctx, actor.CompanyID, period.Month, period.Year)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, persistenceFailure("get period summary", err)
	}
	return summary, nil
}
