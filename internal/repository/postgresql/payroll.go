package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	constraintActivePeriod      = "uk_settlement_active_period"
	constraintOpenAttendanceDay = "uk_attendance_open_per_day"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && (constraint == "" || pgErr.ConstraintName == constraint)
}

// isUUID guards uuid columns so malformed ids read as not found instead of
// a cast error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

const settlementSelect = `
	SELECT s.id, s.employee_id, s.company_id, s.period_month, s.period_year, s.period_start, s.period_end,
		   s.status, s.base_salary, s.regular_hours, s.overtime_hours, s.regular_pay, s.overtime_pay,
		   s.gross_salary, s.total_deductions, s.net_salary,
		   s.approved_by, s.approved_at, s.rejection_reason, s.rejected_at, s.paid_at,
		   s.version, s.created_at, s.updated_at, e.full_name
	FROM settlements s
	JOIN employees e ON e.id = s.employee_id
`

func scanSettlement(row pgx.Row) (payroll.Settlement, error) {
	var s payroll.Settlement
	err := row.Scan(
		&s.ID, &s.EmployeeID, &s.CompanyID, &s.Period.Month, &s.Period.Year, &s.Period.Start, &s.Period.End,
		&s.Status, &s.BaseSalary, &s.RegularHours, &s.OvertimeHours, &s.RegularPay, &s.OvertimePay,
		&s.GrossSalary, &s.TotalDeductions, &s.NetSalary,
		&s.ApprovedBy, &s.ApprovedAt, &s.RejectionReason, &s.RejectedAt, &s.PaidAt,
		&s.Version, &s.CreatedAt, &s.UpdatedAt, &s.EmployeeName,
	)
	return s, err
}

// ========== SETTLEMENTS ==========

func (r *payrollRepository) CreateSettlement(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO settlements (
			employee_id, company_id, period_month, period_year, period_start, period_end, status,
			base_salary, regular_hours, overtime_hours, regular_pay, overtime_pay,
			gross_salary, total_deductions, net_salary, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, version, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		settlement.EmployeeID, settlement.CompanyID, settlement.Period.Month, settlement.Period.Year,
		settlement.Period.Start, settlement.Period.End, settlement.Status,
		settlement.BaseSalary, settlement.RegularHours, settlement.OvertimeHours, settlement.RegularPay, settlement.OvertimePay,
		settlement.GrossSalary, settlement.TotalDeductions, settlement.NetSalary, settlement.Version,
		settlement.CreatedAt, settlement.UpdatedAt,
	).Scan(&settlement.ID, &settlement.Version, &settlement.CreatedAt, &settlement.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintActivePeriod) {
			return payroll.Settlement{}, &payroll.DuplicateSettlementError{
				EmployeeID: settlement.EmployeeID,
				Month:      settlement.Period.Month,
				Year:       settlement.Period.Year,
			}
		}
		return payroll.Settlement{}, fmt.Errorf("failed to create settlement: %w", err)
	}

	return settlement, nil
}

func (r *payrollRepository) GetSettlementByID(ctx context.Context, id string, companyID string) (payroll.Settlement, error) {
	return r.getSettlement(ctx, id, companyID, "")
}

func (r *payrollRepository) GetSettlementForUpdate(ctx context.Context, id string, companyID string) (payroll.Settlement, error) {
	return r.getSettlement(ctx, id, companyID, " FOR UPDATE OF s")
}

func (r *payrollRepository) getSettlement(ctx context.Context, id, companyID, lockClause string) (payroll.Settlement, error) {
	if !isUUID(id) || !isUUID(companyID) {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := settlementSelect + ` WHERE s.id = $1 AND s.company_id = $2` + lockClause

	s, err := scanSettlement(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.Settlement{}, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

func (r *payrollRepository) GetActiveSettlementByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.Settlement, error) {
	if !isUUID(employeeID) || !isUUID(companyID) {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := settlementSelect + `
		WHERE s.employee_id = $1 AND s.period_month = $2 AND s.period_year = $3
		  AND s.company_id = $4 AND s.status <> 'rejected'
	`

	s, err := scanSettlement(q.QueryRow(ctx, query, employeeID, month, year, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Settlement{}, payroll.ErrSettlementNotFound
		}
		return payroll.Settlement{}, fmt.Errorf("failed to get active settlement: %w", err)
	}
	return s, nil
}

func (r *payrollRepository) UpdateSettlementStatus(ctx context.Context, settlement payroll.Settlement, expectedVersion int) (payroll.Settlement, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE settlements SET
			status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4,
			rejected_at = $5, paid_at = $6, updated_at = $7, version = version + 1
		WHERE id = $8 AND company_id = $9 AND version = $10
	`

	tag, err := q.Exec(ctx, query,
		settlement.Status, settlement.ApprovedBy, settlement.ApprovedAt, settlement.RejectionReason,
		settlement.RejectedAt, settlement.PaidAt, settlement.UpdatedAt,
		settlement.ID, settlement.CompanyID, expectedVersion,
	)
	if err != nil {
		if isUniqueViolation(err, constraintActivePeriod) {
			return payroll.Settlement{}, &payroll.DuplicateSettlementError{
				EmployeeID: settlement.EmployeeID,
				Month:      settlement.Period.Month,
				Year:       settlement.Period.Year,
			}
		}
		return payroll.Settlement{}, fmt.Errorf("failed to update settlement status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetSettlementByID(ctx, settlement.ID, settlement.CompanyID); err != nil {
			return payroll.Settlement{}, err
		}
		return payroll.Settlement{}, payroll.ErrConcurrentModification
	}

	return r.GetSettlementByID(ctx, settlement.ID, settlement.CompanyID)
}

func (r *payrollRepository) ListSettlements(ctx context.Context, companyID string, filter payroll.SettlementFilter) ([]payroll.Settlement, int64, error) {
	if !isUUID(companyID) {
		return []payroll.Settlement{}, 0, nil
	}
	q := GetQuerier(ctx, r.db)

	where := ` WHERE s.company_id = $1`
	args := []interface{}{companyID}
	argIdx := 2

	if filter.PeriodMonth != nil {
		where += fmt.Sprintf(" AND s.period_month = $%d", argIdx)
		args = append(args, *filter.PeriodMonth)
		argIdx++
	}
	if filter.PeriodYear != nil {
		where += fmt.Sprintf(" AND s.period_year = $%d", argIdx)
		args = append(args, *filter.PeriodYear)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND s.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.EmployeeID != nil {
		if !isUUID(*filter.EmployeeID) {
			return []payroll.Settlement{}, 0, nil
		}
		where += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	// Count query
	var totalCount int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM settlements s"+where, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	selectQuery := settlementSelect + where + fmt.Sprintf(
		" ORDER BY s.period_year DESC, s.period_month DESC, s.created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := make([]payroll.Settlement, 0)
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, totalCount, nil
}

// ========== DEDUCTIONS ==========

func (r *payrollRepository) CreateDeductions(ctx context.Context, deductions []payroll.Deduction) ([]payroll.Deduction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO settlement_deductions (settlement_id, position, concept, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	created := make([]payroll.Deduction, 0, len(deductions))
	for i, d := range deductions {
		if err := q.QueryRow(ctx, query, d.SettlementID, i, d.Concept, d.Amount, d.CreatedAt).Scan(&d.ID, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to create deduction %s: %w", d.Concept, err)
		}
		created = append(created, d)
	}
	return created, nil
}

func (r *payrollRepository) GetDeductionsBySettlementID(ctx context.Context, settlementID string) ([]payroll.Deduction, error) {
	if !isUUID(settlementID) {
		return []payroll.Deduction{}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, settlement_id, concept, amount, created_at
		FROM settlement_deductions
		WHERE settlement_id = $1
		ORDER BY position, created_at
	`

	rows, err := q.Query(ctx, query, settlementID)
	if err != nil {
		return nil, fmt.Errorf("failed to get deductions: %w", err)
	}
	defer rows.Close()

	deductions := make([]payroll.Deduction, 0)
	for rows.Next() {
		var d payroll.Deduction
		if err := rows.Scan(&d.ID, &d.SettlementID, &d.Concept, &d.Amount, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deduction: %w", err)
		}
		deductions = append(deductions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deductions: %w", err)
	}
	return deductions, nil
}

// ========== PAYMENTS ==========

func (r *payrollRepository) CreateSalaryPayment(ctx context.Context, payment payroll.SalaryPayment) (payroll.SalaryPayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_payments (settlement_id, bank_name, method, amount, payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		payment.SettlementID, payment.BankName, payment.Method, payment.Amount, payment.PaymentDate, payment.CreatedAt,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return payroll.SalaryPayment{}, payroll.ErrConcurrentModification
		}
		return payroll.SalaryPayment{}, fmt.Errorf("failed to create salary payment: %w", err)
	}
	return payment, nil
}

func (r *payrollRepository) GetSalaryPaymentBySettlementID(ctx context.Context, settlementID string) (payroll.SalaryPayment, error) {
	if !isUUID(settlementID) {
		return payroll.SalaryPayment{}, payroll.ErrSalaryPaymentNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, settlement_id, bank_name, method, amount, payment_date, created_at
		FROM salary_payments
		WHERE settlement_id = $1
	`

	var p payroll.SalaryPayment
	err := q.QueryRow(ctx, query, settlementID).Scan(
		&p.ID, &p.SettlementID, &p.BankName, &p.Method, &p.Amount, &p.PaymentDate, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.SalaryPayment{}, payroll.ErrSalaryPaymentNotFound
		}
		return payroll.SalaryPayment{}, fmt.Errorf("failed to get salary payment: %w", err)
	}
	return p, nil
}

func (r *payrollRepository) CreateProvisionalPayment(ctx context.Context, payment payroll.ProvisionalPayment) (payroll.ProvisionalPayment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO provisional_payments (
			settlement_id, payment_date, period_label, total_amount, pension_amount, health_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		payment.SettlementID, payment.PaymentDate, payment.PeriodLabel,
		payment.TotalAmount, payment.PensionAmount, payment.HealthAmount, payment.CreatedAt,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return payroll.ProvisionalPayment{}, payroll.ErrConcurrentModification
		}
		return payroll.ProvisionalPayment{}, fmt.Errorf("failed to create provisional payment: %w", err)
	}
	return payment, nil
}

func (r *payrollRepository) GetProvisionalPaymentBySettlementID(ctx context.Context, settlementID string) (payroll.ProvisionalPayment, error) {
	if !isUUID(settlementID) {
		return payroll.ProvisionalPayment{}, payroll.ErrProvisionalPaymentNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, settlement_id, payment_date, period_label, total_amount, pension_amount, health_amount, created_at
		FROM provisional_payments
		WHERE settlement_id = $1
	`

	var p payroll.ProvisionalPayment
	err := q.QueryRow(ctx, query, settlementID).Scan(
		&p.ID, &p.SettlementID, &p.PaymentDate, &p.PeriodLabel,
		&p.TotalAmount, &p.PensionAmount, &p.HealthAmount, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.ProvisionalPayment{}, payroll.ErrProvisionalPaymentNotFound
		}
		return payroll.ProvisionalPayment{}, fmt.Errorf("failed to get provisional payment: %w", err)
	}
	return p, nil
}

// ========== SUMMARY ==========

func (r *payrollRepository) GetPeriodSummary(ctx context.Context, companyID string, month, year int) (payroll.PeriodSummaryResponse, error) {
	if !isUUID(companyID) {
		return payroll.PeriodSummaryResponse{PeriodMonth: month, PeriodYear: year}, nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) AS total_settlements,
			COALESCE(SUM(gross_salary) FILTER (WHERE status <> 'rejected'), 0) AS total_gross_salary,
			COALESCE(SUM(total_deductions) FILTER (WHERE status <> 'rejected'), 0) AS total_deductions,
			COALESCE(SUM(net_salary) FILTER (WHERE status <> 'rejected'), 0) AS total_net_salary,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending_count,
			COUNT(*) FILTER (WHERE status = 'approved') AS approved_count,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected_count,
			COUNT(*) FILTER (WHERE status = 'paid') AS paid_count
		FROM settlements
		WHERE company_id = $1 AND period_month = $2 AND period_year = $3
	`

	var summary payroll.PeriodSummaryResponse
	err := q.QueryRow(ctx, query, companyID, month, year).Scan(
		&summary.TotalSettlements, &summary.TotalGrossSalary, &summary.TotalDeductions, &summary.TotalNetSalary,
		&summary.PendingCount, &summary.ApprovedCount, &summary.RejectedCount, &summary.PaidCount,
	)
	if err != nil {
		return payroll.PeriodSummaryResponse{}, fmt.Errorf("failed to get period summary: %w", err)
	}

	summary.PeriodMonth = month
	summary.PeriodYear = year

	return summary, nil
}
