package memory

import (
	"context"
	"sort"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type payrollRepository struct {
	store *Store
}

func NewPayrollRepository(store *Store) payroll.PayrollRepository {
	return &payrollRepository{store: store}
}

// withEmployeeName mirrors the join done by the SQL repository. Caller holds mu.
func (r *payrollRepository) withEmployeeName(s payroll.Settlement) payroll.Settlement {
	if e, ok := r.store.employees[s.EmployeeID]; ok {
		name := e.FullName
		s.EmployeeName = &name
	}
	return s
}

// ========== SETTLEMENTS ==========

func (r *payrollRepository) CreateSettlement(ctx context.Context, settlement payroll.Settlement) (payroll.Settlement, error) {
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		for _, existing := range r.store.settlements {
			if existing.EmployeeID == settlement.EmployeeID &&
				existing.Period.Month == settlement.Period.Month &&
				existing.Period.Year == settlement.Period.Year &&
				existing.IsActive() {
				return &payroll.DuplicateSettlementError{
					EmployeeID: settlement.EmployeeID,
					Month:      settlement.Period.Month,
					Year:       settlement.Period.Year,
					ExistingID: existing.ID,
				}
			}
		}

		if settlement.ID == "" {
			settlement.ID = uuid.New().String()
		}
		if settlement.Version == 0 {
			settlement.Version = 1
		}
		settlement.EmployeeName = nil
		r.store.settlements[settlement.ID] = settlement
		settlement = r.withEmployeeName(settlement)
		return nil
	})
	if err != nil {
		return payroll.Settlement{}, err
	}
	return settlement, nil
}

func (r *payrollRepository) GetSettlementByID(ctx context.Context, id string, companyID string) (payroll.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.settlements[id]
	if !ok || s.CompanyID != companyID {
		return payroll.Settlement{}, payroll.ErrSettlementNotFound
	}
	return r.withEmployeeName(s), nil
}

// GetSettlementForUpdate relies on units of work being serialized by the store.
func (r *payrollRepository) GetSettlementForUpdate(ctx context.Context, id string, companyID string) (payroll.Settlement, error) {
	return r.GetSettlementByID(ctx, id, companyID)
}

func (r *payrollRepository) GetActiveSettlementByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (payroll.Settlement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, s := range r.store.settlements {
		if s.EmployeeID == employeeID && s.CompanyID == companyID &&
			s.Period.Month == month && s.Period.Year == year && s.IsActive() {
			return r.withEmployeeName(s), nil
		}
	}
	return payroll.Settlement{}, payroll.ErrSettlementNotFound
}

func (r *payrollRepository) UpdateSettlementStatus(ctx context.Context, settlement payroll.Settlement, expectedVersion int) (payroll.Settlement, error) {
	var updated payroll.Settlement
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		stored, ok := r.store.settlements[settlement.ID]
		if !ok || stored.CompanyID != settlement.CompanyID {
			return payroll.ErrSettlementNotFound
		}
		if stored.Version != expectedVersion {
			return payroll.ErrConcurrentModification
		}

		stored.Status = settlement.Status
		stored.ApprovedBy = settlement.ApprovedBy
		stored.ApprovedAt = settlement.ApprovedAt
		stored.RejectionReason = settlement.RejectionReason
		stored.RejectedAt = settlement.RejectedAt
		stored.PaidAt = settlement.PaidAt
		stored.UpdatedAt = settlement.UpdatedAt
		stored.Version = expectedVersion + 1

		r.store.settlements[stored.ID] = stored
		updated = r.withEmployeeName(stored)
		return nil
	})
	if err != nil {
		return payroll.Settlement{}, err
	}
	return updated, nil
}

func (r *payrollRepository) ListSettlements(ctx context.Context, companyID string, filter payroll.SettlementFilter) ([]payroll.Settlement, int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]payroll.Settlement, 0)
	for _, s := range r.store.settlements {
		if s.CompanyID != companyID {
			continue
		}
		if filter.PeriodMonth != nil && s.Period.Month != *filter.PeriodMonth {
			continue
		}
		if filter.PeriodYear != nil && s.Period.Year != *filter.PeriodYear {
			continue
		}
		if filter.Status != nil && string(s.Status) != *filter.Status {
			continue
		}
		if filter.EmployeeID != nil && s.EmployeeID != *filter.EmployeeID {
			continue
		}
		matched = append(matched, r.withEmployeeName(s))
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Period.Year != b.Period.Year {
			return a.Period.Year > b.Period.Year
		}
		if a.Period.Month != b.Period.Month {
			return a.Period.Month > b.Period.Month
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	total := int64(len(matched))
	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return []payroll.Settlement{}, total, nil
	}
	end := len(matched)
	if filter.Limit > 0 && offset+filter.Limit < end {
		end = offset + filter.Limit
	}
	return matched[offset:end], total, nil
}

// ========== DEDUCTIONS ==========

func (r *payrollRepository) CreateDeductions(ctx context.Context, deductions []payroll.Deduction) ([]payroll.Deduction, error) {
	created := make([]payroll.Deduction, 0, len(deductions))
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		for _, d := range deductions {
			if _, ok := r.store.settlements[d.SettlementID]; !ok {
				return payroll.ErrSettlementNotFound
			}
			if d.ID == "" {
				d.ID = uuid.New().String()
			}
			r.store.deductions[d.SettlementID] = append(r.store.deductions[d.SettlementID], d)
			created = append(created, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *payrollRepository) GetDeductionsBySettlementID(ctx context.Context, settlementID string) ([]payroll.Deduction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]payroll.Deduction{}, r.store.deductions[settlementID]...), nil
}

// ========== PAYMENTS ==========

func (r *payrollRepository) CreateSalaryPayment(ctx context.Context, payment payroll.SalaryPayment) (payroll.SalaryPayment, error) {
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		if _, ok := r.store.settlements[payment.SettlementID]; !ok {
			return payroll.ErrSettlementNotFound
		}
		if _, exists := r.store.salaryPayments[payment.SettlementID]; exists {
			return payroll.ErrConcurrentModification
		}
		if payment.ID == "" {
			payment.ID = uuid.New().String()
		}
		r.store.salaryPayments[payment.SettlementID] = payment
		return nil
	})
	if err != nil {
		return payroll.SalaryPayment{}, err
	}
	return payment, nil
}

func (r *payrollRepository) GetSalaryPaymentBySettlementID(ctx context.Context, settlementID string) (payroll.SalaryPayment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.salaryPayments[settlementID]
	if !ok {
		return payroll.SalaryPayment{}, payroll.ErrSalaryPaymentNotFound
	}
	return p, nil
}

func (r *payrollRepository) CreateProvisionalPayment(ctx context.Context, payment payroll.ProvisionalPayment) (payroll.ProvisionalPayment, error) {
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		if _, ok := r.store.settlements[payment.SettlementID]; !ok {
			return payroll.ErrSettlementNotFound
		}
		if _, exists := r.store.provisionalPayments[payment.SettlementID]; exists {
			return payroll.ErrConcurrentModification
		}
		if payment.ID == "" {
			payment.ID = uuid.New().String()
		}
		r.store.provisionalPayments[payment.SettlementID] = payment
		return nil
	})
	if err != nil {
		return payroll.ProvisionalPayment{}, err
	}
	return payment, nil
}

func (r *payrollRepository) GetProvisionalPaymentBySettlementID(ctx context.Context, settlementID string) (payroll.ProvisionalPayment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.provisionalPayments[settlementID]
	if !ok {
		return payroll.ProvisionalPayment{}, payroll.ErrProvisionalPaymentNotFound
	}
	return p, nil
}

// ========== SUMMARY ==========

// GetPeriodSummary counts every status; money totals skip rejected settlements.
func (r *payrollRepository) GetPeriodSummary(ctx context.Context, companyID string, month, year int) (payroll.PeriodSummaryResponse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	summary := payroll.PeriodSummaryResponse{
		PeriodMonth:      month,
		PeriodYear:       year,
		TotalGrossSalary: decimal.Zero,
		TotalDeductions:  decimal.Zero,
		TotalNetSalary:   decimal.Zero,
	}

	for _, s := range r.store.settlements {
		if s.CompanyID != companyID || s.Period.Month != month || s.Period.Year != year {
			continue
		}
		summary.TotalSettlements++
		switch s.Status {
		case payroll.SettlementStatusPending:
			summary.PendingCount++
		case payroll.SettlementStatusApproved:
			summary.ApprovedCount++
		case payroll.SettlementStatusRejected:
			summary.RejectedCount++
			continue
		case payroll.SettlementStatusPaid:
			summary.PaidCount++
		}
		summary.TotalGrossSalary = summary.TotalGrossSalary.Add(s.GrossSalary)
		summary.TotalDeductions = summary.TotalDeductions.Add(s.TotalDeductions)
		summary.TotalNetSalary = summary.TotalNetSalary.Add(s.NetSalary)
	}

	return summary, nil
}
