package payroll

import (
	"context"
)

// Transactor runs fn as one unit of work. Repository calls made with the
// context passed to fn join the unit; any error rolls the whole unit back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// PayrollRepository defines data access methods for settlements and their
// owned records. All settlement lookups include companyID to prevent
// cross-company access.
type PayrollRepository interface {
	// Settlements
	// CreateSettlement returns *DuplicateSettlementError when an active
	// settlement already exists for the employee and period.
	CreateSettlement(ctx context.Context, settlement Settlement) (Settlement, error)
	GetSettlementByID(ctx context.Context, id string, companyID string) (Settlement, error)
	// GetSettlementForUpdate locks the settlement for the rest of the unit of work.
	GetSettlementForUpdate(ctx context.Context, id string, companyID string) (Settlement, error)
	GetActiveSettlementByEmployeePeriod(ctx context.Context, employeeID string, month, year int, companyID string) (Settlement, error)
	// UpdateSettlementStatus persists the transition fields when the stored
	// version still equals expectedVersion, otherwise ErrConcurrentModification.
	UpdateSettlementStatus(ctx context.Context, settlement Settlement, expectedVersion int) (Settlement, error)
	ListSettlements(ctx context.Context, companyID string, filter SettlementFilter) ([]Settlement, int64, error)

	// Deductions
	CreateDeductions(ctx context.Context, deductions []Deduction) ([]Deduction, error)
	GetDeductionsBySettlementID(ctx context.Context, settlementID string) ([]Deduction, error)

	// Payments
	CreateSalaryPayment(ctx context.Context, payment SalaryPayment) (SalaryPayment, error)
	GetSalaryPaymentBySettlementID(ctx context.Context, settlementID string) (SalaryPayment, error)
	CreateProvisionalPayment(ctx context.Context, payment ProvisionalPayment) (ProvisionalPayment, error)
	GetProvisionalPaymentBySettlementID(ctx context.Context, settlementID string) (ProvisionalPayment, error)

	// Aggregations
	GetPeriodSummary(ctx context.Context, companyID string, month, year int) (PeriodSummaryResponse, error)
}
