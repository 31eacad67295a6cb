package employee

import "context"

// EmployeeRepository is the read-only employee lookup used by payroll.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
	// GetActiveCompanyIDs lists companies with at least one active employee.
	GetActiveCompanyIDs(ctx context.Context) ([]string, error)
}
