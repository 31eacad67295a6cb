package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is the slice of the employee record the payroll engine reads.
// Employee CRUD lives outside this service.
type Employee struct {
	ID                string
	CompanyID         string
	EmployeeCode      string
	FullName          string
	EmploymentStatus  EmploymentStatus
	BankName          string
	BankAccountNumber string
	BaseSalary        *decimal.Decimal
	HireDate          time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// HasBaseSalary reports whether a positive base salary is configured.
func (e Employee) HasBaseSalary() bool {
	return e.BaseSalary != nil && e.BaseSalary.IsPositive()
}

// IsActive reports whether the employee is still employed.
func (e Employee) IsActive() bool {
	return e.EmploymentStatus == EmploymentStatusActive
}
