package payroll

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/validator"
)

var (
	ErrSettlementNotFound         = errors.New("settlement not found")
	ErrSalaryPaymentNotFound      = errors.New("salary payment not found")
	ErrProvisionalPaymentNotFound = errors.New("provisional payment not found")
	ErrInvalidPeriod              = errors.New("invalid payroll period")
	ErrEmployeeHasNoBaseSalary    = errors.New("employee has no base salary configured")
	ErrNegativeNetSalary          = errors.New("net salary would be negative")
	ErrDuplicateSettlement        = errors.New("an active settlement already exists for this period")
	ErrInvalidTransition          = errors.New("invalid settlement state transition")
	ErrConcurrentModification     = errors.New("settlement was modified concurrently")
	ErrSettlementLocked           = errors.New("settlement generation already in progress for this period")
	ErrForbiddenAction            = errors.New("actor is not allowed to perform this payroll action")
	ErrPersistence                = errors.New("payroll persistence failure")
)

// DuplicateSettlementError is returned when an active settlement already
// exists for the employee and period.
type DuplicateSettlementError struct {
	EmployeeID string
	Month      int
	Year       int
	ExistingID string
}

func (e *DuplicateSettlementError) Error() string {
	if e.ExistingID == "" {
		return fmt.Sprintf("active settlement already exists for employee %s in %02d/%d", e.EmployeeID, e.Month, e.Year)
	}
	return fmt.Sprintf("active settlement %s already exists for employee %s in %02d/%d", e.ExistingID, e.EmployeeID, e.Month, e.Year)
}

func (e *DuplicateSettlementError) Unwrap() error {
	return ErrDuplicateSettlement
}

// InvalidTransitionError carries the rejected state change.
type InvalidTransitionError struct {
	SettlementID string
	From         SettlementStatus
	To           SettlementStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("settlement %s cannot move from %s to %s", e.SettlementID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// PersistenceError wraps a storage failure that aborted a unit of work.
// The whole operation may be retried.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// IsClientError returns true if the error is due to invalid input or a
// state the caller must resolve. These are never retried.
func IsClientError(err error) bool {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return true
	}
	return errors.Is(err, ErrInvalidPeriod) ||
		errors.Is(err, ErrEmployeeHasNoBaseSalary) ||
		errors.Is(err, ErrNegativeNetSalary) ||
		errors.Is(err, ErrDuplicateSettlement) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrForbiddenAction)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSettlementNotFound) ||
		errors.Is(err, ErrSalaryPaymentNotFound) ||
		errors.Is(err, ErrProvisionalPaymentNotFound) ||
		errors.Is(err, employee.ErrEmployeeNotFound)
}

// IsConflict returns true for errors caused by a competing operation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrentModification) ||
		errors.Is(err, ErrSettlementLocked)
}
