package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var transitionErr *payroll.InvalidTransitionError

	switch {
	// Actor errors
	case errors.Is(err, user.ErrActorMissing):
		Unauthorized(w, "Authentication required")
	case errors.Is(err, user.ErrCompanyIDRequired):
		Forbidden(w, "Company context required")
	case errors.Is(err, user.ErrEmployeeIDRequired):
		Forbidden(w, "Employee profile required")
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, payroll.ErrForbiddenAction),
		errors.Is(err, employee.ErrUnauthorized):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrClockOutBeforeClockIn):
		BadRequest(w, err.Error(), nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrSettlementNotFound):
		NotFound(w, "Settlement not found")
	case errors.Is(err, payroll.ErrInvalidPeriod):
		ValidationError(w, map[string]string{"period": err.Error()})
	case errors.Is(err, payroll.ErrEmployeeHasNoBaseSalary):
		ValidationError(w, map[string]string{"base_salary": err.Error()})
	case errors.Is(err, payroll.ErrNegativeNetSalary):
		ValidationError(w, map[string]string{"net_salary": err.Error()})
	case errors.Is(err, payroll.ErrDuplicateSettlement):
		Conflict(w, err.Error())
	case errors.As(err, &transitionErr):
		Conflict(w, transitionErr.Error())
	case errors.Is(err, payroll.ErrConcurrentModification):
		Conflict(w, "Settlement was modified by another request, retry the operation")
	case errors.Is(err, payroll.ErrSettlementLocked):
		Conflict(w, "Settlement generation already in progress")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
