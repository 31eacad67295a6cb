package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// All methods include companyID parameter to prevent cross-company data access attacks.
type AttendanceRepository interface {
	// Create stores a new open record. Returns ErrAlreadyCheckedIn when the
	// employee already has an open record on the same date.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	GetByID(ctx context.Context, id string, companyID string) (Attendance, error)

	// GetOpenSession returns the latest record without a clock out, or ErrNotCheckedIn.
	GetOpenSession(ctx context.Context, employeeID string, companyID string) (Attendance, error)

	// Close persists ClockOut and HoursWorked of an open record. Returns
	// ErrAlreadyCheckedOut if the record was closed concurrently.
	Close(ctx context.Context, attendance Attendance) error

	// ListByEmployeePeriod returns records whose date falls in [start, end], ordered by date.
	ListByEmployeePeriod(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]Attendance, error)
}
