package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyCheckedIn      = errors.New("you already have an open attendance record today")
	ErrNotCheckedIn          = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut     = errors.New("you have already checked out")
	ErrClockOutBeforeClockIn = errors.New("clock out cannot be before clock in")

	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrInvalidDateRange   = errors.New("end date must not be before start date")
)
