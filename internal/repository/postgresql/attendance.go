package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `id, employee_id, company_id, date, clock_in, clock_out, hours_worked, created_at, updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.EmployeeID, &att.CompanyID, &att.Date,
		&att.ClockIn, &att.ClockOut, &att.HoursWorked,
		&att.CreatedAt, &att.UpdatedAt,
	)
	return att, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, company_id, date, clock_in, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.CompanyID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.CreatedAt,
		newAttendance.UpdatedAt,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, constraintOpenAttendanceDay) {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	if !isUUID(id) || !isUUID(companyID) {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1 AND company_id = $2`

	att, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// GetOpenSession implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.Attendance, error) {
	if !isUUID(employeeID) || !isUUID(companyID) {
		return attendance.Attendance{}, attendance.ErrNotCheckedIn
	}
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND company_id = $2
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1
	`

	att, err := scanAttendance(q.QueryRow(ctx, query, employeeID, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrNotCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get open session: %w", err)
	}

	return att, nil
}

// Close implements attendance.AttendanceRepository. The clock_out IS NULL
// predicate keeps the exit time write-once.
func (a *attendanceRepository) Close(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET clock_out = $1, hours_worked = $2, updated_at = $3
		WHERE id = $4 AND company_id = $5 AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query, att.ClockOut, att.HoursWorked, att.UpdatedAt, att.ID, att.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to close attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := a.GetByID(ctx, att.ID, att.CompanyID); err != nil {
			return err
		}
		return attendance.ErrAlreadyCheckedOut
	}
	return nil
}

// ListByEmployeePeriod implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]attendance.Attendance, error) {
	if !isUUID(employeeID) || !isUUID(companyID) {
		return []attendance.Attendance{}, nil
	}
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances
		WHERE employee_id = $1
		  AND company_id = $2
		  AND date BETWEEN $3 AND $4
		ORDER BY date, clock_in
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Attendance, 0)
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance: %w", err)
	}

	return records, nil
}
