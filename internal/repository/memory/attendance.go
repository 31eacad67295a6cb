package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/google/uuid"
)

type attendanceRepository struct {
	store *Store
}

func NewAttendanceRepository(store *Store) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		for _, existing := range r.store.attendances {
			if existing.EmployeeID == a.EmployeeID && existing.IsOpen() && existing.Date.Equal(a.Date) {
				return attendance.ErrAlreadyCheckedIn
			}
		}

		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		r.store.attendances[a.ID] = a
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}
	return a, nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	a, ok := r.store.attendances[id]
	if !ok || a.CompanyID != companyID {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepository) GetOpenSession(ctx context.Context, employeeID string, companyID string) (attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var latest *attendance.Attendance
	for _, a := range r.store.attendances {
		if a.EmployeeID != employeeID || a.CompanyID != companyID || !a.IsOpen() {
			continue
		}
		if latest == nil || a.ClockIn.After(latest.ClockIn) {
			a := a
			latest = &a
		}
	}
	if latest == nil {
		return attendance.Attendance{}, attendance.ErrNotCheckedIn
	}
	return *latest, nil
}

func (r *attendanceRepository) Close(ctx context.Context, a attendance.Attendance) error {
	return r.store.WithinTx(ctx, func(ctx context.Context) error {
		r.store.mu.Lock()
		defer r.store.mu.Unlock()

		stored, ok := r.store.attendances[a.ID]
		if !ok || stored.CompanyID != a.CompanyID {
			return attendance.ErrAttendanceNotFound
		}
		if !stored.IsOpen() {
			return attendance.ErrAlreadyCheckedOut
		}

		stored.ClockOut = a.ClockOut
		stored.HoursWorked = a.HoursWorked
		stored.UpdatedAt = a.UpdatedAt
		r.store.attendances[a.ID] = stored
		return nil
	})
}

func (r *attendanceRepository) ListByEmployeePeriod(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]attendance.Attendance, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]attendance.Attendance, 0)
	for _, a := range r.store.attendances {
		if a.EmployeeID != employeeID || a.CompanyID != companyID {
			continue
		}
		if a.Date.Before(start) || a.Date.After(end) {
			continue
		}
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ClockIn.Before(result[j].ClockIn)
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}
