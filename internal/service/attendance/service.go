package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-settlement/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-settlement/internal/domain/user"
	"github.com/cmlabs-hris/payroll-settlement/internal/pkg/jwt"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	employee.EmployeeRepository
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EmployeeRepository:   employeeRepo,
		now:                  func() time.Time { return time.Now().UTC() },
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format("2006-01-02 15:04:05")
	return &format
}

// currentEmployee resolves the employee behind the actor and checks they may
// record attendance.
func (a *AttendanceServiceImpl) currentEmployee(ctx context.Context, permission user.Permission) (employee.Employee, error) {
	actor, err := jwt.ActorFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	if !actor.Can(permission) {
		return employee.Employee{}, user.ErrInsufficientPermissions
	}
	if actor.EmployeeID == "" {
		return employee.Employee{}, user.ErrEmployeeIDRequired
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, actor.EmployeeID, actor.CompanyID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrUnauthorized
	}
	return emp, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context) (attendance.AttendanceResponse, error) {
	emp, err := a.currentEmployee(ctx, user.PermissionAttendanceCreate)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now()
	created, err := a.AttendanceRepository.Create(ctx, attendance.Attendance{
		EmployeeID: emp.ID,
		CompanyID:  emp.CompanyID,
		Date:       attendance.DateOf(nowUTC),
		ClockIn:    nowUTC,
		CreatedAt:  nowUTC,
		UpdatedAt:  nowUTC,
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context) (attendance.AttendanceResponse, error) {
	emp, err := a.currentEmployee(ctx, user.PermissionAttendanceCreate)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	session, err := a.AttendanceRepository.GetOpenSession(ctx, emp.ID, emp.CompanyID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	nowUTC := a.now()
	if err := session.Close(nowUTC); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	session.UpdatedAt = nowUTC

	if err := a.AttendanceRepository.Close(ctx, session); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapAttendanceToResponse(session), nil
}

// ListMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) ([]attendance.AttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	emp, err := a.currentEmployee(ctx, user.PermissionAttendanceViewOwn)
	if err != nil {
		return nil, err
	}

	start, _ := time.Parse("2006-01-02", filter.StartDate)
	end, _ := time.Parse("2006-01-02", filter.EndDate)

	records, err := a.AttendanceRepository.ListByEmployeePeriod(ctx, emp.ID, start, end, emp.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, mapAttendanceToResponse(r))
	}
	return responses, nil
}

func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	return attendance.AttendanceResponse{
		ID:          att.ID,
		EmployeeID:  att.EmployeeID,
		Date:        att.Date.Format("2006-01-02"),
		ClockIn:     att.ClockIn.Format("2006-01-02 15:04:05"),
		ClockOut:    timePtrToString(att.ClockOut),
		HoursWorked: att.HoursWorked,
	}
}
