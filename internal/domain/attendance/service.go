package attendance

import "context"

type AttendanceService interface {
	ClockIn(ctx context.Context) (AttendanceResponse, error)
	ClockOut(ctx context.Context) (AttendanceResponse, error)
	ListMyAttendance(ctx context.Context, filter MyAttendanceFilter) ([]AttendanceResponse, error)
}
