package attendance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendance_Close(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	a := Attendance{ClockIn: in}
	require.True(t, a.IsOpen())
	require.False(t, a.HasRecordedHours())

	require.NoError(t, a.Close(in.Add(9*time.Hour+30*time.Minute)))

	assert.False(t, a.IsOpen())
	assert.True(t, a.HasRecordedHours())
	assert.True(t, a.HoursWorked.Equal(decimal.RequireFromString("9.5")), a.HoursWorked.String())
}

func TestAttendance_Close_RoundsToHundredths(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	a := Attendance{ClockIn: in}

	require.NoError(t, a.Close(in.Add(8*time.Hour+20*time.Minute)))

	assert.Equal(t, "8.33", a.HoursWorked.StringFixed(2))
}

func TestAttendance_Close_Twice(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	a := Attendance{ClockIn: in}
	require.NoError(t, a.Close(in.Add(time.Hour)))

	err := a.Close(in.Add(2 * time.Hour))

	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)
	assert.True(t, a.HoursWorked.Equal(decimal.NewFromInt(1)))
}

func TestAttendance_Close_BeforeClockIn(t *testing.T) {
	in := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	a := Attendance{ClockIn: in}

	assert.ErrorIs(t, a.Close(in.Add(-time.Minute)), ErrClockOutBeforeClockIn)
	assert.True(t, a.IsOpen())
}

func TestMyAttendanceFilter_Validate(t *testing.T) {
	ok := MyAttendanceFilter{StartDate: "2024-06-01", EndDate: "2024-06-30"}
	assert.NoError(t, ok.Validate())

	reversed := MyAttendanceFilter{StartDate: "2024-06-30", EndDate: "2024-06-01"}
	assert.Error(t, reversed.Validate())

	malformed := MyAttendanceFilter{StartDate: "06/01/2024", EndDate: ""}
	assert.Error(t, malformed.Validate())
}

func TestDateOf(t *testing.T) {
	got := DateOf(time.Date(2024, 6, 3, 23, 59, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), got)
}
