package attendance

import (
	"encoding/json"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/shopspring/decimal"
)

type Status string

// The status set is open; these are the values the engine reads or writes.
const (
	StatusPresent   Status = "present"
	StatusAbsent    Status = "absent"
	StatusHalfDay   Status = "half_day"
	StatusLeave     Status = "on_leave"
	StatusWeeklyOff Status = "weekly_off"
	StatusPaidLeave Status = "paid_leave"
)

// Attendance is one row per (employee, date).
// Invariant: Status == StatusAbsent implies ClockOut == nil.
type Attendance struct {
	ID              string
	EmployeeID      string
	Date            time.Time
	ClockIn         *time.Time
	ClockOut        *time.Time
	Status          Status
	OvertimeMinutes *int
	OvertimeAmount  *decimal.Decimal
	Remarks         *string
	Location        json.RawMessage
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the employee checked in and has not checked out.
func (a Attendance) IsOpen() bool {
	return a.ClockIn != nil && a.ClockOut == nil && a.Status != StatusAbsent
}

// EmployeeAttendance pairs a record with the employee it belongs to.
type EmployeeAttendance struct {
	Employee   employee.Employee
	Attendance Attendance
}

type EventKind string

const (
	EventCheckedIn        EventKind = "checked_in"
	EventCheckedOut       EventKind = "checked_out"
	EventAutoAbsent       EventKind = "auto_absent"
	EventOvertimeRecorded EventKind = "overtime_recorded"
	EventAbsentBackfilled EventKind = "absent_backfilled"
)

// Event is an append-only audit entry written in the same transaction as
// the attendance change it describes.
type Event struct {
	ID         string
	EmployeeID string
	Date       time.Time
	Kind       EventKind
	Payload    map[string]interface{}
	CreatedAt  time.Time
}
