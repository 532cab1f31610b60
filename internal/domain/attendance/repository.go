package attendance

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/shopspring/decimal"
)

// AttendanceRepository defines data access methods for attendance records.
// Dates are calendar dates in the organizational timezone.
type AttendanceRepository interface {
	// Create inserts a new record. A second record for the same
	// (employee, date) fails with ErrAlreadyCheckedIn.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// GetByEmployeeAndDate returns nil, nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Attendance, error)

	// ClockOut sets clock_out only while the record is still open. It reports
	// whether a row was updated.
	ClockOut(ctx context.Context, id string, at time.Time) (bool, error)

	// ListWithoutCheckin returns active employees with no check-in on date.
	// Employees whose record says leave, weekly-off or absent are excluded.
	ListWithoutCheckin(ctx context.Context, date time.Time) ([]employee.Employee, error)

	// ListWithoutCheckout returns active employees whose record on date has a
	// check-in, no check-out and a status other than absent.
	ListWithoutCheckout(ctx context.Context, date time.Time) ([]EmployeeAttendance, error)

	// ListCompleted returns present records on date with both timestamps set.
	ListCompleted(ctx context.Context, date time.Time) ([]EmployeeAttendance, error)

	// ListActiveWithoutRecord returns active employees with no row at all on date.
	ListActiveWithoutRecord(ctx context.Context, date time.Time) ([]employee.Employee, error)

	// MarkAbsentIfOpen is a single guarded UPDATE
	// (clock_out IS NULL AND status <> 'absent'). Zero rows means someone
	// else already closed the record.
	MarkAbsentIfOpen(ctx context.Context, id string, remark string) (bool, error)

	// RecordOvertime writes overtime unless the same value is already stored.
	RecordOvertime(ctx context.Context, id string, minutes int, amount decimal.Decimal, remark string) (bool, error)

	// CreateAbsence inserts an absent record with no timestamps. It reports
	// false when a record for that date already exists.
	CreateAbsence(ctx context.Context, employeeID string, date time.Time, remark string) (bool, error)
}

// EventRepository stores the structured attendance audit trail.
type EventRepository interface {
	Append(ctx context.Context, event Event) error
	ListByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) ([]Event, error)
}
