package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
)

// gateway is the read side used by the reminder passes. Persistence errors
// are logged and reported as "no data" so a single failing query never
// stops a tick.
type gateway struct {
	repo attendance.AttendanceRepository
}

func (g gateway) employeesWithoutCheckin(ctx context.Context, date time.Time) []employee.Employee {
	emps, err := g.repo.ListWithoutCheckin(ctx, date)
	if err != nil {
		slog.Error("Failed to list employees without check-in", "date", date.Format(dateLayout), "error", err)
		return nil
	}
	return emps
}

func (g gateway) employeesWithoutCheckout(ctx context.Context, date time.Time) []attendance.EmployeeAttendance {
	rows, err := g.repo.ListWithoutCheckout(ctx, date)
	if err != nil {
		slog.Error("Failed to list employees without checkout", "date", date.Format(dateLayout), "error", err)
		return nil
	}
	return rows
}

func (g gateway) todayRecord(ctx context.Context, employeeID string, date time.Time) *attendance.Attendance {
	rec, err := g.repo.GetByEmployeeAndDate(ctx, employeeID, date)
	if err != nil {
		slog.Error("Failed to read attendance", "employee_id", employeeID, "date", date.Format(dateLayout), "error", err)
		return nil
	}
	return rec
}

func (g gateway) todayCheckin(ctx context.Context, employeeID string, date time.Time) *time.Time {
	if rec := g.todayRecord(ctx, employeeID, date); rec != nil {
		return rec.ClockIn
	}
	return nil
}

func (g gateway) hasCheckedOutToday(ctx context.Context, employeeID string, date time.Time) bool {
	rec := g.todayRecord(ctx, employeeID, date)
	return rec != nil && rec.ClockOut != nil
}
