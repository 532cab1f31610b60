package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const attendanceColumns = `
	a.id, a.employee_id, a.date, a.clock_in, a.clock_out, a.status,
	a.overtime_minutes, a.overtime_amount, a.remarks, a.location,
	a.created_at, a.updated_at`

// appendRemark concatenates $n onto the existing remarks, newline separated.
func appendRemark(param string) string {
	return `CASE WHEN remarks IS NULL OR remarks = '' THEN ` + param +
		` ELSE remarks || E'\n' || ` + param + ` END`
}

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

func scanAttendance(row pgx.Row, att *attendance.Attendance) error {
	var overtimeAmount *string
	var location []byte

	if err := row.Scan(
		&att.ID, &att.EmployeeID, &att.Date, &att.ClockIn, &att.ClockOut, &att.Status,
		&att.OvertimeMinutes, &overtimeAmount, &att.Remarks, &location,
		&att.CreatedAt, &att.UpdatedAt,
	); err != nil {
		return err
	}

	if overtimeAmount != nil {
		amount, err := decimal.NewFromString(*overtimeAmount)
		if err != nil {
			return fmt.Errorf("invalid overtime_amount %q: %w", *overtimeAmount, err)
		}
		att.OvertimeAmount = &amount
	}
	att.Location = location

	return nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, newAttendance attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, date, clock_in, status, remarks, location)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	var location []byte
	if len(newAttendance.Location) > 0 {
		location = newAttendance.Location
	}

	err := q.QueryRow(ctx, query,
		newAttendance.EmployeeID,
		newAttendance.Date,
		newAttendance.ClockIn,
		newAttendance.Status,
		newAttendance.Remarks,
		location,
	).Scan(&newAttendance.ID, &newAttendance.CreatedAt, &newAttendance.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return attendance.Attendance{}, attendance.ErrAlreadyCheckedIn
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return newAttendance, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1 AND a.date = $2
		LIMIT 1`

	var att attendance.Attendance
	if err := scanAttendance(q.QueryRow(ctx, query, employeeID, date), &att); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}

	return &att, nil
}

// ClockOut implements attendance.AttendanceRepository.
func (a *attendanceRepository) ClockOut(ctx context.Context, id string, at time.Time) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET clock_out = $2, updated_at = NOW()
		WHERE id = $1
		  AND clock_in IS NOT NULL
		  AND clock_out IS NULL
		  AND status <> 'absent'
	`

	tag, err := q.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("failed to clock out attendance %s: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}

// ListWithoutCheckin implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListWithoutCheckin(ctx context.Context, date time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.employment_status = $1
		  AND e.deleted_at IS NULL
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = e.id
			  AND a.date = $2
			  AND (a.clock_in IS NOT NULL OR a.status = ANY($3))
		  )
		ORDER BY e.full_name`

	excluded := []string{
		string(attendance.StatusAbsent),
		string(attendance.StatusLeave),
		string(attendance.StatusPaidLeave),
		string(attendance.StatusWeeklyOff),
	}

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive, date, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees without check-in: %w", err)
	}

	return collectEmployees(rows)
}

func (a *attendanceRepository) listEmployeeAttendances(ctx context.Context, query string, args ...interface{}) ([]attendance.EmployeeAttendance, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []attendance.EmployeeAttendance
	for rows.Next() {
		var item attendance.EmployeeAttendance
		var overtimeAmount *string
		var location []byte

		if err := rows.Scan(
			&item.Employee.ID, &item.Employee.UserID, &item.Employee.EmployeeCode, &item.Employee.FullName,
			&item.Employee.PhoneNumber, &item.Employee.Email, &item.Employee.EmploymentStatus,
			&item.Employee.CreatedAt, &item.Employee.UpdatedAt, &item.Employee.DeletedAt,
			&item.Attendance.ID, &item.Attendance.EmployeeID, &item.Attendance.Date,
			&item.Attendance.ClockIn, &item.Attendance.ClockOut, &item.Attendance.Status,
			&item.Attendance.OvertimeMinutes, &overtimeAmount, &item.Attendance.Remarks, &location,
			&item.Attendance.CreatedAt, &item.Attendance.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}

		if overtimeAmount != nil {
			amount, err := decimal.NewFromString(*overtimeAmount)
			if err != nil {
				return nil, fmt.Errorf("invalid overtime_amount %q: %w", *overtimeAmount, err)
			}
			item.Attendance.OvertimeAmount = &amount
		}
		item.Attendance.Location = location
		name := item.Employee.FullName
		item.Attendance.EmployeeName = &name

		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}

	return result, nil
}

// ListWithoutCheckout implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListWithoutCheckout(ctx context.Context, date time.Time) ([]attendance.EmployeeAttendance, error) {
	query := `SELECT ` + employeeColumns + `, ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		LEFT JOIN users u ON u.id = e.user_id
		WHERE a.date = $1
		  AND a.clock_in IS NOT NULL
		  AND a.clock_out IS NULL
		  AND a.status <> 'absent'
		  AND e.employment_status = $2
		  AND e.deleted_at IS NULL
		ORDER BY a.clock_in`

	result, err := a.listEmployeeAttendances(ctx, query, date, employee.EmploymentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances without check-out: %w", err)
	}
	return result, nil
}

// ListCompleted implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListCompleted(ctx context.Context, date time.Time) ([]attendance.EmployeeAttendance, error) {
	query := `SELECT ` + employeeColumns + `, ` + attendanceColumns + `
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		LEFT JOIN users u ON u.id = e.user_id
		WHERE a.date = $1
		  AND a.clock_in IS NOT NULL
		  AND a.clock_out IS NOT NULL
		  AND a.status = $2
		ORDER BY a.clock_in`

	result, err := a.listEmployeeAttendances(ctx, query, date, attendance.StatusPresent)
	if err != nil {
		return nil, fmt.Errorf("failed to list completed attendances: %w", err)
	}
	return result, nil
}

// ListActiveWithoutRecord implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListActiveWithoutRecord(ctx context.Context, date time.Time) ([]employee.Employee, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees e
		LEFT JOIN users u ON u.id = e.user_id
		WHERE e.employment_status = $1
		  AND e.deleted_at IS NULL
		  AND e.created_at < ($2::date + INTERVAL '1 day')
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.employee_id = e.id AND a.date = $2
		  )
		ORDER BY e.full_name`

	rows, err := q.Query(ctx, query, employee.EmploymentStatusActive, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees without attendance: %w", err)
	}

	return collectEmployees(rows)
}

// MarkAbsentIfOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) MarkAbsentIfOpen(ctx context.Context, id string, remark string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET status = 'absent',
		    remarks = ` + appendRemark("$2") + `,
		    updated_at = NOW()
		WHERE id = $1
		  AND clock_out IS NULL
		  AND status <> 'absent'
	`

	tag, err := q.Exec(ctx, query, id, remark)
	if err != nil {
		return false, fmt.Errorf("failed to mark attendance %s absent: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}

// RecordOvertime implements attendance.AttendanceRepository.
func (a *attendanceRepository) RecordOvertime(ctx context.Context, id string, minutes int, amount decimal.Decimal, remark string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET overtime_minutes = $2,
		    overtime_amount = $3::numeric,
		    remarks = ` + appendRemark("$4") + `,
		    updated_at = NOW()
		WHERE id = $1
		  AND clock_out IS NOT NULL
		  AND status = 'present'
		  AND (overtime_minutes IS DISTINCT FROM $2 OR overtime_amount IS DISTINCT FROM $3::numeric)
	`

	tag, err := q.Exec(ctx, query, id, minutes, amount.StringFixed(2), remark)
	if err != nil {
		return false, fmt.Errorf("failed to record overtime for attendance %s: %w", id, err)
	}

	return tag.RowsAffected() == 1, nil
}

// CreateAbsence implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateAbsence(ctx context.Context, employeeID string, date time.Time, remark string) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (employee_id, date, status, remarks)
		VALUES ($1, $2, 'absent', $3)
		ON CONFLICT (employee_id, date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query, employeeID, date, remark)
	if err != nil {
		return false, fmt.Errorf("failed to create absence for employee %s: %w", employeeID, err)
	}

	return tag.RowsAffected() == 1, nil
}
