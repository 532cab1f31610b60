package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	attendance.EventRepository
	employee.EmployeeRepository
	settingsService settings.SettingsService
	transactor      database.Transactor
	clock           worktime.Clock
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	eventRepo attendance.EventRepository,
	employeeRepo employee.EmployeeRepository,
	settingsService settings.SettingsService,
	transactor database.Transactor,
	clock worktime.Clock,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		EventRepository:      eventRepo,
		EmployeeRepository:   employeeRepo,
		settingsService:      settingsService,
		transactor:           transactor,
		clock:                clock,
	}
}

// timePtrToString safely converts a *time.Time to a string.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	format := t.In(loc).Format(dateTimeLayout)
	return &format
}

func locationJSON(lat, lng *float64, address *string) (json.RawMessage, error) {
	if lat == nil && lng == nil && address == nil {
		return nil, nil
	}
	payload := map[string]interface{}{}
	if lat != nil && lng != nil {
		payload["latitude"] = *lat
		payload["longitude"] = *lng
	}
	if address != nil {
		payload["address"] = *address
	}
	return json.Marshal(payload)
}

func (a *AttendanceServiceImpl) activeEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !emp.IsActive() {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// ClockIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	today := worktime.DateOf(now)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if existing != nil {
		if existing.Status == attendance.StatusAbsent {
			return attendance.AttendanceResponse{}, attendance.ErrMarkedAbsent
		}
		return attendance.AttendanceResponse{}, attendance.ErrAlreadyCheckedIn
	}

	location, err := locationJSON(req.Latitude, req.Longitude, req.Address)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to encode location: %w", err)
	}

	var created attendance.Attendance
	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = a.AttendanceRepository.Create(txCtx, attendance.Attendance{
			EmployeeID: emp.ID,
			Date:       today,
			ClockIn:    &now,
			Status:     attendance.StatusPresent,
			Location:   location,
		})
		if err != nil {
			return err
		}

		return a.EventRepository.Append(txCtx, attendance.Event{
			EmployeeID: emp.ID,
			Date:       today,
			Kind:       attendance.EventCheckedIn,
			Payload: map[string]interface{}{
				"attendance_id": created.ID,
				"clock_in":      now.Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked in", "employee_id", emp.ID, "date", today.Format(dateLayout), "at", now.Format("15:04"))

	created.EmployeeName = &emp.FullName
	return a.toResponse(created), nil
}

// ClockOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.activeEmployee(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.clock.Now()
	today := worktime.DateOf(now)

	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if err := checkoutAllowed(existing); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	cfg := a.settingsService.Load(ctx)
	expected := worktime.ComputeCheckoutTime(existing.ClockIn, cfg.WorkingMinutes(), today)

	err = a.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		updated, err := a.AttendanceRepository.ClockOut(txCtx, existing.ID, now)
		if err != nil {
			return err
		}
		if !updated {
			// Closed concurrently, most likely by the absence finalizer.
			current, err := a.AttendanceRepository.GetByEmployeeAndDate(txCtx, emp.ID, today)
			if err != nil {
				return err
			}
			if err := checkoutAllowed(current); err != nil {
				return err
			}
			return attendance.ErrAlreadyCheckedOut
		}

		return a.EventRepository.Append(txCtx, attendance.Event{
			EmployeeID: emp.ID,
			Date:       today,
			Kind:       attendance.EventCheckedOut,
			Payload: map[string]interface{}{
				"attendance_id":     existing.ID,
				"clock_out":         now.Format(time.RFC3339),
				"expected_checkout": expected.Format(time.RFC3339),
			},
		})
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("Employee checked out", "employee_id", emp.ID, "date", today.Format(dateLayout), "at", now.Format("15:04"))

	existing.ClockOut = &now
	existing.EmployeeName = &emp.FullName
	return a.toResponse(*existing), nil
}

func checkoutAllowed(record *attendance.Attendance) error {
	switch {
	case record == nil || record.ClockIn == nil:
		if record != nil && record.Status == attendance.StatusAbsent {
			return attendance.ErrMarkedAbsent
		}
		return attendance.ErrNotCheckedIn
	case record.Status == attendance.StatusAbsent:
		return attendance.ErrMarkedAbsent
	case record.ClockOut != nil:
		return attendance.ErrAlreadyCheckedOut
	}
	return nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context, employeeID string) (attendance.TodayResponse, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	today := a.clock.Today()
	resp := attendance.TodayResponse{
		Date:   today.Format(dateLayout),
		Events: []attendance.EventResponse{},
	}

	record, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}
	if record != nil {
		record.EmployeeName = &emp.FullName
		r := a.toResponse(*record)
		resp.Attendance = &r

		if record.ClockIn != nil && record.Status != attendance.StatusAbsent {
			cfg := a.settingsService.Load(ctx)
			schedule := worktime.ComputeReminderSchedule(
				worktime.ComputeCheckoutTime(record.ClockIn, cfg.WorkingMinutes(), today),
			)
			resp.ExpectedCheckout = a.formatTime(schedule.Checkout)
			resp.PreCheckoutAt = a.formatTime(schedule.PreCheckout)
			resp.OverdueAt = a.formatTime(schedule.Overdue)
			resp.FinalWindowEnd = a.formatTime(schedule.FinalEnd)
		}
	}

	events, err := a.EventRepository.ListByEmployeeAndDate(ctx, emp.ID, today)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to list attendance events: %w", err)
	}
	for _, e := range events {
		resp.Events = append(resp.Events, attendance.EventResponse{
			Kind:      string(e.Kind),
			Payload:   e.Payload,
			CreatedAt: e.CreatedAt.In(a.clock.Location()).Format(time.RFC3339),
		})
	}

	return resp, nil
}

func (a *AttendanceServiceImpl) formatTime(t time.Time) *string {
	return timePtrToString(&t, a.clock.Location())
}

func (a *AttendanceServiceImpl) toResponse(att attendance.Attendance) attendance.AttendanceResponse {
	loc := a.clock.Location()
	resp := attendance.AttendanceResponse{
		ID:              att.ID,
		EmployeeID:      att.EmployeeID,
		EmployeeName:    att.EmployeeName,
		Date:            att.Date.Format(dateLayout),
		ClockInTime:     timePtrToString(att.ClockIn, loc),
		ClockOutTime:    timePtrToString(att.ClockOut, loc),
		Status:          string(att.Status),
		OvertimeMinutes: att.OvertimeMinutes,
		Remarks:         att.Remarks,
	}
	if att.OvertimeAmount != nil {
		hours := att.OvertimeAmount.StringFixed(2)
		resp.OvertimeHours = &hours
	}
	return resp
}
