package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

// RunAbsenceFinalizer implements reminder.Service.
func (s *ReminderServiceImpl) RunAbsenceFinalizer(ctx context.Context) (reminder.PassResult, error) {
	return s.locked(ctx, reminder.PassAbsenceFinalizer, s.absenceFinalizer)
}

func (s *ReminderServiceImpl) absenceFinalizer(ctx context.Context) (reminder.PassResult, error) {
	now := s.clock.Now()
	today := worktime.DateOf(now)
	result := s.newResult(reminder.PassAbsenceFinalizer, today)

	rows, err := s.attendanceRepo.ListWithoutCheckout(ctx, today)
	if err != nil {
		return result, fmt.Errorf("failed to list open attendance: %w", err)
	}

	remark := autoAbsentRemark(now)
	for _, row := range rows {
		result.Considered++
		emp, rec := row.Employee, row.Attendance
		o := outcomeFor(emp, reminder.ActionAlreadyClosed)

		var effects []Effect
		err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			effects = nil
			updated, err := s.attendanceRepo.MarkAbsentIfOpen(txCtx, rec.ID, remark)
			if err != nil || !updated {
				return err
			}

			payload := map[string]interface{}{
				"attendance_id": rec.ID,
				"remark":        remark,
			}
			if rec.ClockIn != nil {
				payload["clock_in"] = rec.ClockIn.Format(time.RFC3339)
			}
			if err := s.eventRepo.Append(txCtx, attendance.Event{
				EmployeeID: emp.ID,
				Date:       today,
				Kind:       attendance.EventAutoAbsent,
				Payload:    payload,
			}); err != nil {
				return err
			}

			o.Action = reminder.ActionMarkedAbsent
			o.Kind = reminder.KindAutoAbsentWarning
			effects = append(effects, s.notifyEffect(emp, autoAbsentMessage(today, rec.ClockIn)))
			return nil
		})
		if err != nil {
			result.Add(failed(o, err))
			continue
		}

		runEffects(ctx, effects)
		result.Add(o)
	}

	return result, nil
}

// RunOvertimeFinalizer implements reminder.Service.
func (s *ReminderServiceImpl) RunOvertimeFinalizer(ctx context.Context) (reminder.PassResult, error) {
	return s.locked(ctx, reminder.PassOvertimeFinalizer, s.overtimeFinalizer)
}

func (s *ReminderServiceImpl) overtimeFinalizer(ctx context.Context) (reminder.PassResult, error) {
	cfg := s.settingsService.Load(ctx)
	now := s.clock.Now()
	today := worktime.DateOf(now)
	result := s.newResult(reminder.PassOvertimeFinalizer, today)

	rows, err := s.attendanceRepo.ListCompleted(ctx, today)
	if err != nil {
		return result, fmt.Errorf("failed to list completed attendance: %w", err)
	}

	for _, row := range rows {
		result.Considered++
		emp, rec := row.Employee, row.Attendance
		o := outcomeFor(emp, reminder.ActionNoOvertime)

		if rec.ClockIn == nil || rec.ClockOut == nil {
			result.Add(o)
			continue
		}
		checkin := rec.ClockIn.In(now.Location())
		checkout := rec.ClockOut.In(now.Location())
		required := worktime.ComputeCheckoutTime(&checkin, cfg.WorkingMinutes(), today)

		ot := worktime.ComputeOvertime(&checkin, &checkout, &required)
		if ot.IsZero() {
			result.Add(o)
			continue
		}

		remark := overtimeRemark(ot)
		var effects []Effect
		err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			effects = nil
			updated, err := s.attendanceRepo.RecordOvertime(txCtx, rec.ID, ot.Minutes, ot.Hours, remark)
			if err != nil {
				return err
			}
			if !updated {
				o.Action = reminder.ActionUnchanged
				return nil
			}

			if err := s.eventRepo.Append(txCtx, attendance.Event{
				EmployeeID: emp.ID,
				Date:       today,
				Kind:       attendance.EventOvertimeRecorded,
				Payload: map[string]interface{}{
					"attendance_id":     rec.ID,
					"overtime_minutes":  ot.Minutes,
					"overtime_hours":    ot.Hours.StringFixed(2),
					"required_checkout": required.Format(time.RFC3339),
				},
			}); err != nil {
				return err
			}

			o.Action = reminder.ActionOvertime
			o.Kind = reminder.KindOvertimeRecorded
			effects = append(effects, s.notifyEffect(emp, overtimeMessage(today, ot, required)))
			return nil
		})
		if err != nil {
			result.Add(failed(o, err))
			continue
		}

		runEffects(ctx, effects)
		result.Add(o)
	}

	return result, nil
}

func (s *ReminderServiceImpl) notifyEffect(emp employee.Employee, msg reminder.Message) Effect {
	return Effect{
		Name:       string(msg.Kind),
		EmployeeID: emp.ID,
		Run: func(ctx context.Context) error {
			_, _, err := s.notifyOnce(ctx, emp, msg)
			return err
		},
	}
}
