package reminder

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

// RunCheckoutPass implements reminder.Service.
func (s *ReminderServiceImpl) RunCheckoutPass(ctx context.Context) (reminder.PassResult, error) {
	return s.locked(ctx, reminder.PassCheckout, func(ctx context.Context) (reminder.PassResult, error) {
		return s.checkoutPass(ctx), nil
	})
}

func (s *ReminderServiceImpl) checkoutPass(ctx context.Context) reminder.PassResult {
	cfg := s.settingsService.Load(ctx)
	now := s.clock.Now()
	today := worktime.DateOf(now)
	result := s.newResult(reminder.PassCheckout, today)

	for _, row := range s.gateway.employeesWithoutCheckout(ctx, today) {
		result.Considered++
		result.Add(s.checkoutReminder(ctx, row, cfg.WorkingMinutes(), now))
	}

	return result
}

func (s *ReminderServiceImpl) checkoutReminder(ctx context.Context, row attendance.EmployeeAttendance, workingMinutes int, now time.Time) reminder.EmployeeOutcome {
	emp, rec := row.Employee, row.Attendance
	o := outcomeFor(emp, reminder.ActionNotDue)
	today := worktime.DateOf(now)

	if rec.Status == attendance.StatusAbsent || rec.ClockIn == nil {
		o.Action = reminder.ActionAlreadyClosed
		return o
	}

	checkin := rec.ClockIn.In(now.Location())
	schedule := worktime.ComputeReminderSchedule(worktime.ComputeCheckoutTime(&checkin, workingMinutes, today))
	stage := schedule.StageAt(now)
	o.Stage = stage.String()

	var msg reminder.Message
	switch stage {
	case worktime.StageOverdue:
		msg = checkoutFinalMessage(today, schedule, checkin, now)
	case worktime.StagePreCheckout:
		// The final reminder is authoritative: never step back to the
		// pre-checkout reminder once it has gone out.
		finalSent, err := s.logRepo.WasSent(ctx, emp.ID, today, reminder.KindCheckoutFinal)
		if err != nil {
			return failed(o, err)
		}
		if finalSent {
			o.Kind = reminder.KindCheckoutFinal
			o.Action = reminder.ActionAlreadySent
			return o
		}
		msg = checkoutBeforeMessage(today, schedule, checkin)
	default:
		return o
	}
	o.Kind = msg.Kind

	// A checkout may have landed after the list was read.
	if s.gateway.hasCheckedOutToday(ctx, emp.ID, today) {
		o.Action = reminder.ActionCheckedOut
		return o
	}

	dispatch, sent, err := s.notifyOnce(ctx, emp, msg)
	switch {
	case err != nil:
		return failed(o, err)
	case !sent:
		o.Action = reminder.ActionAlreadySent
	default:
		o.Action = reminder.ActionSent
		o.Dispatch = dispatch
	}
	return o
}
