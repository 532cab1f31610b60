package reminder

import (
	"context"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

// RunCheckinPass implements reminder.Service.
func (s *ReminderServiceImpl) RunCheckinPass(ctx context.Context, force bool) (reminder.PassResult, error) {
	return s.locked(ctx, reminder.PassCheckin, func(ctx context.Context) (reminder.PassResult, error) {
		return s.checkinPass(ctx, force), nil
	})
}

func (s *ReminderServiceImpl) checkinPass(ctx context.Context, force bool) reminder.PassResult {
	cfg := s.settingsService.Load(ctx)
	now := s.clock.Now()
	today := worktime.DateOf(now)
	result := s.newResult(reminder.PassCheckin, today)

	if !s.settingsService.IsWorkingDay(ctx, cfg, today) {
		result.Skip("non-working day")
		return result
	}

	if !force && !checkinDue(now, cfg.ReminderMinutes(), s.cfg.CheckinWindow) {
		result.Skip("outside check-in reminder window")
		return result
	}

	reminderTime := worktime.FormatMinutesAsClock(cfg.ReminderMinutes())
	for _, emp := range s.gateway.employeesWithoutCheckin(ctx, today) {
		result.Considered++
		o := outcomeFor(emp, reminder.ActionSent)
		o.Kind = reminder.KindCheckin

		if in := s.gateway.todayCheckin(ctx, emp.ID, today); in != nil {
			o.Action = reminder.ActionCheckedIn
			result.Add(o)
			continue
		}

		dispatch, sent, err := s.notifyOnce(ctx, emp, checkinMessage(emp.FullName, today, reminderTime))
		switch {
		case err != nil:
			o = failed(o, err)
		case !sent:
			o.Action = reminder.ActionAlreadySent
		default:
			o.Dispatch = dispatch
		}
		result.Add(o)
	}

	return result
}

// checkinDue reports whether the scheduled check-in pass should act at now.
func checkinDue(now time.Time, reminderMinute int, window time.Duration) bool {
	start := worktime.AtMinute(now, reminderMinute)
	return !now.Before(start) && now.Before(start.Add(window))
}
