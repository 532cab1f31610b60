package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

// RunAbsenceBackfill implements reminder.Service. The whole batch commits or
// none of it does.
func (s *ReminderServiceImpl) RunAbsenceBackfill(ctx context.Context, date time.Time) (reminder.PassResult, error) {
	day := worktime.DateOf(date.In(s.clock.Location()))
	if !day.Before(s.clock.Today()) {
		return reminder.PassResult{}, reminder.ErrFutureDate
	}

	return s.locked(ctx, reminder.PassAbsenceBackfill, func(ctx context.Context) (reminder.PassResult, error) {
		return s.absenceBackfill(ctx, day)
	})
}

func (s *ReminderServiceImpl) absenceBackfill(ctx context.Context, day time.Time) (reminder.PassResult, error) {
	cfg := s.settingsService.Load(ctx)
	result := s.newResult(reminder.PassAbsenceBackfill, day)

	if !s.settingsService.IsWorkingDay(ctx, cfg, day) {
		result.Skip("non-working day")
		return result, nil
	}

	remark := backfillRemark()
	var outcomes []reminder.EmployeeOutcome
	err := s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		outcomes = outcomes[:0]

		emps, err := s.attendanceRepo.ListActiveWithoutRecord(txCtx, day)
		if err != nil {
			return fmt.Errorf("failed to list employees without a record: %w", err)
		}

		for _, emp := range emps {
			inserted, err := s.attendanceRepo.CreateAbsence(txCtx, emp.ID, day, remark)
			if err != nil {
				return fmt.Errorf("failed to backfill absence for employee %s: %w", emp.ID, err)
			}
			if !inserted {
				outcomes = append(outcomes, outcomeFor(emp, reminder.ActionUnchanged))
				continue
			}

			if err := s.eventRepo.Append(txCtx, attendance.Event{
				EmployeeID: emp.ID,
				Date:       day,
				Kind:       attendance.EventAbsentBackfilled,
				Payload:    map[string]interface{}{"remark": remark},
			}); err != nil {
				return fmt.Errorf("failed to record backfill event for employee %s: %w", emp.ID, err)
			}
			outcomes = append(outcomes, outcomeFor(emp, reminder.ActionBackfilled))
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	for _, o := range outcomes {
		result.Considered++
		result.Add(o)
	}
	return result, nil
}
