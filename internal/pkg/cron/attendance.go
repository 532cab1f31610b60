package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
)

// AttendanceSchedule is when each reminder job fires.
type AttendanceSchedule struct {
	CheckinInterval  time.Duration
	CheckoutInterval time.Duration
	OvertimeSpec     string
	AbsenceSpec      string
	BackfillSpec     string
}

type AttendanceJobs struct {
	reminderSvc reminder.Service
	schedule    AttendanceSchedule
	now         func() time.Time
}

func NewAttendanceJobs(reminderSvc reminder.Service, schedule AttendanceSchedule, now func() time.Time) *AttendanceJobs {
	if now == nil {
		now = time.Now
	}
	return &AttendanceJobs{
		reminderSvc: reminderSvc,
		schedule:    schedule,
		now:         now,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) error {
	scheduler.AddJob(reminder.PassCheckin, j.schedule.CheckinInterval, j.CheckinReminders)
	scheduler.AddJob(reminder.PassCheckout, j.schedule.CheckoutInterval, j.CheckoutReminders)

	daily := []struct {
		name string
		spec string
		fn   func(ctx context.Context) error
	}{
		{reminder.PassOvertimeFinalizer, j.schedule.OvertimeSpec, j.OvertimeFinalizer},
		{reminder.PassAbsenceFinalizer, j.schedule.AbsenceSpec, j.AbsenceFinalizer},
		{reminder.PassAbsenceBackfill, j.schedule.BackfillSpec, j.AbsenceBackfill},
	}
	for _, d := range daily {
		if err := scheduler.AddDaily(d.name, d.spec, d.fn); err != nil {
			return err
		}
	}
	return nil
}

func (j *AttendanceJobs) CheckinReminders(ctx context.Context) error {
	return skipInProgress(j.reminderSvc.RunCheckinPass(ctx, false))
}

func (j *AttendanceJobs) CheckoutReminders(ctx context.Context) error {
	return skipInProgress(j.reminderSvc.RunCheckoutPass(ctx))
}

func (j *AttendanceJobs) OvertimeFinalizer(ctx context.Context) error {
	return skipInProgress(j.reminderSvc.RunOvertimeFinalizer(ctx))
}

func (j *AttendanceJobs) AbsenceFinalizer(ctx context.Context) error {
	return skipInProgress(j.reminderSvc.RunAbsenceFinalizer(ctx))
}

// AbsenceBackfill closes out the previous calendar day.
func (j *AttendanceJobs) AbsenceBackfill(ctx context.Context) error {
	yesterday := j.now().AddDate(0, 0, -1)
	return skipInProgress(j.reminderSvc.RunAbsenceBackfill(ctx, yesterday))
}

// skipInProgress turns a run that found another holder into a no-op and
// reports per-employee failures as a job error.
func skipInProgress(result reminder.PassResult, err error) error {
	if errors.Is(err, reminder.ErrJobInProgress) {
		slog.Debug("Reminder job already running elsewhere, skipping")
		return nil
	}
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("%s: %d of %d employees failed", result.Pass, result.Failed, result.Considered)
	}
	return nil
}
