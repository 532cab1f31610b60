package reminder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/reminder"
	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// Config holds the schedule values the passes and the status view need.
type Config struct {
	CheckinWindow    time.Duration
	CheckinInterval  time.Duration
	CheckoutInterval time.Duration
	OvertimeSpec     string
	AbsenceSpec      string
	BackfillSpec     string
	LockTTL          time.Duration
}

type ReminderServiceImpl struct {
	attendanceRepo  attendance.AttendanceRepository
	eventRepo       attendance.EventRepository
	logRepo         reminder.LogRepository
	settingsService settings.SettingsService
	dispatcher      reminder.Dispatcher
	transactor      database.Transactor
	locker          cron.Locker
	clock           worktime.Clock
	gateway         gateway
	cfg             Config
}

func NewReminderService(
	attendanceRepo attendance.AttendanceRepository,
	eventRepo attendance.EventRepository,
	logRepo reminder.LogRepository,
	settingsService settings.SettingsService,
	dispatcher reminder.Dispatcher,
	transactor database.Transactor,
	locker cron.Locker,
	clock worktime.Clock,
	cfg Config,
) reminder.Service {
	if cfg.CheckinWindow <= 0 {
		cfg.CheckinWindow = 30 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	if locker == nil {
		locker = cron.NewLocalLocker()
	}
	return &ReminderServiceImpl{
		attendanceRepo:  attendanceRepo,
		eventRepo:       eventRepo,
		logRepo:         logRepo,
		settingsService: settingsService,
		dispatcher:      dispatcher,
		transactor:      transactor,
		locker:          locker,
		clock:           clock,
		gateway:         gateway{repo: attendanceRepo},
		cfg:             cfg,
	}
}

// locked serializes runs of the same pass across triggers and processes.
func (s *ReminderServiceImpl) locked(ctx context.Context, pass string, fn func(ctx context.Context) (reminder.PassResult, error)) (reminder.PassResult, error) {
	var result reminder.PassResult
	start := time.Now()

	err := cron.RunLocked(ctx, s.locker, pass, s.cfg.LockTTL, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if errors.Is(err, cron.ErrJobLocked) {
		return reminder.PassResult{}, reminder.ErrJobInProgress
	}

	if err != nil {
		slog.Error("Reminder pass failed", "pass", pass, "error", err, "duration", time.Since(start))
	} else {
		slog.Info("Reminder pass finished",
			"pass", pass,
			"date", result.Date,
			"skipped", result.Skipped,
			"considered", result.Considered,
			"dispatched", result.Dispatched,
			"updated", result.Updated,
			"failed", result.Failed,
			"duration", time.Since(start),
		)
	}
	return result, err
}

func (s *ReminderServiceImpl) newResult(pass string, date time.Time) reminder.PassResult {
	return reminder.PassResult{
		Pass:     pass,
		Date:     date.Format(dateLayout),
		RanAt:    s.clock.Now(),
		Outcomes: []reminder.EmployeeOutcome{},
	}
}

func outcomeFor(emp employee.Employee, action string) reminder.EmployeeOutcome {
	return reminder.EmployeeOutcome{
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Action:       action,
	}
}

func failed(o reminder.EmployeeOutcome, err error) reminder.EmployeeOutcome {
	o.Action = reminder.ActionFailed
	o.Error = err.Error()
	return o
}

// notifyOnce claims the (employee, date, kind) log row and dispatches only
// when this call created it. A claimed reminder stays claimed even if every
// channel fails.
func (s *ReminderServiceImpl) notifyOnce(ctx context.Context, emp employee.Employee, msg reminder.Message) (*reminder.DispatchResult, bool, error) {
	claimed, err := s.logRepo.Claim(ctx, reminder.LogEntry{
		EmployeeID: emp.ID,
		Date:       msg.Date,
		Kind:       msg.Kind,
		Title:      msg.Title,
		SentAt:     s.clock.Now(),
	})
	if err != nil {
		return nil, false, err
	}
	if !claimed {
		return nil, false, nil
	}

	result := s.dispatcher.Dispatch(ctx, emp, msg)
	return &result, true, nil
}

// Status implements reminder.Service.
func (s *ReminderServiceImpl) Status(ctx context.Context) reminder.StatusResponse {
	cfg := s.settingsService.Load(ctx)
	now := s.clock.Now()
	today := worktime.DateOf(now)

	reminderAt := cfg.ReminderMinutes()
	windowEnd := reminderAt + int(s.cfg.CheckinWindow/time.Minute)

	sent, err := s.logRepo.CountByDate(ctx, today)
	if err != nil {
		slog.Warn("Failed to count reminders sent today", "error", err)
		sent = map[reminder.Kind]int{}
	}

	return reminder.StatusResponse{
		Now:               now,
		Date:              today.Format(dateLayout),
		Timezone:          s.clock.Location().String(),
		IsWorkingDay:      s.settingsService.IsWorkingDay(ctx, cfg, today),
		ReminderTime:      worktime.FormatMinutesAsClock(reminderAt),
		WorkingHours:      worktime.FormatMinutesAsClock(cfg.WorkingMinutes()),
		WorkingHoursHuman: worktime.FormatMinutesHuman(cfg.WorkingMinutes()),
		WorkingMinutes:    cfg.WorkingMinutes(),
		WeeklyOff:         cfg.WeeklyOff.Days(),
		CheckinWindow: reminder.CheckinWindow{
			Start: worktime.FormatMinutesAsClock(reminderAt),
			End:   worktime.FormatMinutesAsClock(windowEnd),
		},
		CheckoutOffsets: reminder.CheckoutOffsets{
			PreCheckoutLead: int(worktime.PreCheckoutLead / time.Minute),
			OverdueDelay:    int(worktime.OverdueDelay / time.Minute),
			FinalWindow:     int(worktime.FinalWindow / time.Minute),
		},
		CheckinInterval:  s.cfg.CheckinInterval.String(),
		CheckoutInterval: s.cfg.CheckoutInterval.String(),
		DailyJobs: map[string]string{
			reminder.PassOvertimeFinalizer: s.cfg.OvertimeSpec,
			reminder.PassAbsenceFinalizer:  s.cfg.AbsenceSpec,
			reminder.PassAbsenceBackfill:   s.cfg.BackfillSpec,
		},
		SentToday: sent,
	}
}
