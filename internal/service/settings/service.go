package settings

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

type SettingsServiceImpl struct {
	settingsRepo settings.SettingsRepository
	holidayRepo  settings.HolidayRepository
}

func NewSettingsService(settingsRepo settings.SettingsRepository, holidayRepo settings.HolidayRepository) settings.SettingsService {
	return &SettingsServiceImpl{
		settingsRepo: settingsRepo,
		holidayRepo:  holidayRepo,
	}
}

// Load implements settings.SettingsService.
func (s *SettingsServiceImpl) Load(ctx context.Context) settings.AttendanceSettings {
	current, err := s.settingsRepo.GetCurrent(ctx)
	if err != nil {
		slog.Warn("Failed to load attendance settings, using defaults", "error", err)
		return settings.DefaultSettings()
	}
	if current == nil {
		return settings.DefaultSettings()
	}

	return sanitize(*current)
}

// sanitize replaces malformed fields with their defaults one by one.
func sanitize(s settings.AttendanceSettings) settings.AttendanceSettings {
	if _, ok := worktime.ParseClockToMinutes(s.ReminderTime); !ok {
		slog.Warn("Invalid reminder_time in settings, using default",
			"value", s.ReminderTime, "default", settings.DefaultReminderTime)
		s.ReminderTime = settings.DefaultReminderTime
	}

	if m := worktime.ParseDurationToMinutes(s.WorkingHours); m <= 0 || m >= worktime.MinutesPerDay {
		slog.Warn("Invalid working_hours in settings, using default",
			"value", s.WorkingHours, "default", settings.DefaultWorkingHours)
		s.WorkingHours = settings.DefaultWorkingHours
	}

	return s
}

// IsWorkingDay implements settings.SettingsService.
func (s *SettingsServiceImpl) IsWorkingDay(ctx context.Context, cfg settings.AttendanceSettings, day time.Time) bool {
	if cfg.IsWeeklyOff(day) {
		return false
	}

	holiday, err := s.holidayRepo.GetByDate(ctx, worktime.DateOf(day))
	if err != nil {
		slog.Warn("Failed to check holiday calendar, assuming working day", "date", day.Format("2006-01-02"), "error", err)
		return true
	}

	return holiday == nil
}

// Get implements settings.SettingsService.
func (s *SettingsServiceImpl) Get(ctx context.Context) (settings.SettingsResponse, error) {
	current, err := s.settingsRepo.GetCurrent(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	if current == nil {
		return toResponse(settings.DefaultSettings(), true), nil
	}

	return toResponse(sanitize(*current), false), nil
}

// Update implements settings.SettingsService.
func (s *SettingsServiceImpl) Update(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	saved, err := s.settingsRepo.Save(ctx, settings.AttendanceSettings{
		ReminderTime: req.ReminderTime,
		WorkingHours: req.WorkingHours,
		WeeklyOff:    req.ToWeeklyOff(),
	})
	if err != nil {
		return settings.SettingsResponse{}, err
	}

	slog.Info("Attendance settings updated",
		"reminder_time", saved.ReminderTime,
		"working_hours", saved.WorkingHours,
		"weekly_off", saved.WeeklyOff.Days(),
	)

	return toResponse(saved, false), nil
}

func toResponse(s settings.AttendanceSettings, isDefault bool) settings.SettingsResponse {
	resp := settings.SettingsResponse{
		ReminderTime:      worktime.FormatMinutesAsClock(s.ReminderMinutes()),
		WorkingHours:      worktime.FormatMinutesAsClock(s.WorkingMinutes()),
		WorkingHoursHuman: worktime.FormatMinutesHuman(s.WorkingMinutes()),
		WeeklyOff:         s.WeeklyOff.Days(),
		IsDefault:         isDefault,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
