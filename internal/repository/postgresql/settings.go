package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepository struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepository{db: db}
}

func weeklyOffFromDays(days []string) settings.WeeklyOff {
	var w settings.WeeklyOff
	for _, day := range days {
		if d, ok := settings.ParseWeekday(day); ok {
			w[d] = true
		}
	}
	return w
}

// GetCurrent implements settings.SettingsRepository.
func (r *settingsRepository) GetCurrent(ctx context.Context) (*settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, reminder_time, working_hours, weekly_off, updated_at
		FROM attendance_settings
		WHERE singleton
	`

	var s settings.AttendanceSettings
	var days []string
	err := q.QueryRow(ctx, query).Scan(&s.ID, &s.ReminderTime, &s.WorkingHours, &days, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	s.WeeklyOff = weeklyOffFromDays(days)

	return &s, nil
}

// Save implements settings.SettingsRepository.
func (r *settingsRepository) Save(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_settings (reminder_time, working_hours, weekly_off, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (singleton) DO UPDATE
		SET reminder_time = EXCLUDED.reminder_time,
		    working_hours = EXCLUDED.working_hours,
		    weekly_off = EXCLUDED.weekly_off,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, updated_at
	`

	err := q.QueryRow(ctx, query,
		s.ReminderTime, s.WorkingHours, s.WeeklyOff.Days(), time.Now(),
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		return settings.AttendanceSettings{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}

	return s, nil
}

type holidayRepository struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) settings.HolidayRepository {
	return &holidayRepository{db: db}
}

// GetByDate implements settings.HolidayRepository.
func (r *holidayRepository) GetByDate(ctx context.Context, date time.Time) (*settings.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	var h settings.Holiday
	err := q.QueryRow(ctx, `SELECT date, name FROM holidays WHERE date = $1`, date).Scan(&h.Date, &h.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get holiday: %w", err)
	}

	return &h, nil
}
