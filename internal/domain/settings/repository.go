package settings

import (
	"context"
	"time"
)

type SettingsRepository interface {
	// GetCurrent returns nil, nil when no settings row exists.
	GetCurrent(ctx context.Context) (*AttendanceSettings, error)
	Save(ctx context.Context, s AttendanceSettings) (AttendanceSettings, error)
}

type HolidayRepository interface {
	GetByDate(ctx context.Context, date time.Time) (*Holiday, error)
}
