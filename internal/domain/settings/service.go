package settings

import (
	"context"
	"time"
)

type SettingsService interface {
	// Load never fails. Missing or unreadable settings yield DefaultSettings.
	Load(ctx context.Context) AttendanceSettings

	// IsWorkingDay combines the weekly-off flags with the holiday calendar.
	IsWorkingDay(ctx context.Context, s AttendanceSettings, day time.Time) bool

	Get(ctx context.Context) (SettingsResponse, error)
	Update(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)
}
