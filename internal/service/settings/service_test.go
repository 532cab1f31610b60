package settings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingsRepo struct {
	current *settings.AttendanceSettings
	err     error
	saved   *settings.AttendanceSettings
}

func (r *fakeSettingsRepo) GetCurrent(context.Context) (*settings.AttendanceSettings, error) {
	return r.current, r.err
}

func (r *fakeSettingsRepo) Save(_ context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	s.ID = "settings-1"
	s.UpdatedAt = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	r.saved = &s
	return s, nil
}

type fakeHolidayRepo struct {
	holidays map[string]string
	err      error
}

func (r *fakeHolidayRepo) GetByDate(_ context.Context, date time.Time) (*settings.Holiday, error) {
	if r.err != nil {
		return nil, r.err
	}
	if name, ok := r.holidays[date.Format("2006-01-02")]; ok {
		return &settings.Holiday{Date: date, Name: name}, nil
	}
	return nil, nil
}

func TestLoad_FallsBackToDefaults(t *testing.T) {
	ctx := context.Background()

	svc := NewSettingsService(&fakeSettingsRepo{}, &fakeHolidayRepo{})
	assert.Equal(t, settings.DefaultSettings(), svc.Load(ctx))

	svc = NewSettingsService(&fakeSettingsRepo{err: errors.New("connection refused")}, &fakeHolidayRepo{})
	assert.Equal(t, settings.DefaultSettings(), svc.Load(ctx))
}

func TestLoad_SanitizesFieldsIndependently(t *testing.T) {
	repo := &fakeSettingsRepo{current: &settings.AttendanceSettings{
		ReminderTime: "25:99",
		WorkingHours: "08:00",
		WeeklyOff:    settings.WeeklyOff{time.Friday: true},
	}}
	svc := NewSettingsService(repo, &fakeHolidayRepo{})

	got := svc.Load(context.Background())
	assert.Equal(t, settings.DefaultReminderTime, got.ReminderTime)
	assert.Equal(t, "08:00", got.WorkingHours)
	assert.Equal(t, 480, got.WorkingMinutes())
	assert.True(t, got.WeeklyOff[time.Friday])
}

func TestIsWorkingDay(t *testing.T) {
	holidays := &fakeHolidayRepo{holidays: map[string]string{"2025-03-31": "Eid al-Fitr"}}
	svc := NewSettingsService(&fakeSettingsRepo{}, holidays)
	cfg := settings.DefaultSettings()
	ctx := context.Background()

	tue := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)
	sat := time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)
	eid := time.Date(2025, 3, 31, 9, 0, 0, 0, time.UTC)

	assert.True(t, svc.IsWorkingDay(ctx, cfg, tue))
	assert.False(t, svc.IsWorkingDay(ctx, cfg, sat))
	assert.False(t, svc.IsWorkingDay(ctx, cfg, eid))

	holidays.err = errors.New("timeout")
	assert.True(t, svc.IsWorkingDay(ctx, cfg, eid), "lookup errors assume a working day")
}

func TestGet_ReportsDefaults(t *testing.T) {
	svc := NewSettingsService(&fakeSettingsRepo{}, &fakeHolidayRepo{})

	resp, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)
	assert.Equal(t, "08:55", resp.ReminderTime)
	assert.Equal(t, "09:00", resp.WorkingHours)
	assert.Equal(t, []string{"sunday", "saturday"}, resp.WeeklyOff)
	assert.Nil(t, resp.UpdatedAt)
}

func TestUpdate(t *testing.T) {
	repo := &fakeSettingsRepo{}
	svc := NewSettingsService(repo, &fakeHolidayRepo{})

	_, err := svc.Update(context.Background(), settings.UpdateSettingsRequest{
		ReminderTime: "9:00",
		WorkingHours: "9h",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Nil(t, repo.saved)

	resp, err := svc.Update(context.Background(), settings.UpdateSettingsRequest{
		ReminderTime: "8:30",
		WorkingHours: "08:30",
		WeeklyOff:    []string{"Sun"},
	})
	require.NoError(t, err)
	require.NotNil(t, repo.saved)
	assert.False(t, resp.IsDefault)
	assert.Equal(t, "08:30", resp.ReminderTime)
	assert.Equal(t, []string{"sunday"}, resp.WeeklyOff)
	require.NotNil(t, resp.UpdatedAt)
}
