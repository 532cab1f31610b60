package settings

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
)

const (
	DefaultReminderTime = "8:55"
	DefaultWorkingHours = "09:00"
)

// WeeklyOff flags non-working weekdays, indexed by time.Weekday.
type WeeklyOff [7]bool

func DefaultWeeklyOff() WeeklyOff {
	var w WeeklyOff
	w[time.Sunday] = true
	w[time.Saturday] = true
	return w
}

// Days returns the lowercase names of the flagged weekdays.
func (w WeeklyOff) Days() []string {
	days := make([]string, 0, 2)
	for d := time.Sunday; d <= time.Saturday; d++ {
		if w[d] {
			days = append(days, strings.ToLower(d.String()))
		}
	}
	return days
}

// ParseWeekday accepts full or three-letter English weekday names.
func ParseWeekday(name string) (time.Weekday, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if name == full || name == full[:3] {
			return d, true
		}
	}
	return 0, false
}

// AttendanceSettings is the single organization-wide attendance configuration.
type AttendanceSettings struct {
	ID           string
	ReminderTime string
	WorkingHours string
	WeeklyOff    WeeklyOff
	UpdatedAt    time.Time
}

func DefaultSettings() AttendanceSettings {
	return AttendanceSettings{
		ReminderTime: DefaultReminderTime,
		WorkingHours: DefaultWorkingHours,
		WeeklyOff:    DefaultWeeklyOff(),
	}
}

// WorkingMinutes is the configured shift length. Unparseable values fall
// back to nine hours.
func (s AttendanceSettings) WorkingMinutes() int {
	return worktime.ParseDurationToMinutes(s.WorkingHours)
}

// ReminderMinutes is the check-in reminder time as minute of day.
func (s AttendanceSettings) ReminderMinutes() int {
	if m, ok := worktime.ParseClockToMinutes(s.ReminderTime); ok {
		return m
	}
	m, _ := worktime.ParseClockToMinutes(DefaultReminderTime)
	return m
}

// IsWeeklyOff reports whether day falls on a configured weekly-off weekday.
func (s AttendanceSettings) IsWeeklyOff(day time.Time) bool {
	return s.WeeklyOff[day.Weekday()]
}

// Holiday is a dated public holiday on top of the weekly-off pattern.
type Holiday struct {
	Date time.Time
	Name string
}
