// Package worktime holds the time-of-day arithmetic used by the attendance
// reminder engine. Everything here is pure: no I/O and no wall clock.
package worktime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	MinutesPerDay = 24 * 60

	// DefaultWorkingMinutes is used whenever a working-hours value cannot be parsed.
	DefaultWorkingMinutes = 9 * 60

	maxMinutes = math.MaxInt32
)

// ParseDurationToMinutes converts a working-hours value to minutes.
//
// Accepted forms are "HH:MM", "H:MM" (a duration, not a clock time) and a
// decimal number of hours given either as a string ("8.5") or as a number.
// Anything else yields DefaultWorkingMinutes.
func ParseDurationToMinutes(input any) int {
	switch v := input.(type) {
	case string:
		return parseDurationString(v)
	case int:
		return hoursToMinutes(float64(v))
	case int64:
		return hoursToMinutes(float64(v))
	case float32:
		return hoursToMinutes(float64(v))
	case float64:
		return hoursToMinutes(v)
	default:
		return DefaultWorkingMinutes
	}
}

func parseDurationString(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultWorkingMinutes
	}

	if strings.Contains(s, ":") {
		minutes, ok := parseHourMinute(s, false)
		if !ok {
			return DefaultWorkingMinutes
		}
		return minutes
	}

	hours, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return DefaultWorkingMinutes
	}
	return hoursToMinutes(hours)
}

func hoursToMinutes(hours float64) int {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 || hours*60 > maxMinutes {
		return DefaultWorkingMinutes
	}
	whole := math.Floor(hours)
	frac := math.Round((hours - whole) * 60)
	return int(whole)*60 + int(frac)
}

// ParseClockToMinutes parses a time-of-day such as "8:55" or "18:05" into the
// minute of the day. Seconds, when present, are ignored.
func ParseClockToMinutes(s string) (int, bool) {
	return parseHourMinute(strings.TrimSpace(s), true)
}

func parseHourMinute(s string, clock bool) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	if !isDigits(parts[0]) || !isDigits(parts[1]) {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours > maxMinutes/60 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes > 59 {
		return 0, false
	}
	if clock && hours > 23 {
		return 0, false
	}

	return hours*60 + minutes, true
}

// isDigits rejects signs and spaces that strconv.Atoi would accept or trim.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// WrapMinutes folds a minute count into [0, MinutesPerDay).
func WrapMinutes(total int) int {
	return ((total % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
}

// FormatMinutesAsClock renders minutes as "HH:MM", wrapping past midnight.
func FormatMinutesAsClock(totalMinutes int) string {
	m := WrapMinutes(totalMinutes)
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FormatMinutesHuman renders minutes as "Xh Ym", "Xh" or "Ym".
func FormatMinutesHuman(totalMinutes int) string {
	if totalMinutes < 0 {
		totalMinutes = -totalMinutes
	}
	hours := totalMinutes / 60
	minutes := totalMinutes % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
