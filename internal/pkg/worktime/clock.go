package worktime

import "time"

// Clock yields wall time in the organization's timezone.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.Local
	}
	return Clock{loc: loc, now: time.Now}
}

// FixedClock always reports at, in at's location.
func FixedClock(at time.Time) Clock {
	return Clock{loc: at.Location(), now: func() time.Time { return at }}
}

// FuncClock reports whatever fn returns, converted to loc.
func FuncClock(loc *time.Location, fn func() time.Time) Clock {
	return Clock{loc: loc, now: fn}
}

func (c Clock) Now() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now().In(c.Location())
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Today is midnight of the current calendar date.
func (c Clock) Today() time.Time {
	return DateOf(c.Now())
}

// DateOf truncates t to midnight in t's own location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// MinuteOfDay is t's wall-clock minute within its day.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// AtMinute is the instant on day's date at the given minute of day.
func AtMinute(day time.Time, minute int) time.Time {
	return DateOf(day).Add(time.Duration(minute) * time.Minute)
}
