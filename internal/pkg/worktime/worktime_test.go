package worktime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDurationToMinutes(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  int
	}{
		{"padded clock form", "09:00", 540},
		{"short clock form", "8:30", 510},
		{"with seconds", "07:45:00", 465},
		{"decimal string", "8.5", 510},
		{"integer string", "10", 600},
		{"float number", 7.25, 435},
		{"int number", 6, 360},
		{"empty", "", DefaultWorkingMinutes},
		{"garbage", "nine hours", DefaultWorkingMinutes},
		{"bad minutes", "08:75", DefaultWorkingMinutes},
		{"negative", -2.0, DefaultWorkingMinutes},
		{"negative clock form", "-0:30", DefaultWorkingMinutes},
		{"plus sign", "+8:00", DefaultWorkingMinutes},
		{"huge exponent", "1e300", DefaultWorkingMinutes},
		{"huge integer string", "99999999999999999999", DefaultWorkingMinutes},
		{"huge clock hours", "99999999999999:00", DefaultWorkingMinutes},
		{"huge float", 1e18, DefaultWorkingMinutes},
		{"unsupported type", []string{"08:00"}, DefaultWorkingMinutes},
		{"nil", nil, DefaultWorkingMinutes},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ParseDurationToMinutes(c.input))
		})
	}
}

func TestParseClockToMinutes(t *testing.T) {
	got, ok := ParseClockToMinutes("8:55")
	require.True(t, ok)
	assert.Equal(t, 535, got)

	_, ok = ParseClockToMinutes("24:00")
	assert.False(t, ok)

	_, ok = ParseClockToMinutes("noon")
	assert.False(t, ok)

	_, ok = ParseClockToMinutes("-0:30")
	assert.False(t, ok)
}

func TestFormatMinutesAsClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinutesAsClock(0))
	assert.Equal(t, "09:05", FormatMinutesAsClock(545))
	assert.Equal(t, "01:00", FormatMinutesAsClock(25*60))
	assert.Equal(t, "23:50", FormatMinutesAsClock(-10))
}

func TestClockRoundTrip(t *testing.T) {
	inputs := map[string]string{
		"9:05":  "09:05",
		"09:05": "09:05",
		"0:00":  "00:00",
		"23:59": "23:59",
		"12:30": "12:30",
	}
	for in, want := range inputs {
		assert.Equal(t, want, FormatMinutesAsClock(ParseDurationToMinutes(in)), in)
	}
}

func TestFormatMinutesHuman(t *testing.T) {
	assert.Equal(t, "8h 30m", FormatMinutesHuman(510))
	assert.Equal(t, "9h", FormatMinutesHuman(540))
	assert.Equal(t, "45m", FormatMinutesHuman(45))
	assert.Equal(t, "0m", FormatMinutesHuman(0))
}

func TestComputeCheckoutMinutes(t *testing.T) {
	checkin := 23 * 60
	assert.Equal(t, "01:00", FormatMinutesAsClock(ComputeCheckoutMinutes(&checkin, 120)))

	checkin = 9*60 + 30
	assert.Equal(t, "18:00", FormatMinutesAsClock(ComputeCheckoutMinutes(&checkin, 510)))

	assert.Equal(t, "09:00", FormatMinutesAsClock(ComputeCheckoutMinutes(nil, 540)))
}

func TestComputeCheckoutTime(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	day := time.Date(2024, 3, 5, 0, 0, 0, 0, loc)

	checkin := time.Date(2024, 3, 5, 23, 0, 0, 0, loc)
	got := ComputeCheckoutTime(&checkin, 120, day)
	assert.Equal(t, time.Date(2024, 3, 6, 1, 0, 0, 0, loc), got)
	assert.Equal(t, "01:00", got.Format("15:04"))

	fallback := ComputeCheckoutTime(nil, 540, day)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, loc), fallback)
}

func TestReminderScheduleStages(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	at := func(h, m int) time.Time { return time.Date(2024, 3, 5, h, m, 0, 0, loc) }

	checkin := at(9, 30)
	checkout := ComputeCheckoutTime(&checkin, ParseDurationToMinutes("08:30"), at(0, 0))
	require.Equal(t, at(18, 0), checkout)

	schedule := ComputeReminderSchedule(checkout)
	assert.Equal(t, at(17, 55), schedule.PreCheckout)
	assert.Equal(t, at(18, 10), schedule.Overdue)
	assert.Equal(t, at(20, 0), schedule.FinalEnd)

	cases := []struct {
		now  time.Time
		want Stage
	}{
		{at(17, 0), StageBeforeWindow},
		{at(17, 54), StageBeforeWindow},
		{at(17, 55), StagePreCheckout},
		{at(17, 59), StagePreCheckout},
		{at(18, 0), StageGrace},
		{at(18, 9), StageGrace},
		{at(18, 10), StageOverdue},
		{at(19, 59), StageOverdue},
		{at(20, 0), StageExpired},
		{at(23, 0), StageExpired},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, schedule.StageAt(c.now), c.now.Format("15:04"))
	}

	assert.Equal(t, 15, schedule.MinutesSinceCheckout(at(18, 15)))
	assert.Equal(t, -5, schedule.MinutesSinceCheckout(at(17, 55)))
}

func TestComputeOvertime(t *testing.T) {
	base := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	required := base.Add(9 * time.Hour)

	t.Run("below threshold is zero", func(t *testing.T) {
		actual := required.Add(14*time.Minute + 59*time.Second)
		got := ComputeOvertime(&base, &actual, &required)
		assert.True(t, got.IsZero())
		assert.True(t, got.Hours.IsZero())
	})

	t.Run("exactly threshold counts", func(t *testing.T) {
		actual := required.Add(15 * time.Minute)
		got := ComputeOvertime(&base, &actual, &required)
		assert.Equal(t, 15, got.Minutes)
		assert.Equal(t, "0.25", got.Hours.StringFixed(2))
	})

	t.Run("hours rounded to two decimals", func(t *testing.T) {
		actual := required.Add(100 * time.Minute)
		got := ComputeOvertime(&base, &actual, &required)
		assert.Equal(t, 100, got.Minutes)
		assert.Equal(t, "1.67", got.Hours.StringFixed(2))
	})

	t.Run("early checkout is zero", func(t *testing.T) {
		actual := required.Add(-time.Hour)
		assert.True(t, ComputeOvertime(&base, &actual, &required).IsZero())
	})

	t.Run("missing input is zero", func(t *testing.T) {
		actual := required.Add(time.Hour)
		assert.True(t, ComputeOvertime(nil, &actual, &required).IsZero())
		assert.True(t, ComputeOvertime(&base, nil, &required).IsZero())
		assert.True(t, ComputeOvertime(&base, &actual, nil).IsZero())
	})
}

func TestClock(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)

	// 2025-03-04 20:30 UTC is 2025-03-05 03:30 in Jakarta.
	utc := time.Date(2025, 3, 4, 20, 30, 0, 0, time.UTC)
	clock := FuncClock(jakarta, func() time.Time { return utc })

	assert.Equal(t, 5, clock.Now().Day())
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, jakarta), clock.Today())
	assert.Equal(t, 3*60+30, MinuteOfDay(clock.Now()))
	assert.Equal(t, time.Date(2025, 3, 5, 8, 55, 0, 0, jakarta), AtMinute(clock.Now(), 8*60+55))

	fixed := FixedClock(time.Date(2025, 3, 4, 9, 0, 0, 0, jakarta))
	assert.Equal(t, jakarta, fixed.Location())
	assert.Equal(t, 9, fixed.Now().Hour())
}
