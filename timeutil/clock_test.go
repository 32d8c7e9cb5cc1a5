package timeutil_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"worktime/timeutil"
)

func TestDurationToClock(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want timeutil.HoursMinutes
	}{
		{"zero", 0, timeutil.HoursMinutes{}},
		{"minutes only", 45 * time.Minute, timeutil.HoursMinutes{FullHours: 0, ClockMinutes: 45}},
		{"hours and minutes", 9*time.Hour + 15*time.Minute, timeutil.HoursMinutes{FullHours: 9, ClockMinutes: 15}},
		{"seconds round down", 3*time.Hour + 40*time.Minute + 20*time.Second, timeutil.HoursMinutes{FullHours: 3, ClockMinutes: 40}},
		{"seconds round up", 3*time.Hour + 40*time.Minute + 40*time.Second, timeutil.HoursMinutes{FullHours: 3, ClockMinutes: 41}},
		{"half minute to even down", 2*time.Hour + 30*time.Second, timeutil.HoursMinutes{FullHours: 2, ClockMinutes: 0}},
		{"half minute to even up", 2*time.Hour + 90*time.Second, timeutil.HoursMinutes{FullHours: 2, ClockMinutes: 2}},
		{"rounds to sixty", 7*time.Hour + 59*time.Minute + 45*time.Second, timeutil.HoursMinutes{FullHours: 7, ClockMinutes: 60}},
		{"more than a day", 333695 * time.Second, timeutil.HoursMinutes{FullHours: 92, ClockMinutes: 42}},
		{"sub-second dropped", time.Hour + 999*time.Millisecond, timeutil.HoursMinutes{FullHours: 1, ClockMinutes: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timeutil.DurationToClock(tt.d))
		})
	}
}

func TestDurationToClockProperties(t *testing.T) {
	for s := int64(0); s < 3*86400; s += 37 {
		d := time.Duration(s) * time.Second
		got := timeutil.DurationToClock(d)
		assert.Equal(t, int(d.Hours()), got.FullHours, "full hours for %s", d)
		assert.GreaterOrEqual(t, got.ClockMinutes, 0)
		assert.LessOrEqual(t, got.ClockMinutes, 60)
		if got.ClockMinutes == 60 {
			assert.GreaterOrEqual(t, s%3600, int64(3570), "only a remainder of 59m30s+ may round to 60 (%s)", d)
		}
	}
}

func TestDurationToClockPanicsOnNegative(t *testing.T) {
	assert.Panics(t, func() { timeutil.DurationToClock(-time.Minute) })
}

func TestDayWindows(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	now := time.Date(2024, 3, 1, 0, 30, 0, 0, loc)

	from, to := timeutil.Today(now)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, loc), to)

	from, to = timeutil.Yesterday(now)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, loc), from)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, loc), to)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, at, timeutil.FixedClock(at).Now())
}
