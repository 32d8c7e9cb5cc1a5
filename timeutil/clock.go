// Package timeutil converts elapsed durations into hours and minutes and computes
// the wall-clock day windows used by the workflow guards.
package timeutil

import (
	"math"
	"time"
)

// Clock supplies the current instant. Its location defines where midnight is.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

// HoursMinutes is an elapsed duration decomposed into whole hours and a rounded
// minute remainder. Minutes may be 60 when the remainder rounds up; callers carry it.
type HoursMinutes struct {
	FullHours    int `json:"full_hours"`
	ClockMinutes int `json:"clock_minutes"`
}

// DurationToClock splits d into whole hours and the remaining minutes rounded
// half to even. Sub-second precision is dropped. d must not be negative.
func DurationToClock(d time.Duration) HoursMinutes {
	if d < 0 {
		panic("timeutil: negative duration " + d.String())
	}
	seconds := int64(d / time.Second)
	rem := seconds % 3600
	return HoursMinutes{
		FullHours:    int(seconds / 3600),
		ClockMinutes: int(math.RoundToEven(float64(rem) / 60)),
	}
}

// StartOfDay returns 00:00:00 of the same day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns [midnight, next midnight) around now.
func Today(now time.Time) (time.Time, time.Time) {
	from := StartOfDay(now)
	return from, from.AddDate(0, 0, 1)
}

// Yesterday returns [previous midnight, midnight) relative to now.
func Yesterday(now time.Time) (time.Time, time.Time) {
	to := StartOfDay(now)
	return to.AddDate(0, 0, -1), to
}
