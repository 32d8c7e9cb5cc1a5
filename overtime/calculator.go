// Package overtime computes overtime hours per billing period. Billing periods
// run from the 10th of one month to the 10th of the next.
package overtime

import (
	"time"

	"worktime/apperr"
	"worktime/models"
	"worktime/timeutil"
)

// BillingDay is the day of month on which a billing period starts.
const BillingDay = 10

// Window is the half-open interval [From, To).
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.To)
}

// BillingWindow returns the billing period containing ref. Before the 10th the
// period started in the previous month; in January that is December of the
// previous year.
func BillingWindow(ref time.Time) Window {
	y, m, d := ref.Date()
	if d < BillingDay {
		m--
		if m < time.January {
			m = time.December
			y--
		}
	}
	from := time.Date(y, m, BillingDay, 0, 0, 0, 0, ref.Location())
	return Window{From: from, To: from.AddDate(0, 1, 0)}
}

// ValidateParameters checks an overtime configuration before it is stored.
func ValidateParameters(p models.OvertimeParameters) error {
	if p.OvertimeAfter <= 0 {
		return apperr.Validation("overtime_after must be a positive number of hours, got %d", p.OvertimeAfter)
	}
	if p.OvertimeDay < 1 || p.OvertimeDay > 7 {
		return apperr.Validation("overtime_day must be between 1 (Monday) and 7 (Sunday), got %d", p.OvertimeDay)
	}
	return nil
}

// DayResult is the overtime contribution of one closed work day.
type DayResult struct {
	WorkDayID   uint                  `json:"work_day_id"`
	Start       time.Time             `json:"start"`
	Stop        time.Time             `json:"stop"`
	Worked      timeutil.HoursMinutes `json:"worked"`
	OvertimeDay bool                  `json:"overtime_day"`
	Overtime    int                   `json:"overtime"`
}

// DayOvertime applies the per-day rule. Days under the threshold contribute
// nothing, minutes included. On the overtime weekday every full hour counts;
// otherwise only hours past the threshold do. A remainder of 30 minutes or
// more adds one hour; minutes never carry over to other days.
func DayOvertime(p models.OvertimeParameters, worked timeutil.HoursMinutes, overtimeDay bool) int {
	if worked.FullHours < p.OvertimeAfter && !overtimeDay {
		return 0
	}
	hours := worked.FullHours - p.OvertimeAfter
	if overtimeDay {
		hours = worked.FullHours
	}
	if worked.ClockMinutes >= 30 {
		hours++
	}
	return hours
}

// Compute sums the overtime of closed work days. Weekdays are taken in loc.
// Days whose stop precedes their start are returned in skipped.
func Compute(p models.OvertimeParameters, days []models.WorkDay, loc *time.Location) (total int, results []DayResult, skipped []uint) {
	results = make([]DayResult, 0, len(days))
	for _, w := range days {
		if w.Stop == nil {
			continue
		}
		if w.Stop.Before(w.Start) {
			skipped = append(skipped, w.ID)
			continue
		}
		worked := timeutil.DurationToClock(w.Stop.Sub(w.Start))
		isOvertimeDay := p.IsOvertimeDay(w.Start.In(loc))
		hours := DayOvertime(p, worked, isOvertimeDay)
		total += hours
		results = append(results, DayResult{
			WorkDayID:   w.ID,
			Start:       w.Start,
			Stop:        *w.Stop,
			Worked:      worked,
			OvertimeDay: isOvertimeDay,
			Overtime:    hours,
		})
	}
	return total, results, skipped
}
