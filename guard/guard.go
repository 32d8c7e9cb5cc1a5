// Package guard decides which attendance actions an employee may take right
// now, given the work days already recorded today (and yesterday, for night
// shifts). Every rule is a plain predicate; Guard dispatches on Action.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"worktime/apperr"
	"worktime/models"
	"worktime/timeutil"
)

type Action string

const (
	ActionStartWorkDay      Action = "start_work_day"
	ActionReportAbsence     Action = "report_absence"
	ActionAccessWorkDayList Action = "access_work_day_list"
	ActionEndWorkDay        Action = "end_work_day"
)

// Reader is the read side of the record store the predicates need.
type Reader interface {
	FindWorkDay(ctx context.Context, f models.WorkDayFilter) (*models.WorkDay, error)
	FindTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
}

// Predicate reports whether employeeID may perform an action at now.
type Predicate func(ctx context.Context, r Reader, now time.Time, employeeID uint) (bool, error)

type rule struct {
	allowed Predicate
	message string
}

var rules = map[Action]rule{
	ActionStartWorkDay: {
		allowed: CanStartNewWorkDay,
		message: "work day or absence already reported today",
	},
	ActionReportAbsence: {
		allowed: CanReportAbsence,
		message: "work day or absence already reported today",
	},
	ActionAccessWorkDayList: {
		allowed: CanAccessWorkDayList,
		message: "absence already reported or work day already finished",
	},
	ActionEndWorkDay: {
		allowed: CanEndWorkDay,
		message: "unfinished tasks remain",
	},
}

// Message returns the user-facing refusal text for action.
func Message(action Action) string {
	return rules[action].message
}

func exists(ctx context.Context, r Reader, f models.WorkDayFilter) (bool, error) {
	_, err := r.FindWorkDay(ctx, f)
	if errors.Is(err, apperr.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CanStartNewWorkDay is false when any work day, of any status, started today.
func CanStartNewWorkDay(ctx context.Context, r Reader, now time.Time, employeeID uint) (bool, error) {
	from, to := timeutil.Today(now)
	found, err := exists(ctx, r, models.WorkDayFilter{EmployeeID: employeeID, StartFrom: from, StartTo: to})
	if err != nil {
		return false, err
	}
	return !found, nil
}

// CanReportAbsence shares the rule of CanStartNewWorkDay: a day is claimed
// either by work or by an absence, never both.
func CanReportAbsence(ctx context.Context, r Reader, now time.Time, employeeID uint) (bool, error) {
	return CanStartNewWorkDay(ctx, r, now, employeeID)
}

// CanAccessWorkDayList is true only while today's WORK day is open or nothing
// has been recorded yet today.
func CanAccessWorkDayList(ctx context.Context, r Reader, now time.Time, employeeID uint) (bool, error) {
	from, to := timeutil.Today(now)
	absent, err := exists(ctx, r, models.WorkDayFilter{
		EmployeeID:    employeeID,
		ExcludeStatus: models.StatusWork,
		StartFrom:     from,
		StartTo:       to,
	})
	if err != nil || absent {
		return false, err
	}
	finished, err := exists(ctx, r, models.WorkDayFilter{
		EmployeeID: employeeID,
		Status:     models.StatusWork,
		StartFrom:  from,
		StartTo:    to,
		Stopped:    models.Bool(true),
	})
	if err != nil {
		return false, err
	}
	return !finished, nil
}

// CanEndWorkDay is false while the active work day has an open task. With no
// active work day nothing blocks closure.
func CanEndWorkDay(ctx context.Context, r Reader, now time.Time, employeeID uint) (bool, error) {
	active, err := ResolveActiveWorkDay(ctx, r, now, employeeID)
	if errors.Is(err, apperr.ErrNoActiveWorkDay) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	open, err := r.FindTasks(ctx, models.TaskFilter{WorkDayID: active.ID, Stopped: models.Bool(false)})
	if err != nil {
		return false, err
	}
	return len(open) == 0, nil
}

// ResolveActiveWorkDay finds the work day task operations apply to. An open
// WORK day started yesterday wins over anything started today, so a night
// shift keeps collecting tasks after midnight. Otherwise today's WORK day is
// used, closed or not. apperr.ErrNoActiveWorkDay is returned when neither exists.
func ResolveActiveWorkDay(ctx context.Context, r Reader, now time.Time, employeeID uint) (*models.WorkDay, error) {
	yFrom, yTo := timeutil.Yesterday(now)
	w, err := r.FindWorkDay(ctx, models.WorkDayFilter{
		EmployeeID: employeeID,
		Status:     models.StatusWork,
		StartFrom:  yFrom,
		StartTo:    yTo,
		Stopped:    models.Bool(false),
	})
	if err == nil {
		return w, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	from, to := timeutil.Today(now)
	w, err = r.FindWorkDay(ctx, models.WorkDayFilter{
		EmployeeID: employeeID,
		Status:     models.StatusWork,
		StartFrom:  from,
		StartTo:    to,
	})
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrNoActiveWorkDay
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Guard binds the predicates to a store and a clock.
type Guard struct {
	reader Reader
	clock  timeutil.Clock
}

func New(r Reader, clock timeutil.Clock) *Guard {
	return &Guard{reader: r, clock: clock}
}

// WithReader returns a copy of g reading from r, typically a transaction.
func (g *Guard) WithReader(r Reader) *Guard {
	return &Guard{reader: r, clock: g.clock}
}

// Allowed evaluates the rule registered for action.
func (g *Guard) Allowed(ctx context.Context, action Action, employeeID uint) (bool, error) {
	rule, ok := rules[action]
	if !ok {
		return false, fmt.Errorf("guard: unknown action %q", action)
	}
	return rule.allowed(ctx, g.reader, g.clock.Now(), employeeID)
}

// Require is Allowed that turns a refusal into an *apperr.PreconditionError.
func (g *Guard) Require(ctx context.Context, action Action, employeeID uint) error {
	ok, err := g.Allowed(ctx, action, employeeID)
	if err != nil {
		return err
	}
	if !ok {
		return &apperr.PreconditionError{Action: string(action), Message: Message(action)}
	}
	return nil
}

// ActiveWorkDay resolves the active work day at the clock's current time.
func (g *Guard) ActiveWorkDay(ctx context.Context, employeeID uint) (*models.WorkDay, error) {
	return ResolveActiveWorkDay(ctx, g.reader, g.clock.Now(), employeeID)
}
