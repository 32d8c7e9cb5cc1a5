package guard_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/apperr"
	"worktime/guard"
	"worktime/models"
	"worktime/store"
	"worktime/timeutil"
)

var now = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store    *store.Memory
	guard    *guard.Guard
	employee *models.Employee
	project  *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewMemory()
	e := &models.Employee{Email: "jan@example.com", FirstName: "Jan", LastName: "Kowalski", Role: models.RoleEmployee}
	require.NoError(t, s.InsertEmployee(context.Background(), e))
	p := &models.Project{Name: "Bridge", ClientCompany: "Acme", Location: "Gdansk"}
	require.NoError(t, s.InsertProject(context.Background(), p))
	return &fixture{store: s, guard: guard.New(s, timeutil.FixedClock(now)), employee: e, project: p}
}

func (f *fixture) workDay(t *testing.T, start time.Time, stop *time.Time, status models.WorkDayStatus) *models.WorkDay {
	t.Helper()
	w := &models.WorkDay{EmployeeID: f.employee.ID, Day: models.DayOf(start), Start: start, Stop: stop, Status: status}
	require.NoError(t, f.store.InsertWorkDay(context.Background(), w))
	return w
}

func (f *fixture) task(t *testing.T, w *models.WorkDay, start time.Time, stop *time.Time) *models.Task {
	t.Helper()
	task := &models.Task{WorkDayID: w.ID, ProjectID: f.project.ID, Start: start, Stop: stop, Location: "Gdansk", WorkMode: models.ModeOnSite}
	require.NoError(t, f.store.InsertTask(context.Background(), task))
	return task
}

func ptr(t time.Time) *time.Time {
	return &t
}

func TestCanStartNewWorkDay(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing recorded", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.guard.Allowed(ctx, guard.ActionStartWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("absence today blocks", func(t *testing.T) {
		f := newFixture(t)
		start := now.Add(-time.Hour)
		f.workDay(t, start, &start, models.StatusSickLeave)
		ok, err := f.guard.Allowed(ctx, guard.ActionStartWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("yesterday does not block", func(t *testing.T) {
		f := newFixture(t)
		f.workDay(t, now.Add(-20*time.Hour), nil, models.StatusWork)
		ok, err := f.guard.Allowed(ctx, guard.ActionStartWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("tomorrow midnight is outside today", func(t *testing.T) {
		f := newFixture(t)
		f.workDay(t, time.Date(2024, 4, 11, 0, 0, 0, 0, time.UTC), nil, models.StatusWork)
		ok, err := f.guard.Allowed(ctx, guard.ActionStartWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestStartAndAbsenceGuardsAgree(t *testing.T) {
	ctx := context.Background()
	setups := map[string]func(f *fixture, t *testing.T){
		"empty":       func(f *fixture, t *testing.T) {},
		"open work":   func(f *fixture, t *testing.T) { f.workDay(t, now.Add(-time.Hour), nil, models.StatusWork) },
		"closed work": func(f *fixture, t *testing.T) { f.workDay(t, now.Add(-2*time.Hour), ptr(now.Add(-time.Hour)), models.StatusWork) },
		"holiday":     func(f *fixture, t *testing.T) { f.workDay(t, now, ptr(now), models.StatusHoliday) },
		"yesterday":   func(f *fixture, t *testing.T) { f.workDay(t, now.AddDate(0, 0, -1), nil, models.StatusWork) },
	}
	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			setup(f, t)
			start, err := f.guard.Allowed(ctx, guard.ActionStartWorkDay, f.employee.ID)
			require.NoError(t, err)
			absence, err := f.guard.Allowed(ctx, guard.ActionReportAbsence, f.employee.ID)
			require.NoError(t, err)
			assert.Equal(t, start, absence)
		})
	}
}

func TestCanAccessWorkDayList(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		setup func(f *fixture, t *testing.T)
		want  bool
	}{
		{"nothing yet", func(f *fixture, t *testing.T) {}, true},
		{"open work day", func(f *fixture, t *testing.T) { f.workDay(t, now.Add(-time.Hour), nil, models.StatusWork) }, true},
		{"finished work day", func(f *fixture, t *testing.T) {
			f.workDay(t, now.Add(-2*time.Hour), ptr(now.Add(-time.Hour)), models.StatusWork)
		}, false},
		{"absence", func(f *fixture, t *testing.T) { f.workDay(t, now, ptr(now), models.StatusChildCare) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setup(f, t)
			ok, err := f.guard.Allowed(ctx, guard.ActionAccessWorkDayList, f.employee.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCanEndWorkDay(t *testing.T) {
	ctx := context.Background()

	t.Run("no active work day allows", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.guard.Allowed(ctx, guard.ActionEndWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("open task blocks", func(t *testing.T) {
		f := newFixture(t)
		w := f.workDay(t, now.Add(-2*time.Hour), nil, models.StatusWork)
		f.task(t, w, now.Add(-2*time.Hour), ptr(now.Add(-time.Hour)))
		f.task(t, w, now.Add(-time.Hour), nil)
		ok, err := f.guard.Allowed(ctx, guard.ActionEndWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		err = f.guard.Require(ctx, guard.ActionEndWorkDay, f.employee.ID)
		require.ErrorIs(t, err, apperr.ErrPreconditionViolation)
		var pe *apperr.PreconditionError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "unfinished tasks remain", pe.Message)
	})

	t.Run("all tasks closed allows", func(t *testing.T) {
		f := newFixture(t)
		w := f.workDay(t, now.Add(-2*time.Hour), nil, models.StatusWork)
		f.task(t, w, now.Add(-2*time.Hour), ptr(now.Add(-time.Hour)))
		ok, err := f.guard.Allowed(ctx, guard.ActionEndWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("open task on overnight day blocks", func(t *testing.T) {
		f := newFixture(t)
		w := f.workDay(t, time.Date(2024, 4, 9, 23, 30, 0, 0, time.UTC), nil, models.StatusWork)
		f.task(t, w, time.Date(2024, 4, 9, 23, 30, 0, 0, time.UTC), nil)
		ok, err := f.guard.Allowed(ctx, guard.ActionEndWorkDay, f.employee.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestResolveActiveWorkDay(t *testing.T) {
	ctx := context.Background()

	t.Run("open day from yesterday wins", func(t *testing.T) {
		f := newFixture(t)
		overnight := f.workDay(t, time.Date(2024, 4, 9, 23, 30, 0, 0, time.UTC), nil, models.StatusWork)
		w, err := f.guard.ActiveWorkDay(ctx, f.employee.ID)
		require.NoError(t, err)
		assert.Equal(t, overnight.ID, w.ID)
	})

	t.Run("closed yesterday falls through to today", func(t *testing.T) {
		f := newFixture(t)
		f.workDay(t, time.Date(2024, 4, 9, 8, 0, 0, 0, time.UTC), ptr(time.Date(2024, 4, 9, 16, 0, 0, 0, time.UTC)), models.StatusWork)
		today := f.workDay(t, now.Add(-time.Hour), ptr(now.Add(-time.Minute)), models.StatusWork)
		w, err := f.guard.ActiveWorkDay(ctx, f.employee.ID)
		require.NoError(t, err)
		assert.Equal(t, today.ID, w.ID)
	})

	t.Run("absence is never active", func(t *testing.T) {
		f := newFixture(t)
		f.workDay(t, now, ptr(now), models.StatusHoliday)
		_, err := f.guard.ActiveWorkDay(ctx, f.employee.ID)
		require.ErrorIs(t, err, apperr.ErrNoActiveWorkDay)
	})

	t.Run("nothing recorded", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.guard.ActiveWorkDay(ctx, f.employee.ID)
		require.ErrorIs(t, err, apperr.ErrNoActiveWorkDay)
	})
}

func TestUnknownAction(t *testing.T) {
	f := newFixture(t)
	_, err := f.guard.Allowed(context.Background(), guard.Action("dance"), f.employee.ID)
	require.Error(t, err)
}
