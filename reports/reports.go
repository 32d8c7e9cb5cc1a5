// Package reports answers the management views: what happened today, the
// tasks of a work day, hours booked on a project and remaining holiday.
package reports

import (
	"context"
	"fmt"
	"math"
	"time"

	"worktime/models"
	"worktime/timeutil"
)

// Reader is the part of the record store reports read.
type Reader interface {
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	FindWorkDay(ctx context.Context, f models.WorkDayFilter) (*models.WorkDay, error)
	FindWorkDays(ctx context.Context, f models.WorkDayFilter) ([]models.WorkDay, error)
	CountWorkDays(ctx context.Context, f models.WorkDayFilter) (int64, error)
	FindTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error)
}

type Service struct {
	reader Reader
	clock  timeutil.Clock
}

func NewService(r Reader, clock timeutil.Clock) *Service {
	return &Service{reader: r, clock: clock}
}

// TodayWorkDays lists the work days of every employee started today. A
// non-zero employeeID narrows the list to one employee.
func (s *Service) TodayWorkDays(ctx context.Context, employeeID uint) ([]models.WorkDay, error) {
	from, to := timeutil.Today(s.clock.Now())
	days, err := s.reader.FindWorkDays(ctx, models.WorkDayFilter{
		EmployeeID: employeeID,
		StartFrom:  from,
		StartTo:    to,
	})
	if err != nil {
		return nil, fmt.Errorf("reports: today work days: %w", err)
	}
	return days, nil
}

// TodayProjectTasks lists the tasks started today, optionally for one project.
func (s *Service) TodayProjectTasks(ctx context.Context, projectID uint) ([]models.Task, error) {
	from, to := timeutil.Today(s.clock.Now())
	tasks, err := s.reader.FindTasks(ctx, models.TaskFilter{
		ProjectID: projectID,
		StartFrom: from,
		StartTo:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("reports: today tasks: %w", err)
	}
	return tasks, nil
}

// WorkDayTasks returns a work day with its tasks, or apperr.ErrNotFound.
func (s *Service) WorkDayTasks(ctx context.Context, workDayID uint) (*models.WorkDay, []models.Task, error) {
	w, err := s.reader.FindWorkDay(ctx, models.WorkDayFilter{ID: workDayID})
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.reader.FindTasks(ctx, models.TaskFilter{WorkDayID: workDayID})
	if err != nil {
		return nil, nil, fmt.Errorf("reports: work day tasks: %w", err)
	}
	return w, tasks, nil
}

// ProjectHours is the time booked on a project by closed tasks.
type ProjectHours struct {
	Project      models.Project `json:"project"`
	Tasks        []models.Task  `json:"tasks"`
	FullHours    int            `json:"full_hours"`
	ClockMinutes int            `json:"clock_minutes"`
	Total        int            `json:"total"`
}

// ProjectHours sums whole hours and minute remainders of every closed task
// separately, then adds the minutes rounded half to even as hours.
func (s *Service) ProjectHours(ctx context.Context, projectID uint) (*ProjectHours, error) {
	p, err := s.reader.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.reader.FindTasks(ctx, models.TaskFilter{ProjectID: projectID, Stopped: models.Bool(true)})
	if err != nil {
		return nil, fmt.Errorf("reports: project tasks: %w", err)
	}
	out := &ProjectHours{Project: *p, Tasks: make([]models.Task, 0, len(tasks))}
	for _, t := range tasks {
		if t.Stop.Before(t.Start) {
			continue
		}
		hm := timeutil.DurationToClock(t.Stop.Sub(t.Start))
		out.FullHours += hm.FullHours
		out.ClockMinutes += hm.ClockMinutes
		out.Tasks = append(out.Tasks, t)
	}
	out.Total = out.FullHours + int(math.RoundToEven(float64(out.ClockMinutes)/60))
	return out, nil
}

// RemainingHoliday is the allowance minus HOLIDAY days started in the current
// calendar year. It may go negative.
func (s *Service) RemainingHoliday(ctx context.Context, employeeID uint) (int, error) {
	e, err := s.reader.GetEmployee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	now := s.clock.Now()
	from := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	used, err := s.reader.CountWorkDays(ctx, models.WorkDayFilter{
		EmployeeID: employeeID,
		Status:     models.StatusHoliday,
		StartFrom:  from,
		StartTo:    from.AddDate(1, 0, 0),
	})
	if err != nil {
		return 0, fmt.Errorf("reports: count holidays: %w", err)
	}
	return e.HolidayAllowance - int(used), nil
}
