// Package workday creates and closes work days, reports absences and attaches
// tasks to the active work day.
package workday

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"worktime/apperr"
	"worktime/guard"
	"worktime/models"
	"worktime/store"
	"worktime/timeutil"
)

// Invalidator drops cached results derived from work days.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// EventRecorder counts lifecycle events and guard refusals.
type EventRecorder interface {
	RecordEvent(event string)
}

type Option func(*Service)

func WithInvalidator(inv Invalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

func WithEvents(rec EventRecorder) Option {
	return func(s *Service) { s.events = rec }
}

type Service struct {
	store       store.Store
	clock       timeutil.Clock
	logger      *slog.Logger
	invalidator Invalidator
	events      EventRecorder
}

func NewService(st store.Store, clock timeutil.Clock, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{store: st, clock: clock, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TaskInput describes a task being started.
type TaskInput struct {
	Start     time.Time
	Location  string
	ProjectID uint
	WorkMode  models.WorkMode
}

// TaskUpdate changes the descriptive fields of a task; zero values keep the current value.
type TaskUpdate struct {
	Location  string
	ProjectID uint
	WorkMode  models.WorkMode
}

func (s *Service) now() time.Time {
	return s.clock.Now()
}

// local moves t into the clock's location, defaulting to now.
func (s *Service) local(t time.Time) time.Time {
	now := s.now()
	if t.IsZero() {
		return now
	}
	return t.In(now.Location())
}

func (s *Service) record(event string) {
	if s.events != nil {
		s.events.RecordEvent(event)
	}
}

func (s *Service) changed(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx); err != nil {
		s.logger.Warn("invalidate cache", slog.Any("error", err))
	}
}

func (s *Service) refused(err error, employeeID uint) error {
	var pe *apperr.PreconditionError
	if errors.As(err, &pe) {
		s.record("refused_" + pe.Action)
		s.logger.Info("action refused",
			slog.String("action", pe.Action),
			slog.Uint64("employee_id", uint64(employeeID)),
			slog.String("reason", pe.Message))
	}
	return err
}

func validLocation(location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return apperr.Validation("location is required")
	}
	if len(location) > 50 {
		return apperr.Validation("location must be at most 50 characters")
	}
	return nil
}

// claimDay inserts w after the start-of-day guard for action passed. A unique
// index violation means a concurrent request claimed the day first.
func (s *Service) claimDay(ctx context.Context, action guard.Action, w *models.WorkDay) error {
	return s.store.WithTx(ctx, func(tx store.Store) error {
		if err := guard.New(tx, s.clock).Require(ctx, action, w.EmployeeID); err != nil {
			return err
		}
		err := tx.InsertWorkDay(ctx, w)
		if errors.Is(err, store.ErrDuplicate) {
			return &apperr.PreconditionError{Action: string(action), Message: guard.Message(action)}
		}
		return err
	})
}

// StartWorkDay opens a WORK day for employeeID. A zero start means now.
func (s *Service) StartWorkDay(ctx context.Context, employeeID uint, start time.Time) (*models.WorkDay, error) {
	start = s.local(start)
	w := &models.WorkDay{
		EmployeeID: employeeID,
		Day:        models.DayOf(start),
		Start:      start,
		Status:     models.StatusWork,
	}
	if err := s.claimDay(ctx, guard.ActionStartWorkDay, w); err != nil {
		return nil, s.refused(err, employeeID)
	}
	s.record("work_day_started")
	s.logger.Info("work day started",
		slog.Uint64("employee_id", uint64(employeeID)),
		slog.Uint64("work_day_id", uint64(w.ID)),
		slog.Time("start", w.Start))
	s.changed(ctx)
	return w, nil
}

// ReportAbsence records a zero-length work day with an absence status.
func (s *Service) ReportAbsence(ctx context.Context, employeeID uint, start time.Time, status models.WorkDayStatus) (*models.WorkDay, error) {
	if !status.IsAbsence() {
		return nil, apperr.Validation("status %q is not an absence", status)
	}
	start = s.local(start)
	stop := start
	w := &models.WorkDay{
		EmployeeID: employeeID,
		Day:        models.DayOf(start),
		Start:      start,
		Stop:       &stop,
		Status:     status,
	}
	if err := s.claimDay(ctx, guard.ActionReportAbsence, w); err != nil {
		return nil, s.refused(err, employeeID)
	}
	s.record("absence_reported")
	s.logger.Info("absence reported",
		slog.Uint64("employee_id", uint64(employeeID)),
		slog.Uint64("work_day_id", uint64(w.ID)),
		slog.String("status", string(status)))
	s.changed(ctx)
	return w, nil
}

// StartTask attaches an open task to the employee's active work day.
func (s *Service) StartTask(ctx context.Context, employeeID uint, in TaskInput) (*models.Task, error) {
	if err := validLocation(in.Location); err != nil {
		return nil, err
	}
	if !in.WorkMode.Valid() {
		return nil, apperr.Validation("unknown work mode %q", in.WorkMode)
	}
	task := &models.Task{
		Start:     s.local(in.Start),
		Location:  strings.TrimSpace(in.Location),
		ProjectID: in.ProjectID,
		WorkMode:  in.WorkMode,
	}
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		active, err := guard.New(tx, s.clock).ActiveWorkDay(ctx, employeeID)
		if err != nil {
			return err
		}
		if _, err := tx.GetProject(ctx, in.ProjectID); err != nil {
			return fmt.Errorf("project %d: %w", in.ProjectID, err)
		}
		task.WorkDayID = active.ID
		return tx.InsertTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	s.record("task_started")
	s.logger.Info("task started",
		slog.Uint64("employee_id", uint64(employeeID)),
		slog.Uint64("task_id", uint64(task.ID)),
		slog.Uint64("work_day_id", uint64(task.WorkDayID)))
	return task, nil
}

// EndTask stamps stop on the task and, when given, replaces its location.
// Ending an already ended task overwrites the previous stop.
func (s *Service) EndTask(ctx context.Context, taskID uint, stop time.Time, location string) (*models.Task, error) {
	if location != "" {
		if err := validLocation(location); err != nil {
			return nil, err
		}
	}
	var task *models.Task
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		task, err = tx.GetTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("task %d: %w", taskID, err)
		}
		stopped := s.local(stop)
		task.Stop = &stopped
		if location != "" {
			task.Location = strings.TrimSpace(location)
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	s.record("task_ended")
	s.logger.Info("task ended", slog.Uint64("task_id", uint64(taskID)), slog.Time("stop", *task.Stop))
	return task, nil
}

// UpdateTask edits location, project or work mode without touching start and stop.
func (s *Service) UpdateTask(ctx context.Context, taskID uint, in TaskUpdate) (*models.Task, error) {
	if in.Location != "" {
		if err := validLocation(in.Location); err != nil {
			return nil, err
		}
	}
	if in.WorkMode != "" && !in.WorkMode.Valid() {
		return nil, apperr.Validation("unknown work mode %q", in.WorkMode)
	}
	var task *models.Task
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		task, err = tx.GetTask(ctx, taskID)
		if err != nil {
			return fmt.Errorf("task %d: %w", taskID, err)
		}
		if in.ProjectID != 0 && in.ProjectID != task.ProjectID {
			project, err := tx.GetProject(ctx, in.ProjectID)
			if err != nil {
				return fmt.Errorf("project %d: %w", in.ProjectID, err)
			}
			task.ProjectID = project.ID
			task.Project = project
		}
		if in.Location != "" {
			task.Location = strings.TrimSpace(in.Location)
		}
		if in.WorkMode != "" {
			task.WorkMode = in.WorkMode
		}
		return tx.UpdateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// EndWorkDay closes an open work day once the owner has no open task. A
// non-empty status replaces the current one; switching a WORK day to an
// absence is allowed. A day that already has a stop, absences included, is
// refused.
func (s *Service) EndWorkDay(ctx context.Context, workDayID uint, stop time.Time, status models.WorkDayStatus) (*models.WorkDay, error) {
	if status != "" && !status.Valid() {
		return nil, apperr.Validation("unknown status %q", status)
	}
	var w *models.WorkDay
	err := s.store.WithTx(ctx, func(tx store.Store) error {
		var err error
		w, err = tx.FindWorkDay(ctx, models.WorkDayFilter{ID: workDayID})
		if err != nil {
			return fmt.Errorf("work day %d: %w", workDayID, err)
		}
		if !w.IsOpen() {
			return s.refused(&apperr.PreconditionError{
				Action:  string(guard.ActionEndWorkDay),
				Message: "work day already ended",
			}, w.EmployeeID)
		}
		if err := guard.New(tx, s.clock).Require(ctx, guard.ActionEndWorkDay, w.EmployeeID); err != nil {
			return s.refused(err, w.EmployeeID)
		}
		stopped := s.local(stop)
		w.Stop = &stopped
		if status != "" {
			w.Status = status
		}
		return tx.UpdateWorkDay(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	s.record("work_day_ended")
	s.logger.Info("work day ended",
		slog.Uint64("employee_id", uint64(w.EmployeeID)),
		slog.Uint64("work_day_id", uint64(w.ID)),
		slog.String("status", string(w.Status)))
	s.changed(ctx)
	return w, nil
}

// ActiveTasks lists the tasks of the employee's active work day. It is refused
// once today's work day is finished or an absence was reported; with no active
// work day the list is empty.
func (s *Service) ActiveTasks(ctx context.Context, employeeID uint) (*models.WorkDay, []models.Task, error) {
	g := guard.New(s.store, s.clock)
	if err := g.Require(ctx, guard.ActionAccessWorkDayList, employeeID); err != nil {
		return nil, nil, s.refused(err, employeeID)
	}
	active, err := g.ActiveWorkDay(ctx, employeeID)
	if errors.Is(err, apperr.ErrNoActiveWorkDay) {
		return nil, []models.Task{}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.store.FindTasks(ctx, models.TaskFilter{WorkDayID: active.ID})
	if err != nil {
		return nil, nil, err
	}
	return active, tasks, nil
}

// Allowed exposes the guard for callers deciding which actions to offer.
func (s *Service) Allowed(ctx context.Context, employeeID uint) (map[guard.Action]bool, error) {
	g := guard.New(s.store, s.clock)
	out := make(map[guard.Action]bool, 4)
	for _, action := range []guard.Action{
		guard.ActionStartWorkDay,
		guard.ActionReportAbsence,
		guard.ActionAccessWorkDayList,
		guard.ActionEndWorkDay,
	} {
		ok, err := g.Allowed(ctx, action, employeeID)
		if err != nil {
			return nil, err
		}
		out[action] = ok
	}
	return out, nil
}

// TaskOwner returns the employee owning the work day of a task.
func (s *Service) TaskOwner(ctx context.Context, taskID uint) (uint, error) {
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return 0, fmt.Errorf("task %d: %w", taskID, err)
	}
	w, err := s.store.FindWorkDay(ctx, models.WorkDayFilter{ID: task.WorkDayID})
	if err != nil {
		return 0, fmt.Errorf("work day %d: %w", task.WorkDayID, err)
	}
	return w.EmployeeID, nil
}

// WorkDayOwner returns the employee owning a work day.
func (s *Service) WorkDayOwner(ctx context.Context, workDayID uint) (uint, error) {
	w, err := s.store.FindWorkDay(ctx, models.WorkDayFilter{ID: workDayID})
	if err != nil {
		return 0, fmt.Errorf("work day %d: %w", workDayID, err)
	}
	return w.EmployeeID, nil
}
