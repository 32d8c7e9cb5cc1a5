// Package store is the record store behind the attendance engine. Gorm persists
// to Postgres; Memory keeps everything in process for tests and local runs.
package store

import (
	"context"

	"worktime/models"
)

// Store is the queryable, transactional collection of entities. Find* methods
// return apperr.ErrNotFound when nothing matches; list methods return results
// ordered by start (or id) ascending.
type Store interface {
	// WithTx runs fn inside one serializable unit of work. Returning an error
	// rolls back everything fn wrote.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	InsertEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	DeleteEmployee(ctx context.Context, id uint) error
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)

	InsertWorkDay(ctx context.Context, w *models.WorkDay) error
	UpdateWorkDay(ctx context.Context, w *models.WorkDay) error
	DeleteWorkDay(ctx context.Context, id uint) error
	FindWorkDay(ctx context.Context, f models.WorkDayFilter) (*models.WorkDay, error)
	FindWorkDays(ctx context.Context, f models.WorkDayFilter) ([]models.WorkDay, error)
	CountWorkDays(ctx context.Context, f models.WorkDayFilter) (int64, error)

	InsertTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	FindTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error)

	InsertProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id uint) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)

	InsertOvertimeParameters(ctx context.Context, p *models.OvertimeParameters) error
	// LatestOvertimeParameters returns apperr.ErrConfigurationMissing when none exist.
	LatestOvertimeParameters(ctx context.Context) (*models.OvertimeParameters, error)
}
