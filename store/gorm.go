package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worktime/apperr"
	"worktime/models"
)

// ErrDuplicate is returned when an insert hits a unique constraint, such as a
// second work day for the same employee and date.
var ErrDuplicate = errors.New("store: duplicate record")

type Gorm struct {
	db *gorm.DB
}

// NewGorm wraps an opened gorm connection. The connection should be opened with
// TranslateError enabled so constraint violations map onto store errors.
func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func (s *Gorm) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Gorm{db: tx})
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", apperr.ErrProtected, err)
	}
	return err
}

func (s *Gorm) InsertEmployee(ctx context.Context, e *models.Employee) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error)
}

func (s *Gorm) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(e).Error)
}

func (s *Gorm) DeleteEmployee(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Employee{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Gorm) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).First(&e, id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Gorm) FindEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *Gorm) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var out []models.Employee
	err := s.db.WithContext(ctx).Order("last_name asc, first_name asc, id asc").Find(&out).Error
	return out, translate(err)
}

func workDayQuery(db *gorm.DB, f models.WorkDayFilter) *gorm.DB {
	q := db.Model(&models.WorkDay{})
	if f.ID != 0 {
		q = q.Where("work_days.id = ?", f.ID)
	}
	if f.EmployeeID != 0 {
		q = q.Where("work_days.employee_id = ?", f.EmployeeID)
	}
	if f.Status != "" {
		q = q.Where("work_days.status = ?", f.Status)
	}
	if f.ExcludeStatus != "" {
		q = q.Where("work_days.status <> ?", f.ExcludeStatus)
	}
	if !f.StartFrom.IsZero() {
		q = q.Where("work_days.start >= ?", f.StartFrom)
	}
	if !f.StartTo.IsZero() {
		q = q.Where("work_days.start < ?", f.StartTo)
	}
	if f.Stopped != nil {
		if *f.Stopped {
			q = q.Where("work_days.stop IS NOT NULL")
		} else {
			q = q.Where("work_days.stop IS NULL")
		}
	}
	return q
}

func (s *Gorm) InsertWorkDay(ctx context.Context, w *models.WorkDay) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(w).Error)
}

func (s *Gorm) UpdateWorkDay(ctx context.Context, w *models.WorkDay) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(w).Error)
}

func (s *Gorm) DeleteWorkDay(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.WorkDay{}, id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *Gorm) FindWorkDay(ctx context.Context, f models.WorkDayFilter) (*models.WorkDay, error) {
	var w models.WorkDay
	err := workDayQuery(s.db.WithContext(ctx), f).Order("work_days.start asc").First(&w).Error
	if err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (s *Gorm) FindWorkDays(ctx context.Context, f models.WorkDayFilter) ([]models.WorkDay, error) {
	var out []models.WorkDay
	err := workDayQuery(s.db.WithContext(ctx), f).
		Preload("Employee").
		Order("work_days.start asc, work_days.id asc").
		Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) CountWorkDays(ctx context.Context, f models.WorkDayFilter) (int64, error) {
	var n int64
	err := workDayQuery(s.db.WithContext(ctx), f).Count(&n).Error
	return n, translate(err)
}

func (s *Gorm) InsertTask(ctx context.Context, t *models.Task) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Create(t).Error)
}

func (s *Gorm) UpdateTask(ctx context.Context, t *models.Task) error {
	return translate(s.db.WithContext(ctx).Omit(clause.Associations).Save(t).Error)
}

func (s *Gorm) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).Preload("Project").First(&t, id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (s *Gorm) FindTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Model(&models.Task{}).Preload("Project")
	if f.WorkDayID != 0 {
		q = q.Where("work_day_id = ?", f.WorkDayID)
	}
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if !f.StartFrom.IsZero() {
		q = q.Where("start >= ?", f.StartFrom)
	}
	if !f.StartTo.IsZero() {
		q = q.Where("start < ?", f.StartTo)
	}
	if f.Stopped != nil {
		if *f.Stopped {
			q = q.Where("stop IS NOT NULL")
		} else {
			q = q.Where("stop IS NULL")
		}
	}
	var out []models.Task
	err := q.Order("start asc, id asc").Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) InsertProject(ctx context.Context, p *models.Project) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Gorm) UpdateProject(ctx context.Context, p *models.Project) error {
	return translate(s.db.WithContext(ctx).Save(p).Error)
}

func (s *Gorm) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *Gorm) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	err := s.db.WithContext(ctx).Order("name asc, id asc").Find(&out).Error
	return out, translate(err)
}

func (s *Gorm) InsertOvertimeParameters(ctx context.Context, p *models.OvertimeParameters) error {
	return translate(s.db.WithContext(ctx).Create(p).Error)
}

func (s *Gorm) LatestOvertimeParameters(ctx context.Context) (*models.OvertimeParameters, error) {
	var p models.OvertimeParameters
	err := s.db.WithContext(ctx).Order("created_at desc, id desc").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrConfigurationMissing
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
