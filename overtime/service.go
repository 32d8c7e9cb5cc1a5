package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"worktime/models"
)

// Reader is the part of the record store the calculator reads.
type Reader interface {
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindWorkDays(ctx context.Context, f models.WorkDayFilter) ([]models.WorkDay, error)
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	LatestOvertimeParameters(ctx context.Context) (*models.OvertimeParameters, error)
}

// Cache memoizes JSON-serialisable results.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
}

// Report is the overtime of one employee in one billing period.
type Report struct {
	EmployeeID uint                      `json:"employee_id"`
	Employee   string                    `json:"employee,omitempty"`
	Window     Window                    `json:"window"`
	Parameters models.OvertimeParameters `json:"parameters"`
	Days       []DayResult               `json:"days"`
	Skipped    []uint                    `json:"skipped,omitempty"`
	Total      int                       `json:"total"`
}

type Service struct {
	reader      Reader
	cache       Cache
	logger      *slog.Logger
	concurrency int
}

// NewService builds the calculator. cache may be nil.
func NewService(r Reader, cache Cache, logger *slog.Logger) *Service {
	return &Service{reader: r, cache: cache, logger: logger, concurrency: 4}
}

// LoadParameters returns the configuration in force, or
// apperr.ErrConfigurationMissing when none has been created.
func (s *Service) LoadParameters(ctx context.Context) (models.OvertimeParameters, error) {
	p, err := s.reader.LatestOvertimeParameters(ctx)
	if err != nil {
		return models.OvertimeParameters{}, err
	}
	return *p, nil
}

// ComputeForEmployee totals the employee's overtime in the billing period
// containing ref, using closed WORK days that started inside the period. An
// unknown employee yields apperr.ErrNotFound.
func (s *Service) ComputeForEmployee(ctx context.Context, employeeID uint, ref time.Time, p models.OvertimeParameters) (*Report, error) {
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	e, err := s.reader.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("employee %d: %w", employeeID, err)
	}
	return s.forEmployee(ctx, e, BillingWindow(ref), p)
}

func (s *Service) forEmployee(ctx context.Context, e *models.Employee, window Window, p models.OvertimeParameters) (*Report, error) {
	report, err := s.cached(ctx, e.ID, window, p)
	if err != nil {
		return nil, err
	}
	report.Employee = e.DisplayName()
	return report, nil
}

func (s *Service) cached(ctx context.Context, employeeID uint, window Window, p models.OvertimeParameters) (*Report, error) {
	if s.cache == nil {
		return s.compute(ctx, employeeID, window, p)
	}
	key, err := s.cache.BuildKey(ctx, "overtime", strconv.FormatUint(uint64(employeeID), 10),
		window.From.Format("2006-01-02"), window.From.Location().String(),
		strconv.Itoa(p.OvertimeAfter), strconv.Itoa(p.OvertimeDay))
	if err != nil {
		s.logger.Warn("cache key unavailable", slog.Any("error", err))
		return s.compute(ctx, employeeID, window, p)
	}
	var report Report
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
		return s.compute(ctx, employeeID, window, p)
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *Service) compute(ctx context.Context, employeeID uint, window Window, p models.OvertimeParameters) (*Report, error) {
	days, err := s.reader.FindWorkDays(ctx, models.WorkDayFilter{
		EmployeeID: employeeID,
		Status:     models.StatusWork,
		StartFrom:  window.From,
		StartTo:    window.To,
		Stopped:    models.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("overtime: load work days: %w", err)
	}
	total, results, skipped := Compute(p, days, window.From.Location())
	for _, id := range skipped {
		s.logger.Warn("work day stops before it starts, skipped",
			slog.Uint64("employee_id", uint64(employeeID)),
			slog.Uint64("work_day_id", uint64(id)))
	}
	return &Report{
		EmployeeID: employeeID,
		Window:     window,
		Parameters: p,
		Days:       results,
		Skipped:    skipped,
		Total:      total,
	}, nil
}

// Summary computes the period overtime of every employee, a few at a time.
// Reports come back in the store's employee order.
func (s *Service) Summary(ctx context.Context, ref time.Time, p models.OvertimeParameters) ([]Report, error) {
	if err := ValidateParameters(p); err != nil {
		return nil, err
	}
	employees, err := s.reader.ListEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("overtime: list employees: %w", err)
	}
	window := BillingWindow(ref)
	reports := make([]Report, len(employees))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, e := range employees {
		i, e := i, e
		g.Go(func() error {
			r, err := s.forEmployee(gctx, &e, window, p)
			if err != nil {
				return fmt.Errorf("employee %d: %w", e.ID, err)
			}
			reports[i] = *r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
