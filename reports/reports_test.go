package reports_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"worktime/apperr"
	"worktime/models"
	"worktime/overtime"
	"worktime/reports"
	"worktime/store"
	"worktime/timeutil"
)

var now = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *store.Memory
	svc     *reports.Service
	ewa     *models.Employee
	jan     *models.Employee
	grid    *models.Project
	railway *models.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s := store.NewMemory()
	ewa := &models.Employee{Email: "ewa@example.com", FirstName: "Ewa", LastName: "Lis", HolidayAllowance: 26}
	jan := &models.Employee{Email: "jan@example.com", FirstName: "Jan", LastName: "Kos", HolidayAllowance: 20}
	require.NoError(t, s.InsertEmployee(ctx, ewa))
	require.NoError(t, s.InsertEmployee(ctx, jan))
	grid := &models.Project{Name: "Substation", ClientCompany: "Grid", Location: "Poznan"}
	railway := &models.Project{Name: "Signals", ClientCompany: "Railway", Location: "Lodz"}
	require.NoError(t, s.InsertProject(ctx, grid))
	require.NoError(t, s.InsertProject(ctx, railway))
	return &fixture{store: s, svc: reports.NewService(s, timeutil.FixedClock(now)), ewa: ewa, jan: jan, grid: grid, railway: railway}
}

func (f *fixture) workDay(t *testing.T, employeeID uint, start time.Time, status models.WorkDayStatus) *models.WorkDay {
	t.Helper()
	w := &models.WorkDay{EmployeeID: employeeID, Day: models.DayOf(start), Start: start, Status: status}
	if status.IsAbsence() {
		w.Stop = &start
	}
	require.NoError(t, f.store.InsertWorkDay(context.Background(), w))
	return w
}

func (f *fixture) task(t *testing.T, workDayID, projectID uint, start time.Time, worked time.Duration) *models.Task {
	t.Helper()
	task := &models.Task{WorkDayID: workDayID, ProjectID: projectID, Start: start, Location: "site", WorkMode: models.ModeOnSite}
	if worked > 0 {
		stop := start.Add(worked)
		task.Stop = &stop
	}
	require.NoError(t, f.store.InsertTask(context.Background(), task))
	return task
}

func TestTodayWorkDays(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.workDay(t, f.ewa.ID, now.Add(-4*time.Hour), models.StatusWork)
	f.workDay(t, f.jan.ID, now.Add(-2*time.Hour), models.StatusSickLeave)
	f.workDay(t, f.ewa.ID, now.AddDate(0, 0, -1), models.StatusWork)

	all, err := f.svc.TodayWorkDays(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.svc.TodayWorkDays(ctx, f.ewa.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.StatusWork, mine[0].Status)
}

func TestTodayProjectTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	today := f.workDay(t, f.ewa.ID, now.Add(-4*time.Hour), models.StatusWork)
	yesterday := f.workDay(t, f.ewa.ID, now.AddDate(0, 0, -1), models.StatusWork)
	f.task(t, today.ID, f.grid.ID, now.Add(-4*time.Hour), time.Hour)
	f.task(t, today.ID, f.railway.ID, now.Add(-3*time.Hour), 0)
	f.task(t, yesterday.ID, f.grid.ID, now.AddDate(0, 0, -1), time.Hour)

	all, err := f.svc.TodayProjectTasks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	grid, err := f.svc.TodayProjectTasks(ctx, f.grid.ID)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, "Substation", grid[0].Project.Name)
}

func TestWorkDayTasks(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	w := f.workDay(t, f.ewa.ID, now.Add(-4*time.Hour), models.StatusWork)
	f.task(t, w.ID, f.grid.ID, now.Add(-4*time.Hour), time.Hour)
	f.task(t, w.ID, f.grid.ID, now.Add(-3*time.Hour), 0)

	got, tasks, err := f.svc.WorkDayTasks(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, w.ID, got.ID)
	assert.Len(t, tasks, 2)

	_, _, err = f.svc.WorkDayTasks(ctx, 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProjectHours(t *testing.T) {
	tests := []struct {
		name    string
		worked  []time.Duration
		hours   int
		minutes int
		total   int
	}{
		{"minutes carry into hours", []time.Duration{time.Hour + 45*time.Minute, 45 * time.Minute}, 1, 90, 3},
		{"half hour rounds to even down", []time.Duration{2*time.Hour + 30*time.Minute}, 2, 30, 2},
		{"two and a half hours of minutes round down", []time.Duration{50 * time.Minute, 50 * time.Minute, 50 * time.Minute}, 0, 150, 2},
		{"open tasks ignored", []time.Duration{0, 3 * time.Hour}, 3, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			w := f.workDay(t, f.ewa.ID, now.Add(-10*time.Hour), models.StatusWork)
			start := now.Add(-10 * time.Hour)
			for _, d := range tt.worked {
				f.task(t, w.ID, f.grid.ID, start, d)
				start = start.Add(time.Minute)
			}
			got, err := f.svc.ProjectHours(ctx, f.grid.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.hours, got.FullHours)
			assert.Equal(t, tt.minutes, got.ClockMinutes)
			assert.Equal(t, tt.total, got.Total)
		})
	}
}

func TestProjectHoursUnknownProject(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ProjectHours(context.Background(), 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemainingHoliday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.workDay(t, f.ewa.ID, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), models.StatusHoliday)
	f.workDay(t, f.ewa.ID, time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC), models.StatusHoliday)
	f.workDay(t, f.ewa.ID, time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC), models.StatusSickLeave)
	f.workDay(t, f.ewa.ID, time.Date(2023, 12, 28, 8, 0, 0, 0, time.UTC), models.StatusHoliday)

	left, err := f.svc.RemainingHoliday(ctx, f.ewa.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, left)

	left, err = f.svc.RemainingHoliday(ctx, f.jan.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, left)

	_, err = f.svc.RemainingHoliday(ctx, 999)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func sampleReports() []overtime.Report {
	window := overtime.BillingWindow(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	return []overtime.Report{
		{EmployeeID: 2, Employee: "Jan Kos", Window: window, Days: make([]overtime.DayResult, 1), Total: 3},
		{EmployeeID: 1, Employee: "Ewa Lis", Window: window, Days: make([]overtime.DayResult, 2), Total: 5},
	}
}

func TestWriteOvertimeCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reports.WriteOvertimeCSV(&buf, sampleReports()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Employee", rows[0][1])
	assert.Equal(t, []string{"1", "Ewa Lis", "2024-03-10", "2024-04-10", "2", "5"}, rows[2])
}

func TestWriteOvertimeXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, reports.WriteOvertimeXLSX(&buf, sampleReports()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	name, err := f.GetCellValue("Overtime", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Ewa Lis", name)
	total, err := f.GetCellValue("Overtime", "F2")
	require.NoError(t, err)
	assert.Equal(t, "3", total)
}

func TestExportFilename(t *testing.T) {
	window := overtime.BillingWindow(time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))
	a := reports.ExportFilename(window, "csv")
	b := reports.ExportFilename(window, "csv")
	assert.Regexp(t, `^overtime_2024_03_[0-9a-f]{8}\.csv$`, a)
	assert.NotEqual(t, a, b)
}
