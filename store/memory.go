package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"worktime/apperr"
	"worktime/models"
)

type memoryData struct {
	employees map[uint]models.Employee
	workDays  map[uint]models.WorkDay
	tasks     map[uint]models.Task
	projects  map[uint]models.Project
	params    map[uint]models.OvertimeParameters
	nextID    uint
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		employees: make(map[uint]models.Employee, len(d.employees)),
		workDays:  make(map[uint]models.WorkDay, len(d.workDays)),
		tasks:     make(map[uint]models.Task, len(d.tasks)),
		projects:  make(map[uint]models.Project, len(d.projects)),
		params:    make(map[uint]models.OvertimeParameters, len(d.params)),
		nextID:    d.nextID,
	}
	for k, v := range d.employees {
		c.employees[k] = v
	}
	for k, v := range d.workDays {
		c.workDays[k] = v
	}
	for k, v := range d.tasks {
		c.tasks[k] = v
	}
	for k, v := range d.projects {
		c.projects[k] = v
	}
	for k, v := range d.params {
		c.params[k] = v
	}
	return c
}

// Memory is an in-process Store. Transactions are serialized and rolled back
// by restoring a snapshot. It enforces the same unique and restrict rules as
// the Postgres schema.
type Memory struct {
	mu   *sync.Mutex
	data **memoryData
	inTx bool
}

func NewMemory() *Memory {
	d := &memoryData{
		employees: make(map[uint]models.Employee),
		workDays:  make(map[uint]models.WorkDay),
		tasks:     make(map[uint]models.Task),
		projects:  make(map[uint]models.Project),
		params:    make(map[uint]models.OvertimeParameters),
	}
	return &Memory{mu: &sync.Mutex{}, data: &d}
}

func (m *Memory) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.mu.Lock()
	return m.mu.Unlock
}

func (m *Memory) d() *memoryData {
	return *m.data
}

func (m *Memory) id() uint {
	m.d().nextID++
	return m.d().nextID
}

func (m *Memory) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := m.d().clone()
	if err := fn(&Memory{mu: m.mu, data: m.data, inTx: true}); err != nil {
		*m.data = snapshot
		return err
	}
	return nil
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func (m *Memory) InsertEmployee(ctx context.Context, e *models.Employee) error {
	defer m.lock()()
	for _, other := range m.d().employees {
		if other.Email == e.Email {
			return ErrDuplicate
		}
	}
	now := time.Now()
	e.ID = m.id()
	e.CreatedAt, e.UpdatedAt = now, now
	stored := *e
	stored.WorkDays = nil
	m.d().employees[e.ID] = stored
	return nil
}

func (m *Memory) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	defer m.lock()()
	if _, ok := m.d().employees[e.ID]; !ok {
		return apperr.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	stored := *e
	stored.WorkDays = nil
	m.d().employees[e.ID] = stored
	return nil
}

func (m *Memory) DeleteEmployee(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.d().employees[id]; !ok {
		return apperr.ErrNotFound
	}
	for _, w := range m.d().workDays {
		if w.EmployeeID == id {
			return apperr.ErrProtected
		}
	}
	delete(m.d().employees, id)
	return nil
}

func (m *Memory) GetEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	defer m.lock()()
	e, ok := m.d().employees[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &e, nil
}

func (m *Memory) FindEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	defer m.lock()()
	for _, e := range m.d().employees {
		if e.Email == email {
			return &e, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (m *Memory) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	defer m.lock()()
	out := make([]models.Employee, 0, len(m.d().employees))
	for _, e := range m.d().employees {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		if out[i].FirstName != out[j].FirstName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) storeWorkDay(w *models.WorkDay) {
	stored := *w
	stored.Stop = copyTime(w.Stop)
	stored.Employee = nil
	stored.Tasks = nil
	m.d().workDays[w.ID] = stored
}

func (m *Memory) loadWorkDay(w models.WorkDay) models.WorkDay {
	w.Stop = copyTime(w.Stop)
	if e, ok := m.d().employees[w.EmployeeID]; ok {
		w.Employee = &e
	}
	return w
}

func (m *Memory) InsertWorkDay(ctx context.Context, w *models.WorkDay) error {
	defer m.lock()()
	if _, ok := m.d().employees[w.EmployeeID]; !ok {
		return apperr.ErrNotFound
	}
	for _, other := range m.d().workDays {
		if other.EmployeeID == w.EmployeeID && other.Day.Equal(w.Day) {
			return ErrDuplicate
		}
	}
	now := time.Now()
	w.ID = m.id()
	w.CreatedAt, w.UpdatedAt = now, now
	m.storeWorkDay(w)
	return nil
}

func (m *Memory) UpdateWorkDay(ctx context.Context, w *models.WorkDay) error {
	defer m.lock()()
	if _, ok := m.d().workDays[w.ID]; !ok {
		return apperr.ErrNotFound
	}
	w.UpdatedAt = time.Now()
	m.storeWorkDay(w)
	return nil
}

func (m *Memory) DeleteWorkDay(ctx context.Context, id uint) error {
	defer m.lock()()
	if _, ok := m.d().workDays[id]; !ok {
		return apperr.ErrNotFound
	}
	for _, t := range m.d().tasks {
		if t.WorkDayID == id {
			return apperr.ErrProtected
		}
	}
	delete(m.d().workDays, id)
	return nil
}

func (m *Memory) matchWorkDays(f models.WorkDayFilter) []models.WorkDay {
	var out []models.WorkDay
	for _, w := range m.d().workDays {
		if f.Match(&w) {
			out = append(out, m.loadWorkDay(w))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *Memory) FindWorkDay(ctx context.Context, f models.WorkDayFilter) (*models.WorkDay, error) {
	defer m.lock()()
	found := m.matchWorkDays(f)
	if len(found) == 0 {
		return nil, apperr.ErrNotFound
	}
	w := found[0]
	w.Employee = nil
	return &w, nil
}

func (m *Memory) FindWorkDays(ctx context.Context, f models.WorkDayFilter) ([]models.WorkDay, error) {
	defer m.lock()()
	return m.matchWorkDays(f), nil
}

func (m *Memory) CountWorkDays(ctx context.Context, f models.WorkDayFilter) (int64, error) {
	defer m.lock()()
	return int64(len(m.matchWorkDays(f))), nil
}

func (m *Memory) storeTask(t *models.Task) {
	stored := *t
	stored.Stop = copyTime(t.Stop)
	stored.Project = nil
	stored.WorkDay = nil
	m.d().tasks[t.ID] = stored
}

func (m *Memory) loadTask(t models.Task) models.Task {
	t.Stop = copyTime(t.Stop)
	if p, ok := m.d().projects[t.ProjectID]; ok {
		t.Project = &p
	}
	return t
}

func (m *Memory) checkTaskRefs(t *models.Task) error {
	if _, ok := m.d().workDays[t.WorkDayID]; !ok {
		return apperr.ErrNotFound
	}
	if _, ok := m.d().projects[t.ProjectID]; !ok {
		return apperr.ErrNotFound
	}
	return nil
}

func (m *Memory) InsertTask(ctx context.Context, t *models.Task) error {
	defer m.lock()()
	if err := m.checkTaskRefs(t); err != nil {
		return err
	}
	now := time.Now()
	t.ID = m.id()
	t.CreatedAt, t.UpdatedAt = now, now
	m.storeTask(t)
	return nil
}

func (m *Memory) UpdateTask(ctx context.Context, t *models.Task) error {
	defer m.lock()()
	if _, ok := m.d().tasks[t.ID]; !ok {
		return apperr.ErrNotFound
	}
	if err := m.checkTaskRefs(t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	m.storeTask(t)
	return nil
}

func (m *Memory) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	defer m.lock()()
	t, ok := m.d().tasks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	t = m.loadTask(t)
	return &t, nil
}

func (m *Memory) FindTasks(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	defer m.lock()()
	var out []models.Task
	for _, t := range m.d().tasks {
		if f.Match(&t) {
			out = append(out, m.loadTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Start.Equal(out[j].Start) {
			return out[i].Start.Before(out[j].Start)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) InsertProject(ctx context.Context, p *models.Project) error {
	defer m.lock()()
	now := time.Now()
	p.ID = m.id()
	p.CreatedAt, p.UpdatedAt = now, now
	m.d().projects[p.ID] = *p
	return nil
}

func (m *Memory) UpdateProject(ctx context.Context, p *models.Project) error {
	defer m.lock()()
	if _, ok := m.d().projects[p.ID]; !ok {
		return apperr.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	m.d().projects[p.ID] = *p
	return nil
}

func (m *Memory) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	defer m.lock()()
	p, ok := m.d().projects[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) ListProjects(ctx context.Context) ([]models.Project, error) {
	defer m.lock()()
	out := make([]models.Project, 0, len(m.d().projects))
	for _, p := range m.d().projects {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) InsertOvertimeParameters(ctx context.Context, p *models.OvertimeParameters) error {
	defer m.lock()()
	p.ID = m.id()
	p.CreatedAt = time.Now()
	m.d().params[p.ID] = *p
	return nil
}

func (m *Memory) LatestOvertimeParameters(ctx context.Context) (*models.OvertimeParameters, error) {
	defer m.lock()()
	var latest *models.OvertimeParameters
	for _, p := range m.d().params {
		if latest == nil || p.ID > latest.ID {
			p := p
			latest = &p
		}
	}
	if latest == nil {
		return nil, apperr.ErrConfigurationMissing
	}
	return latest, nil
}
