package handlers

import (
	"context"
	"net/http"
	"time"

	"worktime/apperr"
	"worktime/httpx"
	"worktime/middleware"
	"worktime/models"
	"worktime/reports"
	"worktime/workday"
)

// WorkDayHandler serves the employee's own work day and task actions.
type WorkDayHandler struct {
	workDays *workday.Service
	reports  *reports.Service
}

func NewWorkDayHandler(workDays *workday.Service, reports *reports.Service) *WorkDayHandler {
	return &WorkDayHandler{workDays: workDays, reports: reports}
}

type startWorkDayRequest struct {
	Start *time.Time `json:"start"`
}

type absenceRequest struct {
	Start  *time.Time           `json:"start"`
	Status models.WorkDayStatus `json:"status" validate:"required,oneof=HOLIDAY SICK_LEAVE CHILD_CARE"`
}

type endWorkDayRequest struct {
	Stop   *time.Time           `json:"stop"`
	Status models.WorkDayStatus `json:"status" validate:"omitempty,oneof=WORK HOLIDAY SICK_LEAVE CHILD_CARE"`
}

type startTaskRequest struct {
	Start     *time.Time      `json:"start"`
	ProjectID uint            `json:"project_id" validate:"required"`
	Location  string          `json:"location" validate:"required,max=50"`
	WorkMode  models.WorkMode `json:"work_mode" validate:"required,oneof=HOME_OFFICE ON_SITE DELEGATION MAINTENANCE"`
}

type endTaskRequest struct {
	Stop     *time.Time `json:"stop"`
	Location string     `json:"location" validate:"omitempty,max=50"`
}

type updateTaskRequest struct {
	ProjectID uint            `json:"project_id"`
	Location  string          `json:"location" validate:"omitempty,max=50"`
	WorkMode  models.WorkMode `json:"work_mode" validate:"omitempty,oneof=HOME_OFFICE ON_SITE DELEGATION MAINTENANCE"`
}

type activeResponse struct {
	WorkDay *models.WorkDay `json:"work_day"`
	Tasks   []models.Task   `json:"tasks"`
}

type holidayResponse struct {
	EmployeeID uint `json:"employee_id"`
	Remaining  int  `json:"remaining"`
}

// authorize checks that the caller may act on a record owned by ownerID.
func authorize(ctx context.Context, ownerID uint) error {
	employee := middleware.GetEmployeeFromContext(ctx)
	if employee == nil {
		return apperr.ErrUnauthorized
	}
	if !employee.CanManageWorkDayOf(ownerID) {
		return apperr.ErrForbidden
	}
	return nil
}

func (h *WorkDayHandler) StartWorkDay(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req startWorkDayRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	wd, err := h.workDays.StartWorkDay(r.Context(), employeeID, optionalTime(req.Start))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wd)
}

func (h *WorkDayHandler) ReportAbsence(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req absenceRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	wd, err := h.workDays.ReportAbsence(r.Context(), employeeID, optionalTime(req.Start), req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, wd)
}

func (h *WorkDayHandler) EndWorkDay(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req endWorkDayRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	owner, err := h.workDays.WorkDayOwner(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := authorize(r.Context(), owner); err != nil {
		httpx.RespondError(w, err)
		return
	}
	wd, err := h.workDays.EndWorkDay(r.Context(), id, optionalTime(req.Stop), req.Status)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, wd)
}

func (h *WorkDayHandler) Active(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	wd, tasks, err := h.workDays.ActiveTasks(r.Context(), employeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, activeResponse{WorkDay: wd, Tasks: tasks})
}

func (h *WorkDayHandler) Actions(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	allowed, err := h.workDays.Allowed(r.Context(), employeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make(map[string]bool, len(allowed))
	for action, ok := range allowed {
		out[string(action)] = ok
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *WorkDayHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req startTaskRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	task, err := h.workDays.StartTask(r.Context(), employeeID, workday.TaskInput{
		Start:     optionalTime(req.Start),
		Location:  req.Location,
		ProjectID: req.ProjectID,
		WorkMode:  req.WorkMode,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

// taskForCaller resolves the task id in the URL and checks ownership.
func (h *WorkDayHandler) taskForCaller(r *http.Request) (uint, error) {
	id, err := urlID(r, "id")
	if err != nil {
		return 0, err
	}
	owner, err := h.workDays.TaskOwner(r.Context(), id)
	if err != nil {
		return 0, err
	}
	if err := authorize(r.Context(), owner); err != nil {
		return 0, err
	}
	return id, nil
}

func (h *WorkDayHandler) EndTask(w http.ResponseWriter, r *http.Request) {
	var req endTaskRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.taskForCaller(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	task, err := h.workDays.EndTask(r.Context(), id, optionalTime(req.Stop), req.Location)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *WorkDayHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	id, err := h.taskForCaller(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	task, err := h.workDays.UpdateTask(r.Context(), id, workday.TaskUpdate{
		Location:  req.Location,
		ProjectID: req.ProjectID,
		WorkMode:  req.WorkMode,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *WorkDayHandler) RemainingHoliday(w http.ResponseWriter, r *http.Request) {
	employeeID, err := middleware.CurrentEmployeeID(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	left, err := h.reports.RemainingHoliday(r.Context(), employeeID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, holidayResponse{EmployeeID: employeeID, Remaining: left})
}
