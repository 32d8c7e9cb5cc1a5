package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"worktime/apperr"
	"worktime/httpx"
	"worktime/middleware"
	"worktime/models"
	"worktime/overtime"
	"worktime/reports"
	"worktime/timeutil"
)

// ManagementHandler serves reports, overtime and exports to managers and admins.
type ManagementHandler struct {
	reports  *reports.Service
	overtime *overtime.Service
	clock    timeutil.Clock
	logger   *slog.Logger
}

func NewManagementHandler(rep *reports.Service, ot *overtime.Service, clock timeutil.Clock, logger *slog.Logger) *ManagementHandler {
	return &ManagementHandler{reports: rep, overtime: ot, clock: clock, logger: logger}
}

type workDayTasksResponse struct {
	WorkDay *models.WorkDay `json:"work_day"`
	Tasks   []models.Task   `json:"tasks"`
}

func (h *ManagementHandler) TodayWorkDays(w http.ResponseWriter, r *http.Request) {
	employeeID, err := queryID(r, "employee_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	days, err := h.reports.TodayWorkDays(r.Context(), employeeID)
	if err != nil {
		h.logger.Error("today work days", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, days)
}

func (h *ManagementHandler) TodayTasks(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryID(r, "project_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tasks, err := h.reports.TodayProjectTasks(r.Context(), projectID)
	if err != nil {
		h.logger.Error("today tasks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *ManagementHandler) WorkDayTasks(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	wd, tasks, err := h.reports.WorkDayTasks(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, workDayTasksResponse{WorkDay: wd, Tasks: tasks})
}

func (h *ManagementHandler) ProjectHours(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	hours, err := h.reports.ProjectHours(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hours)
}

func (h *ManagementHandler) EmployeeHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	left, err := h.reports.RemainingHoliday(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, holidayResponse{EmployeeID: id, Remaining: left})
}

// parameters loads the overtime configuration and the reference date.
func (h *ManagementHandler) parameters(r *http.Request) (models.OvertimeParameters, time.Time, error) {
	ref, err := queryDate(r, h.clock.Now())
	if err != nil {
		return models.OvertimeParameters{}, time.Time{}, err
	}
	p, err := h.overtime.LoadParameters(r.Context())
	if err != nil {
		return models.OvertimeParameters{}, time.Time{}, err
	}
	return p, ref, nil
}

func (h *ManagementHandler) EmployeeOvertime(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, ref, err := h.parameters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	report, err := h.overtime.ComputeForEmployee(r.Context(), id, ref, p)
	if err != nil {
		h.logger.Error("compute overtime", slog.Uint64("employee_id", uint64(id)), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *ManagementHandler) summary(r *http.Request) ([]overtime.Report, error) {
	p, ref, err := h.parameters(r)
	if err != nil {
		return nil, err
	}
	result, err := h.overtime.Summary(r.Context(), ref, p)
	if err != nil {
		h.logger.Error("overtime summary", slog.Any("error", err))
		return nil, err
	}
	return result, nil
}

func (h *ManagementHandler) OvertimeSummary(w http.ResponseWriter, r *http.Request) {
	result, err := h.summary(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *ManagementHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "csv", "text/csv", reports.WriteOvertimeCSV)
}

func (h *ManagementHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", reports.WriteOvertimeXLSX)
}

func (h *ManagementHandler) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, []overtime.Report) error) {
	caller := middleware.GetEmployeeFromContext(r.Context())
	if caller == nil || !caller.CanExport() {
		httpx.RespondError(w, apperr.ErrForbidden)
		return
	}
	summary, err := h.summary(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ref, err := queryDate(r, h.clock.Now())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	window := overtime.BillingWindow(ref)

	var buf bytes.Buffer
	if err := write(&buf, summary); err != nil {
		h.logger.Error("write export", slog.String("format", ext), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := reports.ExportFilename(window, ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	_, _ = w.Write(buf.Bytes())
}
