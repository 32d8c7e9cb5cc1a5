package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"worktime/apperr"
	"worktime/httpx"
	"worktime/models"
	"worktime/overtime"
	"worktime/store"
	"worktime/workday"
)

// AdminHandler manages projects, employees and overtime parameters.
type AdminHandler struct {
	store       store.Store
	logger      *slog.Logger
	invalidator workday.Invalidator
}

// NewAdminHandler builds the handler. invalidator may be nil.
func NewAdminHandler(st store.Store, logger *slog.Logger, invalidator workday.Invalidator) *AdminHandler {
	return &AdminHandler{store: st, logger: logger, invalidator: invalidator}
}

func (h *AdminHandler) changed(ctx context.Context) {
	if h.invalidator == nil {
		return
	}
	if err := h.invalidator.Invalidate(ctx); err != nil {
		h.logger.Warn("invalidate cache", slog.Any("error", err))
	}
}

type projectRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	ClientCompany string `json:"client_company" validate:"required,max=50"`
	Location      string `json:"location" validate:"required,max=50"`
	Finished      bool   `json:"finished"`
}

func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, projects)
}

func (h *AdminHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	project := models.Project{
		Name:          strings.TrimSpace(req.Name),
		ClientCompany: strings.TrimSpace(req.ClientCompany),
		Location:      strings.TrimSpace(req.Location),
		Finished:      req.Finished,
	}
	if err := h.store.InsertProject(r.Context(), &project); err != nil {
		h.logger.Error("create project", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *AdminHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req projectRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	project.Name = strings.TrimSpace(req.Name)
	project.ClientCompany = strings.TrimSpace(req.ClientCompany)
	project.Location = strings.TrimSpace(req.Location)
	project.Finished = req.Finished
	if err := h.store.UpdateProject(r.Context(), project); err != nil {
		h.logger.Error("update project", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

type createEmployeeRequest struct {
	Email            string      `json:"email" validate:"required,email,max=100"`
	FirstName        string      `json:"first_name" validate:"required,max=30"`
	LastName         string      `json:"last_name" validate:"required,max=50"`
	Password         string      `json:"password" validate:"required,min=8"`
	Role             models.Role `json:"role" validate:"required,oneof=ADMIN MANAGER EMPLOYEE"`
	HolidayAllowance int         `json:"holiday_allowance" validate:"gte=0"`
}

type updateEmployeeRequest struct {
	Role             models.Role `json:"role" validate:"omitempty,oneof=ADMIN MANAGER EMPLOYEE"`
	Active           *bool       `json:"active"`
	HolidayAllowance *int        `json:"holiday_allowance" validate:"omitempty,gte=0"`
}

func (h *AdminHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employees)
}

func (h *AdminHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req createEmployeeRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	employee := models.Employee{
		Email:            strings.TrimSpace(req.Email),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		PasswordHash:     string(hashedPassword),
		Role:             req.Role,
		Active:           true,
		HolidayAllowance: req.HolidayAllowance,
	}
	if err := h.store.InsertEmployee(r.Context(), &employee); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			httpx.RespondError(w, apperr.Validation("email %s is already registered", employee.Email))
			return
		}
		h.logger.Error("create employee", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("employee created", slog.Uint64("employee_id", uint64(employee.ID)), slog.String("role", string(employee.Role)))
	h.changed(r.Context())
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *AdminHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req updateEmployeeRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if req.Role != "" {
		employee.Role = req.Role
	}
	if req.Active != nil {
		employee.Active = *req.Active
	}
	if req.HolidayAllowance != nil {
		employee.HolidayAllowance = *req.HolidayAllowance
	}
	if err := h.store.UpdateEmployee(r.Context(), employee); err != nil {
		h.logger.Error("update employee", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *AdminHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("employee deleted", slog.Uint64("employee_id", uint64(id)))
	h.changed(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) DeleteWorkDay(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.DeleteWorkDay(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("work day deleted", slog.Uint64("work_day_id", uint64(id)))
	h.changed(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

type overtimeParametersRequest struct {
	OvertimeAfter int `json:"overtime_after" validate:"required,gt=0"`
	OvertimeDay   int `json:"overtime_day" validate:"required,min=1,max=7"`
}

func (h *AdminHandler) GetOvertimeParameters(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.LatestOvertimeParameters(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *AdminHandler) CreateOvertimeParameters(w http.ResponseWriter, r *http.Request) {
	var req overtimeParametersRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	p := models.OvertimeParameters{OvertimeAfter: req.OvertimeAfter, OvertimeDay: req.OvertimeDay}
	if err := overtime.ValidateParameters(p); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.store.InsertOvertimeParameters(r.Context(), &p); err != nil {
		h.logger.Error("create overtime parameters", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("overtime parameters changed", slog.Int("overtime_after", p.OvertimeAfter), slog.Int("overtime_day", p.OvertimeDay))
	httpx.JSON(w, http.StatusCreated, p)
}
