package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"worktime/config"
	"worktime/httpx"
	"worktime/metrics"
	"worktime/middleware"
	"worktime/models"
	"worktime/overtime"
	"worktime/reports"
	"worktime/store"
	"worktime/timeutil"
	"worktime/workday"
)

// Deps wires the services behind the API.
type Deps struct {
	Config      *config.Config
	Store       store.Store
	Clock       timeutil.Clock
	Logger      *slog.Logger
	WorkDays    *workday.Service
	Overtime    *overtime.Service
	Reports     *reports.Service
	Metrics     *metrics.Metrics
	Invalidator workday.Invalidator
}

func NewRouter(d Deps) http.Handler {
	authHandler := NewAuthHandler(d.Config, d.Store, d.Logger)
	workDayHandler := NewWorkDayHandler(d.WorkDays, d.Reports)
	managementHandler := NewManagementHandler(d.Reports, d.Overtime, d.Clock, d.Logger)
	adminHandler := NewAdminHandler(d.Store, d.Logger, d.Invalidator)

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})

	limit := d.Config.RateLimitPerMinute
	if limit <= 0 {
		limit = 120
	}
	limiter := httprate.Limit(limit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		}),
	)

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(secureMiddleware.Handler)
	router.Use(d.Metrics.Middleware)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", d.Metrics.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Use(limiter)

		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(d.Store))

			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Post("/me/password", authHandler.ChangePassword)
			r.Get("/me/holiday", workDayHandler.RemainingHoliday)

			r.Post("/workdays", workDayHandler.StartWorkDay)
			r.Post("/workdays/absence", workDayHandler.ReportAbsence)
			r.Get("/workdays/active", workDayHandler.Active)
			r.Get("/workdays/actions", workDayHandler.Actions)
			r.Post("/workdays/{id}/end", workDayHandler.EndWorkDay)

			r.Post("/tasks", workDayHandler.StartTask)
			r.Patch("/tasks/{id}", workDayHandler.UpdateTask)
			r.Post("/tasks/{id}/end", workDayHandler.EndTask)

			r.Get("/projects", adminHandler.ListProjects)

			// Managers and admins
			r.Group(func(r chi.Router) {
				r.Use(middleware.Allow((*models.Employee).CanViewReports))
				r.Get("/reports/today", managementHandler.TodayWorkDays)
				r.Get("/reports/today/tasks", managementHandler.TodayTasks)
				r.Get("/reports/workdays/{id}/tasks", managementHandler.WorkDayTasks)
				r.Get("/reports/projects/{id}/hours", managementHandler.ProjectHours)
				r.Get("/reports/employees/{id}/holiday", managementHandler.EmployeeHoliday)
				r.Get("/overtime", managementHandler.OvertimeSummary)
				r.Get("/overtime/employees/{id}", managementHandler.EmployeeOvertime)
				r.Get("/overtime/export.csv", managementHandler.ExportCSV)
				r.Get("/overtime/export.xlsx", managementHandler.ExportXLSX)
				r.Get("/employees", adminHandler.ListEmployees)
				r.Get("/overtime/parameters", adminHandler.GetOvertimeParameters)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/projects", adminHandler.CreateProject)
				r.Put("/projects/{id}", adminHandler.UpdateProject)
				r.Post("/employees", adminHandler.CreateEmployee)
				r.Patch("/employees/{id}", adminHandler.UpdateEmployee)
				r.Delete("/employees/{id}", adminHandler.DeleteEmployee)
				r.Delete("/workdays/{id}", adminHandler.DeleteWorkDay)
				r.Post("/overtime/parameters", adminHandler.CreateOvertimeParameters)
			})
		})
	})

	return router
}
