package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"worktime/apperr"
	"worktime/config"
	"worktime/httpx"
	"worktime/middleware"
	"worktime/models"
	"worktime/store"
)

type AuthHandler struct {
	config *config.Config
	store  store.Store
	logger *slog.Logger
}

func NewAuthHandler(cfg *config.Config, st store.Store, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{config: cfg, store: st, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Employee *models.Employee `json:"employee"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	employee, err := h.store.FindEmployeeByEmail(r.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			h.logger.Error("login lookup", slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.Password)); err != nil || !employee.Active {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(employee, h.config.JWTExpiration)
	if err != nil {
		h.logger.Error("generate token", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.config.JWTExpiration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	h.logger.Info("employee logged in", slog.Uint64("employee_id", uint64(employee.ID)))
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, Employee: employee})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearTokenCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	employee := middleware.GetEmployeeFromContext(r.Context())
	if employee == nil {
		httpx.RespondError(w, apperr.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	employee := middleware.GetEmployeeFromContext(r.Context())
	if employee == nil {
		httpx.RespondError(w, apperr.ErrUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := decode(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(employee.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		httpx.RespondError(w, apperr.Validation("current password is incorrect"))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	employee.PasswordHash = string(hashedPassword)
	if err := h.store.UpdateEmployee(r.Context(), employee); err != nil {
		h.logger.Error("update password", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
