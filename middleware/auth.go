package middleware

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"worktime/apperr"
	"worktime/httpx"
	"worktime/models"
)

type contextKey string

const EmployeeContextKey contextKey = "employee"

// TokenCookie carries the session token for browser clients.
const TokenCookie = "token"

type Claims struct {
	EmployeeID uint        `json:"employee_id"`
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	jwt.RegisteredClaims
}

var jwtSecret []byte

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func GenerateToken(e *models.Employee, expiration time.Duration) (string, error) {
	claims := &Claims{
		EmployeeID: e.ID,
		Email:      e.Email,
		Role:       e.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return jwtSecret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}

// EmployeeLookup loads the employee named by a token.
type EmployeeLookup interface {
	GetEmployee(ctx context.Context, id uint) (*models.Employee, error)
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// ClearTokenCookie expires the session cookie.
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Auth resolves the bearer token or session cookie to an active employee and
// stores it in the request context.
func Auth(lookup EmployeeLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := tokenFromRequest(r)
			if tokenString == "" {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing token")
				return
			}

			claims, err := ValidateToken(tokenString)
			if err != nil {
				ClearTokenCookie(w)
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}

			employee, err := lookup.GetEmployee(r.Context(), claims.EmployeeID)
			if err != nil || !employee.Active {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "unknown or inactive employee")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithEmployee(r.Context(), employee)))
		})
	}
}

// Allow admits callers for whom permitted returns true.
func Allow(permitted func(*models.Employee) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			employee := GetEmployeeFromContext(r.Context())
			if employee == nil {
				httpx.RespondError(w, apperr.ErrUnauthorized)
				return
			}
			if !permitted(employee) {
				httpx.RespondError(w, apperr.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return Allow(func(e *models.Employee) bool {
		return slices.Contains(roles, e.Role)
	})
}

func WithEmployee(ctx context.Context, e *models.Employee) context.Context {
	return context.WithValue(ctx, EmployeeContextKey, e)
}

func GetEmployeeFromContext(ctx context.Context) *models.Employee {
	employee, ok := ctx.Value(EmployeeContextKey).(*models.Employee)
	if !ok {
		return nil
	}
	return employee
}

// CurrentEmployeeID returns the authenticated employee's id or apperr.ErrUnauthorized.
func CurrentEmployeeID(ctx context.Context) (uint, error) {
	employee := GetEmployeeFromContext(ctx)
	if employee == nil {
		return 0, apperr.ErrUnauthorized
	}
	return employee.ID, nil
}
