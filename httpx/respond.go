// Package httpx writes JSON bodies and RFC7807 problem responses.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"worktime/apperr"
)

// ProblemDetail is an RFC7807 problem document.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Action string `json:"action,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func Problem(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, ProblemDetail{Title: title, Status: status, Detail: detail})
}

func writeProblem(w http.ResponseWriter, p ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// RespondError maps domain errors onto status codes. Unknown errors become a
// 500 without detail.
func RespondError(w http.ResponseWriter, err error) {
	var pe *apperr.PreconditionError
	switch {
	case errors.As(err, &pe):
		writeProblem(w, ProblemDetail{Title: "Precondition Violated", Status: http.StatusConflict, Detail: pe.Message, Action: pe.Action})
	case errors.Is(err, apperr.ErrNoActiveWorkDay):
		Problem(w, http.StatusConflict, "No Active Work Day", err.Error())
	case errors.Is(err, apperr.ErrProtected):
		Problem(w, http.StatusConflict, "Protected", err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, apperr.ErrConfigurationMissing):
		Problem(w, http.StatusServiceUnavailable, "Configuration Missing", err.Error())
	case errors.Is(err, apperr.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// DecodeJSON decodes the request body into target. An empty body leaves
// target untouched.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
