package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/apperr"
)

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"precondition", &apperr.PreconditionError{Action: "end_work_day", Message: "unfinished tasks remain"}, http.StatusConflict, "unfinished tasks remain"},
		{"no active work day", apperr.ErrNoActiveWorkDay, http.StatusConflict, apperr.ErrNoActiveWorkDay.Error()},
		{"not found", fmt.Errorf("task 3: %w", apperr.ErrNotFound), http.StatusNotFound, "task 3: not found"},
		{"configuration missing", apperr.ErrConfigurationMissing, http.StatusServiceUnavailable, apperr.ErrConfigurationMissing.Error()},
		{"validation", apperr.Validation("location is required"), http.StatusBadRequest, ""},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden, apperr.ErrForbidden.Error()},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, apperr.ErrUnauthorized.Error()},
		{"protected", apperr.ErrProtected, http.StatusConflict, apperr.ErrProtected.Error()},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tt.err)
			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var p ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
			assert.Equal(t, tt.status, p.Status)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, p.Detail)
			}
			if tt.status == http.StatusInternalServerError {
				assert.Empty(t, p.Detail)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		Location string `json:"location"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"location":"Poznan"}`))
	require.NoError(t, DecodeJSON(r, &body))
	assert.Equal(t, "Poznan", body.Location)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"unknown":1}`))
	require.ErrorIs(t, DecodeJSON(r, &body), apperr.ErrValidation)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, DecodeJSON(r, &body))
}
