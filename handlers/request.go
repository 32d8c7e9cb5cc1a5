package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"worktime/apperr"
	"worktime/httpx"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// decode reads a JSON body into dst and runs its validate tags.
func decode(r *http.Request, dst any) error {
	if err := httpx.DecodeJSON(r, dst); err != nil {
		return err
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.ToLower(fe.Field())+" "+fe.Tag())
			}
			return apperr.Validation("%s", strings.Join(fields, ", "))
		}
		return apperr.Validation("%v", err)
	}
	return nil
}

func urlID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// queryID parses an optional numeric filter; absent means zero.
func queryID(r *http.Request, name string) (uint, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperr.Validation("invalid %s", name)
	}
	return uint(id), nil
}

// queryDate parses ?date=YYYY-MM-DD in loc, defaulting to now.
func queryDate(r *http.Request, now time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return now, nil
	}
	d, err := time.ParseInLocation("2006-01-02", raw, now.Location())
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

func optionalTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
