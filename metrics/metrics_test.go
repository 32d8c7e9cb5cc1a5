package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRoutePattern(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/workdays/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/workdays/7", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("/workdays/{id}", "404")))
}

func TestRecordEvent(t *testing.T) {
	m := New()
	m.RecordEvent("work_day_started")
	m.RecordEvent("work_day_started")
	m.RecordEvent("refused_start_work_day")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("work_day_started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("refused_start_work_day")))
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.RecordEvent("task_started")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `worktime_workday_events_total{event="task_started"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.RecordEvent("ignored")
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
