package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Metrics)
	r.Delete("/api/leads/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodDelete, "/api/leads/{id}", "204"))
	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/leads/"+id, nil))
	}

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodDelete, "/api/leads/{id}", "204"))
	assert.Equal(t, 2.0, after-before)
}

func TestRecorderCounters(t *testing.T) {
	var rec Recorder

	loadsBefore := testutil.ToFloat64(directoryLoads.WithLabelValues("test_leads", "error"))
	rec.ObserveLoad("test_leads", 0, errors.New("boom"))
	rec.ObserveLoad("test_leads", 42, nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(directoryLoads.WithLabelValues("test_leads", "error"))-loadsBefore)
	assert.Equal(t, 42.0, testutil.ToFloat64(directorySize.WithLabelValues("test_leads")))

	mutBefore := testutil.ToFloat64(mutationsTotal.WithLabelValues("test_update", "ok"))
	rec.ObserveMutation("test_update", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(mutationsTotal.WithLabelValues("test_update", "ok"))-mutBefore)

	errBefore := testutil.ToFloat64(integrationErrors.WithLabelValues("backend"))
	rec.ObserveRequest("test.list", 0, time.Millisecond)
	rec.ObserveRequest("test.list", 200, time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(integrationErrors.WithLabelValues("backend"))-errBefore)
	assert.Equal(t, 1.0, testutil.ToFloat64(backendRequests.WithLabelValues("test.list", "transport_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(backendRequests.WithLabelValues("test.list", "200")))
}
