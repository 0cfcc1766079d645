package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kashvi-crm/pkg/metrics"
)

func TestMiddleware_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(metrics.Middleware())
	r.Get("/orders/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) })

	before := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/orders/{id}", "202"))
	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}
	after := testutil.ToFloat64(metrics.RequestTotal.WithLabelValues("GET", "/orders/{id}", "202"))
	assert.Equal(t, before+2, after)
}

func TestRecorders(t *testing.T) {
	runs := metrics.ScheduledRuns.WithLabelValues("low-stock", "failed")
	before := testutil.ToFloat64(runs)
	metrics.RecordScheduledRun("low-stock", true, time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(runs))

	writes := metrics.WritesTotal.WithLabelValues("order", "error")
	before = testutil.ToFloat64(writes)
	metrics.RecordWrite("order", errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(writes))

	jobs := metrics.QueueJobsProcessed.WithLabelValues("order-reminder-mail", "done")
	before = testutil.ToFloat64(jobs)
	metrics.RecordQueueJob("order-reminder-mail", "done", time.Now())
	assert.Equal(t, before+1, testutil.ToFloat64(jobs))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	metrics.RecordWrite("customer", nil)

	rec := httptest.NewRecorder()
	metrics.Handler()(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `crm_writes_total{entity="customer",outcome="ok"}`)
}
