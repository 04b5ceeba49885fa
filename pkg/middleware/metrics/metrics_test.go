package metrics

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

func TestObserveDispatch(t *testing.T) {
	before := testutil.ToFloat64(dispatchTotal.WithLabelValues("content", "OK"))
	ObserveDispatch("content", "OK", 3*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(dispatchTotal.WithLabelValues("content", "OK")))
}

func TestObserveModule(t *testing.T) {
	ok := testutil.ToFloat64(moduleLoads.WithLabelValues("reload", "ok"))
	bad := testutil.ToFloat64(moduleLoads.WithLabelValues("reload", "error"))

	ObserveModule("hello", "reload", nil)
	ObserveModule("hello", "reload", errors.New("boom"))

	assert.Equal(t, ok+1, testutil.ToFloat64(moduleLoads.WithLabelValues("reload", "ok")))
	assert.Equal(t, bad+1, testutil.ToFloat64(moduleLoads.WithLabelValues("reload", "error")))
}

func TestCollectLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Collect())
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("418", "/items/{id}", "GET"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/items/42", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(totalHttpRequestsToUri.WithLabelValues("418", "/items/{id}", "GET")))
}

func TestCollectSkipsMetricsPath(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Collect())
	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {})

	before := testutil.ToFloat64(totalHttpRequests.WithLabelValues("200", "GET"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, before, testutil.ToFloat64(totalHttpRequests.WithLabelValues("200", "GET")))
}
