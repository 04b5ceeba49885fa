package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	responseTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "response_time",
			Help:    "http response time.",
			Buckets: []float64{0.005, 0.05, 0.5, 1, 5, 10, 30, 60},
		},
	)

	totalHttpRequestsToUri = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests_to_uri", Help: "http requests to uri"},
		[]string{"code", "uri", "method"},
	)

	totalHttpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "total_http_requests", Help: "http requests by code, and method"},
		[]string{"code", "method"},
	)

	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_total", Help: "handler chain dispatches by handler type and result"},
		[]string{"handler_type", "result"},
	)

	dispatchSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_seconds",
			Help:    "handler chain dispatch time.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler_type"},
	)

	moduleLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "module_loads_total", Help: "module imports and reloads by outcome"},
		[]string{"op", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(
		responseTime,
		totalHttpRequestsToUri,
		totalHttpRequests,
		dispatchTotal,
		dispatchSeconds,
		moduleLoads,
	)
}

// ProvideMetrics returns the /metrics handler over the default registry.
func ProvideMetrics() http.Handler {
	return promhttp.InstrumentMetricHandler(
		prometheus.DefaultRegisterer,
		promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{}),
	)
}
