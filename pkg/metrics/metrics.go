// Package metrics exposes prometheus instrumentation for outbound API calls
// and for the fixture server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	APIRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rc", Name: "api_requests_total", Help: "Outbound reviews API requests."},
		[]string{"endpoint", "method", "status"},
	)
	APILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rc", Name: "api_request_duration_seconds",
			Help:    "Outbound reviews API request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)
	Loads = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rc", Name: "dashboard_loads_total", Help: "Dashboard loads by outcome."},
		[]string{"outcome"}, // ok|error|stale
	)
	ServedRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "rc", Name: "mock_http_requests_total", Help: "Requests served by the fixture API."},
		[]string{"route", "method", "status"},
	)
)

// NewRegistry returns a registry with all rc collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(APIRequests, APILatency, Loads, ServedRequests)
	return reg
}

// Handler serves the given registry in the prometheus text format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Serve starts a background /metrics listener. An empty addr disables it.
func Serve(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	return srv
}

// ObserveAPI records one outbound call. Status 0 means transport failure.
func ObserveAPI(endpoint, method string, status int, dur time.Duration) {
	APIRequests.WithLabelValues(endpoint, method, strconv.Itoa(status)).Inc()
	APILatency.WithLabelValues(endpoint, method).Observe(dur.Seconds())
}

// ObserveLoad records the outcome of one dashboard load
func ObserveLoad(outcome string) {
	Loads.WithLabelValues(outcome).Inc()
}

// ObserveServed records one request handled by the fixture API
func ObserveServed(route, method string, status int) {
	ServedRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}
