// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// unmatchedRoute labels requests that matched no registered route.
const unmatchedRoute = "unmatched"

// Metrics contains the magicsessions Prometheus metrics.
type Metrics struct {
	AuthOperations *prometheus.CounterVec
	Lockouts       prometheus.Counter
	TokensSwept    *prometheus.CounterVec
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers the metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magicsessions_auth_operations_total",
				Help: "Total number of authentication operations by operation, outcome and failure reason",
			},
			[]string{"operation", "outcome", "reason"},
		),
		Lockouts: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "magicsessions_account_lockouts_total",
				Help: "Total number of accounts locked after repeated login failures",
			},
		),
		TokensSwept: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magicsessions_tokens_swept_total",
				Help: "Total number of expired tokens deleted by kind",
			},
			[]string{"kind"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "magicsessions_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "magicsessions_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(m.AuthOperations, m.Lockouts, m.TokensSwept, m.HTTPRequests, m.HTTPDuration)
	return m
}

// RecordAuth counts an authentication outcome.
func (m *Metrics) RecordAuth(operation, outcome, reason string) {
	m.AuthOperations.WithLabelValues(operation, outcome, reason).Inc()
}

// RecordLockout counts an account lockout.
func (m *Metrics) RecordLockout() {
	m.Lockouts.Inc()
}

// RecordSweep adds removed rows for a token kind.
func (m *Metrics) RecordSweep(kind string, removed int64) {
	if removed > 0 {
		m.TokensSwept.WithLabelValues(kind).Add(float64(removed))
	}
}

// Middleware records request counts and latency. Routes are labelled by
// their chi pattern, never the raw path.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

var (
	_ auth.MetricsRecorder = (*Metrics)(nil)
	_ auth.SweepRecorder   = (*Metrics)(nil)
)
