// Package metrics exposes Prometheus counters for access-control decisions.
//
// All methods are safe on a nil *Metrics so components can run without
// instrumentation in tests and tools.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clinic"

type Metrics struct {
	rateLimitDecisions *prometheus.CounterVec
	quotaOutcomes      *prometheus.CounterVec
	auditRecords       *prometheus.CounterVec
	authAttempts       *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers the collectors on registerer. A nil registerer uses the
// process default.
func New(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		rateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions by endpoint.",
		}, []string{"endpoint", "decision"}),
		quotaOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quota_outcomes_total",
			Help:      "Quota checks by resource kind and outcome.",
		}, []string{"resource", "outcome"}),
		auditRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_records_total",
			Help:      "Audit entries by action and write result.",
		}, []string{"action", "result"}),
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Login and recovery attempts by flow and result.",
		}, []string{"flow", "result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
	}

	registerer.MustRegister(
		m.rateLimitDecisions,
		m.quotaOutcomes,
		m.auditRecords,
		m.authAttempts,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

func (m *Metrics) RateLimitDecision(endpoint string, allowed bool) {
	if m == nil {
		return
	}
	decision := "rejected"
	if allowed {
		decision = "allowed"
	}
	m.rateLimitDecisions.WithLabelValues(endpoint, decision).Inc()
}

func (m *Metrics) QuotaOutcome(resource, outcome string) {
	if m == nil {
		return
	}
	m.quotaOutcomes.WithLabelValues(resource, outcome).Inc()
}

func (m *Metrics) AuditRecord(action string, err error) {
	if m == nil {
		return
	}
	result := "stored"
	if err != nil {
		result = "dropped"
	}
	m.auditRecords.WithLabelValues(action, result).Inc()
}

func (m *Metrics) AuthAttempt(flow string, ok bool) {
	if m == nil {
		return
	}
	result := "failure"
	if ok {
		result = "success"
	}
	m.authAttempts.WithLabelValues(flow, result).Inc()
}

func (m *Metrics) HTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
