// Package metrics exposes prometheus instrumentation for access checks,
// consent changes, and the HTTP surface. All methods are safe on a nil
// *Metrics so components can run without instrumentation.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "health_consent"

// Metrics holds the collectors for the service
type Metrics struct {
	// Access decisions by result and reason
	AccessDecisions *prometheus.CounterVec

	// Access checks that failed because the audit entry was not persisted
	AuditWriteFailures prometheus.Counter

	// Duration of a full access check including the audit write
	CheckLatency prometheus.Histogram

	// Consent grants and revocations by outcome
	ConsentOperations *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPLatency  *prometheus.HistogramVec
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AccessDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_decisions_total",
			Help:      "Access checks by result and reason",
		}, []string{"result", "reason"}),

		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Access checks rejected because the audit entry could not be written",
		}),

		CheckLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "access_check_duration_seconds",
			Help:      "Duration of access checks including consent lookup and audit write",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),

		ConsentOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consent_operations_total",
			Help:      "Consent grants and revocations by outcome",
		}, []string{"operation", "outcome"}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		HTTPLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// RegisterDBStats exports connection pool statistics for db.
func RegisterDBStats(reg prometheus.Registerer, db *sql.DB) error {
	return reg.Register(collectors.NewDBStatsCollector(db, "consent"))
}

// IncrementDecision counts a recorded access decision
func (m *Metrics) IncrementDecision(result, reason string) {
	if m != nil {
		m.AccessDecisions.WithLabelValues(result, reason).Inc()
	}
}

// IncrementAuditWriteFailure counts a check aborted by a failed audit write
func (m *Metrics) IncrementAuditWriteFailure() {
	if m != nil {
		m.AuditWriteFailures.Inc()
	}
}

// ObserveCheckLatency records the duration of one access check
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}

// IncrementConsentOperation counts a grant or revoke by outcome
func (m *Metrics) IncrementConsentOperation(operation, outcome string) {
	if m != nil {
		m.ConsentOperations.WithLabelValues(operation, outcome).Inc()
	}
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m != nil {
		m.HTTPRequests.WithLabelValues(method, route, status).Inc()
		m.HTTPLatency.WithLabelValues(method, route).Observe(d.Seconds())
	}
}
