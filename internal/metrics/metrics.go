// Package metrics defines the Prometheus metrics exported by the Daylog API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Archive reasons used as the "reason" label of EntriesArchived.
const (
	ReasonSweep  = "sweep"
	ReasonEndDay = "end_day"
)

// Metrics holds the application's counters. A nil *Metrics is valid and
// records nothing, which keeps unit tests free of registry plumbing.
type Metrics struct {
	EntriesCreated    prometheus.Counter
	EntriesArchived   *prometheus.CounterVec
	ParseWarnings     prometheus.Counter
	CollaboratorCalls *prometheus.CounterVec
	AuditRateLimited  prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers every metric with reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "daylog_entries_created_total",
			Help: "Total number of log entries created",
		}),
		EntriesArchived: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daylog_entries_archived_total",
			Help: "Total number of log entries moved to history",
		}, []string{"reason"}), // sweep or end_day
		ParseWarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "daylog_duration_parse_warnings_total",
			Help: "Total number of entries whose clock times could not be parsed",
		}),
		CollaboratorCalls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "daylog_collaborator_calls_total",
			Help: "Total number of external collaborator calls by operation and outcome",
		}, []string{"op", "outcome"}),
		AuditRateLimited: f.NewCounter(prometheus.CounterOpts{
			Name: "daylog_audit_rate_limited_total",
			Help: "Total number of audit requests rejected by the cooldown",
		}),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) Created() {
	if m != nil {
		m.EntriesCreated.Inc()
	}
}

func (m *Metrics) Archived(reason string, n int64) {
	if m != nil && n > 0 {
		m.EntriesArchived.WithLabelValues(reason).Add(float64(n))
	}
}

func (m *Metrics) ParseWarning(n int) {
	if m != nil && n > 0 {
		m.ParseWarnings.Add(float64(n))
	}
}

func (m *Metrics) Collaborator(op, outcome string) {
	if m != nil {
		m.CollaboratorCalls.WithLabelValues(op, outcome).Inc()
	}
}

func (m *Metrics) RateLimited() {
	if m != nil {
		m.AuditRateLimited.Inc()
	}
}
