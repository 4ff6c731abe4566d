// Package metrics exposes Prometheus instruments for the service.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without metrics in tests and tools.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "files_manager"

type Metrics struct {
	registry *prometheus.Registry

	authzDecisions    *prometheus.CounterVec
	uploads           *prometheus.CounterVec
	nameLookups       prometheus.Counter
	cascadeDeletions  *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	sessionsReaped    prometheus.Counter
	reconcileRepaired *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		authzDecisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "authz_decisions_total",
			Help:      "Authorization decisions by requirement and outcome",
		}, []string{"requirement", "outcome"}),
		uploads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome",
		}, []string{"outcome"}),
		nameLookups: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_name_lookups_total",
			Help:      "Existence lookups issued while resolving upload filename collisions",
		}),
		cascadeDeletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_deletions_total",
			Help:      "Records removed by cascades, by record kind",
		}, []string{"kind"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		sessionsReaped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_reaped_total",
			Help:      "Expired sessions removed by the reaper",
		}),
		reconcileRepaired: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_repaired_total",
			Help:      "Ownership inconsistencies repaired by reconciliation, by kind",
		}, []string{"kind"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) AuthzDecision(requirement string, allowed bool) {
	if m == nil {
		return
	}
	outcome := "denied"
	if allowed {
		outcome = "allowed"
	}
	m.authzDecisions.WithLabelValues(requirement, outcome).Inc()
}

func (m *Metrics) Upload(outcome string) {
	if m == nil {
		return
	}
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) NameLookup() {
	if m == nil {
		return
	}
	m.nameLookups.Inc()
}

func (m *Metrics) CascadeDeleted(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.cascadeDeletions.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func (m *Metrics) SessionsReaped(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsReaped.Add(float64(n))
}

func (m *Metrics) Repaired(kind string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.reconcileRepaired.WithLabelValues(kind).Add(float64(n))
}
