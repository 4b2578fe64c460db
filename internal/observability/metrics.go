package observability

import (
	"errors"
	"net/http"

	"github.com/Beamwelly/CRM-Application-sub001/internal/access"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const (
	OutcomeAllowed    = "allowed"
	OutcomeDenied     = "denied"
	OutcomeNotVisible = "not_visible"
)

// Metrics owns the collectors of the service. A private registry keeps
// tests independent of the global default registry.
type Metrics struct {
	registry        *prometheus.Registry
	accessDecisions *prometheus.CounterVec
	listFiltered    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		accessDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "crm_access_decisions_total",
			Help: "Access decisions taken by the scope evaluator, by resource, action and outcome.",
		}, []string{"resource", "action", "outcome"}),
		listFiltered: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crm_visibility_filtered_ratio",
			Help:    "Share of candidate rows removed by the visibility filter per listing.",
			Buckets: []float64{0, 0.1, 0.25, 0.5, 0.75, 0.9, 1},
		}, []string{"resource"}),
	}
	reg.MustRegister(m.accessDecisions, m.listFiltered)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// RecordDecision is nil-safe so callers can run without metrics.
func (m *Metrics) RecordDecision(resource, action, outcome string) {
	if m == nil {
		return
	}
	m.accessDecisions.WithLabelValues(resource, action, outcome).Inc()
}

// RecordOutcome classifies the result of an Authorize style call. Errors
// other than access denials are not decisions and are not counted.
func (m *Metrics) RecordOutcome(resource, action string, err error) {
	switch {
	case err == nil:
		m.RecordDecision(resource, action, OutcomeAllowed)
	case errors.Is(err, access.ErrNotVisible):
		m.RecordDecision(resource, action, OutcomeNotVisible)
	case errors.Is(err, access.ErrPermissionDenied):
		m.RecordDecision(resource, action, OutcomeDenied)
	}
}

func (m *Metrics) RecordListing(resource string, candidates, visible int) {
	if m == nil || candidates == 0 {
		return
	}
	m.listFiltered.WithLabelValues(resource).Observe(float64(candidates-visible) / float64(candidates))
}

func (m *Metrics) DecisionCount(resource, action, outcome string) float64 {
	if m == nil {
		return 0
	}
	c, err := m.accessDecisions.GetMetricWithLabelValues(resource, action, outcome)
	if err != nil {
		return 0
	}
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
