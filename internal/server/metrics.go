package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for irrigation_plan_requests_total.
const (
	OutcomeOK           = "ok"
	OutcomeDisconnected = "disconnected"
	OutcomeRejected     = "rejected"
	OutcomeMalformed    = "malformed"
)

// Metrics bundles the planner's Prometheus collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	Requests   *prometheus.CounterVec
	Duration   prometheus.Histogram
	Zones      prometheus.Histogram
	PipeLength prometheus.Histogram
}

// NewMetrics registers the planner metrics against reg, defaulting to the
// global Prometheus registry when nil. Registering twice against the same
// registry returns the existing collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "irrigation_plan_requests_total",
		Help: "Plan requests handled, labeled by outcome.",
	}, []string{"outcome"}), "irrigation_plan_requests_total")
	if err != nil {
		return nil, err
	}
	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigation_plan_duration_seconds",
		Help:    "Time spent generating a plan.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	}), "irrigation_plan_duration_seconds")
	if err != nil {
		return nil, err
	}
	zones, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigation_plan_zones",
		Help:    "Zones per plan request.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
	}), "irrigation_plan_zones")
	if err != nil {
		return nil, err
	}
	length, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "irrigation_plan_pipe_length_meters",
		Help:    "Total pipe length of generated plans.",
		Buckets: prometheus.ExponentialBuckets(5, 2, 10),
	}), "irrigation_plan_pipe_length_meters")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		gatherer:   gatherer,
		Requests:   requests,
		Duration:   duration,
		Zones:      zones,
		PipeLength: length,
	}, nil
}

// Observe records one plan request. A nil Metrics is a no-op.
func (m *Metrics) Observe(outcome string, seconds float64, zones int, pipeLengthM float64) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(outcome).Inc()
	if outcome == OutcomeMalformed {
		return
	}
	m.Duration.Observe(seconds)
	m.Zones.Observe(float64(zones))
	if outcome == OutcomeOK || outcome == OutcomeDisconnected {
		m.PipeLength.Observe(pipeLengthM)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (m *Metrics) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if m != nil && m.gatherer != nil {
		gatherer = m.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}
