package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts queries and dataset loads. A nil *Metrics records nothing.
type Metrics struct {
	registry     *prometheus.Registry
	queries      *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_queries_total",
			Help: "Queries served, by command and outcome.",
		}, []string{"command", "outcome"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_datasets_loaded_total",
			Help: "Dataset loads, by outcome.",
		}, []string{"outcome"}),
		loadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "survey_load_duration_seconds",
			Help:    "Time spent loading a dataset.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.queries, m.loads, m.loadDuration)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) Query(command string, err error) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(command, outcome(err)).Inc()
}

func (m *Metrics) Load(started time.Time, err error) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome(err)).Inc()
	m.loadDuration.Observe(time.Since(started).Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
