// Package metrics provides Prometheus metrics for the scenescribe service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	ProjectsCreated  prometheus.Counter
	GenerationRuns   *prometheus.CounterVec
	ProviderErrors   *prometheus.CounterVec
	VideoJobDuration prometheus.Histogram
	VideoJobsTotal   *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates and registers all metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ProjectsCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "scenescribe_projects_created_total",
				Help: "Total number of projects created.",
			},
		),
		GenerationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenescribe_generation_runs_total",
				Help: "Generation batch runs by stage and outcome.",
			},
			[]string{"stage", "outcome"},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenescribe_provider_errors_total",
				Help: "Provider call failures by provider and kind.",
			},
			[]string{"provider", "kind"},
		),
		VideoJobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "scenescribe_video_job_duration_seconds",
				Help:    "Wall-clock duration of per-topic render jobs.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		VideoJobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scenescribe_video_jobs_total",
				Help: "Per-topic render jobs by terminal status.",
			},
			[]string{"status"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.ProjectsCreated,
		m.GenerationRuns,
		m.ProviderErrors,
		m.VideoJobDuration,
		m.VideoJobsTotal,
	)
	return m
}

// ObserveVideoJob records one terminal render job.
func (m *Metrics) ObserveVideoJob(status string, elapsed time.Duration) {
	m.VideoJobsTotal.WithLabelValues(status).Inc()
	m.VideoJobDuration.Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler exposing the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
