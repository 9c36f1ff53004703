// Package metrics exposes Prometheus collectors for workflow runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskflow"

// Metrics holds the collectors of one engine. Each instance owns its registry
// so several engines can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	runs               *prometheus.CounterVec
	runDuration        *prometheus.HistogramVec
	invocations        *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	retries            *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workflow_runs_total",
			Help:      "The total number of workflow runs by outcome",
		}, []string{"workflow", "outcome"}),
		runDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workflow_run_duration_seconds",
			Help:      "Duration of workflow runs",
			Buckets:   prometheus.DefBuckets,
		}, []string{"workflow"}),
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocations_total",
			Help:      "The total number of settled invocations by task and final status",
		}, []string{"task", "status"}),
		invocationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Duration of executed invocations including retries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"task"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invocation_retries_total",
			Help:      "The total number of retried attempts by task",
		}, []string{"task"}),
	}
}

// Registry returns the registry the collectors are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records a finished run. outcome is succeeded, failed or interrupted.
func (m *Metrics) ObserveRun(workflow, outcome string, d time.Duration) {
	m.runs.WithLabelValues(workflow, outcome).Inc()
	m.runDuration.WithLabelValues(workflow).Observe(d.Seconds())
}

// ObserveInvocation records an invocation reaching a terminal status. Only
// executed invocations carry a duration.
func (m *Metrics) ObserveInvocation(task, status string, d time.Duration) {
	m.invocations.WithLabelValues(task, status).Inc()
	if d > 0 {
		m.invocationDuration.WithLabelValues(task).Observe(d.Seconds())
	}
}

// ObserveRetry records one retried attempt
func (m *Metrics) ObserveRetry(task string) {
	m.retries.WithLabelValues(task).Inc()
}

// WriteFile writes the current values in the Prometheus text format
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
