// Package metrics records per-step timings of a zapi run and writes them in
// the Prometheus text format, for CI systems that scrape a textfile
// directory (node_exporter's textfile collector).
//
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Step results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
	ResultPlanned = "planned"
)

// Recorder holds the metrics of one run.
type Recorder struct {
	registry *prometheus.Registry
	duration *prometheus.GaugeVec
	steps    *prometheus.CounterVec
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "zapi",
			Name:      "step_duration_seconds",
			Help:      "Wall time of the last run of a pipeline step.",
		}, []string{"phase", "target"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zapi",
			Name:      "steps_total",
			Help:      "Pipeline steps by phase and result.",
		}, []string{"phase", "result"}),
	}
	r.registry.MustRegister(r.duration, r.steps)
	return r
}

// Observe records one step.
func (r *Recorder) Observe(phase, target, result string, d time.Duration) {
	if r == nil {
		return
	}
	r.duration.WithLabelValues(phase, target).Set(d.Seconds())
	r.steps.WithLabelValues(phase, result).Inc()
}

// Time runs fn and records its duration with a result derived from its error.
func (r *Recorder) Time(phase, target string, fn func() error) error {
	start := time.Now()
	err := fn()
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	r.Observe(phase, target, result, time.Since(start))
	return err
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteFile writes the metrics to path atomically. An empty path is a no-op.
func (r *Recorder) WriteFile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
