// internal/metrics/metrics.go
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects per-batch generation metrics on its own registry so a
// run can be exported as a node-exporter textfile when it finishes.
type Recorder struct {
	registry *prometheus.Registry

	TranscriptsWritten *prometheus.CounterVec
	GenerationErrors   *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	LastRunTimestamp   prometheus.Gauge
}

// NewRecorder returns a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		TranscriptsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatgen_transcripts_written_total",
				Help: "Total number of transcript files written",
			},
			[]string{"rules", "outcome"},
		),
		GenerationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chatgen_generation_errors_total",
				Help: "Total number of failed generation calls by failure kind",
			},
			[]string{"kind"},
		),
		GenerationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "chatgen_generation_duration_seconds",
				Help:    "Duration of chat-completion calls in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
		),
		LastRunTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "chatgen_last_run_timestamp_seconds",
				Help: "Unix time the last batch finished",
			},
		),
	}
}

// Observe records one written transcript. kind labels the failure when ok
// is false and defaults to "unknown".
func (r *Recorder) Observe(rulesTag string, ok bool, kind string, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
		if kind == "" {
			kind = "unknown"
		}
		r.GenerationErrors.WithLabelValues(kind).Inc()
	}
	r.TranscriptsWritten.WithLabelValues(rulesTag, outcome).Inc()
	r.GenerationDuration.Observe(d.Seconds())
}

// Finish stamps the end of the run.
func (r *Recorder) Finish(t time.Time) {
	r.LastRunTimestamp.Set(float64(t.Unix()))
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
