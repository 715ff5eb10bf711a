package suite

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a Sink exposing the latest measurement of every
// (variant, loop, class) as gauges on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	loopSeconds  *prometheus.GaugeVec
	loopSamples  *prometheus.GaugeVec
	loopChecksum *prometheus.GaugeVec
	resultsTotal prometheus.Counter
}

var _ Sink = (*Metrics)(nil)

var metricLabels = []string{"variant", "loop", "class"}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loopSeconds: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lcals_loop_seconds",
				Help: "Elapsed time of the last timed run of a loop, in seconds.",
			},
			metricLabels,
		),
		loopSamples: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lcals_loop_samples",
				Help: "Samples executed in the last timed run of a loop.",
			},
			metricLabels,
		),
		loopChecksum: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "lcals_loop_checksum",
				Help: "Output checksum of the last timed run of a loop.",
			},
			metricLabels,
		),
		resultsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lcals_results_total",
				Help: "Total number of loop measurements recorded.",
			},
		),
	}
	m.registry.MustRegister(m.loopSeconds, m.loopSamples, m.loopChecksum, m.resultsTotal)
	return m
}

func (m *Metrics) Record(_ context.Context, r Result) error {
	labels := prometheus.Labels{
		"variant": r.Variant.String(),
		"loop":    r.Loop.String(),
		"class":   r.Class.String(),
	}
	m.loopSeconds.With(labels).Set(r.Elapsed.Seconds())
	m.loopSamples.With(labels).Set(float64(r.Samples))
	m.loopChecksum.With(labels).Set(r.Checksum)
	m.resultsTotal.Inc()
	return nil
}

// Gatherer exposes the registry, for tests and for serving.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the node exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("while writing metrics textfile: %w", err)
	}
	return nil
}
