package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

//metrics for the compute driver. They are registered in the
//Registerer given in the Options, or in a private registry.
type metrics struct {
	runs          *prometheus.CounterVec
	frames        prometheus.Counter
	computeErrors *prometheus.CounterVec
	progress      prometheus.Gauge
	runDuration   prometheus.Histogram
	properties    prometheus.Gauge
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdstats_runs_total",
			Help: "Compute runs by outcome",
		}, []string{"outcome"}),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mdstats_frames_computed_total",
			Help: "Property frames computed",
		}),
		computeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mdstats_compute_errors_total",
			Help: "Properties that failed to compute, by command",
		}, []string{"command"}),
		progress: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mdstats_progress_ratio",
			Help: "Fraction of the current run done",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mdstats_run_duration_seconds",
			Help:    "Duration of compute runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10), // 1ms to ~4min
		}),
		properties: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mdstats_properties",
			Help: "Number of properties in the registry",
		}),
	}
	reg.MustRegister(m.runs, m.frames, m.computeErrors, m.progress, m.runDuration, m.properties)
	return m
}
