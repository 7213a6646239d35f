package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	samplesGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "telemetry",
		Name:      "samples_generated_total",
		Help:      "Number of telemetry samples produced across all stream runs.",
	})

	samplesDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "telemetry",
		Name:      "samples_dropped_total",
		Help:      "Number of samples dropped because a subscriber buffer was full.",
	})

	observerPanics = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "telemetry",
		Name:      "observer_panics_total",
		Help:      "Number of observer callbacks that panicked during fan-out.",
	})

	lastSampleGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fittrack",
		Subsystem: "telemetry",
		Name:      "last_sample_timestamp_seconds",
		Help:      "Unix timestamp of the most recently generated sample.",
	})
)

func init() {
	prometheus.MustRegister(samplesGenerated, samplesDropped, observerPanics, lastSampleGauge)
}
