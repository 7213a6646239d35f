// Package observability exposes prometheus instrumentation shared across
// the service.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fittrack",
		Subsystem: "store",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout written to the profile.",
	})

	workoutsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "store",
		Name:      "workouts_persisted_total",
		Help:      "Number of workouts appended to the profile.",
	})

	goalsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fittrack",
		Subsystem: "store",
		Name:      "goals_created_total",
		Help:      "Number of goals appended to the profile.",
	})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, workoutsCounter, goalsCounter)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	workoutsCounter.Inc()
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordGoalAdded counts a successfully persisted goal.
func RecordGoalAdded() {
	goalsCounter.Inc()
}
