package telemetry

import (
	"sync"
	"time"

	"example.com/fittrack/internal/domain"
)

// SessionRecorder accumulates samples for one workout and finalizes them
// into a WorkoutSession. Record is safe to call from the producer goroutine
// while Finalize runs on the caller's.
type SessionRecorder struct {
	mu           sync.Mutex
	activityType string
	startedAt    time.Time
	heartRates   []float64
	steps        []float64
}

// NewSessionRecorder starts recording a workout of the given activity type.
func NewSessionRecorder(activityType string, startedAt time.Time) *SessionRecorder {
	return &SessionRecorder{
		activityType: activityType,
		startedAt:    startedAt,
	}
}

// Record appends one sample to the raw metric series. Register it as a
// stream observer: recorder.Record.
func (r *SessionRecorder) Record(sample Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heartRates = append(r.heartRates, float64(sample.HeartRate))
	r.steps = append(r.steps, float64(sample.Steps))
}

// SampleCount reports how many samples have been recorded so far.
func (r *SessionRecorder) SampleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.heartRates)
}

// Finalize freezes the recorded series into a WorkoutSession ending at the
// given time. The summary is derived once here: total_steps is the last
// cumulative step count and avg_hr the mean heart rate, zero when no
// samples arrived.
func (r *SessionRecorder) Finalize(endedAt time.Time) (domain.WorkoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics := map[string][]float64{
		domain.MetricHeartRate: append([]float64(nil), r.heartRates...),
		domain.MetricSteps:     append([]float64(nil), r.steps...),
	}

	var totalSteps, avgHR float64
	if n := len(r.steps); n > 0 {
		totalSteps = r.steps[n-1]
	}
	if n := len(r.heartRates); n > 0 {
		var sum float64
		for _, hr := range r.heartRates {
			sum += hr
		}
		avgHR = sum / float64(n)
	}

	summary := map[string]float64{
		domain.SummaryTotalSteps: totalSteps,
		domain.SummaryAvgHR:      avgHR,
	}

	return domain.NewSession(r.activityType, r.startedAt, &endedAt, metrics, summary)
}
