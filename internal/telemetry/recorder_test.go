package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/fittrack/internal/domain"
)

func TestRecorderFinalizeSummarizesSeries(t *testing.T) {
	start := time.Now().Add(-time.Minute)
	recorder := NewSessionRecorder("Running", start)

	recorder.Record(Sample{HeartRate: 100, Steps: 1})
	recorder.Record(Sample{HeartRate: 110, Steps: 2})
	recorder.Record(Sample{HeartRate: 120, Steps: 4})
	require.Equal(t, 3, recorder.SampleCount())

	end := time.Now()
	session, err := recorder.Finalize(end)
	require.NoError(t, err)

	require.Equal(t, "Running", session.ActivityType)
	require.NotEmpty(t, session.ID)
	require.True(t, session.StartTime.Equal(start))
	require.NotNil(t, session.EndTime)
	require.True(t, session.EndTime.Equal(end))

	require.Equal(t, []float64{100, 110, 120}, session.Metrics[domain.MetricHeartRate])
	require.Equal(t, []float64{1, 2, 4}, session.Metrics[domain.MetricSteps])

	// total_steps is the last cumulative value, not a sum of the series.
	require.Equal(t, 4.0, session.Summary[domain.SummaryTotalSteps])
	require.Equal(t, 110.0, session.Summary[domain.SummaryAvgHR])
}

func TestRecorderFinalizeWithoutSamples(t *testing.T) {
	start := time.Now()
	recorder := NewSessionRecorder("Walking", start)

	session, err := recorder.Finalize(start.Add(time.Second))
	require.NoError(t, err)

	require.Equal(t, 0.0, session.Summary[domain.SummaryTotalSteps])
	require.Equal(t, 0.0, session.Summary[domain.SummaryAvgHR], "empty series averages to zero, never a division fault")
	require.Empty(t, session.Metrics[domain.MetricHeartRate])
}

func TestRecorderFinalizeRejectsEndBeforeStart(t *testing.T) {
	start := time.Now()
	recorder := NewSessionRecorder("Running", start)

	_, err := recorder.Finalize(start.Add(-time.Second))
	require.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}

func TestRecorderAsStreamObserver(t *testing.T) {
	stream := quietStream(5 * time.Millisecond)
	recorder := NewSessionRecorder("Running", time.Now())
	remove := stream.AddObserver(recorder.Record)
	defer remove()

	stream.Start()
	time.Sleep(40 * time.Millisecond)
	stream.Stop()

	session, err := recorder.Finalize(time.Now())
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(session.Metrics[domain.MetricHeartRate]), 2)
	require.Greater(t, session.Summary[domain.SummaryAvgHR], 0.0)
}
