package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"example.com/fittrack/internal/events"
)

type recordingWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishEncodesEvent(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewPublisher([]string{"localhost:9092"}, "fitness_events")
	publisher.writer = writer

	event := events.GoalCreated{
		GoalID:      "goal-1",
		Username:    "athlete",
		GoalType:    "steps",
		TargetValue: 10000,
		Period:      "daily",
	}
	require.NoError(t, publisher.Publish(context.Background(), events.TypeGoalCreated, "athlete", event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	require.Equal(t, []byte("athlete"), msg.Key)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	require.Equal(t, events.TypeGoalCreated, headers["event_type"])
	require.Equal(t, "athlete", headers["username"])

	var decoded events.GoalCreated
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	require.Equal(t, event.GoalID, decoded.GoalID)
	require.Equal(t, event.TargetValue, decoded.TargetValue)
}

func TestPublishPropagatesWriterError(t *testing.T) {
	writer := &recordingWriter{writeErr: errors.New("broker unreachable")}
	publisher := NewPublisher(nil, "fitness_events")
	publisher.writer = writer

	err := publisher.Publish(context.Background(), events.TypeWorkoutRecorded, "athlete", events.WorkoutRecorded{})
	require.Error(t, err)
}

func TestCloseReleasesWriter(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewPublisher(nil, "fitness_events")
	publisher.writer = writer

	require.NoError(t, publisher.Close())
	require.True(t, writer.closed)

	// Close without a writer is a no-op.
	require.NoError(t, publisher.Close())
}
