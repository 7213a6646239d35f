// Package workout ties the telemetry stream and the profile store together
// for one workout at a time: start begins a stream run with a fresh
// recorder, stop finalizes the session and persists it.
package workout

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/events"
	"example.com/fittrack/internal/telemetry"
)

var (
	// ErrWorkoutInProgress is returned when Start is called twice without Stop.
	ErrWorkoutInProgress = errors.New("a workout is already in progress")
	// ErrNoActiveWorkout is returned when Stop is called with nothing running.
	ErrNoActiveWorkout = errors.New("no workout in progress")
)

// SessionStore is the slice of the profile store the tracker needs.
type SessionStore interface {
	AddWorkout(ctx context.Context, session domain.WorkoutSession) error
	Username() string
}

// EventPublisher publishes profile events; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, username string, payload any) error
}

// Tracker manages the single active workout.
type Tracker struct {
	mu        sync.Mutex
	stream    *telemetry.Stream
	store     SessionStore
	publisher EventPublisher
	logger    *log.Logger

	active *activeWorkout
}

type activeWorkout struct {
	activityType string
	startedAt    time.Time
	recorder     *telemetry.SessionRecorder
	detach       func()
}

// Option configures optional behaviour for a Tracker.
type Option func(*Tracker)

// WithPublisher attaches an event publisher.
func WithPublisher(publisher EventPublisher) Option {
	return func(t *Tracker) {
		t.publisher = publisher
	}
}

// WithLogger overrides the logger used for publish failures.
func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// NewTracker constructs a Tracker over the given stream and store.
func NewTracker(stream *telemetry.Stream, store SessionStore, opts ...Option) *Tracker {
	t := &Tracker{
		stream: stream,
		store:  store,
		logger: log.New(log.Writer(), "[workout] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Active reports the activity type of the workout in progress, if any.
func (t *Tracker) Active() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active == nil {
		return "", false
	}
	return t.active.activityType, true
}

// Start attaches a fresh recorder to the stream and begins a run.
func (t *Tracker) Start(activityType string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.active != nil {
		return ErrWorkoutInProgress
	}

	startedAt := time.Now()
	recorder := telemetry.NewSessionRecorder(activityType, startedAt)
	detach := t.stream.AddObserver(recorder.Record)

	t.active = &activeWorkout{
		activityType: activityType,
		startedAt:    startedAt,
		recorder:     recorder,
		detach:       detach,
	}
	t.stream.Start()
	return nil
}

// Stop halts the stream, finalizes the recorded session, persists it, and
// publishes workout.recorded when a publisher is configured. Publish
// failures are logged, never surfaced: the session is durable by then.
func (t *Tracker) Stop(ctx context.Context) (domain.WorkoutSession, error) {
	t.mu.Lock()
	active := t.active
	t.active = nil
	t.mu.Unlock()

	if active == nil {
		return domain.WorkoutSession{}, ErrNoActiveWorkout
	}

	t.stream.Stop()
	active.detach()

	session, err := active.recorder.Finalize(time.Now())
	if err != nil {
		return domain.WorkoutSession{}, err
	}
	if err := t.store.AddWorkout(ctx, session); err != nil {
		return domain.WorkoutSession{}, err
	}

	if t.publisher != nil {
		event := events.WorkoutRecorded{
			WorkoutID:       session.ID,
			Username:        t.store.Username(),
			ActivityType:    session.ActivityType,
			StartTime:       session.StartTime,
			EndTime:         session.EndTime,
			TotalSteps:      session.Summary[domain.SummaryTotalSteps],
			AvgHeartRate:    session.Summary[domain.SummaryAvgHR],
			DurationMinutes: session.Duration().Minutes(),
		}
		if err := t.publisher.Publish(ctx, events.TypeWorkoutRecorded, event.Username, event); err != nil {
			t.logger.Printf("failed to publish %s: %v", events.TypeWorkoutRecorded, err)
		}
	}

	return session, nil
}
