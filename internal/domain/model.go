// Package domain defines the fitness data model shared by the store,
// the telemetry recorder, and the HTTP layer.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTarget is returned when a goal target is not a positive number.
	ErrInvalidTarget = errors.New("goal target must be > 0")
	// ErrInvalidTimeRange is returned when a session ends before it starts.
	ErrInvalidTimeRange = errors.New("session end time precedes start time")
)

// GoalType identifies the metric a goal is measured against.
type GoalType string

const (
	GoalTypeSteps           GoalType = "steps"
	GoalTypeCalories        GoalType = "calories"
	GoalTypeDurationMinutes GoalType = "duration_minutes"
)

// GoalPeriod is the window a goal target applies to.
type GoalPeriod string

const (
	GoalPeriodDaily  GoalPeriod = "daily"
	GoalPeriodWeekly GoalPeriod = "weekly"
)

// Metric keys recorded per sample and derived at session close.
const (
	MetricHeartRate = "heart_rate"
	MetricSteps     = "steps"

	SummaryTotalSteps = "total_steps"
	SummaryAvgHR      = "avg_hr"
)

// Goal is a target value for a metric over a period. Immutable once created.
type Goal struct {
	ID          string     `json:"id"`
	Type        GoalType   `json:"type"`
	TargetValue float64    `json:"target_value"`
	Period      GoalPeriod `json:"period"`
	CreatedAt   time.Time  `json:"created_at"`
}

// NewGoal validates and constructs a Goal with a generated identifier.
func NewGoal(goalType GoalType, target float64, period GoalPeriod) (Goal, error) {
	switch goalType {
	case GoalTypeSteps, GoalTypeCalories, GoalTypeDurationMinutes:
	default:
		return Goal{}, fmt.Errorf("unknown goal type: %q", goalType)
	}
	switch period {
	case GoalPeriodDaily, GoalPeriodWeekly:
	default:
		return Goal{}, fmt.Errorf("unknown goal period: %q", period)
	}
	if target <= 0 {
		return Goal{}, ErrInvalidTarget
	}
	return Goal{
		ID:          uuid.NewString(),
		Type:        goalType,
		TargetValue: target,
		Period:      period,
		CreatedAt:   time.Now(),
	}, nil
}

// WorkoutSession is one finalized workout. Metrics holds the raw sample
// series observed during the session; Summary is the snapshot derived from
// them at close time and is never recomputed afterwards.
type WorkoutSession struct {
	ID           string               `json:"id"`
	ActivityType string               `json:"activity_type"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      *time.Time           `json:"end_time"`
	Metrics      map[string][]float64 `json:"metrics"`
	Summary      map[string]float64   `json:"summary"`
}

// NewSession validates time ordering and constructs a WorkoutSession with a
// generated identifier. endTime may be nil for a session still in progress.
func NewSession(activityType string, startTime time.Time, endTime *time.Time, metrics map[string][]float64, summary map[string]float64) (WorkoutSession, error) {
	if endTime != nil && endTime.Before(startTime) {
		return WorkoutSession{}, ErrInvalidTimeRange
	}
	if metrics == nil {
		metrics = make(map[string][]float64)
	}
	if summary == nil {
		summary = make(map[string]float64)
	}
	return WorkoutSession{
		ID:           uuid.NewString(),
		ActivityType: activityType,
		StartTime:    startTime,
		EndTime:      endTime,
		Metrics:      metrics,
		Summary:      summary,
	}, nil
}

// Duration returns the session length, or zero while the session is open.
func (s WorkoutSession) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// UserProfile is the root aggregate and the single unit of persistence.
// Goals and Workouts keep insertion order and are append-only.
type UserProfile struct {
	Username string           `json:"username"`
	Goals    []Goal           `json:"goals"`
	Workouts []WorkoutSession `json:"workouts"`
}

// NewProfile returns an empty profile for the given user.
func NewProfile(username string) UserProfile {
	return UserProfile{Username: username}
}

// Clone returns a deep copy so callers can hand profiles across goroutine
// boundaries without sharing the underlying slices and maps.
func (p UserProfile) Clone() UserProfile {
	out := UserProfile{Username: p.Username}
	if p.Goals != nil {
		out.Goals = make([]Goal, len(p.Goals))
		copy(out.Goals, p.Goals)
	}
	if p.Workouts != nil {
		out.Workouts = make([]WorkoutSession, len(p.Workouts))
		for i, w := range p.Workouts {
			out.Workouts[i] = w.clone()
		}
	}
	return out
}

func (s WorkoutSession) clone() WorkoutSession {
	out := s
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	if s.Metrics != nil {
		out.Metrics = make(map[string][]float64, len(s.Metrics))
		for name, series := range s.Metrics {
			copied := make([]float64, len(series))
			copy(copied, series)
			out.Metrics[name] = copied
		}
	}
	if s.Summary != nil {
		out.Summary = make(map[string]float64, len(s.Summary))
		for name, value := range s.Summary {
			out.Summary[name] = value
		}
	}
	return out
}
