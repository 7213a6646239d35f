package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewGoalValidation(t *testing.T) {
	goal, err := NewGoal(GoalTypeSteps, 5000, GoalPeriodDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if goal.ID == "" {
		t.Fatal("expected generated goal id")
	}
	if goal.TargetValue != 5000 {
		t.Fatalf("expected target 5000 got %v", goal.TargetValue)
	}
	if goal.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	if _, err := NewGoal(GoalTypeSteps, 0, GoalPeriodDaily); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget got %v", err)
	}
	if _, err := NewGoal(GoalTypeSteps, -10, GoalPeriodWeekly); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget got %v", err)
	}
	if _, err := NewGoal("swimming_medals", 10, GoalPeriodDaily); err == nil {
		t.Fatal("expected error for unknown goal type")
	}
	if _, err := NewGoal(GoalTypeSteps, 10, "monthly"); err == nil {
		t.Fatal("expected error for unknown goal period")
	}
}

func TestNewSessionRejectsEndBeforeStart(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Minute)
	if _, err := NewSession("Running", start, &end, nil, nil); !errors.Is(err, ErrInvalidTimeRange) {
		t.Fatalf("expected ErrInvalidTimeRange got %v", err)
	}
}

func TestNewSessionOpenEnded(t *testing.T) {
	session, err := NewSession("Running", time.Now(), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.EndTime != nil {
		t.Fatal("expected nil end time")
	}
	if session.Duration() != 0 {
		t.Fatalf("open session should report zero duration, got %v", session.Duration())
	}
	if session.Metrics == nil || session.Summary == nil {
		t.Fatal("expected initialized metrics and summary maps")
	}
}

func TestProfileJSONRoundTrip(t *testing.T) {
	start := time.Date(2026, time.March, 14, 9, 30, 0, 0, time.Local)
	end := start.Add(42 * time.Minute)

	goal, err := NewGoal(GoalTypeDurationMinutes, 30, GoalPeriodWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	closed, err := NewSession("Cycling", start, &end, map[string][]float64{
		MetricHeartRate: {88, 91, 95},
		MetricSteps:     {0, 1, 3},
	}, map[string]float64{
		SummaryTotalSteps: 3,
		SummaryAvgHR:      91.333,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	open, err := NewSession("Walking", start.Add(time.Hour), nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile := NewProfile("tester")
	profile.Goals = append(profile.Goals, goal)
	profile.Workouts = append(profile.Workouts, closed, open)

	data, err := json.Marshal(profile)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded UserProfile
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.Username != "tester" {
		t.Fatalf("username mismatch: %q", decoded.Username)
	}
	if len(decoded.Goals) != 1 || len(decoded.Workouts) != 2 {
		t.Fatalf("unexpected shape: %d goals, %d workouts", len(decoded.Goals), len(decoded.Workouts))
	}
	if decoded.Goals[0].ID != goal.ID || decoded.Goals[0].Period != GoalPeriodWeekly {
		t.Fatalf("goal mismatch: %+v", decoded.Goals[0])
	}
	if !decoded.Goals[0].CreatedAt.Equal(goal.CreatedAt) {
		t.Fatalf("created_at mismatch: %v vs %v", decoded.Goals[0].CreatedAt, goal.CreatedAt)
	}

	first := decoded.Workouts[0]
	if first.EndTime == nil || !first.EndTime.Equal(end) {
		t.Fatalf("end_time mismatch: %v", first.EndTime)
	}
	if got := first.Summary[SummaryAvgHR]; got != 91.333 {
		t.Fatalf("summary precision lost: %v", got)
	}
	if got := len(first.Metrics[MetricHeartRate]); got != 3 {
		t.Fatalf("metrics series length mismatch: %d", got)
	}
	if decoded.Workouts[1].EndTime != nil {
		t.Fatal("open session end_time should stay null through the round trip")
	}
}

func TestProfileCloneIsDeep(t *testing.T) {
	end := time.Now()
	session, err := NewSession("Running", end.Add(-time.Hour), &end,
		map[string][]float64{MetricSteps: {1, 2}},
		map[string]float64{SummaryTotalSteps: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	profile := NewProfile("tester")
	profile.Workouts = append(profile.Workouts, session)

	clone := profile.Clone()
	clone.Workouts[0].Metrics[MetricSteps][0] = 99
	clone.Workouts[0].Summary[SummaryTotalSteps] = 99
	*clone.Workouts[0].EndTime = end.Add(time.Hour)

	if profile.Workouts[0].Metrics[MetricSteps][0] != 1 {
		t.Fatal("metrics shared between clone and original")
	}
	if profile.Workouts[0].Summary[SummaryTotalSteps] != 2 {
		t.Fatal("summary shared between clone and original")
	}
	if !profile.Workouts[0].EndTime.Equal(end) {
		t.Fatal("end time shared between clone and original")
	}
}
