// Package events defines the payloads published after profile mutations.
package events

import "time"

// Event types carried in the event_type message header.
const (
	TypeWorkoutRecorded = "workout.recorded"
	TypeGoalCreated     = "goal.created"
)

// WorkoutRecorded is emitted after a finalized session has been persisted.
// The summary fields are the frozen session snapshot, never recomputed.
type WorkoutRecorded struct {
	WorkoutID       string     `json:"workout_id"`
	Username        string     `json:"username"`
	ActivityType    string     `json:"activity_type"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	TotalSteps      float64    `json:"total_steps"`
	AvgHeartRate    float64    `json:"avg_heart_rate"`
	DurationMinutes float64    `json:"duration_minutes"`
}

// GoalCreated is emitted after a goal has been persisted.
type GoalCreated struct {
	GoalID      string    `json:"goal_id"`
	Username    string    `json:"username"`
	GoalType    string    `json:"goal_type"`
	TargetValue float64   `json:"target_value"`
	Period      string    `json:"period"`
	CreatedAt   time.Time `json:"created_at"`
}
