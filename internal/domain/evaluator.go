package domain

import "time"

// GoalProgress reports how far along a single goal is. ProgressPercent is
// capped at 100; Achieved compares the uncapped current value against the
// target, so overachievement still reads as achieved even though the
// displayed percentage stops at the ceiling.
type GoalProgress struct {
	Goal            Goal    `json:"goal"`
	Current         float64 `json:"current"`
	ProgressPercent float64 `json:"progress_percent"`
	Achieved        bool    `json:"achieved"`
}

// EvaluateGoals computes progress for every goal in declaration order.
// Daily goals are measured against the calendar-day aggregate and weekly
// goals against the ISO-week aggregate containing the given instant.
func EvaluateGoals(goals []Goal, workouts []WorkoutSession, now time.Time) []GoalProgress {
	var day, week DailyStats
	var dayDone, weekDone bool

	results := make([]GoalProgress, 0, len(goals))
	for _, goal := range goals {
		var stats DailyStats
		switch goal.Period {
		case GoalPeriodDaily:
			if !dayDone {
				day = StatsForDay(workouts, now)
				dayDone = true
			}
			stats = day
		case GoalPeriodWeekly:
			if !weekDone {
				week = StatsForWeek(workouts, now)
				weekDone = true
			}
			stats = week
		default:
			continue
		}

		current := statForType(stats, goal.Type)
		progress := 0.0
		if goal.TargetValue > 0 {
			progress = current / goal.TargetValue * 100
			if progress > 100 {
				progress = 100
			}
		}

		results = append(results, GoalProgress{
			Goal:            goal,
			Current:         current,
			ProgressPercent: progress,
			Achieved:        current >= goal.TargetValue,
		})
	}
	return results
}

func statForType(stats DailyStats, goalType GoalType) float64 {
	switch goalType {
	case GoalTypeSteps:
		return stats.Steps
	case GoalTypeCalories:
		return stats.Calories
	case GoalTypeDurationMinutes:
		return stats.DurationMinutes
	default:
		return 0
	}
}
