package domain

import "time"

// DailyStats aggregates workout summaries over one window. Calories has no
// contributing data source yet and stays at zero; the field keeps the shape
// stable for goal evaluation and API responses.
type DailyStats struct {
	Steps           float64 `json:"steps"`
	Calories        float64 `json:"calories"`
	DurationMinutes float64 `json:"duration_minutes"`
}

// StatsForDay scans workouts whose start time falls on the same local
// calendar day as the given instant. Sessions without an end time contribute
// zero duration but still contribute steps when the summary key is present.
func StatsForDay(workouts []WorkoutSession, day time.Time) DailyStats {
	year, month, dayOfMonth := day.Local().Date()
	var stats DailyStats
	for _, workout := range workouts {
		wy, wm, wd := workout.StartTime.Local().Date()
		if wy != year || wm != month || wd != dayOfMonth {
			continue
		}
		accumulate(&stats, workout)
	}
	return stats
}

// StatsForWeek aggregates workouts that start in the same ISO week as the
// given instant, using local time.
func StatsForWeek(workouts []WorkoutSession, day time.Time) DailyStats {
	year, week := day.Local().ISOWeek()
	var stats DailyStats
	for _, workout := range workouts {
		wy, ww := workout.StartTime.Local().ISOWeek()
		if wy != year || ww != week {
			continue
		}
		accumulate(&stats, workout)
	}
	return stats
}

func accumulate(stats *DailyStats, workout WorkoutSession) {
	stats.Steps += workout.Summary[SummaryTotalSteps]
	if workout.EndTime != nil {
		stats.DurationMinutes += workout.EndTime.Sub(workout.StartTime).Minutes()
	}
}
