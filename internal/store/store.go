// Package store owns the persisted user profile. All mutation and load/save
// pass through the Store, which is the single writer for the process.
package store

import (
	"context"
	"log"
	"sync"
	"time"

	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/observability"
)

// ProfileRepository abstracts the durable whole-document representation of a
// profile. Load returns (nil, nil) when no document exists yet.
type ProfileRepository interface {
	Load(ctx context.Context) (*domain.UserProfile, error)
	Save(ctx context.Context, profile domain.UserProfile) error
}

// Store keeps the in-memory profile and writes every successful mutation
// through to the repository before returning. Mutations are internally
// atomic with respect to their append-then-flush sequence.
type Store struct {
	mu      sync.Mutex
	repo    ProfileRepository
	profile domain.UserProfile
	logger  *log.Logger
	now     func() time.Time
}

// Option configures optional behaviour for a Store.
type Option func(*Store)

// WithLogger overrides the logger used for load warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides the time source used by the day/week aggregations.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the profile for the given user. A missing document yields a
// fresh profile; a malformed one is reported as a warning and also degrades
// to a fresh profile, never a fatal error.
func Open(ctx context.Context, repo ProfileRepository, username string, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		profile: domain.NewProfile(username),
		logger:  log.New(log.Writer(), "[store] ", log.LstdFlags),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	loaded, err := repo.Load(ctx)
	switch {
	case err != nil:
		s.logger.Printf("failed to load profile, starting fresh: %v", err)
	case loaded != nil:
		s.profile = *loaded
	}
	return s
}

// Username returns the profile owner.
func (s *Store) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Username
}

// Profile returns a deep copy of the current profile.
func (s *Store) Profile() domain.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// AddGoal appends the goal and persists the whole profile before returning.
func (s *Store) AddGoal(ctx context.Context, goal domain.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Goals = append(s.profile.Goals, goal)
	if err := s.repo.Save(ctx, s.profile); err != nil {
		s.profile.Goals = s.profile.Goals[:len(s.profile.Goals)-1]
		return err
	}
	observability.RecordGoalAdded()
	return nil
}

// AddWorkout appends the finalized session and persists the whole profile
// before returning.
func (s *Store) AddWorkout(ctx context.Context, session domain.WorkoutSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.Workouts = append(s.profile.Workouts, session)
	if err := s.repo.Save(ctx, s.profile); err != nil {
		s.profile.Workouts = s.profile.Workouts[:len(s.profile.Workouts)-1]
		return err
	}
	observability.RecordWorkoutPersisted(s.now())
	return nil
}

// TodayStats aggregates workouts that started on the current local calendar day.
func (s *Store) TodayStats() domain.DailyStats {
	return s.StatsForDay(s.now())
}

// StatsForDay aggregates workouts that started on the same local day as the
// given instant. Full scan, no caching; workout volume is human scale.
func (s *Store) StatsForDay(day time.Time) domain.DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatsForDay(s.profile.Workouts, day)
}

// StatsForWeek aggregates workouts that started in the same ISO week.
func (s *Store) StatsForWeek(day time.Time) domain.DailyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.StatsForWeek(s.profile.Workouts, day)
}

// CheckGoals evaluates every goal against the current workout history.
func (s *Store) CheckGoals() []domain.GoalProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.EvaluateGoals(s.profile.Goals, s.profile.Workouts, s.now())
}
