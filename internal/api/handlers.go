// Package api exposes HTTP handlers for the fitness service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"example.com/fittrack/internal/auth"
	"example.com/fittrack/internal/domain"
	"example.com/fittrack/internal/events"
	"example.com/fittrack/internal/store"
	"example.com/fittrack/internal/telemetry"
	"example.com/fittrack/internal/upload"
	"example.com/fittrack/internal/workout"
)

// Uploader pushes a finalized session to the external activity service.
type Uploader interface {
	UploadWorkout(ctx context.Context, session domain.WorkoutSession) (upload.Result, error)
}

// EventPublisher mirrors publish.Publisher; nil disables goal events.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, username string, payload any) error
}

// Handler coordinates HTTP requests with the store, the workout tracker,
// and the external collaborators.
type Handler struct {
	store     *store.Store
	tracker   *workout.Tracker
	stream    *telemetry.Stream
	uploader  Uploader
	publisher EventPublisher
}

// NewHandler builds a Handler. uploader and publisher may be nil.
func NewHandler(store *store.Store, tracker *workout.Tracker, stream *telemetry.Stream, uploader Uploader, publisher EventPublisher) *Handler {
	return &Handler{
		store:     store,
		tracker:   tracker,
		stream:    stream,
		uploader:  uploader,
		publisher: publisher,
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/profile", h.profile)
	mux.HandleFunc("/v1/goals", h.goals)
	mux.HandleFunc("/v1/goals/progress", h.goalProgress)
	mux.HandleFunc("/v1/stats/today", h.todayStats)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/workouts/", h.workoutByID)
	mux.HandleFunc("/v1/workout/start", h.startWorkout)
	mux.HandleFunc("/v1/workout/stop", h.stopWorkout)
	mux.HandleFunc("/v1/workout/live", h.liveSamples)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// authorize extracts claims and enforces the scope. Read access is implied
// by write access.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, scope string) bool {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return false
	}
	if claims.HasScope(scope) {
		return true
	}
	if scope == auth.ScopeFitnessRead && claims.HasScope(auth.ScopeFitnessWrite) {
		return true
	}
	writeError(w, http.StatusForbidden, "forbidden", fmt.Sprintf("scope %s required", scope))
	return false
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.Profile())
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listGoals(w, r)
	case http.MethodPost:
		h.createGoal(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	profile := h.store.Profile()
	goals := profile.Goals
	if goals == nil {
		goals = []domain.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

// CreateGoalRequest is the payload for POST /v1/goals.
type CreateGoalRequest struct {
	Type        string  `json:"type"`
	TargetValue float64 `json:"target_value"`
	Period      string  `json:"period"`
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeFitnessWrite) {
		return
	}

	var req CreateGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if req.Period == "" {
		req.Period = string(domain.GoalPeriodDaily)
	}

	goal, err := domain.NewGoal(domain.GoalType(req.Type), req.TargetValue, domain.GoalPeriod(req.Period))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.store.AddGoal(r.Context(), goal); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	h.publishGoalCreated(r.Context(), goal)
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) publishGoalCreated(ctx context.Context, goal domain.Goal) {
	if h.publisher == nil {
		return
	}
	event := events.GoalCreated{
		GoalID:      goal.ID,
		Username:    h.store.Username(),
		GoalType:    string(goal.Type),
		TargetValue: goal.TargetValue,
		Period:      string(goal.Period),
		CreatedAt:   goal.CreatedAt,
	}
	// Best effort: the goal is already durable.
	_ = h.publisher.Publish(ctx, events.TypeGoalCreated, event.Username, event)
}

func (h *Handler) goalProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	progress := h.store.CheckGoals()
	if progress == nil {
		progress = []domain.GoalProgress{}
	}
	writeJSON(w, http.StatusOK, progress)
}

func (h *Handler) todayStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	writeJSON(w, http.StatusOK, h.store.TodayStats())
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listWorkouts(w, r)
	case http.MethodPost:
		h.createWorkout(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	profile := h.store.Profile()
	items := make([]WorkoutView, 0, len(profile.Workouts))
	for _, session := range profile.Workouts {
		items = append(items, toWorkoutView(session))
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: items})
}

// CreateWorkoutRequest is the payload for POST /v1/workouts: a session
// finalized by an external front end from its own accumulated metrics.
type CreateWorkoutRequest struct {
	ActivityType string               `json:"activity_type"`
	StartTime    time.Time            `json:"start_time"`
	EndTime      *time.Time           `json:"end_time"`
	Metrics      map[string][]float64 `json:"metrics"`
	Summary      map[string]float64   `json:"summary"`
}

// Validate ensures request correctness.
func (r CreateWorkoutRequest) Validate() error {
	if strings.TrimSpace(r.ActivityType) == "" {
		return errors.New("activity_type is required")
	}
	if r.StartTime.IsZero() {
		return errors.New("start_time is required")
	}
	return nil
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(w, r, auth.ScopeFitnessWrite) {
		return
	}

	var req CreateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	session, err := domain.NewSession(req.ActivityType, req.StartTime, req.EndTime, req.Metrics, req.Summary)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	if err := h.store.AddWorkout(r.Context(), session); err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, toWorkoutView(session))
}

func (h *Handler) workoutByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/workouts/")
	parts := strings.SplitN(rest, "/", 2)
	id := parts[0]
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "missing workout id")
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "upload" && r.Method == http.MethodPost:
		h.uploadWorkout(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getWorkout(w, r, id)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request, id string) {
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}
	session, ok := h.findWorkout(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) uploadWorkout(w http.ResponseWriter, r *http.Request, id string) {
	if !h.authorize(w, r, auth.ScopeFitnessWrite) {
		return
	}
	if h.uploader == nil {
		writeError(w, http.StatusServiceUnavailable, "upload_unconfigured", "no upload credential configured")
		return
	}

	session, ok := h.findWorkout(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "workout not found")
		return
	}

	result, err := h.uploader.UploadWorkout(r.Context(), session)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upload_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) findWorkout(id string) (domain.WorkoutSession, bool) {
	profile := h.store.Profile()
	for _, session := range profile.Workouts {
		if session.ID == id {
			return session, true
		}
	}
	return domain.WorkoutSession{}, false
}

// StartWorkoutRequest is the payload for POST /v1/workout/start.
type StartWorkoutRequest struct {
	ActivityType string `json:"activity_type"`
}

func (h *Handler) startWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessWrite) {
		return
	}

	var req StartWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	if strings.TrimSpace(req.ActivityType) == "" {
		req.ActivityType = "Running"
	}

	if err := h.tracker.Start(req.ActivityType); err != nil {
		if errors.Is(err, workout.ErrWorkoutInProgress) {
			writeError(w, http.StatusConflict, "workout_in_progress", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"activity_type": req.ActivityType, "status": "recording"})
}

func (h *Handler) stopWorkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessWrite) {
		return
	}

	session, err := h.tracker.Stop(r.Context())
	if err != nil {
		if errors.Is(err, workout.ErrNoActiveWorkout) {
			writeError(w, http.StatusConflict, "no_active_workout", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toWorkoutView(session))
}

// liveSamples streams telemetry samples as server-sent events. The consumer
// drains a bounded subscription channel on its own schedule; a slow consumer
// loses samples rather than stalling the producer.
func (h *Handler) liveSamples(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if !h.authorize(w, r, auth.ScopeFitnessRead) {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "server_error", "streaming unsupported")
		return
	}

	samples, cancel := h.stream.Subscribe(16)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case sample, open := <-samples:
			if !open {
				return
			}
			data, err := json.Marshal(sample)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// WorkoutView exposes a session without its raw metric series.
type WorkoutView struct {
	WorkoutID       string             `json:"workout_id"`
	ActivityType    string             `json:"activity_type"`
	StartTime       time.Time          `json:"start_time"`
	EndTime         *time.Time         `json:"end_time"`
	DurationMinutes float64            `json:"duration_minutes"`
	Summary         map[string]float64 `json:"summary"`
}

// ListWorkoutsResponse packages list results.
type ListWorkoutsResponse struct {
	Items []WorkoutView `json:"items"`
}

func toWorkoutView(session domain.WorkoutSession) WorkoutView {
	return WorkoutView{
		WorkoutID:       session.ID,
		ActivityType:    session.ActivityType,
		StartTime:       session.StartTime,
		EndTime:         session.EndTime,
		DurationMinutes: session.Duration().Minutes(),
		Summary:         session.Summary,
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
