// Package upload pushes finalized workout sessions to the external
// activity-sharing service. The service is opaque to the core: the client
// reports success or a human-readable failure reason and nothing more.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"example.com/fittrack/internal/domain"
)

// Client talks to the activity-upload API with an already-resolved bearer
// credential. The token is injected at construction; the client never
// reaches into process-wide configuration.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient constructs a Client with sane defaults.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Result carries the remote identifier assigned to an uploaded activity.
type Result struct {
	ActivityID int64  `json:"id"`
	Name       string `json:"name"`
}

type activityPayload struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	StartDateLocal string `json:"start_date_local"`
	ElapsedTime    int    `json:"elapsed_time"`
	Description    string `json:"description"`
	Trainer        int    `json:"trainer"`
	Commute        int    `json:"commute"`
}

// UploadWorkout posts the frozen session summary as a new remote activity.
// A non-2xx response surfaces the response body as the failure reason.
func (c *Client) UploadWorkout(ctx context.Context, session domain.WorkoutSession) (Result, error) {
	payload := activityPayload{
		Name:           fmt.Sprintf("%s Session", session.ActivityType),
		Type:           remoteActivityType(session.ActivityType),
		StartDateLocal: session.StartTime.Format(time.RFC3339),
		ElapsedTime:    int(session.Duration().Seconds()),
		Description: fmt.Sprintf("Uploaded from fittrack.\nSteps: %d\nAvg HR: %d",
			int(session.Summary[domain.SummaryTotalSteps]),
			int(session.Summary[domain.SummaryAvgHR])),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode activity: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/activities", bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("upload activity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		reason, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(reason)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode upload response: %w", err)
	}
	return result, nil
}

// remoteActivityType maps free-text activity labels onto the type strings
// the remote API expects, defaulting to Run.
func remoteActivityType(activityType string) string {
	switch strings.ToLower(activityType) {
	case "walking":
		return "Walk"
	case "cycling":
		return "Ride"
	default:
		return "Run"
	}
}
