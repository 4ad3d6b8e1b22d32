package gamemaker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/tribute-arena/internal/engine"
)

// InterventionResult is the response from POST /api/v1/intervention.
type InterventionResult struct {
	Applied bool              `json:"applied"`
	Logs    []engine.LogEntry `json:"logs"`
}

// Actor executes decisions via the admin API.
type Actor struct {
	BaseURL    string
	AdminKey   string
	HTTPClient *http.Client
}

// NewActor creates an Actor targeting the given API base URL with admin auth.
func NewActor(baseURL, adminKey string) *Actor {
	return &Actor{
		BaseURL:  baseURL,
		AdminKey: adminKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Act sends an intervention to POST /api/v1/intervention.
func (a *Actor) Act(ctx context.Context, iv *Intervention) (*InterventionResult, error) {
	var result InterventionResult
	if err := a.post(ctx, "/api/v1/intervention", iv, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Acknowledge drains the deceased queue via POST /api/v1/acknowledge and
// returns how many deaths were pending.
func (a *Actor) Acknowledge(ctx context.Context) (int, error) {
	var result struct {
		Acknowledged int `json:"acknowledged"`
	}
	if err := a.post(ctx, "/api/v1/acknowledge", nil, &result); err != nil {
		return 0, err
	}
	return result.Acknowledged, nil
}

func (a *Actor) post(ctx context.Context, path string, payload, target any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AdminKey)

	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s failed (%d): %s", path, resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
