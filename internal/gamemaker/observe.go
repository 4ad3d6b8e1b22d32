// Package gamemaker is an automated arena operator. Each cycle it reads
// the public API, scores how lively the games are, and may force one
// intervention through the admin API.
package gamemaker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/world"
)

// ArenaSnapshot holds the observed state for one cycle.
type ArenaSnapshot struct {
	Status   StatusInfo
	Tributes []TributeInfo
}

// StatusInfo mirrors GET /api/v1/status.
type StatusInfo struct {
	Day     int          `json:"day"`
	Phase   engine.Phase `json:"phase"`
	Hazard  string       `json:"hazard"`
	Alive   int          `json:"alive"`
	Total   int          `json:"total"`
	Finale  bool         `json:"finale"`
	Pending int          `json:"pending_deceased"`
	Winner  string       `json:"winner"`
	Steps   int          `json:"steps"`
}

// TributeInfo mirrors items from GET /api/v1/tributes.
type TributeInfo struct {
	ID       agents.AgentID `json:"id"`
	Name     string         `json:"name"`
	District int            `json:"district"`
	Alive    bool           `json:"alive"`
	Health   float64        `json:"health"`
	Kills    int            `json:"kills"`
	Hype     int            `json:"hype"`
	Items    int            `json:"items"`
	Location world.HexCoord `json:"location"`
}

// Observer fetches arena state from the API.
type Observer struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL string) *Observer {
	return &Observer{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches the status and the living tributes.
func (o *Observer) Observe(ctx context.Context) (*ArenaSnapshot, error) {
	snap := &ArenaSnapshot{}

	if err := o.fetchJSON(ctx, "/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON(ctx, "/api/v1/tributes?alive=true", &snap.Tributes); err != nil {
		return nil, fmt.Errorf("fetch tributes: %w", err)
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
