// Package api serves the arena over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/persistence"
	"github.com/talgya/tribute-arena/internal/runner"
	"github.com/talgya/tribute-arena/internal/weather"
	"github.com/talgya/tribute-arena/internal/world"
)

const (
	defaultEventLimit = 50
	maxEventLimit     = 500
)

// Server serves one running game over HTTP.
type Server struct {
	Runner   *runner.Runner
	Hub      *Hub
	DB       *persistence.DB // optional; standings fall back to live placings
	RunID    string
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	srv *http.Server
}

// Handler builds the routed handler, CORS included.
func (s *Server) Handler() http.Handler {
	controlLimiter := NewRateLimiter(60, time.Minute)
	streamLimiter := NewRateLimiter(20, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/tributes", s.handleTributes)
	mux.HandleFunc("GET /api/v1/tribute/{id}", s.handleTributeDetail)
	mux.HandleFunc("GET /api/v1/map", s.handleMap)
	mux.HandleFunc("GET /api/v1/events", s.handleEvents)
	mux.HandleFunc("GET /api/v1/standings", s.handleStandings)
	mux.HandleFunc("GET /api/v1/stream", RateLimitMiddleware(streamLimiter, s.handleStream))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("POST /api/v1/advance", s.adminOnly(RateLimitMiddleware(controlLimiter, s.handleAdvance)))
	mux.HandleFunc("POST /api/v1/intervention", s.adminOnly(RateLimitMiddleware(controlLimiter, s.handleIntervention)))
	mux.HandleFunc("POST /api/v1/acknowledge", s.adminOnly(s.handleAcknowledge))
	mux.HandleFunc("POST /api/v1/speed", s.adminOnly(s.handleSpeed))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	addr := fmt.Sprintf(":%d", s.Port)
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// Shutdown stops a server begun with Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS to a comma-separated list of extra allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no ARENA_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

type statusResponse struct {
	Day       int          `json:"day"`
	Phase     engine.Phase `json:"phase"`
	Weather   weather.Kind `json:"weather"`
	Forecast  string       `json:"forecast"`
	Hazard    string       `json:"hazard,omitempty"`
	Alive     int          `json:"alive"`
	Total     int          `json:"total"`
	Finale    bool         `json:"finale"`
	Pending   int          `json:"pending_deceased"`
	Winner    string       `json:"winner,omitempty"`
	Steps     int          `json:"steps"`
	Speed     float64      `json:"speed"`
	RunID     string       `json:"run_id,omitempty"`
	Spectator int          `json:"spectators"`
}

func (s *Server) status(g *engine.GameState) statusResponse {
	st := statusResponse{
		Day:      g.Day,
		Phase:    g.Phase,
		Weather:  g.Weather,
		Forecast: weather.For(g.Weather).Description,
		Alive:    g.AliveCount(),
		Total:    len(g.Tributes),
		Finale:   g.Finale(),
		Pending:  len(g.Deceased),
		Steps:    s.Runner.Steps(),
		Speed:    s.Runner.Speed(),
		RunID:    s.RunID,
	}
	if g.Hazard != nil {
		st.Hazard = g.Hazard.Kind.String()
	}
	if w := g.Winner(); w != nil {
		st.Winner = w.Name
	}
	if s.Hub != nil {
		st.Spectator = s.Hub.Clients()
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.status(s.Runner.Snapshot()))
}

type tributeSummary struct {
	ID         agents.AgentID   `json:"id"`
	Name       string           `json:"name"`
	District   int              `json:"district"`
	Age        int              `json:"age"`
	Alive      bool             `json:"alive"`
	Health     float64          `json:"health"`
	Hunger     float64          `json:"hunger"`
	Thirst     float64          `json:"thirst"`
	Stamina    float64          `json:"stamina"`
	Kills      int              `json:"kills"`
	Hype       int              `json:"hype"`
	Activity   agents.Activity  `json:"activity"`
	LastAction string           `json:"last_action"`
	Location   world.HexCoord   `json:"location"`
	Status     agents.StatusSet `json:"status"`
	Items      int              `json:"items"`
}

func (s *Server) handleTributes(w http.ResponseWriter, r *http.Request) {
	g := s.Runner.Snapshot()
	aliveOnly := r.URL.Query().Get("alive") == "true"

	out := make([]tributeSummary, 0, len(g.Tributes))
	for _, tr := range g.Tributes {
		if aliveOnly && !tr.Alive {
			continue
		}
		out = append(out, tributeSummary{
			ID:         tr.ID,
			Name:       tr.Name,
			District:   int(tr.District),
			Age:        tr.Age,
			Alive:      tr.Alive,
			Health:     tr.Health,
			Hunger:     tr.Hunger,
			Thirst:     tr.Thirst,
			Stamina:    tr.Stamina,
			Kills:      tr.Kills,
			Hype:       tr.Hype,
			Activity:   tr.Activity,
			LastAction: tr.LastAction,
			Location:   tr.Location,
			Status:     tr.Status,
			Items:      len(tr.Inventory),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleTributeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid tribute id", http.StatusBadRequest)
		return
	}
	g := s.Runner.Snapshot()
	tr := g.Tribute(agents.AgentID(id))
	if tr == nil {
		http.Error(w, "tribute not found", http.StatusNotFound)
		return
	}

	type bond struct {
		ID       agents.AgentID  `json:"id"`
		Name     string          `json:"name"`
		Trust    int             `json:"trust"`
		Category agents.Category `json:"category"`
	}
	bonds := make([]bond, 0, len(tr.Relationships))
	for _, other := range g.Tributes {
		rel, ok := tr.Relationships[other.ID]
		if !ok {
			continue
		}
		bonds = append(bonds, bond{ID: other.ID, Name: other.Name, Trust: rel.Trust, Category: rel.Category()})
	}

	var terrain world.Biome
	if tile := g.Map.Get(tr.Location); tile != nil {
		terrain = tile.Biome
	}

	writeJSON(w, map[string]any{
		"tribute":       tr,
		"terrain":       terrain,
		"relationships": bonds,
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		Q         int              `json:"q"`
		R         int              `json:"r"`
		Biome     world.Biome      `json:"biome"`
		Elevation float64          `json:"elevation"`
		Trap      bool             `json:"trap,omitempty"` // visible traps only
		Hazard    bool             `json:"hazard,omitempty"`
		Occupants []agents.AgentID `json:"occupants,omitempty"`
	}

	g := s.Runner.Snapshot()
	occupants := make(map[world.HexCoord][]agents.AgentID)
	for _, tr := range g.Living() {
		occupants[tr.Location] = append(occupants[tr.Location], tr.ID)
	}

	tiles := make([]tileEntry, 0, len(g.Map.Tiles))
	for _, t := range g.Map.Tiles {
		tiles = append(tiles, tileEntry{
			Q:         t.Coord.Q,
			R:         t.Coord.R,
			Biome:     t.Biome,
			Elevation: t.Elevation,
			Trap:      t.Trap != nil && !t.Trap.Hidden,
			Hazard:    g.Hazard.Affects(t.Biome),
			Occupants: occupants[t.Coord],
		})
	}

	writeJSON(w, map[string]any{
		"radius": g.Map.Radius,
		"tiles":  tiles,
	})
}

// handleEvents returns the newest log lines first, optionally of one kind.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, maxEventLimit)
	}
	var kind *engine.LogKind
	if v := r.URL.Query().Get("kind"); v != "" {
		var k engine.LogKind
		if err := k.UnmarshalText([]byte(v)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		kind = &k
	}

	logs := s.Runner.Snapshot().Logs
	out := make([]engine.LogEntry, 0, min(limit, len(logs)))
	for i := len(logs) - 1; i >= 0 && len(out) < limit; i-- {
		if kind != nil && logs[i].Kind != *kind {
			continue
		}
		out = append(out, logs[i])
	}
	writeJSON(w, out)
}

// handleStandings serves archived final standings when the run is over,
// otherwise the live ranking.
func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil && s.RunID != "" {
		rows, err := s.DB.Standings(s.RunID)
		if err != nil {
			slog.Error("standings query failed", "error", err)
			http.Error(w, "standings unavailable", http.StatusInternalServerError)
			return
		}
		if len(rows) > 0 {
			writeJSON(w, map[string]any{"final": true, "standings": rows})
			return
		}
	}
	g := s.Runner.Snapshot()
	writeJSON(w, map[string]any{
		"final":     g.Phase == engine.PhaseGameOver,
		"standings": persistence.Placings(g, nil),
	})
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.Hub == nil {
		http.Error(w, "streaming disabled", http.StatusServiceUnavailable)
		return
	}
	g := s.Runner.Snapshot()
	hello := map[string]any{"type": "hello", "status": s.status(g)}
	s.Hub.serve(w, r, hello)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.Runner.Step()
	writeJSON(w, s.status(s.Runner.Snapshot()))
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action   engine.ManualAction `json:"action"`
		ActorID  agents.AgentID      `json:"actor_id"`
		TargetID agents.AgentID      `json:"target_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	before, after := s.Runner.Intervene(req.Action, req.ActorID, req.TargetID)
	applied := after != before
	slog.Info("intervention", "action", req.Action, "actor", req.ActorID, "target", req.TargetID, "applied", applied)

	resp := map[string]any{"applied": applied}
	if applied {
		resp["logs"] = after.Logs[len(before.Logs):]
	}
	writeJSON(w, resp)
}

func (s *Server) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	pending := len(s.Runner.Snapshot().Deceased)
	s.Runner.Acknowledge()
	writeJSON(w, map[string]int{"acknowledged": pending})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 100 {
		http.Error(w, "speed must be 0-100", http.StatusBadRequest)
		return
	}
	s.Runner.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
