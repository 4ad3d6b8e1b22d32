package persistence

import (
	"log/slog"
	"slices"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

// Obituary remembers the order tributes fell in. The engine's deceased
// queue is drained on acknowledgement, so the order is kept here.
type Obituary struct {
	order []agents.AgentID
	seen  map[agents.AgentID]bool
}

// Observe records any newly queued deaths in s.
func (o *Obituary) Observe(s *engine.GameState) {
	if o.seen == nil {
		o.seen = make(map[agents.AgentID]bool)
	}
	for _, id := range s.Deceased {
		if !o.seen[id] {
			o.seen[id] = true
			o.order = append(o.order, id)
		}
	}
}

// Order returns the fallen, first death first.
func (o *Obituary) Order() []agents.AgentID {
	return slices.Clone(o.order)
}

// Recorder archives a live run step by step. Its Observe method is a
// runner step hook.
type Recorder struct {
	db    *DB
	runID string
	dead  Obituary
}

// NewRecorder registers the run and returns its recorder.
func NewRecorder(db *DB, runID string, seed int64, preset string, s *engine.GameState) (*Recorder, error) {
	if err := db.BeginRun(runID, seed, preset, s.Settings); err != nil {
		return nil, err
	}
	return &Recorder{db: db, runID: runID}, nil
}

// RunID returns the archived run's ID.
func (r *Recorder) RunID() string { return r.runID }

// Observe stores new log lines, tracks the order of deaths, and writes
// standings once the game is over. Failures are logged, never fatal.
func (r *Recorder) Observe(_, next *engine.GameState) {
	r.dead.Observe(next)

	if _, err := r.db.AppendLogs(r.runID, next); err != nil {
		slog.Error("archive logs failed", "run", r.runID, "error", err)
	}
	if next.Phase == engine.PhaseGameOver {
		if err := r.db.FinishRun(r.runID, next, r.dead.Order()); err != nil {
			slog.Error("archive standings failed", "run", r.runID, "error", err)
		}
	}
}
