// Package runner drives an arena game in real time. It owns the current
// snapshot, paces steps, and hands every new snapshot to its hooks.
package runner

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

// pausePoll is how often a paused or held loop checks again.
const pausePoll = 100 * time.Millisecond

// StepHook observes a completed step. prev and next are immutable
// snapshots; next still carries the step's deceased queue.
type StepHook func(prev, next *engine.GameState)

// Runner owns one game. All methods are safe for concurrent use.
type Runner struct {
	step sync.Mutex // serializes state changes and hook delivery

	mu       sync.RWMutex
	state    *engine.GameState
	rng      *rand.Rand
	interval time.Duration
	speed    float64
	hold     bool
	steps    int
	hooks    []StepHook
}

// New wraps an initialized game. The interval comes from the game's
// speed setting and the hold-on-death flag from its auto-continue setting.
func New(s *engine.GameState, rng *rand.Rand) *Runner {
	return &Runner{
		state:    s,
		rng:      rng,
		interval: time.Duration(s.Settings.GameSpeed) * time.Millisecond,
		speed:    1,
		hold:     !s.Settings.AutoContinueOnDeath,
	}
}

// OnStep registers a hook. Hooks run in registration order after each step.
func (r *Runner) OnStep(h StepHook) {
	r.step.Lock()
	defer r.step.Unlock()
	r.hooks = append(r.hooks, h)
}

// SetSpeed sets the pace multiplier. Zero pauses Run.
func (r *Runner) SetSpeed(speed float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = max(speed, 0)
}

// Speed returns the pace multiplier.
func (r *Runner) Speed() float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.speed
}

// SetHold controls whether Run waits for Acknowledge after deaths.
func (r *Runner) SetHold(hold bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hold = hold
}

// Snapshot returns a private copy of the current state.
func (r *Runner) Snapshot() *engine.GameState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Clone()
}

// Steps returns the number of steps taken.
func (r *Runner) Steps() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.steps
}

// Done reports whether the game is over.
func (r *Runner) Done() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state.Phase == engine.PhaseGameOver
}

// Step advances one phase. When the game does not hold on deaths the
// deceased queue is acknowledged straight away. It returns the stepped
// snapshot.
func (r *Runner) Step() *engine.GameState {
	r.step.Lock()
	defer r.step.Unlock()

	r.mu.Lock()
	prev := r.state
	if prev.Phase == engine.PhaseGameOver {
		r.mu.Unlock()
		return prev
	}
	next := engine.AdvanceGamePhase(prev, r.rng)
	r.state = next
	if !r.hold && len(next.Deceased) > 0 {
		r.state = engine.AcknowledgeDeceased(next)
	}
	r.steps++
	hooks := r.hooks
	r.mu.Unlock()

	slog.Info("step",
		"day", next.Day,
		"phase", next.Phase,
		"alive", next.AliveCount(),
		"weather", next.Weather,
	)
	for _, h := range hooks {
		h(prev, next)
	}
	return next
}

// Intervene applies a manual interaction to the current state. It returns
// the snapshots just before and after, taken without a step in between;
// they are the same snapshot when the interaction was a no-op.
func (r *Runner) Intervene(action engine.ManualAction, actorID, targetID agents.AgentID) (before, after *engine.GameState) {
	r.step.Lock()
	defer r.step.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	before = r.state
	r.state = engine.ManualInteraction(action, actorID, targetID, before, r.rng)
	return before, r.state
}

// Acknowledge drains the deceased queue, releasing a held loop.
func (r *Runner) Acknowledge() *engine.GameState {
	r.step.Lock()
	defer r.step.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.state.Deceased) > 0 {
		r.state = engine.AcknowledgeDeceased(r.state)
	}
	return r.state
}

// ready reports whether Run may step now, and the wait before the next check.
func (r *Runner) ready() (bool, time.Duration) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.speed <= 0 || (r.hold && len(r.state.Deceased) > 0) {
		return false, pausePoll
	}
	return true, time.Duration(float64(r.interval) / r.speed)
}

// Run steps until the game ends or ctx is cancelled. It returns the final
// snapshot and ctx.Err() if cancelled.
func (r *Runner) Run(ctx context.Context) (*engine.GameState, error) {
	slog.Info("runner started", "interval", r.interval)
	for !r.Done() {
		ok, wait := r.ready()
		if ok {
			start := time.Now()
			r.Step()
			wait -= time.Since(start)
			if r.Done() {
				break
			}
		}
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				slog.Info("runner stopped", "steps", r.Steps())
				return r.Snapshot(), ctx.Err()
			case <-t.C:
			}
		} else if err := ctx.Err(); err != nil {
			return r.Snapshot(), err
		}
	}
	slog.Info("runner finished", "steps", r.Steps())
	return r.Snapshot(), nil
}
