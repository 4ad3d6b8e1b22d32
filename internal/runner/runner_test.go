package runner

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

func newGame(t *testing.T, autoContinue bool) *Runner {
	t.Helper()
	cfg := engine.Settings{
		Lethality:           engine.LethalityHigh,
		ResourceScarcity:    engine.ScarcityNormal,
		MapSize:             3,
		TributeCount:        8,
		GameSpeed:           0,
		FinaleDay:           3,
		UseCareerAlliance:   false,
		UseAges:             true,
		AutoContinueOnDeath: autoContinue,
	}
	rng := rand.New(rand.NewSource(5))
	return New(engine.InitializeGame(cfg, rng), rng)
}

func TestStepCallsHooksInOrder(t *testing.T) {
	r := newGame(t, true)
	var order []string
	var seen *engine.GameState
	r.OnStep(func(prev, next *engine.GameState) {
		order = append(order, "first")
		if prev.Phase != engine.PhaseSetup || next.Phase != engine.PhaseBloodbath {
			t.Errorf("hook saw %s -> %s", prev.Phase, next.Phase)
		}
		seen = next
	})
	r.OnStep(func(prev, next *engine.GameState) { order = append(order, "second") })

	got := r.Step()
	if got != seen {
		t.Error("Step should return the snapshot handed to hooks")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("hook order = %v", order)
	}
	if r.Steps() != 1 {
		t.Errorf("steps = %d", r.Steps())
	}
}

func TestSnapshotIsPrivate(t *testing.T) {
	r := newGame(t, true)
	snap := r.Snapshot()
	snap.Tributes[0].Health = -5
	if r.Snapshot().Tributes[0].Health == -5 {
		t.Error("snapshot shares memory with the runner")
	}
}

func TestRunToCompletion(t *testing.T) {
	r := newGame(t, true)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	final, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if final.Phase != engine.PhaseGameOver {
		t.Fatalf("phase = %s", final.Phase)
	}
	if len(final.Deceased) != 0 {
		t.Errorf("auto-continue left %d unacknowledged deaths", len(final.Deceased))
	}
	if before := r.Steps(); r.Step() != nil && r.Steps() != before {
		t.Error("stepping a finished game should not count")
	}
}

func TestHoldWaitsForAcknowledge(t *testing.T) {
	r := newGame(t, false)
	for i := 0; i < 200 && !r.Done(); i++ {
		r.Step()
		if len(r.Snapshot().Deceased) > 0 {
			break
		}
	}
	if len(r.Snapshot().Deceased) == 0 {
		t.Skip("no deaths in this game")
	}
	if ok, _ := r.ready(); ok {
		t.Fatal("runner should hold while deaths are unacknowledged")
	}
	r.Acknowledge()
	if len(r.Snapshot().Deceased) != 0 {
		t.Fatal("acknowledge left deaths queued")
	}
	if ok, _ := r.ready(); !ok && !r.Done() {
		t.Error("runner still held after acknowledge")
	}

	r.SetHold(false)
	r.mu.Lock()
	r.state.Deceased = append(r.state.Deceased, agents.AgentID(1))
	r.mu.Unlock()
	if ok, _ := r.ready(); !ok {
		t.Error("hold disabled but runner still waits")
	}
}

func TestRunCancelledWhilePaused(t *testing.T) {
	r := newGame(t, true)
	r.SetSpeed(0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	final, err := r.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v", err)
	}
	if final.Phase != engine.PhaseSetup || r.Steps() != 0 {
		t.Errorf("paused runner stepped: phase=%s steps=%d", final.Phase, r.Steps())
	}
}

func TestIntervene(t *testing.T) {
	r := newGame(t, true)
	s := r.Snapshot()
	a, b := s.Tributes[0], s.Tributes[1]

	before, after := r.Intervene(engine.ActionAlliance, a.ID, b.ID)
	if before == after || len(after.Logs) != len(before.Logs)+1 {
		t.Fatalf("alliance not applied: %d -> %d logs", len(before.Logs), len(after.Logs))
	}
	if got := after.Tribute(a.ID).Relationship(b.ID).Trust; got <= s.Tribute(a.ID).Relationship(b.ID).Trust {
		t.Errorf("trust after forced alliance = %d", got)
	}
	if r.Snapshot().Tribute(a.ID).Relationship(b.ID).Trust != after.Tribute(a.ID).Relationship(b.ID).Trust {
		t.Error("intervention not stored")
	}
}

func TestInterveneNoOpReturnsSameSnapshot(t *testing.T) {
	r := newGame(t, true)
	id := r.Snapshot().Tributes[0].ID
	before, after := r.Intervene(engine.ActionBetray, id, id)
	if before != after {
		t.Error("self-targeted intervention produced a new snapshot")
	}
}

func TestInterveneIsolatedFromConcurrentSteps(t *testing.T) {
	r := newGame(t, true)
	s := r.Snapshot()
	a, b := s.Tributes[0].ID, s.Tributes[1].ID

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				r.Step()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		before, after := r.Intervene(engine.ActionAlliance, a, b)
		if before == after {
			continue // a tribute died
		}
		if after.Phase != before.Phase || after.Day != before.Day {
			t.Fatalf("step slipped into intervention: %s day %d -> %s day %d", before.Phase, before.Day, after.Phase, after.Day)
		}
		if len(after.Logs) != len(before.Logs)+1 {
			t.Fatalf("intervention added %d logs", len(after.Logs)-len(before.Logs))
		}
	}
	close(stop)
	<-done
}
