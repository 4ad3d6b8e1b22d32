package gamemaker

import (
	"context"
	"fmt"
	"log/slog"
)

// Gamemaker ties one observe, decide and act cycle together.
type Gamemaker struct {
	Observer *Observer
	Actor    *Actor
	Memory   *CycleMemory
}

// New creates a Gamemaker for the API at baseURL.
func New(baseURL, adminKey string, mem *CycleMemory) *Gamemaker {
	if mem == nil {
		mem = &CycleMemory{}
	}
	return &Gamemaker{
		Observer: NewObserver(baseURL),
		Actor:    NewActor(baseURL, adminKey),
		Memory:   mem,
	}
}

// RunCycle executes one cycle and records it in memory.
func (g *Gamemaker) RunCycle(ctx context.Context) (*CycleRecord, error) {
	snap, err := g.Observer.Observe(ctx)
	if err != nil {
		return nil, fmt.Errorf("observe: %w", err)
	}

	h := Triage(snap, g.Memory)
	slog.Debug("arena triaged",
		"day", snap.Status.Day,
		"phase", snap.Status.Phase,
		"alive", h.Alive,
		"quiet_cycles", h.QuietCycles,
		"tension", h.Tension,
	)

	d, err := Decide(h, snap, g.Memory)
	if err != nil {
		return nil, fmt.Errorf("decide: %w", err)
	}

	rec := CycleRecord{
		Step:      snap.Status.Steps,
		Day:       snap.Status.Day,
		Alive:     snap.Status.Alive,
		Tension:   h.Tension,
		Action:    d.Action,
		Rationale: d.Rationale,
	}

	switch d.Action {
	case DecideAcknowledge:
		n, err := g.Actor.Acknowledge(ctx)
		if err != nil {
			return nil, fmt.Errorf("acknowledge: %w", err)
		}
		slog.Info("acknowledged fallen", "count", n)
	case DecideIntervene:
		res, err := g.Actor.Act(ctx, d.Intervention)
		if err != nil {
			return nil, fmt.Errorf("act: %w", err)
		}
		rec.Action = d.Intervention.Action.String()
		rec.ActorID = d.Intervention.ActorID
		rec.TargetID = d.Intervention.TargetID
		slog.Info("intervention executed",
			"action", d.Intervention.Action,
			"actor", d.Intervention.ActorID,
			"target", d.Intervention.TargetID,
			"applied", res.Applied,
			"rationale", d.Rationale,
		)
	default:
		slog.Info("gamemaker cycle complete, no intervention", "tension", h.Tension, "rationale", d.Rationale)
	}

	g.Memory.Record(rec)
	return &rec, nil
}
