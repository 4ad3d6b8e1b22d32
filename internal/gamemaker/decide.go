package gamemaker

import (
	"errors"
	"fmt"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

// Decision kinds.
const (
	DecideNone        = "none"
	DecideAcknowledge = "acknowledge"
	DecideIntervene   = "intervene"
)

// allianceRange is the farthest apart two tributes can be for a forced alliance.
const allianceRange = 2

// Decision is the gamemaker's chosen action for one cycle.
type Decision struct {
	Action       string        `json:"action"`
	Rationale    string        `json:"rationale"`
	Intervention *Intervention `json:"intervention"`
}

// Intervention is the payload for POST /api/v1/intervention.
type Intervention struct {
	Action   engine.ManualAction `json:"action"`
	ActorID  agents.AgentID      `json:"actor_id"`
	TargetID agents.AgentID      `json:"target_id"`
}

// Decide applies the gamemaker rules to the triaged arena. A quiet arena
// gets a sponsor gift or an alliance first; a stalled one gets a forced
// attack between the closest pair.
func Decide(h *ArenaHealth, snap *ArenaSnapshot, mem *CycleMemory) (*Decision, error) {
	d := &Decision{Action: DecideNone}

	switch h.Tension {
	case TensionOver:
		d.Rationale = "games are over"
	case TensionHold:
		d.Action = DecideAcknowledge
		d.Rationale = fmt.Sprintf("%d fallen awaiting the cannon", snap.Status.Pending)
	case TensionStalled:
		if h.PairA == nil {
			d.Rationale = "stalled but no eligible pair"
			break
		}
		actor, target := h.PairA, h.PairB
		if target.Kills > actor.Kills || (target.Kills == actor.Kills && target.Health > actor.Health) {
			actor, target = target, actor
		}
		d.Action = DecideIntervene
		d.Rationale = fmt.Sprintf("no deaths for %d cycles, setting %s on %s", h.QuietCycles, actor.Name, target.Name)
		d.Intervention = &Intervention{Action: engine.ActionBetray, ActorID: actor.ID, TargetID: target.ID}
	case TensionSlow:
		if w, r := h.Weakest, h.Richest; w != nil && r != nil && w.ID != r.ID &&
			w.Health < weakHealth && r.Items > 0 && !mem.RecentlyForced(r.ID, w.ID) {
			d.Action = DecideIntervene
			d.Rationale = fmt.Sprintf("%s is fading at %.0f health, %s shares supplies", w.Name, w.Health, r.Name)
			d.Intervention = &Intervention{Action: engine.ActionGift, ActorID: r.ID, TargetID: w.ID}
			break
		}
		if h.PairA != nil && h.PairDistance <= allianceRange {
			d.Action = DecideIntervene
			d.Rationale = fmt.Sprintf("quiet arena, pushing %s and %s together", h.PairA.Name, h.PairB.Name)
			d.Intervention = &Intervention{Action: engine.ActionAlliance, ActorID: h.PairA.ID, TargetID: h.PairB.ID}
			break
		}
		d.Rationale = "quiet arena, nobody close enough to matter"
	default:
		d.Rationale = "arena is lively"
	}

	if err := enforceGuardrails(d, snap, mem); err != nil {
		return nil, fmt.Errorf("guardrail violation: %w", err)
	}
	return d, nil
}

// enforceGuardrails validates the decision against the observed arena.
func enforceGuardrails(d *Decision, snap *ArenaSnapshot, mem *CycleMemory) error {
	switch d.Action {
	case DecideNone, DecideAcknowledge:
		d.Intervention = nil
		return nil
	case DecideIntervene:
		if d.Intervention == nil {
			return errors.New("intervene requires a payload")
		}
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}

	iv := d.Intervention
	if snap.Status.Phase == engine.PhaseGameOver {
		return errors.New("games are over")
	}
	if iv.ActorID == iv.TargetID {
		return fmt.Errorf("tribute %d cannot act on itself", iv.ActorID)
	}
	for _, id := range []agents.AgentID{iv.ActorID, iv.TargetID} {
		if !livingTribute(snap, id) {
			return fmt.Errorf("tribute %d is not alive", id)
		}
	}
	if mem.RecentlyForced(iv.ActorID, iv.TargetID) {
		return fmt.Errorf("pair %d/%d was forced within %d cycles", iv.ActorID, iv.TargetID, pairCooldown)
	}
	return nil
}

func livingTribute(snap *ArenaSnapshot, id agents.AgentID) bool {
	for _, tr := range snap.Tributes {
		if tr.ID == id {
			return tr.Alive
		}
	}
	return false
}
