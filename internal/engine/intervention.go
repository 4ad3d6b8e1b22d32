package engine

import (
	"fmt"
	"log/slog"
	"math/rand"
	"slices"

	"github.com/talgya/tribute-arena/internal/agents"
)

// ManualAction is an operator command forced on two tributes.
type ManualAction uint8

const (
	ActionAlliance ManualAction = iota
	ActionBetray
	ActionGift
)

var actionNames = [...]string{
	ActionAlliance: "alliance",
	ActionBetray:   "betray",
	ActionGift:     "gift",
}

func (a ManualAction) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// MarshalText encodes the action by name.
func (a ManualAction) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText decodes an action name.
func (a *ManualAction) UnmarshalText(text []byte) error {
	i := slices.Index(actionNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown manual action %q", text)
	}
	*a = ManualAction(i)
	return nil
}

// Trust nudges from operator commands.
const (
	forcedAllianceActor  = 30
	forcedAllianceTarget = 10
	forcedBetrayal       = -100
	giftGratitude        = 40
	forcedLethality      = 1.0
)

// ManualInteraction forces an action between two tributes outside the
// normal step. Missing or dead tributes make it a no-op that returns s.
func ManualInteraction(action ManualAction, actorID, targetID agents.AgentID, s *GameState, rng *rand.Rand) *GameState {
	if actorID == targetID {
		return s
	}
	if a, b := s.Tribute(actorID), s.Tribute(targetID); a == nil || b == nil || !a.Alive || !b.Alive {
		return s
	}

	n := s.Clone()
	t := &turn{s: n, rng: rng}
	actor, target := n.Tribute(actorID), n.Tribute(targetID)

	switch action {
	case ActionAlliance:
		agents.ModifyTrust(actor, target.ID, forcedAllianceActor)
		agents.ModifyTrust(target, actor.ID, forcedAllianceTarget)
		t.logf(LogGamemaker, "GAMEMAKER: Forced %s to attempt alliance with %s.", actor.Name, target.Name)
	case ActionBetray:
		agents.ModifyTrust(actor, target.ID, forcedBetrayal)
		t.logf(LogGamemaker, "GAMEMAKER: Forced %s to attack %s!", actor.Name, target.Name)
		t.fight(actor, target, forcedLethality)
	case ActionGift:
		if len(actor.Inventory) == 0 {
			return s
		}
		item := actor.Inventory[0]
		actor.Inventory = slices.Delete(actor.Inventory, 0, 1)
		target.Inventory = append(target.Inventory, item)
		agents.ModifyTrust(target, actor.ID, giftGratitude)
		t.logf(LogInfo, "%s was forced to give %s to %s.", actor.Name, item.Name, target.Name)
	default:
		return s
	}

	slog.Info("manual interaction", "action", action, "actor", actor.Name, "target", target.Name)
	return n
}

// AcknowledgeDeceased returns a copy with the deceased queue drained.
func AcknowledgeDeceased(s *GameState) *GameState {
	n := s.Clone()
	n.Deceased = []agents.AgentID{}
	return n
}
