package gamemaker

import (
	"cmp"
	"slices"

	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/world"
)

// Tension grades how much the arena needs a push.
type Tension string

const (
	TensionOver    Tension = "OVER"    // game finished
	TensionHold    Tension = "HOLD"    // deaths waiting on acknowledgement
	TensionStalled Tension = "STALLED" // no deaths for stallCycles
	TensionSlow    Tension = "SLOW"    // no deaths for slowCycles
	TensionActive  Tension = "ACTIVE"
)

const (
	slowCycles  = 2
	stallCycles = 4
	weakHealth  = 30.0
)

// ArenaHealth holds the signals derived from one snapshot.
// Runs before any decision and is deterministic.
type ArenaHealth struct {
	Alive       int
	QuietCycles int
	Tension     Tension

	Leader  *TributeInfo // most kills, hype breaks ties
	Weakest *TributeInfo // lowest health
	Richest *TributeInfo // most items

	// Closest living pair that has not been forced recently.
	PairA, PairB *TributeInfo
	PairDistance int
}

// Triage computes an ArenaHealth from the snapshot and cycle memory.
func Triage(snap *ArenaSnapshot, mem *CycleMemory) *ArenaHealth {
	h := &ArenaHealth{
		Alive:       snap.Status.Alive,
		QuietCycles: mem.QuietCycles(snap.Status.Alive),
	}

	switch {
	case snap.Status.Phase == engine.PhaseGameOver:
		h.Tension = TensionOver
	case snap.Status.Pending > 0:
		h.Tension = TensionHold
	case h.QuietCycles >= stallCycles:
		h.Tension = TensionStalled
	case h.QuietCycles >= slowCycles:
		h.Tension = TensionSlow
	default:
		h.Tension = TensionActive
	}

	living := make([]*TributeInfo, 0, len(snap.Tributes))
	for i := range snap.Tributes {
		if snap.Tributes[i].Alive {
			living = append(living, &snap.Tributes[i])
		}
	}
	if len(living) == 0 {
		return h
	}

	h.Leader = slices.MaxFunc(living, func(a, b *TributeInfo) int {
		if c := cmp.Compare(a.Kills, b.Kills); c != 0 {
			return c
		}
		return cmp.Compare(a.Hype, b.Hype)
	})
	h.Weakest = slices.MinFunc(living, func(a, b *TributeInfo) int {
		return cmp.Compare(a.Health, b.Health)
	})
	h.Richest = slices.MaxFunc(living, func(a, b *TributeInfo) int {
		return cmp.Compare(a.Items, b.Items)
	})

	h.PairDistance = -1
	for i, a := range living {
		for _, b := range living[i+1:] {
			if mem.RecentlyForced(a.ID, b.ID) {
				continue
			}
			d := world.Distance(a.Location, b.Location)
			if h.PairDistance < 0 || d < h.PairDistance {
				h.PairA, h.PairB, h.PairDistance = a, b, d
			}
		}
	}
	return h
}
