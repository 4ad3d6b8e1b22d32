package engine

import (
	"fmt"
	"math"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/weather"
	"github.com/talgya/tribute-arena/internal/world"
)

// Movement scoring weights. Shy tributes (aggression below boldAggression)
// avoid crowds and seek friends; bold ones seek a single opponent.
const (
	jitterRange        = 10
	backtrackPenalty   = -500
	shyCrowdPenalty    = -20
	shyAllyBonus       = 30
	boldDuelBonus      = 20
	boldCrowdPenalty   = -10
	boldAggression     = 6
	hurtEnemyPenalty   = -100
	trapSensePenalty   = -200
	trapSenseIntellect = 7
	finaleDistWeight   = 50
	waterBonus         = 100
	foodBonus          = 60
	weaponBonus        = 120
	coverBonus         = 80
	hazardPenalty      = -500
	heatRiverBonus     = 40
	heatDesertPenalty  = -50
)

// Stamina spent per step.
const (
	baseMoveCost     = 5
	mountainMoveCost = 5
	swampMoveCost    = 3
	restRecovery     = 30
)

// terrainPenalty is the flat desirability cost of hard ground.
func terrainPenalty(b world.Biome) int {
	switch b {
	case world.BiomeMountain:
		return -15
	case world.BiomeVolcano:
		return -20
	case world.BiomeSwamp:
		return -10
	}
	return 0
}

// occupants returns the other living tributes standing on coord.
func (t *turn) occupants(coord world.HexCoord, self agents.AgentID) []*agents.Tribute {
	var out []*agents.Tribute
	for _, o := range t.s.Tributes {
		if o.Alive && o.ID != self && o.Location == coord {
			out = append(out, o)
		}
	}
	return out
}

// scoreTile rates one candidate destination. Higher is better.
func (t *turn) scoreTile(tr *agents.Tribute, tile *world.Tile, finale bool) int {
	score := t.rng.Intn(2*jitterRange+1) - jitterRange

	if !finale && tile.Coord == tr.PrevLocation {
		score += backtrackPenalty
	}

	occ := t.occupants(tile.Coord, tr.ID)
	enemies, friends := 0, 0
	for _, o := range occ {
		switch c := tr.Relationship(o.ID).Category(); {
		case c == agents.CategoryEnemy:
			enemies++
		case c.Friendly():
			friends++
		}
	}
	if !finale {
		if tr.Stats.Aggression < boldAggression {
			score += len(occ)*shyCrowdPenalty + friends*shyAllyBonus
		} else if len(occ) == 1 {
			score += boldDuelBonus
		} else if len(occ) > 2 {
			score += boldCrowdPenalty
		}
	}
	if enemies > 0 && tr.Health < agents.HurtThreshold {
		score += hurtEnemyPenalty
	}

	if tile.Trap != nil && (tr.Stats.Intellect > trapSenseIntellect || agents.AgentID(tile.Trap.OwnerID) == tr.ID) {
		score += trapSensePenalty
	}

	if finale {
		return score - world.Distance(tile.Coord, world.Origin)*finaleDistWeight
	}

	b := tile.Biome
	if tr.WantsWater() && (b == world.BiomeRiver || b == world.BiomeSwamp) {
		score += waterBonus
	}
	if tr.WantsFood() && (b == world.BiomeForest || b == world.BiomeMeadow) {
		score += foodBonus
	}
	if tr.WantsWeapon() && (b == world.BiomeCornucopia || b == world.BiomeRuins) {
		score += weaponBonus
	}
	if tr.WantsCover() && (b == world.BiomeForest || b == world.BiomeMountain) {
		score += coverBonus
	}
	if t.s.Hazard.Affects(b) {
		score += hazardPenalty
	}
	score += terrainPenalty(b)
	if t.s.Weather == weather.Heatwave {
		switch b {
		case world.BiomeRiver:
			score += heatRiverBonus
		case world.BiomeDesert:
			score += heatDesertPenalty
		}
	}
	return score
}

// move sends a rested tribute to its best-scoring neighbor, or rests it.
// Returns false if the tribute rested instead.
func (t *turn) move(tr *agents.Tribute, finale bool) bool {
	if tr.Stamina <= agents.RestThreshold {
		tr.Tire(-restRecovery)
		tr.Activity = agents.ActivityResting
		tr.LastAction = "Resting to recover stamina"
		t.logf(LogRest, "%s is resting.", tr.Name)
		return false
	}

	neighbors := t.s.Map.Neighbors(tr.Location)
	if len(neighbors) == 0 {
		return false
	}
	t.rng.Shuffle(len(neighbors), func(i, j int) {
		neighbors[i], neighbors[j] = neighbors[j], neighbors[i]
	})

	best, bestScore := neighbors[0], math.MinInt
	for _, n := range neighbors {
		tile := t.s.Map.Get(n)
		if tile == nil {
			continue
		}
		if score := t.scoreTile(tr, tile, finale); score > bestScore {
			best, bestScore = n, score
		}
	}

	tr.PrevLocation = tr.Location
	tr.Location = best

	dest := t.s.Map.Get(best)
	cost := float64(baseMoveCost)
	switch dest.Biome {
	case world.BiomeMountain:
		cost += mountainMoveCost
	case world.BiomeSwamp:
		cost += swampMoveCost
	}
	tr.Tire(cost * weather.For(t.s.Weather).StaminaCost)

	if dest.Trap != nil && agents.AgentID(dest.Trap.OwnerID) != tr.ID {
		t.springTrap(tr, dest)
		return true
	}
	tr.Activity = agents.ActivityMoved
	tr.LastAction = fmt.Sprintf("Moved to %s", best)
	return true
}

// springTrap applies a trap to the tribute that walked onto it and removes it.
func (t *turn) springTrap(tr *agents.Tribute, tile *world.Tile) {
	trap := tile.Trap
	tile.Trap = nil

	tr.Hurt(trap.Damage)
	tr.Status = tr.Status.With(agents.StatusBleeding)
	tr.Activity = agents.ActivityTrapped
	tr.LastAction = "Caught in a trap"
	t.logf(LogTrap, "%s %s!", tr.Name, trap.Description)

	if tr.Health <= 0 {
		t.logf(LogDeath, "%s died from a trap.", tr.Name)
		t.eliminate(tr, "Caught in a trap")
	}
}
