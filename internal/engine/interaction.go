package engine

import (
	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/weather"
	"github.com/talgya/tribute-arena/internal/world"
)

// Outcome is what two co-located tributes do with each other.
type Outcome uint8

const (
	OutcomeIgnore Outcome = iota
	OutcomeFight
	OutcomeBond
	OutcomeAlliance
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFight:
		return "fight"
	case OutcomeBond:
		return "bond"
	case OutcomeAlliance:
		return "alliance"
	default:
		return "ignore"
	}
}

// Interaction tuning.
const (
	betrayalSurvivors  = 4 // Friends turn on each other at or below this many
	betrayalTrustLoss  = -100
	peacefulAggression = 7 // Both below this: may ally
	allianceChance     = 0.15
	allianceTrust      = 40
	hostileAggression  = 7 // Above this: picks fights while more than two live
	bondChance         = 0.2
	bondTrust          = 10
	idleChance         = 0.15
	weatherIdleChance  = 0.6
	lootChance         = 0.2
)

// evaluate decides the interaction between a and b from a's side.
func (t *turn) evaluate(a, b *agents.Tribute, survivors int) Outcome {
	rel := a.Relationship(b.ID)
	cat := rel.Category()

	if (cat == agents.CategoryAlly || cat == agents.CategoryCloseAlly) && survivors <= betrayalSurvivors {
		chance := float64(a.Stats.Intellect*3 + a.Stats.Aggression*2 - rel.Trust)
		if t.rng.Float64()*100 < chance {
			t.logf(LogCombat, "%s %s %s!", a.Name, t.pick(betrayalLines), b.Name)
			agents.ModifyTrust(a, b.ID, betrayalTrustLoss)
			agents.ModifyTrust(b, a.ID, betrayalTrustLoss)
			return OutcomeFight
		}
	}

	if cat == agents.CategoryEnemy {
		return OutcomeFight
	}
	if cat == agents.CategoryNeutral && a.Stats.Aggression < peacefulAggression && b.Stats.Aggression < peacefulAggression {
		if t.rng.Float64() < allianceChance {
			return OutcomeAlliance
		}
	}
	if a.Stats.Aggression > hostileAggression && survivors > 2 {
		return OutcomeFight
	}
	if t.rng.Float64() < bondChance {
		return OutcomeBond
	}
	return OutcomeIgnore
}

// interact evaluates a pair and applies the outcome.
func (t *turn) interact(a, b *agents.Tribute) {
	if !a.Alive || !b.Alive {
		return
	}
	switch t.evaluate(a, b, t.s.AliveCount()) {
	case OutcomeFight:
		t.fight(a, b, t.s.Settings.Lethality.Multiplier())
	case OutcomeBond:
		t.logf(LogInfo, "%s %s %s.", a.Name, t.pick(bondingLines), b.Name)
		agents.ModifyTrust(a, b.ID, bondTrust)
		agents.ModifyTrust(b, a.ID, bondTrust)
		a.Activity, b.Activity = agents.ActivityBonding, agents.ActivityBonding
		a.LastAction, b.LastAction = "Bonding", "Bonding"
	case OutcomeAlliance:
		t.logf(LogAlliance, "%s and %s formed an alliance!", a.Name, b.Name)
		agents.ModifyTrust(a, b.ID, allianceTrust)
		agents.ModifyTrust(b, a.ID, allianceTrust)
		a.Activity, b.Activity = agents.ActivityAllying, agents.ActivityAllying
		a.LastAction, b.LastAction = "Allied with "+b.Name, "Allied with "+a.Name
	}
}

// groupByTile buckets living tributes by location, ordered by the first
// roster appearance of each tile.
func groupByTile(tributes []*agents.Tribute) [][]*agents.Tribute {
	index := make(map[world.HexCoord]int)
	var groups [][]*agents.Tribute
	for _, tr := range tributes {
		if !tr.Alive {
			continue
		}
		i, ok := index[tr.Location]
		if !ok {
			i = len(groups)
			index[tr.Location] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], tr)
	}
	return groups
}

// encounters pairs up every shared tile and gives loners a chance at
// flavour or loot.
func (t *turn) encounters() {
	for _, group := range groupByTile(t.s.Tributes) {
		if len(group) == 1 {
			t.solitude(group[0])
			continue
		}
		t.rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		for i := 0; i < len(group); i += 2 {
			if i+1 == len(group) {
				group[i].Activity = agents.ActivityWatching
				group[i].LastAction = "Watching from the shadows"
				break
			}
			t.interact(group[i], group[i+1])
		}
	}
}

// solitude runs the idle line or loot roll for a tribute alone on its tile.
func (t *turn) solitude(tr *agents.Tribute) {
	if !tr.Alive {
		return
	}
	if tr.Activity != agents.ActivityResting && t.rng.Float64() < idleChance {
		if t.rng.Float64() < weatherIdleChance {
			t.logf(LogWeather, "%s %s", tr.Name, weather.IdleLine(t.s.Weather, t.rng))
		} else {
			t.logf(LogInfo, "%s %s", tr.Name, t.pick(idleLines))
		}
		tr.Activity = agents.ActivityIdle
		tr.LastAction = "Idle"
		return
	}
	if tr.Activity != agents.ActivityMoved {
		return
	}
	tile := t.s.Map.Get(tr.Location)
	if tile == nil {
		return
	}
	pool := lootPool(tile.Biome)
	if len(pool) == 0 || t.rng.Float64() >= lootChance {
		return
	}
	item := pool[t.rng.Intn(len(pool))]
	tr.Inventory = append(tr.Inventory, item)
	t.logf(LogCrafting, "%s found a %s in the %s.", tr.Name, item.Name, tile.Biome)
}

// lootPool is what a biome yields to a searching tribute.
func lootPool(b world.Biome) []agents.Item {
	switch b {
	case world.BiomeCornucopia:
		return agents.Weapons
	case world.BiomeForest:
		return agents.Consumables
	case world.BiomeRuins:
		return agents.Salvage
	}
	return nil
}
