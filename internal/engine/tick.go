package engine

import (
	"cmp"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/weather"
	"github.com/talgya/tribute-arena/internal/world"
)

// Per-tick vitals changes.
const (
	hungerDecay      = 3.0
	thirstDecay      = 4.0
	nightDecayFactor = 0.5
	nightRecovery    = 20.0
	bleedDamage      = 5.0
	poisonDamage     = 2.0
	poisonFatigue    = 10.0
	coldDamage       = 4.0
	coldFatigue      = 10.0
	heatDamage       = 2.0
	heatThirstFactor = 2.0
	starveDamage     = 5.0
	parchDamage      = 8.0
	hypothermiaOnset = 0.3
	heatstrokeOnset  = 0.2
)

// shelters keeps the cold off.
func shelters(b world.Biome) bool {
	return b == world.BiomeForest || b == world.BiomeRuins || b == world.BiomeCornucopia
}

// watered is next to free water.
func watered(b world.Biome) bool {
	return b == world.BiomeRiver || b == world.BiomeSwamp
}

// tick applies one step of needs, conditions and upkeep to a living tribute.
func (t *turn) tick(tr *agents.Tribute) {
	if !tr.Alive {
		return
	}
	tile := t.s.Map.Get(tr.Location)
	if tile == nil {
		return
	}
	mods := weather.For(t.s.Weather)
	night := t.s.Phase == PhaseNight

	hunger := hungerDecay * mods.HungerMod
	thirst := thirstDecay * mods.ThirstMod
	if night {
		hunger *= nightDecayFactor
		thirst *= nightDecayFactor
		tr.Tire(-nightRecovery)
	}

	if tr.Status.Has(agents.StatusBleeding) {
		tr.Hurt(bleedDamage)
		if t.rng.Float64() < 0.2 {
			t.logf(LogStatus, "%s is bleeding out.", tr.Name)
		}
	}
	if tr.Status.Has(agents.StatusPoisoned) {
		tr.Tire(poisonFatigue)
		tr.Hurt(poisonDamage)
	}
	if tr.Status.Has(agents.StatusHypothermia) {
		tr.Hurt(coldDamage)
		tr.Tire(coldFatigue)
	}
	if tr.Status.Has(agents.StatusHeatstroke) {
		thirst *= heatThirstFactor
		tr.Hurt(heatDamage)
	}

	tr.Starve(hunger)
	tr.Parch(thirst)
	if tr.Hunger <= 0 {
		tr.Hurt(starveDamage)
	}
	if tr.Thirst <= 0 {
		tr.Hurt(parchDamage)
	}

	if h := t.s.Hazard; h.Affects(tile.Biome) {
		tr.Hurt(h.Damage)
		t.logf(LogHazard, "%s was hurt by the %s.", tr.Name, h.Kind)
	}

	t.weatherConditions(tr, tile.Biome, night)

	if item, ok := tr.Craft(); ok {
		t.logf(LogCrafting, "%s crafted a %s.", tr.Name, item.Name)
	}

	if tile.Trap == nil && tr.HasItem(agents.ItemExplosive) {
		tr.RemoveItem(agents.ItemExplosive)
		tile.Trap = &world.Trap{
			OwnerID:     uint64(tr.ID),
			Damage:      agents.TrapDamage,
			Description: "stepped on a Landmine",
			Hidden:      true,
		}
		t.logf(LogTrap, "%s set a trap in the %s.", tr.Name, tile.Biome)
	}

	t.selfCare(tr, tile.Biome)

	if tr.Health <= 0 {
		cause := cmp.Or(tr.CauseOfDeath, "Succumbed to the elements")
		t.logf(LogDeath, "%s died of %s.", tr.Name, cause)
		t.eliminate(tr, cause)
	}
}

// weatherConditions starts or cures hypothermia and heatstroke.
func (t *turn) weatherConditions(tr *agents.Tribute, b world.Biome, night bool) {
	if t.s.Weather.Cold(night) {
		if !tr.HasTrait(agents.TraitWarmth) && !shelters(b) {
			if !tr.Status.Has(agents.StatusHypothermia) && t.rng.Float64() < hypothermiaOnset {
				tr.Status = tr.Status.With(agents.StatusHypothermia)
				t.logf(LogStatus, "%s is developing Hypothermia from the cold.", tr.Name)
			}
		} else if tr.Status.Has(agents.StatusHypothermia) {
			tr.Status = tr.Status.Without(agents.StatusHypothermia)
			t.logf(LogStatus, "%s warmed up and cured their Hypothermia.", tr.Name)
		}
	} else {
		tr.Status = tr.Status.Without(agents.StatusHypothermia)
	}

	if t.s.Weather != weather.Heatwave {
		tr.Status = tr.Status.Without(agents.StatusHeatstroke)
		return
	}
	hasWater := tr.HasItem(agents.ItemWater)
	if !hasWater && !watered(b) {
		if !tr.Status.Has(agents.StatusHeatstroke) && t.rng.Float64() < heatstrokeOnset {
			tr.Status = tr.Status.With(agents.StatusHeatstroke)
			t.logf(LogStatus, "%s collapsed from Heatstroke.", tr.Name)
		}
		return
	}
	if tr.Status.Has(agents.StatusHeatstroke) {
		tr.Status = tr.Status.Without(agents.StatusHeatstroke)
		if !watered(b) {
			tr.RemoveItem(agents.ItemWater)
			t.logf(LogStatus, "%s drank water to cure Heatstroke.", tr.Name)
		}
	}
}

// selfCare uses inventory to heal, cure poison, eat and drink.
func (t *turn) selfCare(tr *agents.Tribute, b world.Biome) {
	if tr.Health < agents.HealThreshold {
		if med, ok := tr.TakeBestConsumable(agents.UseHeal); ok {
			tr.Heal(float64(med.Potency))
			if med.ID == agents.ItemBandage {
				tr.Status = tr.Status.Without(agents.StatusBleeding)
			}
			t.logf(LogInfo, "%s used %s to heal.", tr.Name, med.Name)
		}
	}

	if tr.Status.Has(agents.StatusPoisoned) {
		if cure, ok := tr.TakeBestConsumable(agents.UseAntidote); ok {
			tr.Status = tr.Status.Without(agents.StatusPoisoned)
			t.logf(LogStatus, "%s took an %s and recovered from poison.", tr.Name, cure.Name)
		}
	}

	if tr.Hunger < agents.EatThreshold {
		if food, ok := tr.TakeBestConsumable(agents.UseFood); ok {
			tr.Starve(-float64(food.Potency))
			t.logf(LogInfo, "%s ate %s.", tr.Name, food.Name)
		}
	}

	if tr.Thirst < agents.ThirstThreshold {
		if b == world.BiomeRiver {
			tr.Thirst = agents.VitalMax
			t.logf(LogInfo, "%s drank from the river.", tr.Name)
		} else if drink, ok := tr.TakeBestConsumable(agents.UseWater); ok {
			tr.Parch(-float64(drink.Potency))
			t.logf(LogInfo, "%s drank their water.", tr.Name)
		}
	}
}
