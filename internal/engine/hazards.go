package engine

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/talgya/tribute-arena/internal/world"
)

// HazardChance is the probability a hazard is released at dawn.
const HazardChance = 0.3

// HazardKind is a gamemaker area event.
type HazardKind uint8

const (
	HazardAcidFog HazardKind = iota
	HazardWildfire
	HazardFlashFlood
	HazardWolfMutts
	HazardTrackerJackers
)

var hazardNames = [...]string{
	HazardAcidFog:        "ACID FOG",
	HazardWildfire:       "WILDFIRE",
	HazardFlashFlood:     "FLASH FLOOD",
	HazardWolfMutts:      "WOLF MUTTS",
	HazardTrackerJackers: "TRACKER JACKERS",
}

func (k HazardKind) String() string {
	if int(k) < len(hazardNames) {
		return hazardNames[k]
	}
	return "UNKNOWN"
}

// MarshalText encodes the hazard by name.
func (k HazardKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a hazard name.
func (k *HazardKind) UnmarshalText(text []byte) error {
	i := slices.Index(hazardNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown hazard %q", text)
	}
	*k = HazardKind(i)
	return nil
}

// ActiveHazard is the hazard currently in play. At most one exists.
type ActiveHazard struct {
	Kind        HazardKind    `json:"kind"`
	Description string        `json:"description"`
	Biomes      []world.Biome `json:"biomes"`
	Damage      float64       `json:"damage"`
}

// Affects reports whether tributes standing in the biome are hit.
func (h *ActiveHazard) Affects(b world.Biome) bool {
	return h != nil && slices.Contains(h.Biomes, b)
}

// Hazards is the gamemaker's catalog, in selection order.
var Hazards = []ActiveHazard{
	{
		Kind:        HazardAcidFog,
		Description: "A corrosive fog rolls in. It burns the skin and lungs.",
		Biomes:      []world.Biome{world.BiomeForest, world.BiomeMeadow, world.BiomeRiver, world.BiomeMountain, world.BiomeCornucopia, world.BiomeSwamp},
		Damage:      5,
	},
	{
		Kind:        HazardWildfire,
		Description: "A wall of fire sweeps through the arena.",
		Biomes:      []world.Biome{world.BiomeForest, world.BiomeMeadow, world.BiomeDesert, world.BiomeRuins, world.BiomeVolcano},
		Damage:      25,
	},
	{
		Kind:        HazardFlashFlood,
		Description: "Torrential rain causes massive flooding.",
		Biomes:      []world.Biome{world.BiomeRiver, world.BiomeSwamp, world.BiomeTundra},
		Damage:      30,
	},
	{
		Kind:        HazardWolfMutts,
		Description: "Engineered Wolf Mutts are hunting.",
		Biomes:      []world.Biome{world.BiomeForest, world.BiomeMeadow, world.BiomeCornucopia, world.BiomeTundra, world.BiomeDesert},
		Damage:      40,
	},
	{
		Kind:        HazardTrackerJackers,
		Description: "A nest of Tracker Jackers has been disturbed.",
		Biomes:      []world.Biome{world.BiomeForest, world.BiomeRuins, world.BiomeSwamp},
		Damage:      15,
	},
}

// rollHazard returns a fresh copy of a random hazard, or nil.
func rollHazard(rng *rand.Rand) *ActiveHazard {
	if rng.Float64() >= HazardChance {
		return nil
	}
	h := Hazards[rng.Intn(len(Hazards))]
	h.Biomes = slices.Clone(h.Biomes)
	return &h
}
