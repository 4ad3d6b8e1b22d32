// Package world provides the arena hex grid, biomes, traps and generation.
// Uses axial coordinates (q, r) for the hex grid.
package world

import "fmt"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// Origin is the arena center, home of the Cornucopia.
var Origin = HexCoord{}

// Unplaced marks a tribute that has not yet been put on the grid.
var Unplaced = HexCoord{Q: -99, R: -99}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

func (h HexCoord) String() string {
	return fmt.Sprintf("(%d, %d)", h.Q, h.R)
}

// Biome categories for arena tiles.
type Biome uint8

const (
	BiomeMeadow     Biome = iota // Filler; every tile starts here
	BiomeCornucopia              // Fixed origin landmark, weapon cache
	BiomeForest                  // Food, cover, shelter
	BiomeRiver                   // Free water
	BiomeMountain                // Cover, costly to climb
	BiomeDesert
	BiomeSwamp // Water, costly to cross
	BiomeRuins // Salvage, shelter
	BiomeTundra
	BiomeVolcano
)

var biomeNames = [...]string{
	BiomeMeadow:     "Meadow",
	BiomeCornucopia: "Cornucopia",
	BiomeForest:     "Forest",
	BiomeRiver:      "River",
	BiomeMountain:   "Mountain",
	BiomeDesert:     "Desert",
	BiomeSwamp:      "Swamp",
	BiomeRuins:      "Ruins",
	BiomeTundra:     "Tundra",
	BiomeVolcano:    "Volcano",
}

// String returns a human-readable name for a biome.
func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "Unknown"
}

// MarshalText encodes the biome by name.
func (b Biome) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// UnmarshalText decodes a biome name.
func (b *Biome) UnmarshalText(text []byte) error {
	for i, name := range biomeNames {
		if name == string(text) {
			*b = Biome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown biome %q", text)
}

// Trap is a hidden device left on a tile. Consumed when triggered.
type Trap struct {
	OwnerID     uint64  `json:"owner_id"`
	Damage      float64 `json:"damage"`
	Description string  `json:"description"`
	Hidden      bool    `json:"hidden"`
}

// Tile represents a single hex in the arena.
// Shape is fixed after generation; only Trap changes during play.
type Tile struct {
	Coord HexCoord `json:"coord"`
	Biome Biome    `json:"biome"`

	// Relief from world generation, 0.0 (lowland) to 1.0 (peak). Presentation only.
	Elevation float64 `json:"elevation"`

	Trap *Trap `json:"trap,omitempty"`
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
