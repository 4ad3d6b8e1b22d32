// Arena generation: seeded biome region growth over a meadow grid,
// plus a layered simplex relief map for presentation.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// BiomeSeed describes how one biome claims territory during generation.
type BiomeSeed struct {
	Biome  Biome
	Factor float64 // Seed count = max(1, floor(radius * Factor)); 0 means exactly one
	Spread float64 // Probability each meadow neighbor joins the region
}

// BiomeSeeds is applied in order. Later biomes only claim tiles still at meadow.
var BiomeSeeds = []BiomeSeed{
	{Biome: BiomeForest, Factor: 1.2, Spread: 0.8},
	{Biome: BiomeMountain, Factor: 0.8, Spread: 0.7},
	{Biome: BiomeRiver, Factor: 0.6, Spread: 0.9},
	{Biome: BiomeSwamp, Factor: 0.5, Spread: 0.7},
	{Biome: BiomeDesert, Factor: 0.5, Spread: 0.7},
	{Biome: BiomeRuins, Factor: 0.4, Spread: 0.6},
	{Biome: BiomeTundra, Factor: 0.4, Spread: 0.6},
	{Biome: BiomeVolcano, Factor: 0, Spread: 0.5},
}

// Region size cap bounds, inclusive.
const (
	minRegionSize = 3
	maxRegionSize = 8
)

// SeedCount returns how many regions a biome seeds on an arena of the given radius.
func (s BiomeSeed) SeedCount(radius int) int {
	if s.Factor == 0 {
		return 1
	}
	return max(1, int(math.Floor(float64(radius)*s.Factor)))
}

// Generate creates an arena of the given radius (clamped to at least 1).
// All randomness is drawn from rng.
func Generate(radius int, rng *rand.Rand) *Map {
	if radius < 1 {
		radius = 1
	}

	m := NewMap(radius)
	for q := -radius; q <= radius; q++ {
		r1 := max(-radius, -q-radius)
		r2 := min(radius, -q+radius)
		for r := r1; r <= r2; r++ {
			m.Add(Tile{Coord: HexCoord{Q: q, R: r}, Biome: BiomeMeadow})
		}
	}

	m.Get(Origin).Biome = BiomeCornucopia

	for _, spec := range BiomeSeeds {
		for i := 0; i < spec.SeedCount(radius); i++ {
			if !growRegion(m, spec, rng) {
				break
			}
		}
	}

	paintElevation(m, rng.Int63())
	return m
}

// growRegion recolors one random meadow tile and flood-fills outward from it.
// Returns false when no meadow remains.
func growRegion(m *Map, spec BiomeSeed, rng *rand.Rand) bool {
	var candidates []int
	for i, t := range m.Tiles {
		if t.Biome == BiomeMeadow {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	seed := &m.Tiles[candidates[rng.Intn(len(candidates))]]
	seed.Biome = spec.Biome

	frontier := []HexCoord{seed.Coord}
	size := 0
	maxSize := minRegionSize + rng.Intn(maxRegionSize-minRegionSize+1)

	for len(frontier) > 0 && size < maxSize {
		current := frontier[0]
		frontier = frontier[1:]

		for _, n := range m.Neighbors(current) {
			t := m.Get(n)
			if t.Biome != BiomeMeadow {
				continue
			}
			if rng.Float64() < spec.Spread {
				t.Biome = spec.Biome
				frontier = append(frontier, n)
				size++
			}
		}
	}
	return true
}

// paintElevation samples multi-octave simplex noise for each tile.
// Mountains and volcanoes are lifted, rivers and swamps sink.
func paintElevation(m *Map, seed int64) {
	noise := opensimplex.NewNormalized(seed)
	for i := range m.Tiles {
		t := &m.Tiles[i]
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		x := float64(t.Coord.Q) + float64(t.Coord.R)*0.5
		y := float64(t.Coord.R) * math.Sqrt(3.0) / 2.0

		elev := octaveNoise(noise, x, y, 3, 0.15, 0.5)
		switch t.Biome {
		case BiomeMountain, BiomeVolcano:
			elev = 0.6 + elev*0.4
		case BiomeRiver, BiomeSwamp:
			elev *= 0.4
		}
		t.Elevation = math.Max(0, math.Min(1, elev))
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// BiomeCounts returns a summary of biome distribution.
func BiomeCounts(m *Map) map[Biome]int {
	counts := make(map[Biome]int)
	for _, t := range m.Tiles {
		counts[t.Biome]++
	}
	return counts
}

// StartPositions returns the launch tiles for count tributes: the ring at
// distance radius-1, assigned round-robin. Falls back to the first tile.
func StartPositions(m *Map, count int) []HexCoord {
	ring := m.Ring(m.Radius - 1)
	out := make([]HexCoord, count)
	for i := range out {
		if len(ring) > 0 {
			out[i] = ring[i%len(ring)]
		} else {
			out[i] = m.Tiles[0].Coord
		}
	}
	return out
}
