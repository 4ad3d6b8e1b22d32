package world

import "fmt"

// Map holds the arena tiles in generation order, indexed by coordinate.
// Tiles are stored by value; Clone yields a fully independent copy.
type Map struct {
	Tiles  []Tile `json:"tiles"`
	Radius int    `json:"radius"`

	index map[HexCoord]int
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Tiles:  make([]Tile, 0, 3*radius*(radius+1)+1),
		Radius: radius,
		index:  make(map[HexCoord]int),
	}
}

// Get returns the tile at the given coordinate, or nil if off the grid.
// The pointer aliases the map's storage.
func (m *Map) Get(coord HexCoord) *Tile {
	m.ensureIndex()
	i, ok := m.index[coord]
	if !ok {
		return nil
	}
	return &m.Tiles[i]
}

// Add appends a tile. Coordinates must be unique.
func (m *Map) Add(t Tile) {
	m.ensureIndex()
	m.index[t.Coord] = len(m.Tiles)
	m.Tiles = append(m.Tiles, t)
}

// Contains reports whether the coordinate is a tile on the grid.
func (m *Map) Contains(coord HexCoord) bool {
	m.ensureIndex()
	_, ok := m.index[coord]
	return ok
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return Distance(Origin, coord) <= m.Radius
}

// Neighbors returns the adjacent coordinates that exist on the grid.
func (m *Map) Neighbors(coord HexCoord) []HexCoord {
	out := make([]HexCoord, 0, 6)
	for _, n := range coord.Neighbors() {
		if m.Contains(n) {
			out = append(out, n)
		}
	}
	return out
}

// Ring returns the tiles at exactly distance d from the origin, in storage order.
func (m *Map) Ring(d int) []HexCoord {
	var out []HexCoord
	for _, t := range m.Tiles {
		if Distance(Origin, t.Coord) == d {
			out = append(out, t.Coord)
		}
	}
	return out
}

// HexCount returns the total number of hexes in the map.
func (m *Map) HexCount() int {
	return len(m.Tiles)
}

// Clone returns a deep copy, including traps.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	c := &Map{
		Tiles:  make([]Tile, len(m.Tiles)),
		Radius: m.Radius,
	}
	copy(c.Tiles, m.Tiles)
	for i := range c.Tiles {
		if tr := c.Tiles[i].Trap; tr != nil {
			cp := *tr
			c.Tiles[i].Trap = &cp
		}
	}
	return c
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, hexes=%d)", m.Radius, m.HexCount())
}

// ensureIndex rebuilds the coordinate index after decoding or cloning.
func (m *Map) ensureIndex() {
	if m.index != nil && len(m.index) == len(m.Tiles) {
		return
	}
	m.index = make(map[HexCoord]int, len(m.Tiles))
	for i, t := range m.Tiles {
		m.index[t.Coord] = i
	}
}
