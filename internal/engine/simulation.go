// Package engine runs the arena as a pure step function: every entry point
// takes a snapshot and returns a new, independent one.
package engine

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/weather"
	"github.com/talgya/tribute-arena/internal/world"
)

// Phase is a state of the game's state machine.
type Phase uint8

const (
	PhaseSetup Phase = iota
	PhaseBloodbath
	PhaseDay
	PhaseNight
	PhaseGameOver
)

var phaseNames = [...]string{
	PhaseSetup:     "SETUP",
	PhaseBloodbath: "BLOODBATH",
	PhaseDay:       "DAY",
	PhaseNight:     "NIGHT",
	PhaseGameOver:  "GAME_OVER",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "UNKNOWN"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(text []byte) error {
	i := slices.Index(phaseNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown phase %q", text)
	}
	*p = Phase(i)
	return nil
}

// Initial trust seeded at game start.
const (
	DistrictTrust = 65 // Tributes from the same district
	CareerTrust   = 25 // Tributes from different career districts, when enabled
)

// GameState is one snapshot of the game. Nothing outside this package
// mutates a snapshot; every entry point returns a fresh one.
type GameState struct {
	Day      int               `json:"day"`
	Phase    Phase             `json:"phase"`
	Tributes []*agents.Tribute `json:"tributes"`
	Map      *world.Map        `json:"map"`
	Logs     []LogEntry        `json:"logs"`
	Deceased []agents.AgentID  `json:"deceased"` // Drained by the consumer
	WinnerID agents.AgentID    `json:"winner_id,omitempty"`
	Settings Settings          `json:"settings"`
	Weather  weather.Kind      `json:"weather"`
	Hazard   *ActiveHazard     `json:"hazard,omitempty"`
}

// InitializeGame builds tributes, the arena, initial trust and launch
// placements. The game starts in SETUP on day 1 under clear skies.
func InitializeGame(cfg Settings, rng *rand.Rand) *GameState {
	tributes := agents.NewSpawner(rng).Spawn(cfg.TributeCount, cfg.UseAges)
	m := world.Generate(cfg.MapSize, rng)

	seedTrust(tributes, cfg.UseCareerAlliance)

	starts := world.StartPositions(m, len(tributes))
	for i, t := range tributes {
		t.Location = starts[i]
		t.PrevLocation = starts[i]
	}

	return &GameState{
		Day:      1,
		Phase:    PhaseSetup,
		Tributes: tributes,
		Map:      m,
		Logs:     []LogEntry{},
		Deceased: []agents.AgentID{},
		Settings: cfg,
		Weather:  weather.Clear,
	}
}

// Clone returns a deep copy. Tributes, tiles, traps, items and the hazard
// are all copied; only immutable log entries are shared by value.
func (s *GameState) Clone() *GameState {
	c := *s
	c.Tributes = make([]*agents.Tribute, len(s.Tributes))
	for i, t := range s.Tributes {
		c.Tributes[i] = t.Clone()
	}
	if s.Map != nil {
		c.Map = s.Map.Clone()
	}
	c.Logs = slices.Clone(s.Logs)
	if c.Logs == nil {
		c.Logs = []LogEntry{}
	}
	c.Deceased = slices.Clone(s.Deceased)
	if c.Deceased == nil {
		c.Deceased = []agents.AgentID{}
	}
	if s.Hazard != nil {
		h := *s.Hazard
		h.Biomes = slices.Clone(s.Hazard.Biomes)
		c.Hazard = &h
	}
	return &c
}

// Tribute returns the tribute with the ID, or nil.
func (s *GameState) Tribute(id agents.AgentID) *agents.Tribute {
	for _, t := range s.Tributes {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Living returns the tributes still alive, in roster order.
func (s *GameState) Living() []*agents.Tribute {
	var out []*agents.Tribute
	for _, t := range s.Tributes {
		if t.Alive {
			out = append(out, t)
		}
	}
	return out
}

// AliveCount returns the number of living tributes.
func (s *GameState) AliveCount() int {
	n := 0
	for _, t := range s.Tributes {
		if t.Alive {
			n++
		}
	}
	return n
}

// Winner returns the victor, or nil if the game is running or nobody survived.
func (s *GameState) Winner() *agents.Tribute {
	if s.WinnerID == 0 {
		return nil
	}
	return s.Tribute(s.WinnerID)
}

// Finale reports whether tributes are being drawn to the center.
func (s *GameState) Finale() bool {
	return s.Day >= s.Settings.FinaleDay
}
