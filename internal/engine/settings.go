package engine

import "fmt"

// Lethality scales all combat damage.
type Lethality string

const (
	LethalityLow    Lethality = "low"
	LethalityMedium Lethality = "medium"
	LethalityHigh   Lethality = "high"
)

// Multiplier returns the damage multiplier for the tier.
func (l Lethality) Multiplier() float64 {
	switch l {
	case LethalityLow:
		return 0.6
	case LethalityHigh:
		return 1.5
	default:
		return 1.0
	}
}

// Valid reports whether l is a known tier.
func (l Lethality) Valid() bool {
	return l == LethalityLow || l == LethalityMedium || l == LethalityHigh
}

// Scarcity is the resource tier. Accepted and recorded; no mechanic reads it yet.
type Scarcity string

const (
	ScarcityAbundant   Scarcity = "abundant"
	ScarcityNormal     Scarcity = "normal"
	ScarcityStarvation Scarcity = "starvation"
)

// Valid reports whether s is a known tier.
func (s Scarcity) Valid() bool {
	return s == ScarcityAbundant || s == ScarcityNormal || s == ScarcityStarvation
}

// Settings configure one run. GameSpeed is read only by the driver;
// BloodbathDeaths is descriptive.
type Settings struct {
	Lethality           Lethality `json:"lethality" yaml:"lethality"`
	ResourceScarcity    Scarcity  `json:"resource_scarcity" yaml:"resource_scarcity"`
	MapSize             int       `json:"map_size" yaml:"map_size"`
	TributeCount        int       `json:"tribute_count" yaml:"tribute_count"`
	GameSpeed           int       `json:"game_speed_ms" yaml:"game_speed_ms"`
	FinaleDay           int       `json:"finale_day" yaml:"finale_day"`
	BloodbathDeaths     int       `json:"bloodbath_deaths" yaml:"bloodbath_deaths"`
	UseCareerAlliance   bool      `json:"use_career_alliance" yaml:"use_career_alliance"`
	UseAges             bool      `json:"use_ages" yaml:"use_ages"`
	AutoContinueOnDeath bool      `json:"auto_continue_on_death" yaml:"auto_continue_on_death"`
}

// Validate checks that the settings describe a playable game.
func (s Settings) Validate() error {
	if !s.Lethality.Valid() {
		return fmt.Errorf("unknown lethality %q", s.Lethality)
	}
	if !s.ResourceScarcity.Valid() {
		return fmt.Errorf("unknown resource scarcity %q", s.ResourceScarcity)
	}
	if s.MapSize < 1 {
		return fmt.Errorf("map size %d: must be at least 1", s.MapSize)
	}
	if s.TributeCount < 2 {
		return fmt.Errorf("tribute count %d: need at least 2", s.TributeCount)
	}
	if s.FinaleDay < 1 {
		return fmt.Errorf("finale day %d: must be at least 1", s.FinaleDay)
	}
	if s.GameSpeed < 0 {
		return fmt.Errorf("game speed %dms: must not be negative", s.GameSpeed)
	}
	if s.BloodbathDeaths < 0 {
		return fmt.Errorf("bloodbath deaths %d: must not be negative", s.BloodbathDeaths)
	}
	return nil
}
