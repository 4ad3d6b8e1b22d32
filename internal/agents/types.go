// Package agents provides the tribute data model: attributes, vitals,
// status effects, inventory and per-pair trust.
package agents

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/talgya/tribute-arena/internal/world"
)

// AgentID is a unique identifier for a tribute. Zero means "nobody".
type AgentID uint64

// Gender alternates as tributes are drawn from each district.
type Gender uint8

const (
	GenderMale   Gender = 0
	GenderFemale Gender = 1
)

func (g Gender) String() string {
	if g == GenderFemale {
		return "F"
	}
	return "M"
}

// District is the tribute's home, 1 through 12.
type District uint8

// NumDistricts is the fixed number of districts tributes are drawn from.
const NumDistricts = 12

// CareerDistricts train their tributes for the games.
var CareerDistricts = []District{1, 2, 4}

// IsCareer reports whether the district trains tributes.
func (d District) IsCareer() bool {
	return slices.Contains(CareerDistricts, d)
}

func (d District) String() string {
	return fmt.Sprintf("D%d", d)
}

// Stats are the five fixed attributes rolled at spawn.
type Stats struct {
	Strength     int `json:"strength"`
	Speed        int `json:"speed"`
	Constitution int `json:"constitution"`
	Intellect    int `json:"intellect"`
	Aggression   int `json:"aggression"`
}

// Activity classifies what the tribute did most recently.
type Activity uint8

const (
	ActivityWaiting Activity = iota
	ActivityMoved
	ActivityResting
	ActivityIdle
	ActivityBonding
	ActivityAllying
	ActivityFighting
	ActivityWatching
	ActivityTrapped
	ActivityFallen
)

var activityNames = [...]string{
	ActivityWaiting:  "waiting",
	ActivityMoved:    "moved",
	ActivityResting:  "resting",
	ActivityIdle:     "idle",
	ActivityBonding:  "bonding",
	ActivityAllying:  "allying",
	ActivityFighting: "fighting",
	ActivityWatching: "watching",
	ActivityTrapped:  "trapped",
	ActivityFallen:   "fallen",
}

func (a Activity) String() string {
	if int(a) < len(activityNames) {
		return activityNames[a]
	}
	return "unknown"
}

// MarshalText encodes the activity by name.
func (a Activity) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText decodes an activity name.
func (a *Activity) UnmarshalText(text []byte) error {
	i := slices.Index(activityNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown activity %q", text)
	}
	*a = Activity(i)
	return nil
}

// Tribute is one competitor in the arena.
// A dead tribute is frozen: no vitals changes, no movement, no new items.
type Tribute struct {
	ID       AgentID  `json:"id"`
	Name     string   `json:"name"`
	District District `json:"district"`
	Gender   Gender   `json:"gender"`
	Age      int      `json:"age"`
	Stats    Stats    `json:"stats"`

	// Vitals, each clamped to [0, 100]. Hunger and thirst are fullness (100 = sated).
	Health  float64 `json:"health"`
	Hunger  float64 `json:"hunger"`
	Thirst  float64 `json:"thirst"`
	Stamina float64 `json:"stamina"`

	Alive     bool   `json:"alive"`
	Inventory []Item `json:"inventory"`
	Kills     int    `json:"kills"`
	Hype      int    `json:"hype"`

	Location     world.HexCoord `json:"location"`
	PrevLocation world.HexCoord `json:"prev_location"`

	Status     StatusSet `json:"status"`
	Activity   Activity  `json:"activity"`
	LastAction string    `json:"last_action"`

	Relationships map[AgentID]Relationship `json:"relationships"`

	CauseOfDeath   string  `json:"cause_of_death,omitempty"`
	LastAttackerID AgentID `json:"last_attacker_id,omitempty"`
}

// Clone returns a deep copy. Items and relationships are copied by value.
func (t *Tribute) Clone() *Tribute {
	c := *t
	c.Inventory = slices.Clone(t.Inventory)
	c.Relationships = maps.Clone(t.Relationships)
	if c.Relationships == nil {
		c.Relationships = make(map[AgentID]Relationship)
	}
	return &c
}

// Relationship returns the tribute's view of another, Neutral/0 if never met.
func (t *Tribute) Relationship(other AgentID) Relationship {
	return t.Relationships[other]
}

// StatusEffect is an ongoing condition applied each tick.
type StatusEffect uint8

const (
	StatusBleeding StatusEffect = iota
	StatusPoisoned
	StatusHypothermia
	StatusHeatstroke
	numStatusEffects
)

var statusNames = [numStatusEffects]string{
	StatusBleeding:    "Bleeding",
	StatusPoisoned:    "Poisoned",
	StatusHypothermia: "Hypothermia",
	StatusHeatstroke:  "Heatstroke",
}

func (s StatusEffect) String() string {
	if s < numStatusEffects {
		return statusNames[s]
	}
	return "Unknown"
}

// StatusSet is a bitmask of active status effects.
type StatusSet uint8

// Has reports whether the effect is active.
func (s StatusSet) Has(e StatusEffect) bool { return s&(1<<e) != 0 }

// With returns the set with the effect added.
func (s StatusSet) With(e StatusEffect) StatusSet { return s | 1<<e }

// Without returns the set with the effect removed.
func (s StatusSet) Without(e StatusEffect) StatusSet { return s &^ (1 << e) }

// List returns the active effects in declaration order.
func (s StatusSet) List() []StatusEffect {
	var out []StatusEffect
	for e := StatusEffect(0); e < numStatusEffects; e++ {
		if s.Has(e) {
			out = append(out, e)
		}
	}
	return out
}

// MarshalJSON encodes the set as a list of effect names.
func (s StatusSet) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, numStatusEffects)
	for _, e := range s.List() {
		names = append(names, e.String())
	}
	return json.Marshal(names)
}

// UnmarshalJSON decodes a list of effect names.
func (s *StatusSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	var set StatusSet
	for _, n := range names {
		i := slices.Index(statusNames[:], n)
		if i < 0 {
			return fmt.Errorf("unknown status effect %q", n)
		}
		set = set.With(StatusEffect(i))
	}
	*s = set
	return nil
}
