// Package weather provides the arena's weather as a Markov chain over six
// conditions. Each condition maps to simulation modifiers.
package weather

import (
	"fmt"
	"math/rand"
	"slices"
)

// Kind is one arena weather condition.
type Kind uint8

const (
	Clear Kind = iota
	Rain
	Thunderstorm
	Snowstorm
	DenseFog
	Heatwave
	numKinds
)

var kindNames = [numKinds]string{
	Clear:        "Clear",
	Rain:         "Rain",
	Thunderstorm: "Thunderstorm",
	Snowstorm:    "Snowstorm",
	DenseFog:     "Dense Fog",
	Heatwave:     "Heatwave",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "Unknown"
}

// MarshalText encodes the condition by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a condition name.
func (k *Kind) UnmarshalText(text []byte) error {
	i := slices.Index(kindNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown weather %q", text)
	}
	*k = Kind(i)
	return nil
}

// All returns every condition in declaration order.
func All() []Kind {
	out := make([]Kind, numKinds)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Modifiers scale the simulation while a condition is active.
type Modifiers struct {
	StaminaCost float64 // Multiplier on movement stamina cost
	ThirstMod   float64 // Multiplier on thirst depletion
	HungerMod   float64 // Multiplier on hunger depletion
	Visibility  float64 // 0 (blind) to 1 (clear); not read by any decision yet
	Description string
}

var modifiers = [numKinds]Modifiers{
	Clear:        {StaminaCost: 1.0, ThirstMod: 1.0, HungerMod: 1.0, Visibility: 1.0, Description: "Skies are clear. Visibility is perfect."},
	Rain:         {StaminaCost: 1.8, ThirstMod: 0.8, HungerMod: 1.2, Visibility: 0.7, Description: "Rain makes the ground slick and cold."},
	Thunderstorm: {StaminaCost: 3.0, ThirstMod: 0.6, HungerMod: 1.3, Visibility: 0.4, Description: "Heavy thunder and chaos. High stamina drain."},
	Snowstorm:    {StaminaCost: 2.5, ThirstMod: 0.9, HungerMod: 2.0, Visibility: 0.5, Description: "Freezing temperatures. Extreme cold risk."},
	DenseFog:     {StaminaCost: 1.2, ThirstMod: 1.0, HungerMod: 1.0, Visibility: 0.1, Description: "Dense fog obscures all movement."},
	Heatwave:     {StaminaCost: 2.2, ThirstMod: 3.0, HungerMod: 0.7, Visibility: 0.9, Description: "Blistering heat. Water is crucial."},
}

// For returns the modifiers of a condition. Unknown values get Clear's.
func For(k Kind) Modifiers {
	if k < numKinds {
		return modifiers[k]
	}
	return modifiers[Clear]
}

// Branch is one outgoing edge of the transition table, weighted in percent.
type Branch struct {
	To     Kind
	Weight int
}

// Transitions lists each condition's successors. Weights per row sum to 100.
var Transitions = [numKinds][]Branch{
	Clear:        {{Clear, 50}, {Rain, 25}, {Heatwave, 10}, {DenseFog, 10}, {Snowstorm, 5}},
	Rain:         {{Rain, 40}, {Thunderstorm, 20}, {Clear, 25}, {DenseFog, 15}},
	Thunderstorm: {{Thunderstorm, 30}, {Rain, 40}, {Clear, 30}},
	Snowstorm:    {{Snowstorm, 40}, {DenseFog, 20}, {Rain, 40}},
	DenseFog:     {{DenseFog, 30}, {Rain, 30}, {Clear, 40}},
	Heatwave:     {{Heatwave, 40}, {Clear, 30}, {Thunderstorm, 30}},
}

// Next rolls a percentile and walks the current condition's row.
func Next(current Kind, rng *rand.Rand) Kind {
	if current >= numKinds {
		return Clear
	}
	roll := rng.Intn(100)
	for _, b := range Transitions[current] {
		if roll < b.Weight {
			return b.To
		}
		roll -= b.Weight
	}
	return current
}

// Cold reports whether the condition can cause hypothermia. Rain only
// chills at night.
func (k Kind) Cold(night bool) bool {
	return k == Snowstorm || (k == Rain && night)
}

// idleLines are flavour lines for a tribute alone under each condition.
var idleLines = [numKinds][]string{
	Clear:        {"basks in the sunlight.", "watches a cloud shaped like a mutt.", "enjoys the gentle breeze."},
	Rain:         {"catches raindrops in their mouth.", "shivers uncontrollably.", "struggles to find dry wood.", "slips in the mud."},
	Thunderstorm: {"winces at a thunderclap.", "seeks shelter from the lightning.", "is soaked to the bone."},
	Snowstorm:    {"tries to warm their freezing hands.", "watches their breath mist in the air.", "shakes snow off their gear."},
	DenseFog:     {"can barely see their own hands.", "hears strange noises in the mist.", "feels like they are being watched."},
	Heatwave:     {"sweats profusely.", "hallucinates an oasis.", "feels faint from the heat."},
}

// IdleLine picks a flavour line for the condition.
func IdleLine(k Kind, rng *rand.Rand) string {
	if k >= numKinds {
		k = Clear
	}
	lines := idleLines[k]
	return lines[rng.Intn(len(lines))]
}
