package engine

import (
	"log/slog"
	"math/rand"

	"github.com/talgya/tribute-arena/internal/weather"
)

// AdvanceGamePhase performs one phase transition and runs the step:
// ticks, movement, then encounters on shared tiles. A finished game is
// returned as is.
func AdvanceGamePhase(s *GameState, rng *rand.Rand) *GameState {
	if s.Phase == PhaseGameOver {
		return s
	}
	n := s.Clone()
	t := &turn{s: n, rng: rng}

	switch s.Phase {
	case PhaseSetup:
		n.Phase = PhaseBloodbath
		t.logf(LogGamemaker, "THE GAMES HAVE BEGUN!")
		t.logf(LogWeather, "Weather is %s", n.Weather)
	case PhaseBloodbath:
		n.Phase = PhaseDay
		n.Hazard = nil
	case PhaseDay:
		n.Phase = PhaseNight
		n.Hazard = nil
		n.Weather = weather.Next(n.Weather, rng)
		t.logf(LogWeather, "Weather changed to %s", n.Weather)
	case PhaseNight:
		n.Phase = PhaseDay
		n.Day++
		n.Hazard = rollHazard(rng)
		if n.Hazard != nil {
			t.logf(LogGamemaker, "GAMEMAKER EVENT: %s", n.Hazard.Kind)
			t.logf(LogHazard, "%s", n.Hazard.Description)
		}
		n.Weather = weather.Next(n.Weather, rng)
		t.logf(LogWeather, "Weather changed to %s", n.Weather)
	}

	for _, tr := range n.Tributes {
		t.tick(tr)
	}

	finale := n.Finale()
	for _, tr := range n.Tributes {
		if tr.Alive {
			t.move(tr, finale)
		}
	}

	t.encounters()

	deaths := len(n.Deceased) - len(s.Deceased)
	survivors := n.Living()
	if len(survivors) <= 1 {
		t.logf(LogGamemaker, "--- GAME OVER ---")
		if len(survivors) == 1 {
			w := survivors[0]
			n.WinnerID = w.ID
			t.logf(LogGamemaker, "%s of District %d is the victor of the games!", w.Name, w.District)
		} else {
			t.logf(LogGamemaker, "No tribute survived the arena.")
		}
		n.Phase = PhaseGameOver
	}

	slog.Debug("phase advanced",
		"day", n.Day,
		"phase", n.Phase,
		"weather", n.Weather,
		"alive", len(survivors),
		"deaths", deaths,
	)
	return n
}
