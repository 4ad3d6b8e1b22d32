package engine

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/agents"
)

// LogKind tags a log entry for presentation.
type LogKind uint8

const (
	LogInfo LogKind = iota
	LogCombat
	LogDeath
	LogDeathSummary
	LogGamemaker
	LogHazard
	LogSponsor
	LogCrafting
	LogWeather
	LogStatus
	LogTrap
	LogAlliance
	LogFlee
	LogRest
)

var logKindNames = [...]string{
	LogInfo:         "info",
	LogCombat:       "combat",
	LogDeath:        "death",
	LogDeathSummary: "death-summary",
	LogGamemaker:    "gamemaker",
	LogHazard:       "hazard",
	LogSponsor:      "sponsor",
	LogCrafting:     "crafting",
	LogWeather:      "weather",
	LogStatus:       "status",
	LogTrap:         "trap",
	LogAlliance:     "alliance",
	LogFlee:         "flee",
	LogRest:         "rest",
}

func (k LogKind) String() string {
	if int(k) < len(logKindNames) {
		return logKindNames[k]
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k LogKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind name.
func (k *LogKind) UnmarshalText(text []byte) error {
	i := slices.Index(logKindNames[:], string(text))
	if i < 0 {
		return fmt.Errorf("unknown log kind %q", text)
	}
	*k = LogKind(i)
	return nil
}

// LogEntry is one line of the game chronicle. Entries are append-only.
type LogEntry struct {
	ID      string  `json:"id"`
	Day     int     `json:"day"`
	Phase   Phase   `json:"phase"`
	Message string  `json:"message"`
	Kind    LogKind `json:"kind"`
}

// turn carries the snapshot being built by one engine call and the
// random source driving it.
type turn struct {
	s   *GameState
	rng *rand.Rand
}

// logf appends an entry stamped with the snapshot's current day and phase.
// IDs are drawn from the injected source so replays match byte for byte.
func (t *turn) logf(kind LogKind, format string, args ...any) {
	id, err := uuid.NewRandomFromReader(t.rng)
	if err != nil {
		id = uuid.Nil
	}
	t.s.Logs = append(t.s.Logs, LogEntry{
		ID:      id.String(),
		Day:     t.s.Day,
		Phase:   t.s.Phase,
		Message: fmt.Sprintf(format, args...),
		Kind:    kind,
	})
}

// pick returns a uniformly chosen line.
func (t *turn) pick(lines []string) string {
	return lines[t.rng.Intn(len(lines))]
}

// eliminate marks a tribute dead, records the cause once, queues it for
// the consumer and writes its summary line.
func (t *turn) eliminate(tr *agents.Tribute, cause string) {
	tr.Alive = false
	tr.Health = agents.VitalMin
	if tr.CauseOfDeath == "" {
		tr.CauseOfDeath = cause
	}
	tr.Activity = agents.ActivityFallen
	t.s.Deceased = append(t.s.Deceased, tr.ID)
	t.logf(LogDeathSummary, "%s %s ELIMINATED // Kills: %d // Hype: %d // Cause: %s",
		tr.District, tr.Name, tr.Kills, tr.Hype, tr.CauseOfDeath)
}

var idleLines = []string{
	"picks flowers.",
	"practices their weapon handling.",
	"cries silently.",
	"thinks about home.",
	"hums a song from their district.",
	"climbs a tree to get a better view.",
	"sharpens a stick.",
	"tries to sleep but can't.",
	"looks at the sky.",
	"searches for clean water.",
	"camouflages themselves with mud.",
	"hears a cannon fire in the distance.",
	"inspects a strange insect.",
	"whispers a prayer.",
	"rearranges their inventory.",
	"hallucinates a loved one.",
	"trips over a root.",
	"watches a mockingjay fly by.",
	"tastes the air.",
	"checks their pulse.",
	"curls into a ball.",
	"stares blankly at the horizon.",
}

var bondingLines = []string{
	"shares a story about their family with",
	"agrees to take first watch for",
	"shares food with",
	"promises to protect",
	"huddles for warmth with",
	"discusses strategy with",
	"holds hands with",
	"treats a small wound for",
	"jokes about the Capitol with",
	"teaches a survival trick to",
}

var betrayalLines = []string{
	"waited for the perfect moment to strike",
	"shoved",
	"decided they didn't need",
	"stabbed",
	"broke the alliance with",
	"used as bait",
	"stole supplies from",
	"pushed into a trap",
}
