package gamemaker

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/talgya/tribute-arena/internal/agents"
)

const (
	maxRecords   = 20
	pairCooldown = 3 // cycles before the same pair can be forced again
)

// CycleRecord captures what happened in a single gamemaker cycle.
type CycleRecord struct {
	Step      int            `json:"step"`
	Day       int            `json:"day"`
	Alive     int            `json:"alive"`
	Tension   Tension        `json:"tension"`
	Action    string         `json:"action"`
	ActorID   agents.AgentID `json:"actor_id,omitempty"`
	TargetID  agents.AgentID `json:"target_id,omitempty"`
	Rationale string         `json:"rationale,omitempty"`
}

// CycleMemory manages a ring of recent cycle records.
type CycleMemory struct {
	Records []CycleRecord `json:"records"`
}

// LoadMemory reads a memory file. A missing or empty path yields empty memory.
func LoadMemory(path string) *CycleMemory {
	if path == "" {
		return &CycleMemory{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("gamemaker memory unreadable, starting fresh", "path", path, "error", err)
		}
		return &CycleMemory{}
	}
	var mem CycleMemory
	if err := json.Unmarshal(data, &mem); err != nil {
		slog.Warn("gamemaker memory corrupted, starting fresh", "error", err)
		return &CycleMemory{}
	}
	return &mem
}

// Save writes the memory to path. An empty path keeps memory in-process only.
func (m *CycleMemory) Save(path string) error {
	if path == "" {
		return nil
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal gamemaker memory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write gamemaker memory: %w", err)
	}
	return nil
}

// Record adds a cycle record, trimming to maxRecords.
func (m *CycleMemory) Record(r CycleRecord) {
	m.Records = append(m.Records, r)
	if len(m.Records) > maxRecords {
		m.Records = m.Records[len(m.Records)-maxRecords:]
	}
}

// QuietCycles counts the trailing cycles that saw the same number of
// living tributes as now. A new game (more alive than recorded) resets it.
func (m *CycleMemory) QuietCycles(alive int) int {
	n := 0
	for i := len(m.Records) - 1; i >= 0; i-- {
		if m.Records[i].Alive != alive {
			break
		}
		n++
	}
	return n
}

// RecentlyForced reports whether the pair was the subject of an
// intervention in the last pairCooldown cycles, in either order.
func (m *CycleMemory) RecentlyForced(a, b agents.AgentID) bool {
	start := max(0, len(m.Records)-pairCooldown)
	for _, r := range m.Records[start:] {
		if r.ActorID == 0 && r.TargetID == 0 {
			continue
		}
		if (r.ActorID == a && r.TargetID == b) || (r.ActorID == b && r.TargetID == a) {
			return true
		}
	}
	return false
}
