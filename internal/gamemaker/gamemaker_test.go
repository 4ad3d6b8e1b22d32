package gamemaker

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/api"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/runner"
	"github.com/talgya/tribute-arena/internal/world"
)

func snapshot(trs ...TributeInfo) *ArenaSnapshot {
	return &ArenaSnapshot{
		Status:   StatusInfo{Day: 2, Phase: engine.PhaseDay, Alive: len(trs), Total: 6},
		Tributes: trs,
	}
}

func tribute(id agents.AgentID, q, r int) TributeInfo {
	return TributeInfo{
		ID:       id,
		Name:     fmt.Sprintf("Tribute %d", id),
		Alive:    true,
		Health:   100,
		Location: world.HexCoord{Q: q, R: r},
	}
}

func quiet(alive, cycles int) *CycleMemory {
	mem := &CycleMemory{}
	for range cycles {
		mem.Record(CycleRecord{Alive: alive, Action: DecideNone})
	}
	return mem
}

func TestTriageTension(t *testing.T) {
	trs := []TributeInfo{tribute(1, 0, 0), tribute(2, 1, 0)}
	cases := []struct {
		name  string
		mod   func(*ArenaSnapshot)
		quiet int
		want  Tension
	}{
		{"active", nil, 1, TensionActive},
		{"slow", nil, slowCycles, TensionSlow},
		{"stalled", nil, stallCycles + 1, TensionStalled},
		{"hold", func(s *ArenaSnapshot) { s.Status.Pending = 1 }, stallCycles, TensionHold},
		{"over", func(s *ArenaSnapshot) { s.Status.Phase = engine.PhaseGameOver }, 0, TensionOver},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := snapshot(trs...)
			if tc.mod != nil {
				tc.mod(snap)
			}
			h := Triage(snap, quiet(len(trs), tc.quiet))
			if h.Tension != tc.want {
				t.Errorf("tension = %s, want %s", h.Tension, tc.want)
			}
		})
	}
}

func TestTriageQuietResetsOnDeath(t *testing.T) {
	mem := quiet(3, 5)
	h := Triage(snapshot(tribute(1, 0, 0), tribute(2, 0, 1)), mem)
	if h.QuietCycles != 0 || h.Tension != TensionActive {
		t.Errorf("quiet = %d tension = %s after a death", h.QuietCycles, h.Tension)
	}
}

func TestTriagePicksClosestUnforcedPair(t *testing.T) {
	snap := snapshot(tribute(1, 0, 0), tribute(2, 1, 0), tribute(3, 3, -1))
	h := Triage(snap, &CycleMemory{})
	if h.PairA.ID != 1 || h.PairB.ID != 2 || h.PairDistance != 1 {
		t.Fatalf("pair = %d/%d at %d", h.PairA.ID, h.PairB.ID, h.PairDistance)
	}

	mem := &CycleMemory{}
	mem.Record(CycleRecord{Alive: 3, Action: "betray", ActorID: 2, TargetID: 1})
	h = Triage(snap, mem)
	if h.PairA.ID == 1 && h.PairB.ID == 2 {
		t.Error("recently forced pair chosen again")
	}
}

func TestTriageLeaderWeakestRichest(t *testing.T) {
	a, b, c := tribute(1, 0, 0), tribute(2, 0, 0), tribute(3, 0, 0)
	a.Kills, a.Hype = 2, 10
	b.Kills, b.Hype = 2, 30
	c.Health, c.Items = 12, 0
	a.Items = 4
	h := Triage(snapshot(a, b, c), &CycleMemory{})
	if h.Leader.ID != 2 {
		t.Errorf("leader = %d, want hype tiebreak to 2", h.Leader.ID)
	}
	if h.Weakest.ID != 3 || h.Richest.ID != 1 {
		t.Errorf("weakest = %d richest = %d", h.Weakest.ID, h.Richest.ID)
	}
}

func TestDecideStalledBetrays(t *testing.T) {
	a, b := tribute(1, 0, 0), tribute(2, 0, 1)
	b.Kills = 1
	snap := snapshot(a, b)
	mem := quiet(2, stallCycles)
	d, err := Decide(Triage(snap, mem), snap, mem)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != DecideIntervene || d.Intervention.Action != engine.ActionBetray {
		t.Fatalf("decision = %+v", d)
	}
	if d.Intervention.ActorID != 2 || d.Intervention.TargetID != 1 {
		t.Errorf("killer should strike: %+v", d.Intervention)
	}
}

func TestDecideSlowGiftsTheWeak(t *testing.T) {
	a, b := tribute(1, 0, 0), tribute(2, 3, -3)
	a.Items = 3
	b.Health = 10
	snap := snapshot(a, b)
	mem := quiet(2, slowCycles)
	d, err := Decide(Triage(snap, mem), snap, mem)
	if err != nil {
		t.Fatal(err)
	}
	iv := d.Intervention
	if iv == nil || iv.Action != engine.ActionGift || iv.ActorID != 1 || iv.TargetID != 2 {
		t.Fatalf("decision = %+v", d)
	}
}

func TestDecideSlowAlliesNeighbours(t *testing.T) {
	snap := snapshot(tribute(1, 0, 0), tribute(2, 1, 0))
	mem := quiet(2, slowCycles)
	d, err := Decide(Triage(snap, mem), snap, mem)
	if err != nil {
		t.Fatal(err)
	}
	if d.Intervention == nil || d.Intervention.Action != engine.ActionAlliance {
		t.Fatalf("decision = %+v", d)
	}

	far := snapshot(tribute(1, -3, 0), tribute(2, 3, 0))
	d, err = Decide(Triage(far, mem), far, mem)
	if err != nil {
		t.Fatal(err)
	}
	if d.Action != DecideNone {
		t.Errorf("distant pair forced together: %+v", d)
	}
}

func TestDecideHoldAndOver(t *testing.T) {
	snap := snapshot(tribute(1, 0, 0))
	snap.Status.Pending = 2
	d, err := Decide(Triage(snap, &CycleMemory{}), snap, &CycleMemory{})
	if err != nil || d.Action != DecideAcknowledge || d.Intervention != nil {
		t.Fatalf("hold decision = %+v, %v", d, err)
	}

	snap.Status.Pending = 0
	snap.Status.Phase = engine.PhaseGameOver
	d, err = Decide(Triage(snap, quiet(1, 10)), snap, quiet(1, 10))
	if err != nil || d.Action != DecideNone {
		t.Fatalf("over decision = %+v, %v", d, err)
	}
}

func TestGuardrails(t *testing.T) {
	dead := tribute(3, 0, 0)
	dead.Alive = false
	snap := snapshot(tribute(1, 0, 0), tribute(2, 0, 0), dead)
	mem := &CycleMemory{}
	mem.Record(CycleRecord{ActorID: 1, TargetID: 2, Action: "gift"})

	cases := []struct {
		name string
		d    Decision
	}{
		{"unknown action", Decision{Action: "smite"}},
		{"missing payload", Decision{Action: DecideIntervene}},
		{"self", Decision{Action: DecideIntervene, Intervention: &Intervention{ActorID: 1, TargetID: 1}}},
		{"dead target", Decision{Action: DecideIntervene, Intervention: &Intervention{ActorID: 1, TargetID: 3}}},
		{"unknown tribute", Decision{Action: DecideIntervene, Intervention: &Intervention{ActorID: 1, TargetID: 9}}},
		{"cooldown", Decision{Action: DecideIntervene, Intervention: &Intervention{ActorID: 2, TargetID: 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := enforceGuardrails(&tc.d, snap, mem); err == nil {
				t.Error("expected guardrail error")
			}
		})
	}

	none := Decision{Action: DecideNone, Intervention: &Intervention{ActorID: 1, TargetID: 2}}
	if err := enforceGuardrails(&none, snap, mem); err != nil || none.Intervention != nil {
		t.Errorf("none should clear payload: %+v, %v", none, err)
	}
}

func TestMemoryRingAndPersistence(t *testing.T) {
	mem := &CycleMemory{}
	for i := range maxRecords + 5 {
		mem.Record(CycleRecord{Step: i, Alive: 4})
	}
	if len(mem.Records) != maxRecords || mem.Records[0].Step != 5 {
		t.Fatalf("ring = %d records starting at %d", len(mem.Records), mem.Records[0].Step)
	}
	if q := mem.QuietCycles(4); q != maxRecords {
		t.Errorf("quiet = %d", q)
	}

	path := filepath.Join(t.TempDir(), "memory.json")
	if err := mem.Save(path); err != nil {
		t.Fatal(err)
	}
	back := LoadMemory(path)
	if len(back.Records) != maxRecords || back.Records[maxRecords-1].Step != maxRecords+4 {
		t.Errorf("reloaded %d records", len(back.Records))
	}

	if got := LoadMemory(filepath.Join(t.TempDir(), "missing.json")); len(got.Records) != 0 {
		t.Error("missing file should load empty")
	}
	if err := (&CycleMemory{}).Save(""); err != nil {
		t.Errorf("empty path save: %v", err)
	}
}

func arenaServer(t *testing.T) (*httptest.Server, *runner.Runner) {
	t.Helper()
	cfg := engine.Settings{
		Lethality:           engine.LethalityMedium,
		ResourceScarcity:    engine.ScarcityNormal,
		MapSize:             3,
		TributeCount:        6,
		FinaleDay:           4,
		UseCareerAlliance:   true,
		AutoContinueOnDeath: true,
	}
	rng := rand.New(rand.NewSource(23))
	r := runner.New(engine.InitializeGame(cfg, rng), rng)
	srv := &api.Server{Runner: r, Hub: api.NewHub(), AdminKey: "secret"}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, r
}

func TestObserveLiveServer(t *testing.T) {
	ts, _ := arenaServer(t)
	snap, err := NewObserver(ts.URL).Observe(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if snap.Status.Phase != engine.PhaseSetup || snap.Status.Alive != 6 || len(snap.Tributes) != 6 {
		t.Errorf("snapshot = %+v with %d tributes", snap.Status, len(snap.Tributes))
	}
	if snap.Tributes[0].ID == 0 || snap.Tributes[0].Name == "" {
		t.Errorf("tribute not decoded: %+v", snap.Tributes[0])
	}
}

func TestCycleForcesBetrayalOnStalledArena(t *testing.T) {
	ts, r := arenaServer(t)
	gm := New(ts.URL, "secret", quiet(6, stallCycles))

	rec, err := gm.RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Tension != TensionStalled || rec.Action != "betray" || rec.ActorID == 0 {
		t.Fatalf("record = %+v", rec)
	}
	found := false
	for _, l := range r.Snapshot().Logs {
		if strings.Contains(l.Message, "GAMEMAKER: Forced") {
			found = true
		}
	}
	if !found {
		t.Error("betrayal not applied to the arena")
	}
	if len(gm.Memory.Records) != stallCycles+1 {
		t.Errorf("memory has %d records", len(gm.Memory.Records))
	}
}

func TestCycleQuietArenaDoesNothing(t *testing.T) {
	ts, r := arenaServer(t)
	before := len(r.Snapshot().Logs)
	rec, err := New(ts.URL, "secret", nil).RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rec.Action != DecideNone || len(r.Snapshot().Logs) != before {
		t.Errorf("record = %+v, logs %d -> %d", rec, before, len(r.Snapshot().Logs))
	}
}

func TestActorRejectedWithoutKey(t *testing.T) {
	ts, _ := arenaServer(t)
	_, err := NewActor(ts.URL, "wrong").Act(context.Background(), &Intervention{Action: engine.ActionGift, ActorID: 1, TargetID: 2})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v", err)
	}
}

func TestCycleAcknowledgesPendingDeaths(t *testing.T) {
	acked := false
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"day": 3, "phase": "NIGHT", "alive": 2, "pending_deceased": 2})
	})
	mux.HandleFunc("GET /api/v1/tributes", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]TributeInfo{tribute(1, 0, 0), tribute(2, 0, 0)})
	})
	mux.HandleFunc("POST /api/v1/acknowledge", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		acked = true
		json.NewEncoder(w).Encode(map[string]int{"acknowledged": 2})
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	rec, err := New(ts.URL, "k", nil).RunCycle(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !acked || rec.Action != DecideAcknowledge || rec.Tension != TensionHold {
		t.Errorf("acked = %v record = %+v", acked, rec)
	}
}
