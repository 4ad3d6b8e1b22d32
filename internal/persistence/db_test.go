package persistence

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "arena.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func settings() engine.Settings {
	return engine.Settings{
		Lethality:           engine.LethalityHigh,
		ResourceScarcity:    engine.ScarcityNormal,
		MapSize:             3,
		TributeCount:        8,
		FinaleDay:           3,
		UseAges:             true,
		AutoContinueOnDeath: true,
	}
}

func TestBeginAndGetRun(t *testing.T) {
	db := openTemp(t)
	if err := db.BeginRun("run-1", 42, "Standard", settings()); err != nil {
		t.Fatal(err)
	}
	r, err := db.GetRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if r.Seed != 42 || r.Preset != "Standard" || r.Finished() {
		t.Errorf("run = %+v", r)
	}
	if err := db.BeginRun("run-1", 1, "Standard", settings()); err == nil {
		t.Error("duplicate run id accepted")
	}
	if _, err := db.GetRun("nope"); err == nil {
		t.Error("missing run found")
	}
}

func TestAppendLogsIsIncremental(t *testing.T) {
	db := openTemp(t)
	rng := rand.New(rand.NewSource(3))
	s := engine.InitializeGame(settings(), rng)
	if err := db.BeginRun("r", 3, "", s.Settings); err != nil {
		t.Fatal(err)
	}

	s = engine.AdvanceGamePhase(s, rng)
	n, err := db.AppendLogs("r", s)
	if err != nil || n != len(s.Logs) {
		t.Fatalf("first append = %d, %v; want %d", n, err, len(s.Logs))
	}
	n, err = db.AppendLogs("r", s)
	if err != nil || n != 0 {
		t.Fatalf("repeat append = %d, %v", n, err)
	}

	before := len(s.Logs)
	s = engine.AdvanceGamePhase(s, rng)
	n, err = db.AppendLogs("r", s)
	if err != nil || n != len(s.Logs)-before {
		t.Fatalf("second append = %d, %v; want %d", n, err, len(s.Logs)-before)
	}

	events, err := db.RecentEvents("r", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 3 || events[0].Seq != len(s.Logs)-1 {
		t.Fatalf("recent = %+v", events)
	}
	last := s.Logs[len(s.Logs)-1]
	if events[0].Message != last.Message || events[0].Kind != last.Kind.String() || events[0].LogID != last.ID {
		t.Errorf("newest event = %+v, want %+v", events[0], last)
	}
}

func TestPlacings(t *testing.T) {
	mk := func(id agents.AgentID, alive bool) *agents.Tribute {
		return &agents.Tribute{ID: id, Name: string(rune('A' + id)), District: agents.District(id + 1), Alive: alive}
	}
	s := &engine.GameState{Tributes: []*agents.Tribute{
		mk(0, false), mk(1, true), mk(2, false), mk(3, false),
	}}

	got := Placings(s, []agents.AgentID{2, 0})
	want := []agents.AgentID{1, 0, 2, 3}
	for i, id := range want {
		if got[i].TributeID != int64(id) || got[i].Place != i+1 {
			t.Fatalf("place %d = %+v, want tribute %d", i+1, got[i], id)
		}
	}
	if got[0].Ordinal != "1st" || got[1].Ordinal != "2nd" || got[3].Ordinal != "4th" {
		t.Errorf("ordinals = %s %s %s", got[0].Ordinal, got[1].Ordinal, got[3].Ordinal)
	}
}

func TestRecorderArchivesWholeGame(t *testing.T) {
	db := openTemp(t)
	rng := rand.New(rand.NewSource(8))
	s := engine.InitializeGame(settings(), rng)

	rec, err := NewRecorder(db, "game", 8, "custom", s)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 500 && s.Phase != engine.PhaseGameOver; i++ {
		prev := s
		s = engine.AdvanceGamePhase(s, rng)
		rec.Observe(prev, s)
		s = engine.AcknowledgeDeceased(s)
	}
	if s.Phase != engine.PhaseGameOver {
		t.Fatal("game did not finish")
	}

	run, err := db.GetRun("game")
	if err != nil {
		t.Fatal(err)
	}
	if !run.Finished() || run.Days != s.Day {
		t.Errorf("run = %+v", run)
	}
	if w := s.Winner(); w != nil && (!run.WinnerID.Valid || run.WinnerID.Int64 != int64(w.ID)) {
		t.Errorf("winner = %+v, want %d", run.WinnerID, w.ID)
	}

	standings, err := db.Standings("game")
	if err != nil {
		t.Fatal(err)
	}
	if len(standings) != len(s.Tributes) {
		t.Fatalf("standings = %d, want %d", len(standings), len(s.Tributes))
	}
	for i, st := range standings {
		if st.Place != i+1 || st.Ordinal == "" {
			t.Errorf("standing %d = %+v", i, st)
		}
	}
	if w := s.Winner(); w != nil && standings[0].TributeID != int64(w.ID) {
		t.Errorf("first place = %+v, want winner %d", standings[0], w.ID)
	}

	events, err := db.RecentEvents("game", 1)
	if err != nil || len(events) != 1 || events[0].Seq != len(s.Logs)-1 {
		t.Errorf("last event = %+v, %v", events, err)
	}
}

func TestObituaryKeepsFirstSighting(t *testing.T) {
	var o Obituary
	o.Observe(&engine.GameState{Deceased: []agents.AgentID{4}})
	o.Observe(&engine.GameState{Deceased: []agents.AgentID{4, 1}})
	o.Observe(&engine.GameState{Deceased: []agents.AgentID{}})
	o.Observe(&engine.GameState{Deceased: []agents.AgentID{7}})

	got := o.Order()
	want := []agents.AgentID{4, 1, 7}
	if len(got) != len(want) {
		t.Fatalf("order = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
