// Package persistence archives finished and in-progress arena runs in
// SQLite: run metadata, final standings, and the chronological event log.
// Nothing here is loaded back into an engine.
package persistence

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/engine"
)

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Run is one archived game.
type Run struct {
	ID         string        `db:"id" json:"id"`
	Seed       int64         `db:"seed" json:"seed"`
	Preset     string        `db:"preset" json:"preset"`
	Settings   string        `db:"settings_json" json:"settings"`
	StartedAt  int64         `db:"started_at" json:"started_at"`
	FinishedAt sql.NullInt64 `db:"finished_at" json:"-"`
	WinnerID   sql.NullInt64 `db:"winner_id" json:"-"`
	Days       int           `db:"days" json:"days"`
}

// Finished reports whether the run reached GAME_OVER.
func (r Run) Finished() bool { return r.FinishedAt.Valid }

// Standing is a tribute's final placing in a run.
type Standing struct {
	RunID     string `db:"run_id" json:"-"`
	TributeID int64  `db:"tribute_id" json:"tribute_id"`
	Name      string `db:"name" json:"name"`
	District  int    `db:"district" json:"district"`
	Place     int    `db:"place" json:"place"`
	Kills     int    `db:"kills" json:"kills"`
	Hype      int    `db:"hype" json:"hype"`
	Cause     string `db:"cause" json:"cause,omitempty"`

	// Ordinal is Place spelled for display ("2nd").
	Ordinal string `db:"-" json:"ordinal"`
}

// Event is one archived log line.
type Event struct {
	RunID   string `db:"run_id" json:"-"`
	Seq     int    `db:"seq" json:"seq"`
	LogID   string `db:"log_id" json:"id"`
	Day     int    `db:"day" json:"day"`
	Phase   string `db:"phase" json:"phase"`
	Kind    string `db:"kind" json:"kind"`
	Message string `db:"message" json:"message"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		preset TEXT NOT NULL,
		settings_json TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		winner_id INTEGER,
		days INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS standings (
		run_id TEXT NOT NULL,
		tribute_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		district INTEGER NOT NULL,
		place INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		hype INTEGER NOT NULL,
		cause TEXT NOT NULL,
		PRIMARY KEY (run_id, tribute_id)
	);

	CREATE TABLE IF NOT EXISTS events (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		log_id TEXT NOT NULL,
		day INTEGER NOT NULL,
		phase TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_events_kind ON events(run_id, kind);
	CREATE INDEX IF NOT EXISTS idx_standings_place ON standings(run_id, place);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun records a new run.
func (db *DB) BeginRun(id string, seed int64, preset string, settings engine.Settings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	_, err = db.conn.Exec(
		"INSERT INTO runs (id, seed, preset, settings_json, started_at) VALUES (?, ?, ?, ?, ?)",
		id, seed, preset, string(settingsJSON), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// GetRun loads one run's metadata.
func (db *DB) GetRun(id string) (Run, error) {
	var r Run
	err := db.conn.Get(&r, "SELECT * FROM runs WHERE id = ?", id)
	if err != nil {
		return r, fmt.Errorf("get run %s: %w", id, err)
	}
	return r, nil
}

// AppendLogs stores every log line of s not yet archived for the run.
// Logs are cumulative in a game, so the sequence number is the index.
func (db *DB) AppendLogs(runID string, s *engine.GameState) (int, error) {
	var last int
	if err := db.conn.Get(&last, "SELECT COALESCE(MAX(seq), -1) FROM events WHERE run_id = ?", runID); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	if last+1 >= len(s.Logs) {
		return 0, nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO events
		(run_id, seq, log_id, day, phase, kind, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	n := 0
	for seq := last + 1; seq < len(s.Logs); seq++ {
		l := s.Logs[seq]
		if _, err := stmt.Exec(runID, seq, l.ID, l.Day, l.Phase.String(), l.Kind.String(), l.Message); err != nil {
			return 0, fmt.Errorf("insert event %d: %w", seq, err)
		}
		n++
	}
	return n, tx.Commit()
}

// FinishRun stamps the run with its result and replaces its standings.
// deathOrder lists the fallen from first to last; later deaths place higher.
func (db *DB) FinishRun(runID string, s *engine.GameState, deathOrder []agents.AgentID) error {
	standings := Placings(s, deathOrder)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var winner sql.NullInt64
	if w := s.Winner(); w != nil {
		winner = sql.NullInt64{Int64: int64(w.ID), Valid: true}
	}
	if _, err := tx.Exec(
		"UPDATE runs SET finished_at = ?, winner_id = ?, days = ? WHERE id = ?",
		time.Now().Unix(), winner, s.Day, runID,
	); err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM standings WHERE run_id = ?", runID); err != nil {
		return err
	}
	for _, st := range standings {
		st.RunID = runID
		_, err := tx.NamedExec(`INSERT INTO standings
			(run_id, tribute_id, name, district, place, kills, hype, cause)
			VALUES (:run_id, :tribute_id, :name, :district, :place, :kills, :hype, :cause)`, st)
		if err != nil {
			return fmt.Errorf("insert standing %d: %w", st.TributeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("run archived", "run", runID, "day", s.Day, "tributes", len(standings))
	return nil
}

// Placings ranks every tribute: survivors first, then the fallen in
// reverse order of death. Tributes missing from deathOrder rank last.
func Placings(s *engine.GameState, deathOrder []agents.AgentID) []Standing {
	var ranked []*agents.Tribute
	ranked = append(ranked, s.Living()...)

	placed := make(map[agents.AgentID]bool, len(s.Tributes))
	for _, tr := range ranked {
		placed[tr.ID] = true
	}
	for i := len(deathOrder) - 1; i >= 0; i-- {
		tr := s.Tribute(deathOrder[i])
		if tr == nil || placed[tr.ID] {
			continue
		}
		placed[tr.ID] = true
		ranked = append(ranked, tr)
	}
	for _, tr := range s.Tributes {
		if !placed[tr.ID] {
			ranked = append(ranked, tr)
		}
	}

	out := make([]Standing, len(ranked))
	for i, tr := range ranked {
		out[i] = Standing{
			TributeID: int64(tr.ID),
			Name:      tr.Name,
			District:  int(tr.District),
			Place:     i + 1,
			Kills:     tr.Kills,
			Hype:      tr.Hype,
			Cause:     tr.CauseOfDeath,
			Ordinal:   humanize.Ordinal(i + 1),
		}
	}
	return out
}

// Standings returns a run's final placings, best first.
func (db *DB) Standings(runID string) ([]Standing, error) {
	var out []Standing
	err := db.conn.Select(&out,
		"SELECT run_id, tribute_id, name, district, place, kills, hype, cause FROM standings WHERE run_id = ? ORDER BY place",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("standings: %w", err)
	}
	for i := range out {
		out[i].Ordinal = humanize.Ordinal(out[i].Place)
	}
	return out, nil
}

// RecentEvents returns the most recent N events of a run, newest first.
func (db *DB) RecentEvents(runID string, limit int) ([]Event, error) {
	var events []Event
	err := db.conn.Select(&events,
		"SELECT run_id, seq, log_id, day, phase, kind, message FROM events WHERE run_id = ? ORDER BY seq DESC LIMIT ?",
		runID, limit,
	)
	return events, err
}
