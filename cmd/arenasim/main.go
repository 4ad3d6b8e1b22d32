// Command arenasim runs a tribute arena game, optionally serving it over
// HTTP with a live spectator stream.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/tribute-arena/internal/agents"
	"github.com/talgya/tribute-arena/internal/api"
	"github.com/talgya/tribute-arena/internal/config"
	"github.com/talgya/tribute-arena/internal/engine"
	"github.com/talgya/tribute-arena/internal/entropy"
	"github.com/talgya/tribute-arena/internal/persistence"
	"github.com/talgya/tribute-arena/internal/persistence/steplog"
	"github.com/talgya/tribute-arena/internal/runner"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("ARENA_CONFIG"), "YAML run configuration")
		preset     = flag.String("preset", "", "built-in preset: "+strings.Join(config.Presets(), ", "))
		seed       = flag.Int64("seed", 0, "RNG seed (0 = random)")
		serve      = flag.Bool("serve", false, "serve the HTTP API and spectator stream")
		speed      = flag.Float64("speed", 1, "pace multiplier over the preset's step interval")
		noArchive  = flag.Bool("no-archive", false, "skip the SQLite archive and step log")
		quiet      = flag.Bool("quiet", false, "do not print the narrative")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(*configPath, *preset, *seed, *serve, *speed, *noArchive, *quiet); err != nil {
		slog.Error("arenasim failed", "error", err)
		os.Exit(1)
	}
}

func loadConfig(path, preset string, seed int64) (config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	if preset != "" {
		s, err := config.Preset(preset)
		if err != nil {
			return cfg, err
		}
		cfg.Preset, cfg.Settings = preset, s
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func run(configPath, preset string, seedFlag int64, serve bool, speed float64, noArchive, quiet bool) error {
	cfg, err := loadConfig(configPath, preset, seedFlag)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	rng, seed := entropy.NewRand(cfg.Seed)
	state := engine.InitializeGame(cfg.Settings, rng)
	r := runner.New(state, rng)
	r.SetSpeed(speed)
	runID := uuid.NewString()

	slog.Info("arena ready",
		"run", runID,
		"preset", cfg.Preset,
		"seed", seed,
		"tributes", len(state.Tributes),
		"tiles", len(state.Map.Tiles),
		"finale_day", cfg.Settings.FinaleDay,
	)

	var dead persistence.Obituary
	r.OnStep(func(_, next *engine.GameState) { dead.Observe(next) })

	// ── Archive ───────────────────────────────────────────────────────
	var db *persistence.DB
	var logPath string
	if !noArchive && cfg.DBPath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("db dir: %w", err)
		}
		if db, err = persistence.Open(cfg.DBPath); err != nil {
			return err
		}
		defer db.Close()
		rec, err := persistence.NewRecorder(db, runID, seed, cfg.Preset, state)
		if err != nil {
			return err
		}
		r.OnStep(rec.Observe)
		slog.Info("archive opened", "path", cfg.DBPath)
	}
	if !noArchive && cfg.StepLogDir != "" {
		w, err := steplog.Create(cfg.StepLogDir, runID)
		if err != nil {
			return err
		}
		defer w.Close()
		r.OnStep(w.Observe)
		logPath = steplog.Path(cfg.StepLogDir, runID)
	}

	if !quiet {
		r.OnStep((&narrator{out: os.Stdout}).Observe)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── HTTP API ──────────────────────────────────────────────────────
	var srv *api.Server
	if serve {
		if cfg.AdminKey == "" {
			slog.Warn("ARENA_ADMIN_KEY not set, admin POST endpoints will be disabled")
		}
		hub := api.NewHub()
		go hub.Run(ctx)
		r.OnStep(hub.Observe)

		srv = &api.Server{Runner: r, Hub: hub, DB: db, RunID: runID, Port: cfg.Port, AdminKey: cfg.AdminKey}
		srv.Start()
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	} else {
		// Nobody can acknowledge deaths headless.
		r.SetHold(false)
	}

	start := time.Now()
	final, err := r.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printResults(final, dead.Order(), r.Steps(), time.Since(start))
	if logPath != "" {
		if fi, err := os.Stat(logPath); err == nil {
			fmt.Printf("Step log: %s (%s)\n", logPath, humanize.Bytes(uint64(fi.Size())))
		}
	}

	if srv != nil {
		if ctx.Err() == nil {
			fmt.Println("Game over. Still serving... (Ctrl+C to stop)")
			<-ctx.Done()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("HTTP shutdown", "error", err)
		}
	}
	return nil
}

// narrator prints every log line once. It keeps its own position so lines
// from interventions between steps are printed with the following step.
type narrator struct {
	out     io.Writer
	printed int
}

func (n *narrator) Observe(_, next *engine.GameState) {
	for _, l := range next.Logs[n.printed:] {
		fmt.Fprintf(n.out, "[Day %d %-9s] %s\n", l.Day, l.Phase, l.Message)
	}
	n.printed = len(next.Logs)
}

func printResults(s *engine.GameState, deathOrder []agents.AgentID, steps int, elapsed time.Duration) {
	fmt.Println()
	if w := s.Winner(); w != nil {
		fmt.Printf("Victor: %s of District %d, %d kills, day %d.\n", w.Name, w.District, w.Kills, s.Day)
	} else if s.Phase == engine.PhaseGameOver {
		fmt.Println("No tribute survived the arena.")
	} else {
		fmt.Printf("Stopped on day %d with %d alive.\n", s.Day, s.AliveCount())
	}
	fmt.Printf("%s steps in %s.\n\n", humanize.Comma(int64(steps)), elapsed.Round(time.Millisecond))

	for _, st := range persistence.Placings(s, deathOrder) {
		cause := st.Cause
		if cause == "" {
			cause = "alive"
		}
		fmt.Printf("%5s  %-12s D%-2d  kills %-2d  %s\n", st.Ordinal, st.Name, st.District, st.Kills, cause)
	}
}
