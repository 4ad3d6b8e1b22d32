// Command gamemaker runs the automated arena operator. It observes a
// running arenasim over HTTP, decides whether the games need a push, and
// acts through the admin intervention API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/tribute-arena/internal/gamemaker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("ARENA_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("ARENA_ADMIN_KEY")
	intervalSec := envIntOrDefault("GAMEMAKER_INTERVAL", 10)
	memoryPath := os.Getenv("GAMEMAKER_MEMORY")

	if adminKey == "" {
		slog.Error("ARENA_ADMIN_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second

	slog.Info("gamemaker starting",
		"api_url", apiURL,
		"interval", interval,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gm := gamemaker.New(apiURL, adminKey, gamemaker.LoadMemory(memoryPath))

	slog.Info("waiting for arena API...")
	if err := waitForAPI(ctx, apiURL); err != nil {
		slog.Error("arena API unavailable", "error", err)
		os.Exit(1)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		rec, err := gm.RunCycle(ctx)
		if err != nil {
			slog.Error("gamemaker cycle failed", "error", err)
		} else {
			if err := gm.Memory.Save(memoryPath); err != nil {
				slog.Warn("memory not saved", "error", err)
			}
			if rec.Tension == gamemaker.TensionOver {
				fmt.Println("The games are over. Gamemaker stopped.")
				return
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			slog.Info("received signal, shutting down")
			fmt.Println("Gamemaker stopped.")
			return
		}
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Gives up after 5 minutes.
func waitForAPI(ctx context.Context, apiURL string) error {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/api/v1/status", nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("arena API is ready")
				return nil
			}
		}
		if time.Now().After(deadline) {
			return errors.New("arena API did not become ready within 5 minutes")
		}
		slog.Info("arena not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = min(backoff*2, maxBackoff)
	}
}
