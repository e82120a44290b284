// Command farmhand runs an autonomous field worker against a farmsim API.
// Each cycle it observes the tiles within reach, waters dry dug ground,
// breaks new diggable ground, and records what it did.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/homestead/internal/farmhand"
	"github.com/talgya/homestead/internal/grid"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("HOMESTEAD_API_URL", "http://localhost:8080")
	intervalSec := envIntOrDefault("FARMHAND_INTERVAL", 30)
	pos := grid.Coord{
		X: envIntOrDefault("FARMHAND_X", 0),
		Y: envIntOrDefault("FARMHAND_Y", 0),
	}

	interval := time.Duration(intervalSec) * time.Second

	worker := &farmhand.Worker{
		Observer: farmhand.NewObserver(apiURL),
		Actor:    farmhand.NewActor(apiURL),
		Memory:   farmhand.LoadMemory(envOrDefault("FARMHAND_MEMORY", "farmhand_memory.json")),
		Pos:      pos,
		Reach:    envIntOrDefault("FARMHAND_REACH", 2),
		Budget:   envIntOrDefault("FARMHAND_BUDGET", 8),
	}

	slog.Info("Homestead farmhand starting",
		"api_url", apiURL,
		"interval", interval,
		"pos", pos,
		"reach", worker.Reach,
		"worked_before", worker.Memory.Worked(),
	)

	// Wait for farmsim API to be ready before first cycle.
	slog.Info("waiting for farmsim API...")
	waitForAPI(apiURL)

	// Run first cycle immediately.
	runCycle(worker)

	// Timer loop.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(worker)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Farmhand stopped.")
			return
		}
	}
}

func runCycle(w *farmhand.Worker) {
	rec, err := w.RunCycle()
	if err != nil {
		slog.Error("cycle failed", "error", err)
		return
	}
	slog.Info("cycle complete",
		"scene", rec.Scene,
		"tick", rec.Tick,
		"planned", rec.Planned,
		"done", rec.Done,
		"skipped", rec.Skipped,
		"rate_limited", rec.Limited,
	)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the farmsim status endpoint with exponential backoff
// until it responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("farmsim API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("farmsim API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("farmsim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
