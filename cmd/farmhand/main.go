// Command farmhand plays the farm on its own.
// It observes the farm through the API, picks a move with fixed rules,
// and sends the intents back.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/hollowfarm/internal/farmhand"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("HOLLOWFARM_API_URL", "http://localhost:8080")
	intervalMS := envIntOrDefault("FARMHAND_INTERVAL_MS", 2000)
	memoryPath := envOrDefault("FARMHAND_MEMORY", "data/farmhand_memory.json")

	interval := time.Duration(intervalMS) * time.Millisecond

	slog.Info("farmhand starting", "api_url", apiURL, "interval", interval)

	observer := farmhand.NewObserver(apiURL)
	actor := farmhand.NewActor(apiURL)
	mem := farmhand.LoadMemory(memoryPath)
	slog.Info("farmhand memory loaded", "recent", mem.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("waiting for hollowfarm API...")
	if !waitForAPI(ctx, apiURL) {
		os.Exit(1)
	}

	runCycle(observer, actor, mem)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(observer, actor, mem)
		case <-ctx.Done():
			mem.Save()
			slog.Info("shutting down", "recent", mem.Summary())
			fmt.Println("Farmhand stopped.")
			return
		}
	}
}

// runCycle executes one observe → decide → act cycle.
func runCycle(observer *farmhand.Observer, actor *farmhand.Actor, mem *farmhand.CycleMemory) {
	obs, err := observer.Observe()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}

	health := farmhand.Triage(obs)
	decision := farmhand.Decide(obs)
	slog.Debug("decision made",
		"action", decision.Action,
		"rationale", decision.Rationale,
		"condition", health.Condition,
	)

	rec := farmhand.CycleRecord{
		Tick:      obs.State.Tick,
		Action:    decision.Action,
		Gold:      obs.State.Gold,
		Level:     obs.State.Level,
		Condition: health.Condition,
		Rationale: decision.Rationale,
	}

	if decision.Action == farmhand.ActionNone {
		rec.Applied = true
		mem.Record(rec)
		return
	}

	result, err := actor.ActAll(decision)
	if err != nil {
		slog.Error("action failed", "action", decision.Action, "error", err)
		mem.Record(rec)
		return
	}
	rec.Applied = result != nil && result.Outcome.Applied
	mem.Record(rec)

	if rec.Applied {
		slog.Info("acted",
			"action", decision.Action,
			"rationale", decision.Rationale,
			"gold", result.Snapshot.Gold,
			"level", result.Snapshot.Level,
		)
	} else {
		slog.Warn("action rejected", "action", decision.Action, "reason", result.Outcome.Reason)
	}

	if result != nil && result.Snapshot.Level > obs.State.Level {
		mem.Save()
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
// responds. Gives up after 5 minutes or when ctx is cancelled.
func waitForAPI(ctx context.Context, apiURL string) bool {
	backoff := 500 * time.Millisecond
	maxBackoff := 15 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				slog.Info("hollowfarm API is ready")
				return true
			}
		}
		if time.Now().After(deadline) {
			slog.Error("hollowfarm API did not become ready within 5 minutes")
			return false
		}
		slog.Info("hollowfarm not ready, retrying...", "backoff", backoff)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
