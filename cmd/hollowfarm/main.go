// Command hollowfarm runs the haunted farm: the tick loop, the HTTP and
// websocket API, and the event journal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/hollowfarm/internal/api"
	"github.com/talgya/hollowfarm/internal/catalog"
	"github.com/talgya/hollowfarm/internal/config"
	"github.com/talgya/hollowfarm/internal/engine"
	"github.com/talgya/hollowfarm/internal/entropy"
	"github.com/talgya/hollowfarm/internal/farm"
	"github.com/talgya/hollowfarm/internal/llm"
	"github.com/talgya/hollowfarm/internal/persistence"
	"github.com/talgya/hollowfarm/internal/weather"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	slog.Info("Hollowfarm: a haunted farm that grows while you watch")

	// ── Catalog ───────────────────────────────────────────────────────
	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.Load(cfg.CatalogPath)
		if err != nil {
			slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("catalog ready", "items", len(cat.Items()), "recipes", len(cat.Recipes()))

	// ── Randomness ────────────────────────────────────────────────────
	var roller farm.Roller = farm.RollerFunc(entropy.CryptoFloat)
	rc := entropy.NewClient(cfg.Entropy.RandomOrgKey)
	if rc.Enabled() {
		roller = rc
		slog.Info("wolf trials drawn from random.org")
	}

	f := farm.New(cat, cfg.Game, roller)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DBPath), 0755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}
	db, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	sessions, _ := db.SessionCount()
	slog.Info("journal opened", "path", cfg.Storage.DBPath, "session", db.Session(), "sessions", sessions)
	if prev, ok := db.PreviousProgress(); ok {
		slog.Info("previous farm closed", "tick", humanize.Comma(int64(prev)))
	}

	// ── Weather ───────────────────────────────────────────────────────
	sky := &weather.Sky{
		Client: weather.NewClient(cfg.Weather.APIKey, cfg.Weather.Location),
		Mist:   weather.NewMist(cfg.Weather.MistSeed),
	}
	if sky.Client == nil {
		slog.Info("OPENWEATHER_API_KEY not set, the sky follows the mist")
	}

	// ── Oracle ────────────────────────────────────────────────────────
	llmClient := llm.NewClient(cfg.Oracle.APIKey)
	if llmClient != nil {
		if cfg.Oracle.Model != "" {
			llmClient.Model = cfg.Oracle.Model
		}
		llmClient.SetRateLimit(cfg.Oracle.RatePerMinute)
		slog.Info("oracle enabled", "model", llmClient.Model)
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set, the oracle stays silent")
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine()
	eng.Interval = cfg.TickInterval()
	eng.FlushEvery = cfg.Engine.FlushEvery
	eng.SetSpeed(cfg.Engine.Speed)

	eng.OnTick = func(uint64) { f.Tick() }
	eng.OnFlush = func(tick uint64) {
		if events := f.DrainEvents(); len(events) > 0 {
			if err := db.SaveEvents(events); err != nil {
				slog.Error("journal flush failed", "tick", tick, "error", err)
			}
		}
		if err := db.SaveProgress(f.CurrentTick(), eng.Speed()); err != nil {
			slog.Error("progress save failed", "tick", tick, "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.Server.AdminKey == "" {
		slog.Warn("HOLLOWFARM_ADMIN_KEY not set, admin endpoints are disabled")
	}
	apiServer := &api.Server{
		Farm:          f,
		Eng:           eng,
		Oracle:        llm.NewOracle(llmClient),
		Sky:           sky,
		DB:            db,
		Entropy:       rc,
		Port:          cfg.Server.Port,
		AdminKey:      cfg.Server.AdminKey,
		SnapshotDir:   cfg.Storage.SnapshotDir,
		OracleLimiter: api.NewRateLimiter(cfg.Oracle.ClientPerMinute, time.Minute),
	}
	srv := apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	started := time.Now()
	fmt.Printf("\nHollowfarm is open: %d plots, %s gold in the purse.\n",
		len(f.Snapshot().Plots), humanize.Comma(int64(f.Snapshot().Gold)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Server.Port)
	fmt.Println("The fields are growing... (Ctrl+C to stop)")

	eng.Run(ctx)

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	final := f.Snapshot()
	if err := db.EndSession(final); err != nil {
		slog.Error("failed to close session", "error", err)
	}
	fmt.Printf("Farm closed at tick %s (opened %s): level %d, %s gold.\n",
		humanize.Comma(int64(final.Tick)), humanize.Time(started), final.Level, humanize.Comma(int64(final.Gold)))
}
