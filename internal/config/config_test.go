package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/hollowfarm/internal/farm"
)

func TestDefault_MatchesGameRules(t *testing.T) {
	cfg := Default()
	assert.Equal(t, farm.DefaultRules(), cfg.Game)
	assert.Equal(t, time.Second, cfg.TickInterval())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hollowfarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
engine:
  tick_ms: 250
game:
  start_gold: 500
  wolf_chance: 0.1
log_level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.TickInterval())
	assert.Equal(t, 500, cfg.Game.StartGold)
	assert.Equal(t, 0.1, cfg.Game.WolfChance)
	assert.Equal(t, 12, cfg.Game.Plots, "unset keys keep defaults")
	assert.Equal(t, "data/hollowfarm.db", cfg.Storage.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "parse")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HOLLOWFARM_PORT":        "7000",
		"HOLLOWFARM_ADMIN_KEY":   "s3cret",
		"HOLLOWFARM_DB":          "/tmp/farm.db",
		"HOLLOWFARM_TICK_MS":     "50",
		"HOLLOWFARM_WOLF_CHANCE": "0.5",
		"ANTHROPIC_API_KEY":      "sk-test",
		"OPENWEATHER_API_KEY":    "owm",
		"OPENWEATHER_LOCATION":   "Riga,LV",
		"RANDOM_ORG_API_KEY":     "rnd",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "s3cret", cfg.Server.AdminKey)
	assert.Equal(t, "/tmp/farm.db", cfg.Storage.DBPath)
	assert.Equal(t, 50, cfg.Engine.TickMS)
	assert.Equal(t, 0.5, cfg.Game.WolfChance)
	assert.Equal(t, "sk-test", cfg.Oracle.APIKey)
	assert.Equal(t, "owm", cfg.Weather.APIKey)
	assert.Equal(t, "Riga,LV", cfg.Weather.Location)
	assert.Equal(t, "rnd", cfg.Entropy.RandomOrgKey)
}

func TestApplyEnv_RejectsGarbage(t *testing.T) {
	for _, key := range []string{"HOLLOWFARM_PORT", "HOLLOWFARM_TICK_MS", "HOLLOWFARM_WOLF_CHANCE"} {
		cfg := Default()
		err := cfg.ApplyEnv(func(k string) string {
			if k == key {
				return "lots"
			}
			return ""
		})
		assert.ErrorContains(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Game.WolfChance = 2
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Game.Plots = 1
	assert.Error(t, cfg.Validate())
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hollowfarm.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644))
	t.Setenv(ConfigPathEnv, path)
	t.Setenv("HOLLOWFARM_PORT", "9001")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9001, cfg.Server.Port)
}
