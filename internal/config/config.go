// Package config loads hollowfarm settings from YAML and the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/hollowfarm/internal/farm"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Storage StorageConfig `yaml:"storage" json:"storage"`
	Engine  EngineConfig  `yaml:"engine" json:"engine"`
	Game    farm.Rules    `yaml:"game" json:"game"`
	Oracle  OracleConfig  `yaml:"oracle" json:"oracle"`
	Weather WeatherConfig `yaml:"weather" json:"weather"`
	Entropy EntropyConfig `yaml:"entropy" json:"entropy"`

	CatalogPath string `yaml:"catalog_path" json:"catalog_path"` // Optional items YAML override
	LogLevel    string `yaml:"log_level" json:"log_level"`
}

type ServerConfig struct {
	Port     int    `yaml:"port" json:"port"`
	AdminKey string `yaml:"admin_key" json:"-"`
}

type StorageConfig struct {
	DBPath      string `yaml:"db_path" json:"db_path"`
	SnapshotDir string `yaml:"snapshot_dir" json:"snapshot_dir"`
}

type EngineConfig struct {
	TickMS     int     `yaml:"tick_ms" json:"tick_ms"`
	FlushEvery uint64  `yaml:"flush_every" json:"flush_every"`
	Speed      float64 `yaml:"speed" json:"speed"`
}

type OracleConfig struct {
	APIKey          string `yaml:"api_key" json:"-"`
	Model           string `yaml:"model" json:"model"`
	RatePerMinute   int    `yaml:"rate_per_minute" json:"rate_per_minute"`     // Upstream Haiku budget
	ClientPerMinute int    `yaml:"client_per_minute" json:"client_per_minute"` // Per-IP consult budget
}

type WeatherConfig struct {
	APIKey   string `yaml:"api_key" json:"-"`
	Location string `yaml:"location" json:"location"`
	MistSeed int64  `yaml:"mist_seed" json:"mist_seed"`
}

type EntropyConfig struct {
	RandomOrgKey string `yaml:"random_org_key" json:"-"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			DBPath:      "data/hollowfarm.db",
			SnapshotDir: "data/snapshots",
		},
		Engine: EngineConfig{
			TickMS:     1000,
			FlushEvery: 10,
			Speed:      1,
		},
		Game: farm.DefaultRules(),
		Oracle: OracleConfig{
			RatePerMinute:   20,
			ClientPerMinute: 6,
		},
		Weather:  WeatherConfig{MistSeed: 13},
		LogLevel: "info",
	}
}

// ApplyDefaults fills zero values left by a partial file.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Storage.DBPath == "" {
		c.Storage.DBPath = d.Storage.DBPath
	}
	if c.Storage.SnapshotDir == "" {
		c.Storage.SnapshotDir = d.Storage.SnapshotDir
	}
	if c.Engine.TickMS <= 0 {
		c.Engine.TickMS = d.Engine.TickMS
	}
	if c.Engine.FlushEvery == 0 {
		c.Engine.FlushEvery = d.Engine.FlushEvery
	}
	if c.Engine.Speed == 0 {
		c.Engine.Speed = d.Engine.Speed
	}
	if c.Game.Plots == 0 {
		c.Game.Plots = d.Game.Plots
	}
	if c.Game.StartInventory == nil {
		c.Game.StartInventory = d.Game.StartInventory
	}
	if c.Game.ProcessTicks == 0 {
		c.Game.ProcessTicks = d.Game.ProcessTicks
	}
	if c.Oracle.RatePerMinute == 0 {
		c.Oracle.RatePerMinute = d.Oracle.RatePerMinute
	}
	if c.Oracle.ClientPerMinute == 0 {
		c.Oracle.ClientPerMinute = d.Oracle.ClientPerMinute
	}
	if c.Weather.MistSeed == 0 {
		c.Weather.MistSeed = d.Weather.MistSeed
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Load reads a YAML config file over the defaults. Keys the file leaves
// out keep their default values.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := Default()
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return r, nil
}

// Validate rejects settings the farm cannot run with.
func (c *Config) Validate() error {
	if c.Game.Plots < 2 {
		return fmt.Errorf("game.plots must be at least 2, got %d", c.Game.Plots)
	}
	if c.Game.WolfChance < 0 || c.Game.WolfChance > 1 {
		return fmt.Errorf("game.wolf_chance must be within [0, 1], got %g", c.Game.WolfChance)
	}
	if c.Game.StartGold < 0 {
		return fmt.Errorf("game.start_gold must not be negative")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}

// TickInterval returns the engine's base tick interval.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Engine.TickMS) * time.Millisecond
}

// SlogLevel maps LogLevel onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
