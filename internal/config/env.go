package config

import (
	"fmt"
	"os"
	"strconv"
)

// ConfigPathEnv names the variable pointing at the YAML config file.
const ConfigPathEnv = "HOLLOWFARM_CONFIG"

// FromEnv loads the file named by HOLLOWFARM_CONFIG (or defaults when it is
// unset) and applies environment overrides.
func FromEnv() (*Config, error) {
	cfg := Default()
	if path := os.Getenv(ConfigPathEnv); path != "" {
		var err error
		cfg, err = Load(path)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides settings from environment variables read through
// getenv. Unset variables leave the current value alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("HOLLOWFARM_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("HOLLOWFARM_PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v := getenv("HOLLOWFARM_ADMIN_KEY"); v != "" {
		c.Server.AdminKey = v
	}
	if v := getenv("HOLLOWFARM_DB"); v != "" {
		c.Storage.DBPath = v
	}
	if v := getenv("HOLLOWFARM_TICK_MS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("HOLLOWFARM_TICK_MS: want a positive integer, got %q", v)
		}
		c.Engine.TickMS = n
	}
	if v := getenv("HOLLOWFARM_WOLF_CHANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("HOLLOWFARM_WOLF_CHANCE: %w", err)
		}
		c.Game.WolfChance = f
	}
	if v := getenv("HOLLOWFARM_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("ANTHROPIC_API_KEY"); v != "" {
		c.Oracle.APIKey = v
	}
	if v := getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Weather.APIKey = v
	}
	if v := getenv("OPENWEATHER_LOCATION"); v != "" {
		c.Weather.Location = v
	}
	if v := getenv("RANDOM_ORG_API_KEY"); v != "" {
		c.Entropy.RandomOrgKey = v
	}
	return nil
}
