// Package config loads the rekapabsen.toml settings file, creating it with
// defaults on first run. Environment variables with a REKAP_ prefix override
// individual file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config is the surface the pipeline consumes.
type Config struct {
	// ClockInLimit and ClockOutLimit feed the status resolver; malformed
	// values fall back to the documented defaults at resolve time.
	ClockInLimit  string `toml:"clock_in_limit"`
	ClockOutLimit string `toml:"clock_out_limit"`

	// Workers bounds the parallel per-employee report generation.
	Workers int `toml:"workers"`

	// OutputRoot is where timestamped report folders are created.
	OutputRoot string `toml:"output_root"`

	// DBPath locates the override store.
	DBPath string `toml:"db_path"`
}

const defaultTOML = `# rekapabsen settings

# Scan thresholds, HH:MM:SS.
clock_in_limit = "07:30:00"
clock_out_limit = "16:00:00"

# Parallel per-employee report workers.
workers = 4

# Report output folders are created under this directory.
output_root = "OUTPUT"

# Manual override store.
db_path = "rekapabsen.db"
`

func Default() Config {
	return Config{
		ClockInLimit:  "07:30:00",
		ClockOutLimit: "16:00:00",
		Workers:       4,
		OutputRoot:    "OUTPUT",
		DBPath:        "rekapabsen.db",
	}
}

// Load reads the config file at path, writing the default file first when it
// does not exist yet. Environment overrides are applied on top.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return Config{}, fmt.Errorf("create config directory: %w", err)
			}
		}
		if err := os.WriteFile(path, []byte(defaultTOML), 0o644); err != nil {
			return Config{}, fmt.Errorf("write default config: %w", err)
		}
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	applyEnv(&cfg)
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.ClockInLimit = envOrDefault("REKAP_CLOCK_IN_LIMIT", cfg.ClockInLimit)
	cfg.ClockOutLimit = envOrDefault("REKAP_CLOCK_OUT_LIMIT", cfg.ClockOutLimit)
	cfg.OutputRoot = envOrDefault("REKAP_OUTPUT_ROOT", cfg.OutputRoot)
	cfg.DBPath = envOrDefault("REKAP_DB_PATH", cfg.DBPath)
	if v := os.Getenv("REKAP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
