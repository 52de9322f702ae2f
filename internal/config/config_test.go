package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rekapabsen.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClockInLimit != "07:30:00" || cfg.ClockOutLimit != "16:00:00" {
		t.Fatalf("default thresholds wrong: %+v", cfg)
	}
	if cfg.Workers != 4 {
		t.Fatalf("default workers wrong: %d", cfg.Workers)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file should be written: %v", err)
	}
}

func TestLoadReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rekapabsen.toml")
	content := `clock_in_limit = "08:00:00"
workers = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClockInLimit != "08:00:00" || cfg.Workers != 2 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ClockOutLimit != "16:00:00" {
		t.Fatalf("unset values should keep defaults: %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REKAP_CLOCK_IN_LIMIT", "07:00:00")
	t.Setenv("REKAP_WORKERS", "8")
	cfg, err := Load(filepath.Join(t.TempDir(), "rekapabsen.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClockInLimit != "07:00:00" || cfg.Workers != 8 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadClampsWorkers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rekapabsen.toml")
	if err := os.WriteFile(path, []byte("workers = 0\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Workers != 1 {
		t.Fatalf("workers should clamp to 1, got %d", cfg.Workers)
	}
}
