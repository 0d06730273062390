package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("log level = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Encode.CRF != DefaultCRF {
		t.Errorf("crf = %d, want %d", cfg.Encode.CRF, DefaultCRF)
	}
	if cfg.Playback.FastMultiplier != DefaultFastMult {
		t.Errorf("fast multiplier = %d, want %d", cfg.Playback.FastMultiplier, DefaultFastMult)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
log_level = "debug"

[paths]
ledger_path = "/tmp/serves.csv"
clips_dir = "/tmp/clips"

[encode]
crf = 23
max_jobs = 2

[playback]
seek_back_frames = 10
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q, want debug", cfg.LogLevel)
	}
	if cfg.Paths.LedgerPath != "/tmp/serves.csv" {
		t.Errorf("ledger path = %q", cfg.Paths.LedgerPath)
	}
	if cfg.Encode.CRF != 23 {
		t.Errorf("crf = %d, want 23", cfg.Encode.CRF)
	}
	if cfg.Encode.MaxJobs != 2 {
		t.Errorf("max jobs = %d, want 2", cfg.Encode.MaxJobs)
	}
	if cfg.Playback.SeekBackFrames != 10 {
		t.Errorf("seek back = %d, want 10", cfg.Playback.SeekBackFrames)
	}
	// Unset sections keep defaults.
	if cfg.Encode.Preset != DefaultPreset {
		t.Errorf("preset = %q, want %q", cfg.Encode.Preset, DefaultPreset)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"crf too high", func(c *Config) { c.Encode.CRF = 99 }},
		{"negative max jobs", func(c *Config) { c.Encode.MaxJobs = -1 }},
		{"zero multiplier", func(c *Config) { c.Playback.FastMultiplier = 0 }},
		{"empty ledger path", func(c *Config) { c.Paths.LedgerPath = "" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
}
