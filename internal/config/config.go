// Package config loads servecut configuration from a TOML file with
// defaults applied for anything the file leaves unset.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const (
	DefaultLogLevel  = "info"
	DefaultAPIBind   = "127.0.0.1:8793"
	DefaultPreset    = "slow"
	DefaultCRF       = 18
	DefaultFastMult  = 4
	DefaultSeekBack  = 30
	DefaultRevertMs  = 200
	DefaultClipExt   = ".mp4"
	DefaultConfigDir = ".servecut"

	dbFilename     = "servecut.db"
	ledgerFilename = "serves.csv"
)

// Paths contains directory and file location configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	ClipsDir   string `toml:"clips_dir"`
	RawDir     string `toml:"raw_dir"`
	LedgerPath string `toml:"ledger_path"`
	LogDir     string `toml:"log_dir"`
	APIBind    string `toml:"api_bind"`
}

// Encode contains settings passed through to the external transcoder.
type Encode struct {
	FFmpegBin  string `toml:"ffmpeg_bin"`
	FFprobeBin string `toml:"ffprobe_bin"`
	Preset     string `toml:"preset"`
	CRF        int    `toml:"crf"`
	MaxJobs    int    `toml:"max_jobs"`
}

// Playback contains operator-facing playback tuning.
type Playback struct {
	FastMultiplier int `toml:"fast_multiplier"`
	SeekBackFrames int `toml:"seek_back_frames"`
	FastRevertMs   int `toml:"fast_revert_ms"`
}

// Config is the full servecut configuration.
type Config struct {
	LogLevel string   `toml:"log_level"`
	Paths    Paths    `toml:"paths"`
	Encode   Encode   `toml:"encode"`
	Playback Playback `toml:"playback"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DefaultConfigDir, "config.toml")
	}
	return filepath.Join(home, DefaultConfigDir, "config.toml")
}

// Default returns a Config populated with defaults relative to the user's
// home directory.
func Default() *Config {
	base := filepath.Dir(DefaultPath())
	cfg := &Config{
		LogLevel: DefaultLogLevel,
		Paths: Paths{
			DataDir:  base,
			ClipsDir: filepath.Join("data", "videos", "serves"),
			RawDir:   filepath.Join("data", "videos", "raw"),
			LogDir:   filepath.Join(base, "logs"),
			APIBind:  DefaultAPIBind,
		},
		Encode: Encode{
			FFmpegBin:  "ffmpeg",
			FFprobeBin: "ffprobe",
			Preset:     DefaultPreset,
			CRF:        DefaultCRF,
		},
		Playback: Playback{
			FastMultiplier: DefaultFastMult,
			SeekBackFrames: DefaultSeekBack,
			FastRevertMs:   DefaultRevertMs,
		},
	}
	cfg.Paths.LedgerPath = filepath.Join("data", "metadata", ledgerFilename)
	return cfg
}

// Load reads the config file at path, applying defaults for missing values.
// A missing file is not an error: defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Encode.CRF < 0 || c.Encode.CRF > 51 {
		return fmt.Errorf("encode.crf must be in [0,51], got %d", c.Encode.CRF)
	}
	if c.Encode.MaxJobs < 0 {
		return fmt.Errorf("encode.max_jobs must be >= 0, got %d", c.Encode.MaxJobs)
	}
	if c.Playback.FastMultiplier < 1 {
		return fmt.Errorf("playback.fast_multiplier must be >= 1, got %d", c.Playback.FastMultiplier)
	}
	if c.Playback.SeekBackFrames < 1 {
		return fmt.Errorf("playback.seek_back_frames must be >= 1, got %d", c.Playback.SeekBackFrames)
	}
	if c.Playback.FastRevertMs < 1 {
		return fmt.Errorf("playback.fast_revert_ms must be >= 1, got %d", c.Playback.FastRevertMs)
	}
	if c.Paths.LedgerPath == "" {
		return errors.New("paths.ledger_path must not be empty")
	}
	if c.Paths.ClipsDir == "" {
		return errors.New("paths.clips_dir must not be empty")
	}
	return nil
}

// DBPath returns the full path to the SQLite catalog database.
func (c *Config) DBPath() string {
	return filepath.Join(c.Paths.DataDir, dbFilename)
}

// WriteSample writes the embedded sample config to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0644)
}
