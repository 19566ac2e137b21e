// Package config loads keyer settings from defaults, a TOML file, the
// environment and command line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gigurra/keyer/cmd/common"
	"github.com/gigurra/keyer/cmd/morse/keyer"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	MinSidetoneHz = 100
	MaxSidetoneHz = 4000
)

var ErrInvalid = errors.New("invalid config")

// Config is the effective keyer configuration.
type Config struct {
	WPM          int
	SidetoneHz   uint32
	WordGap      keyer.WordGap
	PollInterval time.Duration
	Volume       float64
}

// FileConfig mirrors Config with TOML friendly field types.
type FileConfig struct {
	WPM          int      `toml:"wpm"`
	SidetoneHz   uint32   `toml:"sidetone_hz"`
	WordGap      string   `toml:"word_gap"`
	PollInterval string   `toml:"poll_interval"`
	Volume       *float64 `toml:"volume"`
}

// Flag names Apply and ApplyEnv honour in the changed map.
const (
	FlagWPM     = "wpm"
	FlagFreq    = "freq"
	FlagWordGap = "word-gap"
	FlagPoll    = "poll"
	FlagVolume  = "volume"
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		WPM:          keyer.DefaultWPM,
		SidetoneHz:   keyer.DefaultSidetoneHz,
		WordGap:      keyer.WordGapCompat,
		PollInterval: keyer.DefaultPollInterval,
		Volume:       0.5,
	}
}

// DefaultPath returns <config dir>/config.toml.
func DefaultPath() string {
	dir := common.ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// LoadFile reads a TOML config file. A missing file is not an error; found
// reports whether one was read.
func LoadFile(path string) (fc FileConfig, found bool, err error) {
	if path == "" {
		return fc, false, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fc, false, nil
		}
		return fc, false, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, false, fmt.Errorf("parse %s: %w", path, err)
	}
	return fc, true, nil
}

// Apply copies file values into cfg, skipping zero values and any flag that
// was set explicitly.
func Apply(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := setter{changed: changed}
	s.setInt(FlagWPM, fc.WPM, &cfg.WPM)
	if fc.SidetoneHz > 0 && !changed[FlagFreq] {
		cfg.SidetoneHz = fc.SidetoneHz
	}
	if fc.Volume != nil && !changed[FlagVolume] {
		cfg.Volume = *fc.Volume
	}
	if err := s.setWordGap(FlagWordGap, fc.WordGap, &cfg.WordGap); err != nil {
		return err
	}
	return s.setDuration(FlagPoll, fc.PollInterval, &cfg.PollInterval)
}

// ApplyEnv reads KEYER_WPM, KEYER_SIDETONE_HZ, KEYER_WORD_GAP and
// KEYER_VOLUME.
func ApplyEnv(cfg *Config, changed map[string]bool) error {
	s := setter{changed: changed}
	if v := os.Getenv("KEYER_WPM"); v != "" && !changed[FlagWPM] {
		wpm, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse KEYER_WPM: %w", err)
		}
		cfg.WPM = wpm
	}
	if v := os.Getenv("KEYER_SIDETONE_HZ"); v != "" && !changed[FlagFreq] {
		hz, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("parse KEYER_SIDETONE_HZ: %w", err)
		}
		cfg.SidetoneHz = uint32(hz)
	}
	if v := os.Getenv("KEYER_VOLUME"); v != "" && !changed[FlagVolume] {
		vol, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse KEYER_VOLUME: %w", err)
		}
		cfg.Volume = vol
	}
	return s.setWordGap(FlagWordGap, os.Getenv("KEYER_WORD_GAP"), &cfg.WordGap)
}

// Validate checks ranges.
func (c Config) Validate() error {
	if _, err := keyer.DitDuration(c.WPM); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.SidetoneHz < MinSidetoneHz || c.SidetoneHz > MaxSidetoneHz {
		return fmt.Errorf("%w: sidetone %dHz (want %d-%d)", ErrInvalid, c.SidetoneHz, MinSidetoneHz, MaxSidetoneHz)
	}
	if c.Volume < 0 || c.Volume > 1 {
		return fmt.Errorf("%w: volume %v (want 0-1)", ErrInvalid, c.Volume)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval %v", ErrInvalid, c.PollInterval)
	}
	return nil
}

// Timing derives the keyer timing. Call Validate first.
func (c Config) Timing() (keyer.Timing, error) {
	unit, err := keyer.DitDuration(c.WPM)
	if err != nil {
		return keyer.Timing{}, err
	}
	return keyer.Timing{Unit: unit, WordGap: c.WordGap}, nil
}

// File converts c back into its file form.
func (c Config) File() FileConfig {
	vol := c.Volume
	return FileConfig{
		WPM:          c.WPM,
		SidetoneHz:   c.SidetoneHz,
		WordGap:      c.WordGap.String(),
		PollInterval: c.PollInterval.String(),
		Volume:       &vol,
	}
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg.File())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type setter struct {
	changed map[string]bool
}

func (s setter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s setter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s setter) setWordGap(flag, value string, dst *keyer.WordGap) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	g, err := keyer.ParseWordGap(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = g
	return nil
}
