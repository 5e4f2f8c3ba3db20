package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the cellwatch runtime settings.
type Config struct {
	Initial        float64
	TickInterval   time.Duration
	StepBound      float64
	MasterSeed     uint64
	ReportInterval time.Duration
	LogLevel       string
}

// fileConfig is the cellwatch.toml key mapping.
type fileConfig struct {
	Initial          float64 `toml:"initial"`
	TickIntervalMS   int     `toml:"tick_interval_ms"`
	StepBound        float64 `toml:"step_bound"`
	MasterSeed       uint64  `toml:"master_seed"`
	ReportIntervalMS int     `toml:"report_interval_ms"`
	LogLevel         string  `toml:"log_level"`
}

// Default returns the settings used for keys absent from the file.
func Default() Config {
	return Config{
		Initial:        20.0,
		TickInterval:   500 * time.Millisecond,
		StepBound:      0.5,
		MasterSeed:     1,
		ReportInterval: 5 * time.Second,
		LogLevel:       "info",
	}
}

// Load reads path and overlays its keys onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load cellwatch config: %w", err)
	}

	if meta.IsDefined("initial") {
		cfg.Initial = raw.Initial
	}
	if meta.IsDefined("tick_interval_ms") {
		cfg.TickInterval = time.Duration(raw.TickIntervalMS) * time.Millisecond
	}
	if meta.IsDefined("step_bound") {
		cfg.StepBound = raw.StepBound
	}
	if meta.IsDefined("master_seed") {
		cfg.MasterSeed = raw.MasterSeed
	}
	if meta.IsDefined("report_interval_ms") {
		cfg.ReportInterval = time.Duration(raw.ReportIntervalMS) * time.Millisecond
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = raw.LogLevel
	}

	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load cellwatch config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick_interval_ms must be positive, got %v", c.TickInterval)
	}
	if c.StepBound <= 0 {
		return fmt.Errorf("step_bound must be positive, got %v", c.StepBound)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("report_interval_ms must be positive, got %v", c.ReportInterval)
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
}
