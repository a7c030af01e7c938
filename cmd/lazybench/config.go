package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	modeOptimized = "optimized"
	modeDefault   = "default"
)

type benchConfig struct {
	Mode       string
	Iterations int
	Warmup     int
	Pause      time.Duration
}

func defaultBenchConfig() benchConfig {
	return benchConfig{
		Mode:       modeOptimized,
		Iterations: 1000 * 1000,
		Warmup:     1000,
		Pause:      250 * time.Millisecond,
	}
}

type fileConfig struct {
	Mode       string `toml:"mode"`
	Iterations int    `toml:"iterations"`
	Warmup     int    `toml:"warmup"`
	Pause      string `toml:"pause"`
}

func loadBenchConfig(path string) (benchConfig, error) {
	cfg := defaultBenchConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return benchConfig{}, fmt.Errorf("load bench config: %w", err)
	}

	if meta.IsDefined("mode") {
		cfg.Mode = strings.ToLower(strings.TrimSpace(raw.Mode))
	}
	if meta.IsDefined("iterations") {
		cfg.Iterations = raw.Iterations
	}
	if meta.IsDefined("warmup") {
		cfg.Warmup = raw.Warmup
	}
	if meta.IsDefined("pause") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Pause))
		if err != nil {
			return benchConfig{}, fmt.Errorf("parse pause: %w", err)
		}
		cfg.Pause = d
	}

	if err := cfg.validate(); err != nil {
		return benchConfig{}, err
	}
	return cfg, nil
}

func (c benchConfig) validate() error {
	switch c.Mode {
	case modeOptimized, modeDefault:
	default:
		return fmt.Errorf("bench config: unknown mode %q", c.Mode)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("bench config: iterations must be positive, got %d", c.Iterations)
	}
	if c.Warmup < 0 {
		return fmt.Errorf("bench config: warmup must not be negative, got %d", c.Warmup)
	}
	if c.Pause < 0 {
		return fmt.Errorf("bench config: pause must not be negative, got %v", c.Pause)
	}
	return nil
}
