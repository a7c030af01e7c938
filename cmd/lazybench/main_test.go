package main

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestLoadBenchConfigOverrides(t *testing.T) {
	cfg, err := loadBenchConfig("ex.config.toml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Mode != modeDefault {
		t.Fatalf("unexpected mode: %q", cfg.Mode)
	}
	if cfg.Iterations != 2000000 {
		t.Fatalf("unexpected iterations: %d", cfg.Iterations)
	}
	if cfg.Warmup != 500 {
		t.Fatalf("unexpected warmup: %d", cfg.Warmup)
	}
	if cfg.Pause != 100*time.Millisecond {
		t.Fatalf("unexpected pause: %v", cfg.Pause)
	}
}

func TestLoadBenchConfigErrors(t *testing.T) {
	if _, err := loadBenchConfig("missing.toml"); err == nil {
		t.Fatalf("expected error for missing file")
	}

	cfg := defaultBenchConfig()
	cfg.Mode = "naughty"
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
	cfg = defaultBenchConfig()
	cfg.Iterations = 0
	if err := cfg.validate(); err == nil {
		t.Fatalf("expected error for zero iterations")
	}
}

func TestRunLoopModesAgree(t *testing.T) {
	buf, err := encodeReference()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	want := frameData{ServiceName: "castle", CallerName: "mario", Endpoint: "door"}
	for _, mode := range []string{modeOptimized, modeDefault} {
		got, err := runLoop(buf, mode, 25)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if got != want {
			t.Fatalf("%s: got %+v want %+v", mode, got, want)
		}
	}
}

func TestRun(t *testing.T) {
	cfg := defaultBenchConfig()
	cfg.Iterations = 10
	cfg.Warmup = 2
	cfg.Pause = 0
	if err := run(zaptest.NewLogger(t), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}
}
