package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vovakirdan/snakesim/internal/config"
	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/sim"
)

func testBatch(t *testing.T) *sim.Batch {
	t.Helper()
	straight := sim.AgentFunc(func(g *snake.Game, _ snake.Rand) core.Direction {
		return g.Direction()
	})
	b, err := sim.New(sim.DefaultOptions(core.NewGrid(6, 6)), nil).
		RunMany(context.Background(), 2, straight, 3)
	if err != nil {
		t.Fatalf("RunMany() error: %v", err)
	}
	return b
}

func TestExportSteps(t *testing.T) {
	b := testBatch(t)
	dir := t.TempDir()

	tests := []struct {
		name     string
		out      string
		expected string
	}{
		{"file", filepath.Join(dir, "steps.parquet"), filepath.Join(dir, "steps.parquet")},
		{"file upper ext", filepath.Join(dir, "STEPS.PARQUET"), filepath.Join(dir, "STEPS.PARQUET")},
		{"directory", filepath.Join(dir, "datasets"), filepath.Join(dir, "datasets", "run-9.parquet")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := exportSteps(tt.out, "run-9", b)
			if err != nil {
				t.Fatalf("exportSteps() error: %v", err)
			}
			if path != tt.expected {
				t.Errorf("exportSteps() = %q, expected %q", path, tt.expected)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("exported file missing: %v", err)
			}
		})
	}
}

func TestApplySimulateFlags(t *testing.T) {
	defer func() {
		flagAgent, flagEpisodes, flagShaping, flagFailFast = "", 0, -1, false
	}()

	cfg := config.Default()
	shaping := cfg.Simulator.ShapingLength

	flagAgent = "greedy"
	flagEpisodes = 12
	flagShaping = -1
	flagFailFast = true
	if err := applySimulateFlags(&cfg); err != nil {
		t.Fatalf("applySimulateFlags() error: %v", err)
	}
	if cfg.Simulator.Agent != "greedy" || cfg.Simulator.Episodes != 12 || !cfg.Simulator.FailFast {
		t.Errorf("flags not applied: %+v", cfg.Simulator)
	}
	if cfg.Simulator.ShapingLength != shaping {
		t.Errorf("ShapingLength = %d, expected unchanged %d", cfg.Simulator.ShapingLength, shaping)
	}

	flagEpisodes = -1
	if err := applySimulateFlags(&cfg); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("applySimulateFlags() error = %v, expected ErrInvalid", err)
	}
}

func TestSSHConfig(t *testing.T) {
	defer func() { flagSSHAddr, flagHostKey, flagIdleTimeout = "", "", 30 }()

	cfg := config.Default()
	cfg.Serve.Host = "127.0.0.1"
	cfg.Serve.Port = 2424
	cfg.Serve.HostKey = "/tmp/key"
	flagIdleTimeout = 5

	got, err := sshConfig(cfg)
	if err != nil {
		t.Fatalf("sshConfig() error: %v", err)
	}
	if got.Address != "127.0.0.1:2424" {
		t.Errorf("Address = %q, expected 127.0.0.1:2424", got.Address)
	}
	if got.HostKeyPath != "/tmp/key" {
		t.Errorf("HostKeyPath = %q, expected /tmp/key", got.HostKeyPath)
	}
	if got.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v, expected 5m", got.IdleTimeout)
	}
	if got.Grid != cfg.GridSize() {
		t.Errorf("Grid = %v, expected %v", got.Grid, cfg.GridSize())
	}

	flagSSHAddr = ":2222"
	flagHostKey = "./k"
	got, err = sshConfig(cfg)
	if err != nil {
		t.Fatalf("sshConfig() error: %v", err)
	}
	if got.Address != ":2222" || got.HostKeyPath != "./k" {
		t.Errorf("flags not applied: %+v", got)
	}
}
