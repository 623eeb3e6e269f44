package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakesim/internal/core"
)

func TestEmbeddedDefaultsMatch(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	expected := Default()
	applyDefaults(&expected)
	if cfg != expected {
		t.Errorf("embedded defaults = %+v\nexpected %+v", cfg, expected)
	}
	if cfg.Path != "" {
		t.Errorf("Path = %q, expected embedded", cfg.Path)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := []byte(`
grid:
  rows: 12
  cols: 16
simulator:
  episodes: 8
  fail_fast: true
play:
  base_tick: 80ms
logging:
  level: debug
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.GridSize() != core.NewGrid(12, 16) {
		t.Errorf("GridSize() = %v, expected 12x16", cfg.GridSize())
	}
	if cfg.Simulator.Episodes != 8 || !cfg.Simulator.FailFast {
		t.Errorf("Simulator = %+v", cfg.Simulator)
	}
	if cfg.Simulator.MaxIterations != 5000 || cfg.Simulator.ShapingLength != 10 {
		t.Errorf("unset simulator fields should keep defaults: %+v", cfg.Simulator)
	}
	if cfg.Play.BaseTick != 80*time.Millisecond {
		t.Errorf("Play.BaseTick = %v, expected 80ms", cfg.Play.BaseTick)
	}
	if cfg.LogLevel() != log.DebugLevel {
		t.Errorf("LogLevel() = %v, expected debug", cfg.LogLevel())
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, expected %q", cfg.Path, path)
	}
	if cfg.GameOptions().DecayInterval != 12*16/5 {
		t.Errorf("GameOptions().DecayInterval = %d", cfg.GameOptions().DecayInterval)
	}
	opts := cfg.SimOptions()
	if opts.Grid != cfg.GridSize() || !opts.FailFast || opts.Workers <= 0 {
		t.Errorf("SimOptions() = %+v", opts)
	}
}

func TestLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := filepath.Join(home, ".snakesim")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("grid:\n  rows: 9\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Grid.Rows != 9 || cfg.Grid.Cols != 40 {
		t.Errorf("Grid = %+v, expected 9x40", cfg.Grid)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() of a missing custom path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"tiny grid", func(c *Config) { c.Grid.Rows = 3 }},
		{"negative decay", func(c *Config) { c.Game.DecayInterval = -1 }},
		{"negative episodes", func(c *Config) { c.Simulator.Episodes = -4 }},
		{"negative iterations", func(c *Config) { c.Simulator.MaxIterations = -1 }},
		{"negative shaping", func(c *Config) { c.Simulator.ShapingLength = -1 }},
		{"bad port", func(c *Config) { c.Serve.Port = 70000 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, expected ErrInvalid", err)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	if _, err := Parse([]byte("grid: [1, 2")); err == nil {
		t.Error("Parse() of malformed YAML should fail")
	}
	if _, err := Parse([]byte("grid:\n  cols: 2\n")); !errors.Is(err, ErrInvalid) {
		t.Errorf("Parse() of a 32x2 grid = %v, expected ErrInvalid", err)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.snakesim/runs.db")
	if err != nil {
		t.Fatalf("ExpandHome() error: %v", err)
	}
	if got != filepath.Join(home, ".snakesim", "runs.db") {
		t.Errorf("ExpandHome() = %q", got)
	}
	if got, _ := ExpandHome("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("ExpandHome() of an absolute path = %q", got)
	}
}
