// Package config provides YAML-based configuration loading for the
// simulator, the interactive driver and the run ledger.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/sim"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the root configuration structure.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Game      GameConfig      `yaml:"game"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Play      PlayConfig      `yaml:"play"`
	Serve     ServeConfig     `yaml:"serve"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LoggingConfig   `yaml:"logging"`

	// Path is the file the configuration was read from, empty for the
	// embedded defaults.
	Path string `yaml:"-"`
}

// GridConfig defines the board dimensions.
type GridConfig struct {
	Rows int `yaml:"rows"`
	Cols int `yaml:"cols"`
}

// GameConfig defines per-game options.
type GameConfig struct {
	DecayInterval int `yaml:"decay_interval"` // 0 means area/5
}

// SimulatorConfig defines batch self-play parameters.
type SimulatorConfig struct {
	Agent         string `yaml:"agent"`
	Episodes      int    `yaml:"episodes"`
	MaxIterations int    `yaml:"max_iterations"`
	ShapingLength int    `yaml:"shaping_length"`
	Workers       int    `yaml:"workers"` // 0 means one per CPU
	FailFast      bool   `yaml:"fail_fast"`
	Seed          uint64 `yaml:"seed"` // 0 means derive from the clock
}

// PlayConfig defines the interactive driver.
type PlayConfig struct {
	BaseTick time.Duration `yaml:"base_tick"` // tick at the slowest speed tier
	Agent    string        `yaml:"agent"`     // agent shown by watch
}

// ServeConfig defines the SSH server.
type ServeConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	HostKey string `yaml:"host_key"`
}

// StorageConfig defines where runs and datasets are written.
type StorageConfig struct {
	DBPath     string `yaml:"db_path"`
	DatasetDir string `yaml:"dataset_dir"`
}

// LoggingConfig defines the logger.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Timestamps bool   `yaml:"timestamps"`
}

// applyDefaults fills zero values.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.Grid.Rows == 0 {
		cfg.Grid.Rows = def.Grid.Rows
	}
	if cfg.Grid.Cols == 0 {
		cfg.Grid.Cols = def.Grid.Cols
	}
	if cfg.Simulator.Agent == "" {
		cfg.Simulator.Agent = def.Simulator.Agent
	}
	if cfg.Simulator.Episodes == 0 {
		cfg.Simulator.Episodes = def.Simulator.Episodes
	}
	if cfg.Simulator.MaxIterations == 0 {
		cfg.Simulator.MaxIterations = def.Simulator.MaxIterations
	}
	if cfg.Simulator.Workers == 0 {
		cfg.Simulator.Workers = runtime.NumCPU()
	}
	if cfg.Play.BaseTick == 0 {
		cfg.Play.BaseTick = def.Play.BaseTick
	}
	if cfg.Play.Agent == "" {
		cfg.Play.Agent = def.Play.Agent
	}
	if cfg.Serve.Host == "" {
		cfg.Serve.Host = def.Serve.Host
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = def.Serve.Port
	}
	if cfg.Serve.HostKey == "" {
		cfg.Serve.HostKey = def.Serve.HostKey
	}
	if cfg.Storage.DBPath == "" {
		cfg.Storage.DBPath = def.Storage.DBPath
	}
	if cfg.Storage.DatasetDir == "" {
		cfg.Storage.DatasetDir = def.Storage.DatasetDir
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Grid.Rows < snake.MinGridSide || c.Grid.Cols < snake.MinGridSide:
		return fmt.Errorf("%w: grid %dx%d is smaller than %dx%d", ErrInvalid,
			c.Grid.Rows, c.Grid.Cols, snake.MinGridSide, snake.MinGridSide)
	case c.Game.DecayInterval < 0:
		return fmt.Errorf("%w: game.decay_interval must not be negative", ErrInvalid)
	case c.Simulator.Episodes <= 0:
		return fmt.Errorf("%w: simulator.episodes must be positive", ErrInvalid)
	case c.Simulator.MaxIterations <= 0:
		return fmt.Errorf("%w: simulator.max_iterations must be positive", ErrInvalid)
	case c.Simulator.ShapingLength < 0:
		return fmt.Errorf("%w: simulator.shaping_length must not be negative", ErrInvalid)
	case c.Simulator.Workers < 0:
		return fmt.Errorf("%w: simulator.workers must not be negative", ErrInvalid)
	case c.Play.BaseTick <= 0:
		return fmt.Errorf("%w: play.base_tick must be positive", ErrInvalid)
	case c.Serve.Port < 0 || c.Serve.Port > 65535:
		return fmt.Errorf("%w: serve.port %d out of range", ErrInvalid, c.Serve.Port)
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level %q", ErrInvalid, c.Logging.Level)
	}
	return nil
}

// GridSize returns the configured board.
func (c Config) GridSize() core.Grid {
	return core.NewGrid(c.Grid.Rows, c.Grid.Cols)
}

// GameOptions returns the engine options for the configured board.
func (c Config) GameOptions() snake.Options {
	if c.Game.DecayInterval > 0 {
		return snake.Options{DecayInterval: c.Game.DecayInterval}
	}
	return snake.DefaultOptions(c.GridSize())
}

// SimOptions returns the simulator options.
func (c Config) SimOptions() sim.Options {
	return sim.Options{
		Grid:          c.GridSize(),
		Game:          c.GameOptions(),
		MaxIterations: c.Simulator.MaxIterations,
		ShapingLength: c.Simulator.ShapingLength,
		Workers:       c.Simulator.Workers,
		FailFast:      c.Simulator.FailFast,
	}
}

// Runtime returns the driver configuration for the given terminal size.
func (c Config) Runtime(screenW, screenH int, seed uint64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  screenW,
		ScreenH:  screenH,
		Grid:     c.GridSize(),
		BaseTick: c.Play.BaseTick,
		Seed:     seed,
	}
}

// LogLevel returns the parsed logging level, Info when unparsable.
func (c Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(c.Logging.Level))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
