// snakesim is a deterministic Snake engine with parallel self-play.
//
// Usage:
//
//	snakesim play              - Play with the keyboard
//	snakesim watch [agent]     - Watch an agent play
//	snakesim simulate          - Run a self-play batch
//	snakesim serve             - Start SSH server for remote play
//	snakesim agents            - List available agents
//	snakesim runs              - Browse the run ledger
//	snakesim config            - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Configuration file
//	--seed <value>      - Master RNG seed (0 = random based on time)
//	--db <path>         - Run ledger database
//	--log-level <lvl>   - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	// Import agents to register them
	_ "github.com/vovakirdan/snakesim/internal/agent"
	"github.com/vovakirdan/snakesim/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     uint64
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snakesim",
	Short: "Snake engine and self-play simulator",
	Long: `snakesim runs a deterministic Snake engine. Play it in the terminal,
watch built-in agents, or run parallel self-play batches whose recorded
steps can be exported for external learners.

Available commands:
  play      - Play with the keyboard
  watch     - Watch an agent play
  simulate  - Run a self-play batch
  serve     - Start SSH server for remote play
  agents    - List available agents
  runs      - Browse the run ledger
  config    - Print the effective configuration

Examples:
  snakesim play
  snakesim watch greedy
  snakesim simulate --agent greedy --episodes 256 --out ./datasets
  snakesim serve --ssh :2323
  snakesim runs --top`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().Uint64Var(&flagSeed, "seed", 0, "Master RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run ledger database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the configuration and applies the global flags on top.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	if flagSeed != 0 {
		cfg.Simulator.Seed = flagSeed
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newLogger builds the process logger on stderr.
func newLogger(cfg config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: cfg.Logging.Timestamps,
		Prefix:          "snakesim",
		Level:           cfg.LogLevel(),
	})
}

// masterSeed returns the configured seed, or one derived from the clock.
func masterSeed(cfg config.Config) uint64 {
	if cfg.Simulator.Seed != 0 {
		return cfg.Simulator.Seed
	}
	return uint64(time.Now().UnixNano())
}

// terminalSize returns the stdout size, 80x24 when it is not a terminal.
func terminalSize() (int, int) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return 80, 24
}
