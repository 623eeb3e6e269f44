package main

import (
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakesim/internal/config"
	"github.com/vovakirdan/snakesim/internal/platform/tui"
	"github.com/vovakirdan/snakesim/internal/registry"
	"github.com/vovakirdan/snakesim/internal/sim"
	"github.com/vovakirdan/snakesim/internal/storage"
)

var (
	flagLogFile  string
	flagPick     bool
	flagOnce     bool
	flagNoRecord bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play with the keyboard",
	Long: `Start a keyboard game on the configured board.

The game speeds up as the snake fills the board: each speed tier
shortens the base tick (play.base_tick).

Controls:
  Arrows/WASD/HJKL - Steer
  P/Esc            - Pause
  R                - Restart (after game over)
  Q/Ctrl+C         - Quit

Finished games are recorded in the run ledger as agent "human".

Examples:
  snakesim play
  snakesim play --seed 7
  snakesim play --log-file /tmp/snakesim.log`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return runGame(cfg, tui.HumanAgent, false)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch [agent]",
	Short: "Watch an agent play",
	Long: `Watch a registered agent play on the configured board. Without an
argument the agent from play.agent is used; --pick opens a picker instead.

A finished game restarts automatically unless --once is given.

Examples:
  snakesim watch
  snakesim watch random
  snakesim watch --pick`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	for _, c := range []*cobra.Command{playCmd, watchCmd} {
		c.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file while the game runs")
		c.Flags().BoolVar(&flagNoRecord, "no-record", false, "Do not record finished games in the ledger")
	}
	watchCmd.Flags().BoolVar(&flagPick, "pick", false, "Choose the agent from a menu")
	watchCmd.Flags().BoolVar(&flagOnce, "once", false, "Stop at the first game over instead of restarting")
}

func runWatch(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	agentID := cfg.Play.Agent
	switch {
	case len(args) == 1:
		agentID = args[0]
	case flagPick:
		w, h := terminalSize()
		agentID, err = tui.RunMenu(w, h)
		if err != nil {
			return err
		}
		if agentID == "" {
			return nil
		}
	}
	return runGame(cfg, agentID, !flagOnce && agentID != tui.HumanAgent)
}

// runGame runs the interactive driver for a keyboard or registered agent.
func runGame(cfg config.Config, agentID string, autoRestart bool) error {
	var agent sim.Agent
	if agentID != tui.HumanAgent {
		var err error
		agent, err = registry.Create(agentID)
		if errors.Is(err, registry.ErrUnknownAgent) {
			return fmt.Errorf("%w (run 'snakesim agents' to list them)", err)
		}
		if err != nil {
			return err
		}
	}

	logger, closeLog, err := gameLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	var saver tui.RunSaver
	if !flagNoRecord {
		store, err := storage.Open(cfg.Storage.DBPath)
		if err != nil {
			logger.Warn("could not open run ledger", "err", err)
		} else {
			defer store.Close()
			saver = store
		}
	}

	w, h := terminalSize()
	return tui.Run(tui.Options{
		Runtime:     cfg.Runtime(w, h, cfg.Simulator.Seed),
		Game:        cfg.GameOptions(),
		Agent:       agent,
		AgentName:   agentID,
		AutoRestart: autoRestart,
		Store:       saver,
		Logger:      logger,
	})
}

// gameLogger logs to --log-file, or nowhere; stderr would corrupt the
// alternate screen.
func gameLogger(cfg config.Config) (*log.Logger, func(), error) {
	if flagLogFile == "" {
		return log.New(io.Discard), func() {}, nil
	}
	f, err := tea.LogToFile(flagLogFile, "")
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "snakesim",
		Level:           cfg.LogLevel(),
	})
	return logger, func() { f.Close() }, nil
}
