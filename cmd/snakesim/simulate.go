package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakesim/internal/config"
	"github.com/vovakirdan/snakesim/internal/dataset"
	"github.com/vovakirdan/snakesim/internal/registry"
	"github.com/vovakirdan/snakesim/internal/sim"
	"github.com/vovakirdan/snakesim/internal/storage"
)

var (
	flagAgent         string
	flagEpisodes      int
	flagWorkers       int
	flagMaxIterations int
	flagShaping       int
	flagFailFast      bool
	flagOut           string
	flagExport        bool
	flagNoLedger      bool
	flagTimeout       time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a self-play batch",
	Long: `Run independent episodes of an agent in parallel and record every step.

Episode i draws its randomness from (seed, i), so a batch is reproducible
from its seed whatever the worker count. A failed episode is reported and
skipped unless --fail-fast is given.

The batch summary goes to the run ledger. With --out, the recorded steps
are also written as a zstd-compressed Parquet file: either the given
.parquet path or <run id>.parquet inside the given directory. --export
writes into storage.dataset_dir instead.

Examples:
  snakesim simulate
  snakesim simulate --agent random --episodes 1000 --workers 8
  snakesim simulate --seed 42 --export
  snakesim simulate --out ./greedy.parquet --no-ledger`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&flagAgent, "agent", "", "Agent to run (default from config)")
	f.IntVarP(&flagEpisodes, "episodes", "n", 0, "Number of episodes (default from config)")
	f.IntVar(&flagWorkers, "workers", 0, "Parallel episodes (default from config)")
	f.IntVar(&flagMaxIterations, "max-iterations", 0, "Per-episode tick cap (default from config)")
	f.IntVar(&flagShaping, "shaping", -1, "Snake length below which approach moves are flagged (default from config)")
	f.BoolVar(&flagFailFast, "fail-fast", false, "Abort the batch on the first failed episode")
	f.StringVarP(&flagOut, "out", "o", "", "Parquet file or directory for the recorded steps")
	f.BoolVar(&flagExport, "export", false, "Write the recorded steps into storage.dataset_dir")
	f.BoolVar(&flagNoLedger, "no-ledger", false, "Do not record the run in the ledger")
	f.DurationVar(&flagTimeout, "timeout", 0, "Cancel the batch after this long (0 = no limit)")
}

// applySimulateFlags overrides the simulator section with explicit flags.
func applySimulateFlags(cfg *config.Config) error {
	if flagAgent != "" {
		cfg.Simulator.Agent = flagAgent
	}
	if flagEpisodes != 0 {
		cfg.Simulator.Episodes = flagEpisodes
	}
	if flagWorkers != 0 {
		cfg.Simulator.Workers = flagWorkers
	}
	if flagMaxIterations != 0 {
		cfg.Simulator.MaxIterations = flagMaxIterations
	}
	if flagShaping >= 0 {
		cfg.Simulator.ShapingLength = flagShaping
	}
	if flagFailFast {
		cfg.Simulator.FailFast = true
	}
	return cfg.Validate()
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applySimulateFlags(&cfg); err != nil {
		return err
	}
	logger := newLogger(cfg)

	agent, err := registry.Create(cfg.Simulator.Agent)
	if errors.Is(err, registry.ErrUnknownAgent) {
		return fmt.Errorf("%w (run 'snakesim agents' to list them)", err)
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if flagTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	seed := masterSeed(cfg)
	s := sim.New(cfg.SimOptions(), logger.With("agent", cfg.Simulator.Agent))
	batch, err := s.RunMany(ctx, cfg.Simulator.Episodes, agent, seed)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	if !flagNoLedger {
		id, err := recordRun(cfg, batch)
		if err != nil {
			logger.Warn("run not recorded", "err", err)
		} else {
			runID = id
		}
	}

	out := flagOut
	if out == "" && flagExport {
		if out, err = config.ExpandHome(cfg.Storage.DatasetDir); err != nil {
			return err
		}
	}
	if out != "" {
		path, err := exportSteps(out, runID, batch)
		if err != nil {
			return err
		}
		logger.Info("steps exported", "path", path, "rows", len(batch.Steps()))
	}

	printStats(cfg, runID, batch)
	return nil
}

func recordRun(cfg config.Config, b *sim.Batch) (string, error) {
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return "", err
	}
	defer store.Close()

	run, err := store.SaveRun(cfg.Simulator.Agent, cfg.GridSize(), b)
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

// exportSteps writes to out itself when it names a .parquet file, otherwise
// into the directory out.
func exportSteps(out, runID string, b *sim.Batch) (string, error) {
	if strings.EqualFold(filepath.Ext(out), ".parquet") {
		return out, dataset.Write(out, dataset.RowsFromBatch(runID, b))
	}
	return dataset.WriteBatch(out, runID, b)
}

func printStats(cfg config.Config, runID string, b *sim.Batch) {
	st := b.Stats()

	fmt.Printf("Run %s\n", runID)
	fmt.Printf("  agent      %s\n", cfg.Simulator.Agent)
	fmt.Printf("  grid       %dx%d\n", cfg.Grid.Rows, cfg.Grid.Cols)
	fmt.Printf("  seed       %d\n", b.Seed)
	fmt.Printf("  elapsed    %s\n", b.Elapsed.Round(time.Millisecond))
	fmt.Println()
	fmt.Printf("  episodes   %d (%d failed)\n", st.Episodes, st.Failed)
	fmt.Printf("  outcomes   %d won, %d lost, %d truncated\n", st.Wins, st.Losses, st.Truncated)
	fmt.Printf("  steps      %d recorded\n", st.Steps)
	fmt.Printf("  score      %.2f ± %.2f\n", st.ScoreMean, st.ScoreStd)
	fmt.Printf("  apples     %.2f\n", st.ApplesMean)
	fmt.Printf("  length     %.2f (max %d)\n", st.LengthMean, st.LengthMax)
	fmt.Printf("  ticks      %.2f\n", st.TicksMean)

	if len(st.Rewards) > 0 {
		fmt.Println()
		for _, r := range []sim.Reward{sim.RewardStep, sim.RewardFood, sim.RewardWon, sim.RewardLost} {
			fmt.Printf("  %-10s %d\n", r, st.Rewards[r])
		}
	}
	for _, f := range b.Failed {
		fmt.Fprintf(os.Stderr, "episode %d failed: %v\n", f.Index, f.Err)
	}
}
