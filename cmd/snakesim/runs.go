package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snakesim/internal/platform/tui"
	"github.com/vovakirdan/snakesim/internal/storage"
)

var (
	flagTop         bool
	flagRunsAgent   string
	flagLimit       int
	flagInteractive bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse the run ledger",
	Long: `List recorded runs, newest first, or the best episodes across runs.

The ledger holds summaries only: per run the agent, seed, board and
aggregate score, per episode its outcome, score, length and speed tier.

Examples:
  snakesim runs
  snakesim runs --top --agent greedy
  snakesim runs -i
  snakesim runs show 3f2a...
  snakesim runs stats`,
	Args: cobra.NoArgs,
	RunE: runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the episodes of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show per-agent totals",
	Args:  cobra.NoArgs,
	RunE:  runRunsStats,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run and its episodes",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsDelete,
}

func init() {
	runsCmd.Flags().BoolVar(&flagTop, "top", false, "List the best episodes instead of runs")
	runsCmd.Flags().StringVar(&flagRunsAgent, "agent", "", "Only episodes of this agent (with --top)")
	runsCmd.Flags().IntVar(&flagLimit, "limit", 10, "Number of rows")
	runsCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Browse in a table")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsStatsCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

func openLedger() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open run ledger: %w", err)
	}
	return store, nil
}

func runRuns(_ *cobra.Command, _ []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	if flagInteractive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("--interactive needs a terminal")
		}
		w, h := terminalSize()
		return tui.RunScoreboard(store, flagRunsAgent, w, h)
	}

	if flagTop {
		eps, err := store.TopEpisodes(flagRunsAgent, flagLimit)
		if err != nil {
			return err
		}
		printEpisodes("Top episodes", eps, true)
		return nil
	}

	runs, err := store.RecentRuns(flagLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'snakesim simulate' to record the first one.")
		return nil
	}

	fmt.Println("Recent runs")
	fmt.Println()
	fmt.Printf("  %-36s  %-10s  %-7s  %5s  %5s  %8s  %s\n", "ID", "Agent", "Grid", "Eps", "Wins", "Mean", "Date")
	for _, r := range runs {
		fmt.Printf("  %-36s  %-10s  %-7s  %5d  %5d  %8.2f  %s\n",
			r.ID, r.Agent, fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			r.Episodes, r.Wins, r.ScoreMean, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func printEpisodes(title string, eps []storage.EpisodeRecord, withRun bool) {
	fmt.Println(title)
	fmt.Println()
	if len(eps) == 0 {
		fmt.Println("No episodes recorded yet.")
		return
	}

	for i, e := range eps {
		run := ""
		if withRun {
			run = e.RunID + "  "
		}
		fmt.Printf("  %4d  %s#%-4d  %-5s  score %-6d  length %-4d  steps %-6d  %s",
			i+1, run, e.Index, e.Outcome, e.Score, e.Length, e.Steps, e.Level)
		if e.Truncated {
			fmt.Print("  (truncated)")
		}
		fmt.Println()
	}
}

func runRunsShow(_ *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.RunByID(args[0])
	if err != nil {
		return err
	}
	eps, err := store.Episodes(run.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  agent    %s\n", run.Agent)
	fmt.Printf("  grid     %dx%d\n", run.Rows, run.Cols)
	fmt.Printf("  seed     %d\n", run.Seed)
	fmt.Printf("  elapsed  %s\n", run.Elapsed.Round(time.Millisecond))
	fmt.Printf("  date     %s\n", run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Println()
	printEpisodes("Episodes", eps, false)
	return nil
}

func runRunsStats(_ *cobra.Command, _ []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.AllAgentStats()
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	agents := make([]string, 0, len(stats))
	for a := range stats {
		agents = append(agents, a)
	}
	sort.Strings(agents)

	fmt.Printf("  %-10s  %5s  %8s  %6s  %8s  %s\n", "Agent", "Runs", "Episodes", "Best", "Mean", "Last run")
	for _, a := range agents {
		st := stats[a]
		fmt.Printf("  %-10s  %5d  %8d  %6d  %8.2f  %s\n",
			st.Agent, st.Runs, st.Episodes, st.HighScore, st.AvgScore, st.LastRun.Format("2006-01-02 15:04"))
	}
	return nil
}

func runRunsDelete(_ *cobra.Command, args []string) error {
	store, err := openLedger()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteRun(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted run %s\n", args[0])
	return nil
}
