// Package sim drives games with agents and records labeled trajectories
// for external learners, one episode at a time or as a parallel batch.
package sim

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
)

// Agent chooses the next heading for a game. Implementations are shared by
// every worker of a batch and must be safe for concurrent use; all
// randomness must come from rng. Returning anything other than one of the
// four directions fails the episode.
type Agent interface {
	SelectDirection(g *snake.Game, rng snake.Rand) core.Direction
}

// AgentFunc adapts a function to the Agent interface.
type AgentFunc func(g *snake.Game, rng snake.Rand) core.Direction

// SelectDirection calls f(g, rng).
func (f AgentFunc) SelectDirection(g *snake.Game, rng snake.Rand) core.Direction {
	return f(g, rng)
}

// Options configure a Simulator.
type Options struct {
	Grid core.Grid
	Game snake.Options

	// MaxIterations caps the ticks of one episode; reaching it records a
	// forced lost step.
	MaxIterations int
	// ShapingLength is the snake length below which step rewards carry
	// the shaped flag. Zero disables shaping; New does not replace it.
	ShapingLength int
	// Workers bounds the number of episodes run at once.
	Workers int
	// FailFast aborts the whole batch on the first failed episode instead
	// of recording it in Batch.Failed.
	FailFast bool
}

// DefaultOptions returns options for grid.
func DefaultOptions(grid core.Grid) Options {
	return Options{
		Grid:          grid,
		Game:          snake.DefaultOptions(grid),
		MaxIterations: 5000,
		ShapingLength: 10,
		Workers:       runtime.NumCPU(),
	}
}

// Simulator runs episodes against a fixed configuration.
type Simulator struct {
	opts   Options
	logger *log.Logger
}

// New creates a simulator. A nil logger discards output.
func New(opts Options, logger *log.Logger) *Simulator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	def := DefaultOptions(opts.Grid)
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = def.MaxIterations
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Game.DecayInterval <= 0 {
		opts.Game = def.Game
	}
	return &Simulator{opts: opts, logger: logger}
}

// Options returns the effective options.
func (s *Simulator) Options() Options {
	return s.opts
}

// RunEpisode plays one game to a terminal outcome or the iteration cap.
//
// Each tick snapshots the board, asks the agent for a direction, applies it
// and classifies the result. The context is checked once per tick.
func (s *Simulator) RunEpisode(ctx context.Context, agent Agent, rng snake.Rand) (Episode, error) {
	g, err := snake.New(s.opts.Grid, rng, s.opts.Game)
	if err != nil {
		return Episode{}, fmt.Errorf("new game: %w", err)
	}

	var ep Episode
	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return Episode{}, err
		}

		apples := g.ApplesEaten()
		before := g.Encode()
		dir := agent.SelectDirection(g, rng)
		if !dir.Valid() {
			return Episode{}, fmt.Errorf("tick %d: agent chose %d: %w", iter, dir, snake.ErrInvalidDirection)
		}
		shaped := s.approaches(g, dir)

		g.UpdateDirection(dir)
		out, err := g.Next(rng)
		if err != nil {
			return Episode{}, fmt.Errorf("tick %d: %w", iter, err)
		}

		step := Step{Snapshot: before, Direction: dir}
		switch out.Kind {
		case snake.OutcomeLost:
			step.Reward = RewardLost
		case snake.OutcomeWin:
			step.Reward = RewardWon
		default:
			next := g.Encode()
			step.Next = &next
			if g.ApplesEaten() != apples {
				step.Reward = RewardFood
			} else {
				step.Reward = RewardStep
				step.Shaped = shaped
			}
		}
		ep.Steps = append(ep.Steps, step)

		if out.Terminal() {
			ep.Outcome = out
			break
		}
		if iter >= s.opts.MaxIterations {
			ep.Steps = append(ep.Steps, Step{
				Snapshot:  g.Encode(),
				Direction: dir,
				Reward:    RewardLost,
			})
			ep.Outcome = snake.Outcome{
				Kind:         snake.OutcomeLost,
				Steps:        g.Steps(),
				ApplesEaten:  g.ApplesEaten(),
				Length:       g.Len(),
				LevelReached: g.Speed(),
			}
			ep.Truncated = true
			break
		}
	}

	ep.Summary = g.Summary()
	s.logger.Debug("episode finished",
		"outcome", ep.Outcome.Kind,
		"ticks", len(ep.Steps),
		"apples", ep.Summary.ApplesEaten,
		"score", ep.Summary.Score,
		"truncated", ep.Truncated,
	)
	return ep, nil
}

// approaches reports whether moving in dir from the current head lands on
// a free cell strictly closer to the apple, while the snake is short.
func (s *Simulator) approaches(g *snake.Game, dir core.Direction) bool {
	if g.Len() >= s.opts.ShapingLength {
		return false
	}
	head := g.Head()
	next := head.Step(dir)
	occupied, err := g.Occupied(next)
	if err != nil || occupied {
		return false
	}
	return next.L1(g.Apple()) < head.L1(g.Apple())
}
