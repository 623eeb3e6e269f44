// Package snake implements the deterministic Snake engine: the per-direction
// occupancy grid, the tick transition, speed tiers, and the snapshot
// encoding handed to learners.
package snake

import (
	"errors"
	"fmt"

	"github.com/vovakirdan/snakesim/internal/core"
)

// MinGridSide is the smallest row or column count a game accepts.
const MinGridSide = 4

// ErrGridTooSmall is returned when the board cannot hold an apple away from
// the spawn cell.
var ErrGridTooSmall = errors.New("snake: grid too small")

// ErrInvalidDirection is returned for a heading outside the four directions.
var ErrInvalidDirection = errors.New("snake: invalid direction")

// OutcomeKind classifies the result of one tick.
type OutcomeKind int

const (
	OutcomeBase OutcomeKind = iota
	OutcomeWin
	OutcomeLost
)

// String returns a human-readable name for the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeBase:
		return "base"
	case OutcomeWin:
		return "win"
	case OutcomeLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Outcome is the result of Next. Steps is set for Win and Lost; the other
// counters are only filled for Lost.
type Outcome struct {
	Kind         OutcomeKind
	Steps        int
	ApplesEaten  int
	Length       int
	LevelReached Speed
}

// Terminal reports whether the outcome ends the game.
func (o Outcome) Terminal() bool {
	return o.Kind != OutcomeBase
}

// Options tune a game.
type Options struct {
	// DecayInterval is the number of steps per one-point score decay.
	DecayInterval int
}

// DefaultOptions returns options scaled to the grid: one point of decay
// every area/5 steps.
func DefaultOptions(grid core.Grid) Options {
	return Options{DecayInterval: max(1, grid.Area()/5)}
}

// Game is the full state of one Snake game.
type Game struct {
	grid    core.Grid
	opts    Options
	snake   *Occupancy
	apple   core.Coord
	steps   int
	apples  int
	score   int
	speed   Speed
	outcome *Outcome // set once the game is over
}

// New creates a game with a one-segment snake at the grid center facing
// left and an apple placed at Chebyshev distance greater than one from it.
func New(grid core.Grid, rng Rand, opts Options) (*Game, error) {
	if grid.Rows < MinGridSide || grid.Cols < MinGridSide {
		return nil, fmt.Errorf("%w: %v, need at least %dx%d", ErrGridTooSmall, grid, MinGridSide, MinGridSide)
	}
	if opts.DecayInterval <= 0 {
		opts.DecayInterval = DefaultOptions(grid).DecayInterval
	}

	center := grid.Center()
	occ, err := NewOccupancy(grid, center, core.DirLeft)
	if err != nil {
		return nil, err
	}

	g := &Game{
		grid:  grid,
		opts:  opts,
		snake: occ,
	}
	for {
		c := core.Coord{Row: rng.IntN(grid.Rows), Col: rng.IntN(grid.Cols)}
		if c.L0(center) > 1 {
			g.apple = c
			break
		}
	}
	g.speed = SpeedFor(occ.Len(), grid.Area())
	return g, nil
}

// UpdateDirection changes the heading. Reversing into the body is not
// rejected; the next tick simply loses. Headings outside the four
// directions are ignored.
func (g *Game) UpdateDirection(d core.Direction) {
	if g.outcome != nil || !d.Valid() {
		return
	}
	g.snake.SetDirection(d)
}

// Next advances the game by one tick.
//
// An invalid next cell yields Lost without touching the board. Eating the
// last free cell yields Win. After either, Next keeps returning the same
// outcome. Errors indicate a broken invariant, never a game event.
func (g *Game) Next(rng Rand) (Outcome, error) {
	if g.outcome != nil {
		return *g.outcome, nil
	}

	if !g.snake.IsNextValid() {
		return g.finish(Outcome{
			Kind:         OutcomeLost,
			Steps:        g.steps,
			ApplesEaten:  g.apples,
			Length:       g.snake.Len(),
			LevelReached: g.speed,
		}), nil
	}

	head, _ := g.snake.NextHead()
	withFood := head == g.apple
	if err := g.snake.Advance(withFood); err != nil {
		return Outcome{}, fmt.Errorf("step %d: %w", g.steps, err)
	}

	if withFood {
		spot, ok := g.snake.FreeSpot(rng)
		if !ok {
			return g.finish(Outcome{Kind: OutcomeWin, Steps: g.steps}), nil
		}
		g.apples++
		g.apple = spot
	}

	g.steps++
	g.speed = SpeedFor(g.snake.Len(), g.grid.Area())
	if withFood {
		g.score += g.speed.ScoreValue()
	}
	if g.steps%g.opts.DecayInterval == 0 && g.score > 0 {
		g.score--
	}
	return Outcome{Kind: OutcomeBase}, nil
}

func (g *Game) finish(o Outcome) Outcome {
	g.outcome = &o
	return o
}

// Over reports whether Next has returned Win or Lost.
func (g *Game) Over() bool {
	return g.outcome != nil
}

// Outcome returns the terminal outcome, if any.
func (g *Game) Outcome() (Outcome, bool) {
	if g.outcome == nil {
		return Outcome{}, false
	}
	return *g.outcome, true
}

// IsNextValid reports whether the current heading leads to a free cell.
func (g *Game) IsNextValid() bool {
	return g.snake.IsNextValid()
}

// Occupied reports whether the snake covers c.
func (g *Game) Occupied(c core.Coord) (bool, error) {
	return g.snake.Occupied(c)
}

// FreeCells returns the number of cells not covered by the snake.
func (g *Game) FreeCells() int {
	return g.grid.Area() - g.snake.Count()
}

func (g *Game) Grid() core.Grid           { return g.grid }
func (g *Game) Options() Options          { return g.opts }
func (g *Game) Head() core.Coord          { return g.snake.Head() }
func (g *Game) Tail() core.Coord          { return g.snake.Tail() }
func (g *Game) Apple() core.Coord         { return g.apple }
func (g *Game) Direction() core.Direction { return g.snake.Direction() }
func (g *Game) Score() int                { return g.score }
func (g *Game) Steps() int                { return g.steps }
func (g *Game) ApplesEaten() int          { return g.apples }
func (g *Game) Len() int                  { return g.snake.Len() }
func (g *Game) Speed() Speed              { return g.speed }
func (g *Game) Body() []core.Coord        { return g.snake.Cells() }
