// Package agent provides the built-in policies that drive a game: random
// and greedy baselines for batch simulation and a keyboard relay for
// interactive play.
package agent

import (
	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/registry"
	"github.com/vovakirdan/snakesim/internal/sim"
)

func init() {
	registry.Register("random", "uniformly random heading every tick", func() sim.Agent { return Random{} })
	registry.Register("greedy", "moves to the free neighbor closest to the apple", func() sim.Agent { return Greedy{} })
	registry.Register("straight", "never turns", func() sim.Agent { return Straight{} })
}

// Random picks a uniformly random direction, reversals included.
type Random struct{}

func (Random) SelectDirection(_ *snake.Game, rng snake.Rand) core.Direction {
	return core.Directions[rng.IntN(len(core.Directions))]
}

// Straight keeps the current heading.
type Straight struct{}

func (Straight) SelectDirection(g *snake.Game, _ snake.Rand) core.Direction {
	return g.Direction()
}

// Greedy moves to the free neighboring cell with the smallest Manhattan
// distance to the apple, breaking ties by direction ordinal. When every
// neighbor is blocked it keeps the current heading.
type Greedy struct{}

func (Greedy) SelectDirection(g *snake.Game, _ snake.Rand) core.Direction {
	best, bestDist := g.Direction(), -1
	head, apple := g.Head(), g.Apple()
	for _, d := range core.Directions {
		next := head.Step(d)
		if !Free(g, next) {
			continue
		}
		if dist := next.L1(apple); bestDist < 0 || dist < bestDist {
			best, bestDist = d, dist
		}
	}
	return best
}

// Free reports whether c is on the board and not covered by the snake.
func Free(g *snake.Game, c core.Coord) bool {
	occupied, err := g.Occupied(c)
	return err == nil && !occupied
}
