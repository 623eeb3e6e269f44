package snake

import (
	"fmt"
	"strings"

	"github.com/vovakirdan/snakesim/internal/core"
)

// State is the coarse lifecycle state of a game.
type State string

const (
	StatePlaying State = "playing"
	StateWin     State = "win"
	StateLost    State = "lost"
)

// Summary captures the scalar game state for determinism testing, the HUD
// and the run ledger.
type Summary struct {
	Steps       int
	Score       int
	ApplesEaten int
	Length      int
	Head        core.Coord
	Tail        core.Coord
	Apple       core.Coord
	Direction   core.Direction
	Speed       Speed
	State       State
}

// Summary returns the current game summary.
func (g *Game) Summary() Summary {
	state := StatePlaying
	if o, ok := g.Outcome(); ok {
		state = StateLost
		if o.Kind == OutcomeWin {
			state = StateWin
		}
	}
	return Summary{
		Steps:       g.steps,
		Score:       g.score,
		ApplesEaten: g.apples,
		Length:      g.snake.Len(),
		Head:        g.snake.Head(),
		Tail:        g.snake.Tail(),
		Apple:       g.apple,
		Direction:   g.snake.Direction(),
		Speed:       g.speed,
		State:       state,
	}
}

// DebugState returns a string representation of the game state.
func (g *Game) DebugState() string {
	s := g.Summary()
	var b strings.Builder
	fmt.Fprintf(&b, "Steps: %d, Score: %d, Apples: %d, Speed: %s\n", s.Steps, s.Score, s.ApplesEaten, s.Speed)
	fmt.Fprintf(&b, "Length: %d, Direction: %s\n", s.Length, s.Direction)
	fmt.Fprintf(&b, "Head: %v, Tail: %v, Apple: %v\n", s.Head, s.Tail, s.Apple)
	fmt.Fprintf(&b, "State: %s\n", s.State)
	return b.String()
}
