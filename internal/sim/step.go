package sim

import (
	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
)

// Reward classifies one recorded tick for a learner.
type Reward int

const (
	RewardStep Reward = iota
	RewardFood
	RewardWon
	RewardLost
)

// String returns a human-readable name for the reward class.
func (r Reward) String() string {
	switch r {
	case RewardStep:
		return "step"
	case RewardFood:
		return "food"
	case RewardWon:
		return "won"
	case RewardLost:
		return "lost"
	default:
		return "unknown"
	}
}

// Step is one recorded tick: the board before the move, the direction the
// agent chose, the reward class, and the board after the move. Next is nil
// for terminal steps. Shaped is only meaningful for RewardStep and tells
// whether the move approached the apple while the snake was still short.
type Step struct {
	Snapshot  snake.Snapshot
	Direction core.Direction
	Reward    Reward
	Shaped    bool
	Next      *snake.Snapshot
}

// Terminal reports whether the step ended its episode.
func (s Step) Terminal() bool {
	return s.Next == nil
}

// Episode is the trajectory of one game from start to its terminal step.
type Episode struct {
	Index     int
	Seed      uint64 // batch master seed; the episode rng is EpisodeSeed(Seed, Index), see Rand
	Steps     []Step
	Outcome   snake.Outcome
	Summary   snake.Summary
	Truncated bool // stopped by the iteration cap
}

// Won reports whether the episode filled the board.
func (e Episode) Won() bool {
	return e.Outcome.Kind == snake.OutcomeWin
}
