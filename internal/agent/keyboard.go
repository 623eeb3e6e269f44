package agent

import (
	"sync"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
)

// Keyboard relays the latest direction requested by a human.
// Request may be called from the input goroutine while the game loop calls
// SelectDirection.
type Keyboard struct {
	mu      sync.Mutex
	pending core.Direction
	set     bool
}

// NewKeyboard returns a relay with no pending request.
func NewKeyboard() *Keyboard {
	return &Keyboard{}
}

// Request records d as the heading for the next tick. Later requests in
// the same tick win.
func (k *Keyboard) Request(d core.Direction) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.pending = d
	k.set = true
}

// Reset drops any pending request, used when a new game starts.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.set = false
}

// SelectDirection returns the pending request, or the current heading if
// there is none. Reversing into the body is ignored once the snake is
// longer than one segment.
func (k *Keyboard) SelectDirection(g *snake.Game, _ snake.Rand) core.Direction {
	k.mu.Lock()
	defer k.mu.Unlock()

	cur := g.Direction()
	if !k.set {
		return cur
	}
	k.set = false
	if k.pending == cur.Inverse() && g.Len() > 1 {
		return cur
	}
	return k.pending
}
