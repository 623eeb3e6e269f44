package agent

import (
	"math/rand/v2"
	"testing"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/registry"
)

type scriptedRand struct{ vals []int }

func (r *scriptedRand) IntN(n int) int {
	if len(r.vals) == 0 {
		return 0
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v % n
}

func newGame(t *testing.T, appleRow, appleCol int) *snake.Game {
	t.Helper()
	grid := core.NewGrid(12, 12)
	g, err := snake.New(grid, &scriptedRand{vals: []int{appleRow, appleCol}}, snake.DefaultOptions(grid))
	if err != nil {
		t.Fatalf("snake.New() error: %v", err)
	}
	return g
}

func TestGreedyBreaksTiesByOrdinal(t *testing.T) {
	tests := []struct {
		name     string
		row, col int
		expected core.Direction
	}{
		{"up and right tie", 4, 8, core.DirUp},
		{"left and up tie", 4, 4, core.DirLeft},
		{"straight down", 10, 6, core.DirDown},
		{"straight right", 6, 11, core.DirRight},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newGame(t, tc.row, tc.col)
			if got := (Greedy{}).SelectDirection(g, nil); got != tc.expected {
				t.Errorf("SelectDirection() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestGreedyEatsApples(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 0))
	grid := core.NewGrid(12, 12)
	g, err := snake.New(grid, rng, snake.DefaultOptions(grid))
	if err != nil {
		t.Fatalf("snake.New() error: %v", err)
	}
	for i := 0; i < 500 && !g.Over(); i++ {
		g.UpdateDirection(Greedy{}.SelectDirection(g, rng))
		if _, err := g.Next(rng); err != nil {
			t.Fatalf("Next() error: %v", err)
		}
	}
	if g.ApplesEaten() < 3 {
		t.Errorf("greedy ate %d apples, expected at least 3", g.ApplesEaten())
	}
}

func TestStraightHitsWall(t *testing.T) {
	g := newGame(t, 4, 4)
	var out snake.Outcome
	for i := 0; i < 20 && !g.Over(); i++ {
		g.UpdateDirection(Straight{}.SelectDirection(g, nil))
		out, _ = g.Next(nil)
	}
	if out.Kind != snake.OutcomeLost || out.Steps != 6 {
		t.Errorf("outcome = %+v, expected lost after 6 steps", out)
	}
}

func TestRandomCoversAllDirections(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	seen := make(map[core.Direction]int)
	for i := 0; i < 400; i++ {
		seen[Random{}.SelectDirection(nil, rng)]++
	}
	if len(seen) != 4 {
		t.Errorf("Random chose %d distinct directions, expected 4", len(seen))
	}
}

func TestKeyboard(t *testing.T) {
	g := newGame(t, 4, 4)
	k := NewKeyboard()

	if got := k.SelectDirection(g, nil); got != core.DirLeft {
		t.Errorf("no request: SelectDirection() = %v, expected left", got)
	}

	// a single segment may reverse
	k.Request(core.DirUp)
	k.Request(core.DirRight)
	if got := k.SelectDirection(g, nil); got != core.DirRight {
		t.Errorf("SelectDirection() = %v, expected latest request right", got)
	}
	if got := k.SelectDirection(g, nil); got != core.DirLeft {
		t.Errorf("request should be consumed, got %v", got)
	}

	// grow to two segments by walking into the apple at (4,4)
	for _, d := range []core.Direction{core.DirUp, core.DirUp, core.DirLeft, core.DirLeft} {
		g.UpdateDirection(d)
		if _, err := g.Next(&scriptedRand{}); err != nil {
			t.Fatalf("Next() error: %v", err)
		}
	}
	if g.Len() != 2 {
		t.Fatalf("Len() = %d, expected 2", g.Len())
	}

	k.Request(core.DirRight)
	if got := k.SelectDirection(g, nil); got != core.DirLeft {
		t.Errorf("reversal should be ignored, got %v", got)
	}
	k.Request(core.DirDown)
	k.Reset()
	if got := k.SelectDirection(g, nil); got != core.DirLeft {
		t.Errorf("Reset() should drop the request, got %v", got)
	}
}

func TestRegistered(t *testing.T) {
	for _, id := range []string{"random", "greedy", "straight"} {
		if _, err := registry.Create(id); err != nil {
			t.Errorf("registry.Create(%q) error: %v", id, err)
		}
	}
}
