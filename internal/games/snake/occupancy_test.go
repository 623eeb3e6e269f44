package snake

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/vovakirdan/snakesim/internal/core"
)

func newOccupancy(t *testing.T, rows, cols int) *Occupancy {
	t.Helper()
	grid := core.NewGrid(rows, cols)
	o, err := NewOccupancy(grid, grid.Center(), core.DirLeft)
	if err != nil {
		t.Fatalf("NewOccupancy() error: %v", err)
	}
	return o
}

// bitsAt counts the direction bits set at c.
func bitsAt(o *Occupancy, c core.Coord) int {
	n := 0
	for _, m := range o.maps {
		if m.Test(o.index(c)) {
			n++
		}
	}
	return n
}

func TestOccupancyOutOfBounds(t *testing.T) {
	o := newOccupancy(t, 6, 6)
	for _, c := range []core.Coord{{Row: -1, Col: 0}, {Row: 0, Col: 6}, {Row: 6, Col: 0}} {
		if _, err := o.Occupied(c); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Occupied(%v) error = %v, expected ErrOutOfBounds", c, err)
		}
	}
	if _, err := NewOccupancy(core.NewGrid(6, 6), core.Coord{Row: 9, Col: 9}, core.DirUp); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("NewOccupancy off grid error = %v", err)
	}
}

func TestOccupancyAdvanceOffGrid(t *testing.T) {
	o := newOccupancy(t, 6, 6)
	o.SetDirection(core.DirUp)
	for i := 0; i < 3; i++ {
		if err := o.Advance(false); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
	}
	if o.Head() != (core.Coord{Row: 0, Col: 3}) {
		t.Fatalf("Head() = %v, expected (0,3)", o.Head())
	}
	if o.IsNextValid() {
		t.Error("IsNextValid() should be false at the edge")
	}
	if err := o.Advance(false); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Advance() off grid error = %v, expected ErrOutOfBounds", err)
	}
	if o.Head() != (core.Coord{Row: 0, Col: 3}) {
		t.Errorf("failed Advance() moved the head to %v", o.Head())
	}
}

func TestOccupancyOneBitPerSegment(t *testing.T) {
	o := newOccupancy(t, 8, 8)
	moves := []struct {
		dir  core.Direction
		food bool
	}{
		{core.DirLeft, true},
		{core.DirLeft, true},
		{core.DirUp, true},
		{core.DirUp, false},
		{core.DirRight, false},
		{core.DirRight, true},
		{core.DirDown, false},
	}

	for i, m := range moves {
		o.SetDirection(m.dir)
		if err := o.Advance(m.food); err != nil {
			t.Fatalf("move %d: Advance() error: %v", i, err)
		}
		cells := o.Cells()
		if len(cells) != o.Len() {
			t.Fatalf("move %d: %d cells for length %d", i, len(cells), o.Len())
		}
		for _, c := range cells {
			if n := bitsAt(o, c); n != 1 {
				t.Fatalf("move %d: cell %v carries %d bits", i, c, n)
			}
		}
		if !o.maps[o.Direction()].Test(o.index(o.Head())) {
			t.Fatalf("move %d: head %v does not carry the current direction", i, o.Head())
		}
	}
	if o.Len() != 5 {
		t.Errorf("Len() = %d, expected 5", o.Len())
	}
}

func TestOccupancyTailFollowsBody(t *testing.T) {
	o := newOccupancy(t, 8, 8)
	// Grow to three segments along a corner, then walk on.
	o.Advance(true) // head (4,3)
	o.SetDirection(core.DirUp)
	o.Advance(true) // head (3,3)

	steps := []core.Coord{
		{Row: 4, Col: 3},
		{Row: 3, Col: 3},
		{Row: 2, Col: 3},
	}
	for i, expected := range steps {
		if err := o.Advance(false); err != nil {
			t.Fatalf("Advance() error: %v", err)
		}
		if o.Tail() != expected {
			t.Errorf("step %d: Tail() = %v, expected %v", i, o.Tail(), expected)
		}
	}
}

func TestOccupancySetDirectionRestampsHead(t *testing.T) {
	o := newOccupancy(t, 6, 6)
	head := o.Head()
	for _, d := range core.Directions {
		o.SetDirection(d)
		if bitsAt(o, head) != 1 || !o.maps[d].Test(o.index(head)) {
			t.Errorf("SetDirection(%v) left head bits inconsistent", d)
		}
		next, _ := o.NextHead()
		if next != head.Step(d) {
			t.Errorf("NextHead() = %v, expected %v", next, head.Step(d))
		}
	}
}

func TestOccupancySetDirectionIgnoresInvalid(t *testing.T) {
	o := newOccupancy(t, 6, 6)
	head := o.Head()
	o.SetDirection(core.DirUp)

	for _, d := range []core.Direction{4, 7, 255} {
		o.SetDirection(d)
		if o.Direction() != core.DirUp {
			t.Errorf("SetDirection(%d) changed heading to %v", d, o.Direction())
		}
		if bitsAt(o, head) != 1 || !o.maps[core.DirUp].Test(o.index(head)) {
			t.Errorf("SetDirection(%d) touched the head bits", d)
		}
	}
}

func TestFreeSpotNeverOccupied(t *testing.T) {
	o := newOccupancy(t, 5, 5)
	o.Advance(true)
	o.SetDirection(core.DirUp)
	o.Advance(true)

	rng := rand.New(rand.NewPCG(3, 9))
	seen := make(map[core.Coord]bool)
	for i := 0; i < 2000; i++ {
		c, ok := o.FreeSpot(rng)
		if !ok {
			t.Fatal("FreeSpot() reported a full board")
		}
		if occupied, _ := o.Occupied(c); occupied {
			t.Fatalf("FreeSpot() = %v is occupied", c)
		}
		seen[c] = true
	}
	if len(seen) != 25-3 {
		t.Errorf("FreeSpot() reached %d cells, expected all %d free cells", len(seen), 22)
	}
}

func TestFreeSpotFullBoard(t *testing.T) {
	o := newOccupancy(t, 4, 4)
	for i := 0; i < 16; i++ {
		o.maps[core.DirDown].Set(uint(i))
	}
	if c, ok := o.FreeSpot(script(5)); ok {
		t.Errorf("FreeSpot() = %v, expected none on a full board", c)
	}

	o.maps[core.DirDown].Clear(uint(o.grid.Index(core.Coord{Row: 3, Col: 1})))
	o.maps[core.DirLeft].Clear(uint(o.grid.Index(core.Coord{Row: 3, Col: 1})))
	c, ok := o.FreeSpot(script(0))
	if !ok || c != (core.Coord{Row: 3, Col: 1}) {
		t.Errorf("FreeSpot() = %v, %v, expected the last free cell (3,1)", c, ok)
	}
}
