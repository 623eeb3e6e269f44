package snake

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"

	"github.com/vovakirdan/snakesim/internal/core"
)

// ErrOutOfBounds is returned when a coordinate falls outside the grid.
var ErrOutOfBounds = errors.New("snake: coordinate out of bounds")

// Rand is the randomness source consumed by the engine.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

// Occupancy tracks the snake body as one bitset per direction.
//
// Every live segment has exactly one bit set across the four maps: the
// direction from that segment toward the next one closer to the head.
// The head cell always carries the current direction, so retiring the tail
// is a single step along whatever bit is set there.
type Occupancy struct {
	grid core.Grid
	maps [4]*bitset.BitSet
	head core.Coord
	tail core.Coord
	dir  core.Direction
	size int
}

// NewOccupancy returns a one-segment snake at start facing dir.
func NewOccupancy(grid core.Grid, start core.Coord, dir core.Direction) (*Occupancy, error) {
	if !grid.Contains(start) {
		return nil, fmt.Errorf("%w: start %v on %v grid", ErrOutOfBounds, start, grid)
	}
	o := &Occupancy{
		grid: grid,
		head: start,
		tail: start,
		dir:  dir,
		size: 1,
	}
	for i := range o.maps {
		o.maps[i] = bitset.New(uint(grid.Area()))
	}
	o.maps[dir].Set(o.index(start))
	return o, nil
}

func (o *Occupancy) index(c core.Coord) uint {
	return uint(o.grid.Index(c))
}

// Occupied reports whether any direction bit is set at c.
func (o *Occupancy) Occupied(c core.Coord) (bool, error) {
	if !o.grid.Contains(c) {
		return false, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}
	i := o.index(c)
	for _, m := range o.maps {
		if m.Test(i) {
			return true, nil
		}
	}
	return false, nil
}

// NextHead returns the cell the head moves into on the next step and
// whether that cell is on the grid.
func (o *Occupancy) NextHead() (core.Coord, bool) {
	next := o.head.Step(o.dir)
	return next, o.grid.Contains(next)
}

// IsNextValid reports whether the next head cell is on the grid and free.
func (o *Occupancy) IsNextValid() bool {
	next, ok := o.NextHead()
	if !ok {
		return false
	}
	occupied, err := o.Occupied(next)
	return err == nil && !occupied
}

// Advance moves the head one cell along the current direction. Unless
// withFood is set the tail is retired, keeping the length constant.
func (o *Occupancy) Advance(withFood bool) error {
	next, ok := o.NextHead()
	if !ok {
		return fmt.Errorf("advance from %v %s: %w", o.head, o.dir, ErrOutOfBounds)
	}

	o.maps[o.dir].Set(o.index(next))
	o.head = next

	if withFood {
		o.size++
		return nil
	}

	ti := o.index(o.tail)
	for _, d := range core.Directions {
		if o.maps[d].Test(ti) {
			o.maps[d].Clear(ti)
			o.tail = o.tail.Step(d)
			return nil
		}
	}
	return fmt.Errorf("snake: tail %v carries no direction", o.tail)
}

// SetDirection changes the heading and re-stamps the head cell. An invalid
// heading leaves the snake untouched.
func (o *Occupancy) SetDirection(d core.Direction) {
	if !d.Valid() {
		return
	}
	hi := o.index(o.head)
	for _, m := range o.maps {
		m.Clear(hi)
	}
	o.maps[d].Set(hi)
	o.dir = d
}

// union returns the set of all occupied cells.
func (o *Occupancy) union() *bitset.BitSet {
	u := o.maps[0].Clone()
	for _, m := range o.maps[1:] {
		u.InPlaceUnion(m)
	}
	return u
}

// FreeSpot samples a uniformly random unoccupied cell.
// It returns false when every cell is taken.
func (o *Occupancy) FreeSpot(rng Rand) (core.Coord, bool) {
	free := o.union().Complement()
	n := int(free.Count())
	if n == 0 {
		return core.Coord{}, false
	}

	k := rng.IntN(n)
	i, ok := free.NextSet(0)
	for ; ok && k > 0; k-- {
		i, ok = free.NextSet(i + 1)
	}
	return o.grid.Coord(int(i)), ok
}

// Cells returns every occupied coordinate in row-major order.
func (o *Occupancy) Cells() []core.Coord {
	u := o.union()
	cells := make([]core.Coord, 0, u.Count())
	for i, ok := u.NextSet(0); ok; i, ok = u.NextSet(i + 1) {
		cells = append(cells, o.grid.Coord(int(i)))
	}
	return cells
}

// Count returns the number of occupied cells as seen by the bitsets.
func (o *Occupancy) Count() int {
	return int(o.union().Count())
}

func (o *Occupancy) Len() int                  { return o.size }
func (o *Occupancy) Head() core.Coord          { return o.head }
func (o *Occupancy) Tail() core.Coord          { return o.tail }
func (o *Occupancy) Direction() core.Direction { return o.dir }
func (o *Occupancy) Grid() core.Grid           { return o.grid }
