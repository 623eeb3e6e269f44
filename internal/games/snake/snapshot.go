package snake

import (
	"fmt"

	"github.com/vovakirdan/snakesim/internal/core"
)

// CellCode is the per-cell value of a Snapshot.
type CellCode uint8

const (
	CellEmpty CellCode = iota
	CellHead
	CellBody
	CellApple
)

// String returns a human-readable name for the cell code.
func (c CellCode) String() string {
	switch c {
	case CellEmpty:
		return "empty"
	case CellHead:
		return "head"
	case CellBody:
		return "body"
	case CellApple:
		return "apple"
	default:
		return "unknown"
	}
}

// Snapshot is the row-major integer encoding of a board, the form in which
// game states leave the engine for external learners.
type Snapshot struct {
	Rows      int
	Cols      int
	Direction core.Direction
	Cells     []CellCode
}

// Encode returns the snapshot of the current board.
func (g *Game) Encode() Snapshot {
	s := Snapshot{
		Rows:      g.grid.Rows,
		Cols:      g.grid.Cols,
		Direction: g.snake.Direction(),
		Cells:     make([]CellCode, g.grid.Area()),
	}
	u := g.snake.union()
	for i, ok := u.NextSet(0); ok; i, ok = u.NextSet(i + 1) {
		s.Cells[i] = CellBody
	}
	s.Cells[g.grid.Index(g.snake.Head())] = CellHead
	if s.Cells[g.grid.Index(g.apple)] == CellEmpty {
		s.Cells[g.grid.Index(g.apple)] = CellApple
	}
	return s
}

// Cell returns the code of a single cell.
func (g *Game) Cell(c core.Coord) (CellCode, error) {
	occupied, err := g.snake.Occupied(c)
	if err != nil {
		return CellEmpty, err
	}
	switch {
	case c == g.snake.Head():
		return CellHead, nil
	case occupied:
		return CellBody, nil
	case c == g.apple:
		return CellApple, nil
	default:
		return CellEmpty, nil
	}
}

// At returns the code at c, or CellEmpty off the board.
func (s Snapshot) At(c core.Coord) CellCode {
	if c.Row < 0 || c.Row >= s.Rows || c.Col < 0 || c.Col >= s.Cols {
		return CellEmpty
	}
	return s.Cells[c.Row*s.Cols+c.Col]
}

// Bytes returns the cell codes as one byte per cell.
func (s Snapshot) Bytes() []byte {
	b := make([]byte, len(s.Cells))
	for i, c := range s.Cells {
		b[i] = byte(c)
	}
	return b
}

// DecodeSnapshot rebuilds a snapshot from Bytes output.
func DecodeSnapshot(rows, cols int, dir core.Direction, b []byte) (Snapshot, error) {
	if rows <= 0 || cols <= 0 || len(b) != rows*cols {
		return Snapshot{}, fmt.Errorf("snake: snapshot of %d bytes does not fit %dx%d", len(b), rows, cols)
	}
	s := Snapshot{Rows: rows, Cols: cols, Direction: dir, Cells: make([]CellCode, len(b))}
	for i, v := range b {
		if CellCode(v) > CellApple {
			return Snapshot{}, fmt.Errorf("snake: invalid cell code %d at %d", v, i)
		}
		s.Cells[i] = CellCode(v)
	}
	return s, nil
}
