// Package core provides fundamental types and utilities shared by the game
// engine, the simulator and the terminal platform. It contains no external
// dependencies (especially no Bubble Tea) to keep game logic pure and testable.
package core

import "fmt"

// Coord is a cell on the board: Row counts down from the top, Col counts
// right from the left edge.
type Coord struct {
	Row int
	Col int
}

// String implements fmt.Stringer.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// L1 returns the Manhattan distance between two coordinates.
func (c Coord) L1(other Coord) int {
	return Abs(c.Row-other.Row) + Abs(c.Col-other.Col)
}

// L0 returns the Chebyshev distance between two coordinates.
func (c Coord) L0(other Coord) int {
	return Max(Abs(c.Row-other.Row), Abs(c.Col-other.Col))
}

// Step returns the coordinate one cell away in direction d.
// The result is not bounds-checked; callers validate it against a Grid.
func (c Coord) Step(d Direction) Coord {
	o := int(d)
	if o%2 == 0 {
		return Coord{Row: c.Row, Col: c.Col + o - 1}
	}
	return Coord{Row: c.Row + o - 2, Col: c.Col}
}

// Grid describes the fixed board dimensions of one game.
type Grid struct {
	Rows int
	Cols int
}

// NewGrid creates a grid with the given dimensions.
func NewGrid(rows, cols int) Grid {
	return Grid{Rows: rows, Cols: cols}
}

// Area returns the number of cells on the board.
func (g Grid) Area() int {
	return g.Rows * g.Cols
}

// Center returns the middle cell, rounding down.
func (g Grid) Center() Coord {
	return Coord{Row: g.Rows / 2, Col: g.Cols / 2}
}

// Contains reports whether c lies on the board.
func (g Grid) Contains(c Coord) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Index maps c to its row-major position. c must be on the board.
func (g Grid) Index(c Coord) int {
	return c.Row*g.Cols + c.Col
}

// Coord is the inverse of Index.
func (g Grid) Coord(index int) Coord {
	return Coord{Row: index / g.Cols, Col: index % g.Cols}
}

// String implements fmt.Stringer.
func (g Grid) String() string {
	return fmt.Sprintf("%dx%d", g.Rows, g.Cols)
}

// Rect represents an axis-aligned area on a Screen.
type Rect struct {
	X, Y int // Top-left corner position
	W, H int // Width and height
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() int {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() int {
	return r.Y + r.H
}

// Contains returns true if the point (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Abs returns the absolute value of an integer.
func Abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Min returns the smaller of two integers.
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two integers.
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
