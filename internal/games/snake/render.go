package snake

import (
	"strconv"
	"strings"

	"github.com/vovakirdan/snakesim/internal/core"
)

// Board glyphs used by String and Render.
const (
	GlyphHead  = 'H'
	GlyphTail  = 'T'
	GlyphBody  = 'S'
	GlyphApple = 'A'
	GlyphEmpty = '.'
)

func (g *Game) glyph(c core.Coord) (rune, core.Color) {
	code, err := g.Cell(c)
	if err != nil {
		return GlyphEmpty, core.ColorDefault
	}
	switch {
	case code == CellHead:
		return GlyphHead, core.ColorBrightGreen
	case code == CellBody && c == g.snake.Tail():
		return GlyphTail, core.ColorGreen
	case code == CellBody:
		return GlyphBody, core.ColorGreen
	case code == CellApple:
		return GlyphApple, core.ColorRed
	default:
		return GlyphEmpty, core.ColorGray
	}
}

// String dumps the board one row per line.
func (g *Game) String() string {
	var b strings.Builder
	b.Grow(g.grid.Area() + g.grid.Rows)
	for row := 0; row < g.grid.Rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < g.grid.Cols; col++ {
			r, _ := g.glyph(core.Coord{Row: row, Col: col})
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HUDHeight is the number of screen lines Render uses above the board.
const HUDHeight = 2

// Render draws the HUD and the framed board, centered horizontally.
// The screen must be at least Cols+2 wide and Rows+HUDHeight+2 tall; a
// smaller screen only gets a resize notice.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	w, h := g.grid.Cols+2, g.grid.Rows+HUDHeight+2
	if dst.Width() < w || dst.Height() < h {
		dst.DrawTextCentered(dst.Height()/2, "Window too small")
		return
	}

	s := g.Summary()
	hud := []string{
		" Score: " + strconv.Itoa(s.Score),
		"Apples: " + strconv.Itoa(s.ApplesEaten),
		"Speed: " + s.Speed.String(),
	}
	dst.DrawTextColor(0, 0, strings.Join(hud, "  "), core.ColorYellow)
	dst.DrawTextColor(0, 1, " Steps: "+strconv.Itoa(s.Steps)+"  Length: "+strconv.Itoa(s.Length)+"  Free: "+strconv.Itoa(g.FreeCells()), core.ColorCyan)

	ox := (dst.Width() - w) / 2
	oy := HUDHeight
	dst.DrawBox(core.NewRect(ox, oy, w, g.grid.Rows+2))
	for row := 0; row < g.grid.Rows; row++ {
		for col := 0; col < g.grid.Cols; col++ {
			r, color := g.glyph(core.Coord{Row: row, Col: col})
			if r == GlyphEmpty {
				r = ' '
			}
			dst.SetColor(ox+1+col, oy+1+row, r, color)
		}
	}
}
