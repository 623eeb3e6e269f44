package snake

import (
	"bytes"
	"strings"
	"testing"

	"github.com/vovakirdan/snakesim/internal/core"
)

func TestEncodeCodes(t *testing.T) {
	g := newGame(t, 12, 12, script(4, 4))
	g.apple = core.Coord{Row: 6, Col: 5}
	if _, err := g.Next(script(0)); err != nil {
		t.Fatalf("Next() error: %v", err)
	}

	head := core.Coord{Row: 6, Col: 5}
	body := core.Coord{Row: 6, Col: 6}
	apple := core.Coord{Row: 0, Col: 0}

	s := g.Encode()
	if s.Rows != 12 || s.Cols != 12 || len(s.Cells) != 144 {
		t.Fatalf("Encode() dims = %dx%d/%d", s.Rows, s.Cols, len(s.Cells))
	}
	if s.Direction != core.DirLeft {
		t.Errorf("Encode().Direction = %v, expected left", s.Direction)
	}
	for i, code := range s.Cells {
		c := g.Grid().Coord(i)
		expected := CellEmpty
		switch c {
		case head:
			expected = CellHead
		case body:
			expected = CellBody
		case apple:
			expected = CellApple
		}
		if code != expected {
			t.Errorf("cell %v = %v, expected %v", c, code, expected)
		}
		if got, _ := g.Cell(c); got != expected {
			t.Errorf("Cell(%v) = %v, expected %v", c, got, expected)
		}
	}
	if s.At(head) != CellHead || s.At(core.Coord{Row: -1, Col: 0}) != CellEmpty {
		t.Error("At() disagrees with Cells")
	}
}

func TestSnapshotBytes(t *testing.T) {
	g := newGame(t, 4, 5, script(0, 0))
	s := g.Encode()

	b := s.Bytes()
	expected := []byte{
		3, 0, 0, 0, 0,
		0, 0, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 0, 0,
	}
	if !bytes.Equal(b, expected) {
		t.Errorf("Bytes() = %v, expected %v", b, expected)
	}

	back, err := DecodeSnapshot(4, 5, s.Direction, b)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error: %v", err)
	}
	if !bytes.Equal(back.Bytes(), b) || back.Direction != s.Direction {
		t.Errorf("DecodeSnapshot() = %+v", back)
	}

	if _, err := DecodeSnapshot(4, 4, s.Direction, b); err == nil {
		t.Error("DecodeSnapshot() should reject a size mismatch")
	}
	b[3] = 9
	if _, err := DecodeSnapshot(4, 5, s.Direction, b); err == nil {
		t.Error("DecodeSnapshot() should reject unknown codes")
	}
}

func TestGameString(t *testing.T) {
	g := newGame(t, 12, 12, script(4, 4))
	g.apple = core.Coord{Row: 6, Col: 5}
	g.Next(script(0))
	g.Next(script())

	rows := strings.Split(g.String(), "\n")
	if len(rows) != 12 {
		t.Fatalf("String() has %d rows, expected 12", len(rows))
	}
	if rows[0] != "A..........." {
		t.Errorf("row 0 = %q", rows[0])
	}
	if rows[6] != "....HT......" {
		t.Errorf("row 6 = %q", rows[6])
	}
}

func TestRender(t *testing.T) {
	g := newGame(t, 4, 4, script(0, 0))

	small := core.NewScreen(20, 5)
	g.Render(small)
	if !strings.Contains(small.String(), "small") {
		t.Errorf("Render() on a tiny screen = %q", small.String())
	}

	w, h := core.RuntimeConfig{Grid: g.Grid()}.RequiredScreen()
	s := core.NewScreen(w+4, h)
	g.Render(s)

	if !strings.Contains(s.Row(0), "Score: 0") {
		t.Errorf("HUD row = %q", s.Row(0))
	}
	// board origin is at column 2 + 1 border, row HUDHeight + 1
	if cell := s.GetCell(3+2, HUDHeight+1+2); cell.Rune != GlyphHead || cell.Color != core.ColorBrightGreen {
		t.Errorf("head cell = %+v", cell)
	}
	if cell := s.GetCell(3, HUDHeight+1); cell.Rune != GlyphApple || cell.Color != core.ColorRed {
		t.Errorf("apple cell = %+v", cell)
	}
}

func TestSummary(t *testing.T) {
	g := newGame(t, 12, 12, script(4, 4))
	s := g.Summary()
	expected := Summary{
		Length:    1,
		Head:      core.Coord{Row: 6, Col: 6},
		Tail:      core.Coord{Row: 6, Col: 6},
		Apple:     core.Coord{Row: 4, Col: 4},
		Direction: core.DirLeft,
		Speed:     SpeedSlow,
		State:     StatePlaying,
	}
	if s != expected {
		t.Errorf("Summary() = %+v, expected %+v", s, expected)
	}
	if !strings.Contains(g.DebugState(), "Head: (6,6)") {
		t.Errorf("DebugState() = %q", g.DebugState())
	}
}
