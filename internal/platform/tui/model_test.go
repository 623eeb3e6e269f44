package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/sim"
	"github.com/vovakirdan/snakesim/internal/storage"
)

type fakeSaver struct {
	agents  []string
	batches []*sim.Batch
}

func (f *fakeSaver) SaveRun(agent string, _ core.Grid, b *sim.Batch) (storage.Run, error) {
	f.agents = append(f.agents, agent)
	f.batches = append(f.batches, b)
	return storage.Run{ID: "x"}, nil
}

var straight = sim.AgentFunc(func(g *snake.Game, _ snake.Rand) core.Direction {
	return g.Direction()
})

func newModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Runtime.Grid == (core.Grid{}) {
		opts.Runtime.Grid = core.NewGrid(6, 6)
	}
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = 42
	}
	m, err := NewModel(opts)
	if err != nil {
		t.Fatalf("NewModel() error: %v", err)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return mm, cmd
}

func tick(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, TickMsg(time.Time{}))
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelTickAdvancesGame(t *testing.T) {
	m := newModel(t, Options{Agent: straight, AgentName: "straight"})
	m = tick(t, m)
	if m.Game().Steps() != 1 {
		t.Errorf("Steps() = %d after one tick, expected 1", m.Game().Steps())
	}
}

func TestModelKeyboardSteers(t *testing.T) {
	m := newModel(t, Options{})
	if m.Game().Direction() != core.DirLeft {
		t.Fatalf("initial direction = %v, expected left", m.Game().Direction())
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = tick(t, m)
	if m.Game().Direction() != core.DirUp {
		t.Errorf("Direction() = %v after up, expected up", m.Game().Direction())
	}

	// No new key keeps the heading.
	m = tick(t, m)
	if m.Game().Direction() != core.DirUp {
		t.Errorf("Direction() = %v without input, expected up", m.Game().Direction())
	}
}

func TestModelPause(t *testing.T) {
	m := newModel(t, Options{Agent: straight})

	m, _ = update(t, m, runes("p"))
	m = tick(t, m)
	if !m.Paused() {
		t.Fatal("expected paused after p")
	}
	steps := m.Game().Steps()
	m = tick(t, m)
	if m.Game().Steps() != steps {
		t.Errorf("paused game advanced from %d to %d", steps, m.Game().Steps())
	}

	m, _ = update(t, m, runes("p"))
	m = tick(t, m)
	if m.Paused() {
		t.Error("expected resumed after second p")
	}
}

func TestModelGameOverRecordsAndRestarts(t *testing.T) {
	saver := &fakeSaver{}
	m := newModel(t, Options{Agent: straight, AgentName: "straight", Store: saver})

	for i := 0; i < 40 && !m.Game().Over(); i++ {
		m = tick(t, m)
	}
	if !m.Game().Over() {
		t.Fatal("straight agent should hit the wall on a 6x6 board")
	}
	if len(saver.agents) != 1 || saver.agents[0] != "straight" {
		t.Fatalf("SaveRun calls = %v, expected one for straight", saver.agents)
	}
	if got := saver.batches[0].Episodes[0].Outcome.Kind; got != snake.OutcomeLost {
		t.Errorf("recorded outcome = %v, expected lost", got)
	}

	// Further ticks keep the finished game and do not record again.
	m = tick(t, m)
	if len(saver.agents) != 1 {
		t.Errorf("SaveRun called %d times, expected 1", len(saver.agents))
	}

	m, _ = update(t, m, runes("r"))
	m = tick(t, m)
	if m.Game().Over() || m.Round() != 1 {
		t.Errorf("after restart Over()=%v Round()=%d, expected a fresh round 1", m.Game().Over(), m.Round())
	}
}

func TestModelAutoRestart(t *testing.T) {
	m := newModel(t, Options{Agent: straight, AutoRestart: true})
	for i := 0; i < 40 && !m.Game().Over(); i++ {
		m = tick(t, m)
	}
	for i := 0; i <= holdTicks; i++ {
		m = tick(t, m)
	}
	if m.Round() != 1 {
		t.Errorf("Round() = %d, expected 1 after the hold", m.Round())
	}
}

func TestModelQuit(t *testing.T) {
	m := newModel(t, Options{})
	m, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}

func TestModelRejectsTinyGrid(t *testing.T) {
	if _, err := NewModel(Options{Runtime: core.RuntimeConfig{Grid: core.NewGrid(3, 3)}}); err == nil {
		t.Error("NewModel() with a 3x3 grid should fail")
	}
}

func TestModelViewShowsOverlay(t *testing.T) {
	m := newModel(t, Options{Agent: straight, Runtime: core.RuntimeConfig{ScreenW: 40, ScreenH: 20}})
	m, _ = update(t, m, runes("p"))
	m = tick(t, m)
	m.View()
	found := false
	for y := 0; y < m.screen.Height(); y++ {
		if strings.Contains(m.screen.Row(y), "PAUSED") {
			found = true
		}
	}
	if !found {
		t.Error("paused overlay not drawn")
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		speed    snake.Speed
		expected time.Duration
	}{
		{snake.SpeedSlow, 100 * time.Millisecond},
		{snake.SpeedGodMode, 50 * time.Millisecond},
	}
	for _, tc := range tests {
		if got := TickInterval(100*time.Millisecond, tc.speed); got != tc.expected {
			t.Errorf("TickInterval(%v) = %v, expected %v", tc.speed, got, tc.expected)
		}
	}
}
