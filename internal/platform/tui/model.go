package tui

import (
	"io"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snakesim/internal/agent"
	"github.com/vovakirdan/snakesim/internal/core"
	"github.com/vovakirdan/snakesim/internal/games/snake"
	"github.com/vovakirdan/snakesim/internal/sim"
	"github.com/vovakirdan/snakesim/internal/storage"
)

// HumanAgent is the agent name recorded for keyboard games.
const HumanAgent = "human"

// holdTicks is how long a finished game stays on screen before AutoRestart.
const holdTicks = 12

// RunSaver records finished games. *storage.Store implements it.
type RunSaver interface {
	SaveRun(agent string, grid core.Grid, b *sim.Batch) (storage.Run, error)
}

// Options configures a game screen.
type Options struct {
	Runtime core.RuntimeConfig
	Game    snake.Options

	// Agent drives the snake. Nil means a human at the keyboard.
	Agent     sim.Agent
	AgentName string

	// AutoRestart starts a new game shortly after one ends.
	AutoRestart bool

	Store  RunSaver // optional
	Logger *log.Logger
}

// Model is the Bubble Tea model for one snake game session.
type Model struct {
	opts     Options
	game     *snake.Game
	agent    sim.Agent
	keyboard *agent.Keyboard
	rng      *rand.Rand
	round    int
	screen   *core.Screen
	keys     *KeyMapper
	help     help.Model
	input    core.InputFrame
	logger   *log.Logger

	paused    bool
	quitting  bool
	overTicks int
	err       error
}

// NewModel creates a model and its first game.
func NewModel(opts Options) (Model, error) {
	if opts.Runtime.Seed == 0 {
		opts.Runtime.Seed = uint64(time.Now().UnixNano())
	}
	if opts.Runtime.BaseTick <= 0 {
		opts.Runtime.BaseTick = core.DefaultConfig().BaseTick
	}
	if opts.Runtime.ScreenW <= 0 || opts.Runtime.ScreenH <= 0 {
		w, h := opts.Runtime.RequiredScreen()
		opts.Runtime.ScreenW, opts.Runtime.ScreenH = w, h+1
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	m := Model{
		opts:   opts,
		agent:  opts.Agent,
		screen: core.NewScreen(opts.Runtime.ScreenW, screenHeight(opts.Runtime.ScreenH)),
		keys:   NewKeyMapper(),
		help:   help.New(),
		input:  core.NewInputFrame(),
		logger: logger,
	}
	if m.agent == nil {
		m.keyboard = agent.NewKeyboard()
		m.agent = m.keyboard
		if m.opts.AgentName == "" {
			m.opts.AgentName = HumanAgent
		}
	}
	if err := m.newGame(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// screenHeight leaves the last terminal line for the help bar.
func screenHeight(h int) int {
	if h > 1 {
		return h - 1
	}
	return h
}

// newGame starts round m.round with its own derived rng.
func (m *Model) newGame() error {
	m.rng = sim.EpisodeSeed(m.opts.Runtime.Seed, m.round)
	g, err := snake.New(m.opts.Runtime.Grid, m.rng, m.opts.Game)
	if err != nil {
		return err
	}
	m.game = g
	m.paused = false
	m.overTicks = 0
	if m.keyboard != nil {
		m.keyboard.Reset()
	}
	m.logger.Debug("game started", "agent", m.opts.AgentName, "round", m.round, "grid", g.Grid())
	return nil
}

func (m *Model) restart() error {
	m.round++
	return m.newGame()
}

// Init starts the tick loop.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.interval())
}

func (m Model) interval() time.Duration {
	return TickInterval(m.opts.Runtime.BaseTick, m.game.Speed())
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.opts.Runtime.ScreenW = msg.Width
		m.opts.Runtime.ScreenH = msg.Height
		m.screen.Resize(msg.Width, screenHeight(msg.Height))
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey records input for the next tick. Quit is immediate.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.keys.MapKeyToFrame(msg, &m.input) {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// handleTick applies buffered input and advances the game by one tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	over := m.game.Over()

	if over && (m.input.Has(core.ActionRestart) || (m.opts.AutoRestart && m.overTicks >= holdTicks)) {
		if err := m.restart(); err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.input.Clear()
		return m, tickCmd(m.interval())
	}
	if m.input.Has(core.ActionPause) && !over {
		m.paused = !m.paused
	}
	if d, ok := m.input.Direction(); ok && m.keyboard != nil {
		m.keyboard.Request(d)
	}
	m.input.Clear()

	switch {
	case over:
		m.overTicks++
	case !m.paused:
		m.game.UpdateDirection(m.agent.SelectDirection(m.game, m.rng))
		outcome, err := m.game.Next(m.rng)
		if err != nil {
			m.logger.Error("game step failed", "err", err)
			m.err = err
			return m, tea.Quit
		}
		if outcome.Terminal() {
			m.record(outcome)
		}
	}

	return m, tickCmd(m.interval())
}

// record logs a finished game and saves it to the ledger when one is set.
func (m Model) record(o snake.Outcome) {
	s := m.game.Summary()
	m.logger.Info("game over",
		"agent", m.opts.AgentName,
		"outcome", o.Kind,
		"score", s.Score,
		"steps", s.Steps,
		"length", s.Length,
	)
	if m.opts.Store == nil {
		return
	}
	b := &sim.Batch{
		Seed: m.opts.Runtime.Seed,
		Episodes: []sim.Episode{{
			Index:   m.round,
			Seed:    m.opts.Runtime.Seed,
			Outcome: o,
			Summary: s,
		}},
	}
	if _, err := m.opts.Store.SaveRun(m.opts.AgentName, m.game.Grid(), b); err != nil {
		m.logger.Warn("could not save game", "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.game.Render(m.screen)
	m.drawOverlay()
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys.Keys())
}

func (m Model) drawOverlay() {
	var lines []string
	color := core.ColorYellow
	if o, ok := m.game.Outcome(); ok {
		if o.Kind == snake.OutcomeWin {
			lines = append(lines, "YOU WIN!")
		} else {
			lines = append(lines, "GAME OVER")
			color = core.ColorRed
		}
		lines = append(lines, "Score: "+strconv.Itoa(m.game.Score()))
		if !m.opts.AutoRestart {
			lines = append(lines, "r: restart  q: quit")
		}
	} else if m.paused {
		lines = append(lines, "PAUSED", "p: resume")
	}

	top := m.screen.Height()/2 - len(lines)/2
	for i, line := range lines {
		x := (m.screen.Width() - len(line)) / 2
		m.screen.DrawTextColor(x, top+i, line, color)
	}
}

// Game returns the current game.
func (m Model) Game() *snake.Game {
	return m.game
}

// Paused reports whether the game is paused.
func (m Model) Paused() bool {
	return m.paused
}

// Round returns how many restarts this session has had.
func (m Model) Round() int {
	return m.round
}

// Err returns the error that stopped the session, if any.
func (m Model) Err() error {
	return m.err
}

// Run starts the Bubble Tea program with the given options.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
