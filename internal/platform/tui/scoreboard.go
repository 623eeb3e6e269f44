package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snakesim/internal/storage"
)

// Scoreboard layout constants
const (
	tableMargin = 8   // header, help and borders
	maxRows     = 100 // rows loaded per view
)

// Ledger is the read side of the run ledger. *storage.Store implements it.
type Ledger interface {
	RecentRuns(limit int) ([]storage.Run, error)
	TopEpisodes(agent string, limit int) ([]storage.EpisodeRecord, error)
}

// ScoreboardView selects what the scoreboard lists.
type ScoreboardView int

const (
	ViewRuns ScoreboardView = iota
	ViewTopEpisodes
)

func (v ScoreboardView) String() string {
	if v == ViewTopEpisodes {
		return "TOP EPISODES"
	}
	return "RECENT RUNS"
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Switch key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Switch, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, {k.Switch, k.Quit}}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab", "shift+tab", "left", "right"),
			key.WithHelp("tab", "runs/episodes"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel is the Bubble Tea model for browsing the run ledger.
type ScoreboardModel struct {
	ledger   Ledger
	agent    string // filter for top episodes, empty for all
	view     ScoreboardView
	table    table.Model
	help     help.Model
	keys     ScoreboardKeyMap
	width    int
	height   int
	err      error
	quitting bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(ledger Ledger, agent string, width, height int) ScoreboardModel {
	m := ScoreboardModel{
		ledger: ledger,
		agent:  agent,
		keys:   DefaultScoreboardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.reload()
	return m
}

func (m *ScoreboardModel) columns() []table.Column {
	if m.view == ViewTopEpisodes {
		return []table.Column{
			{Title: "#", Width: 4},
			{Title: "Run", Width: 10},
			{Title: "Ep", Width: 5},
			{Title: "Outcome", Width: 8},
			{Title: "Score", Width: 7},
			{Title: "Length", Width: 7},
			{Title: "Steps", Width: 7},
			{Title: "Level", Width: 10},
		}
	}
	return []table.Column{
		{Title: "Run", Width: 10},
		{Title: "Agent", Width: 10},
		{Title: "Grid", Width: 7},
		{Title: "Eps", Width: 5},
		{Title: "Wins", Width: 5},
		{Title: "Mean", Width: 8},
		{Title: "Date", Width: 12},
	}
}

// reload rebuilds the table for the current view.
func (m *ScoreboardModel) reload() {
	rows, err := m.rows()
	m.err = err

	t := table.New(
		table.WithColumns(m.columns()),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-tableMargin, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)
	m.table = t
}

func (m *ScoreboardModel) rows() ([]table.Row, error) {
	if m.ledger == nil {
		return nil, nil
	}
	if m.view == ViewTopEpisodes {
		eps, err := m.ledger.TopEpisodes(m.agent, maxRows)
		if err != nil {
			return nil, err
		}
		rows := make([]table.Row, len(eps))
		for i, e := range eps {
			rows[i] = table.Row{
				fmt.Sprintf("%d", i+1),
				shortID(e.RunID),
				fmt.Sprintf("%d", e.Index),
				e.Outcome,
				fmt.Sprintf("%d", e.Score),
				fmt.Sprintf("%d", e.Length),
				fmt.Sprintf("%d", e.Steps),
				e.Level,
			}
		}
		return rows, nil
	}

	runs, err := m.ledger.RecentRuns(maxRows)
	if err != nil {
		return nil, err
	}
	rows := make([]table.Row, len(runs))
	for i, r := range runs {
		rows[i] = table.Row{
			shortID(r.ID),
			r.Agent,
			fmt.Sprintf("%dx%d", r.Rows, r.Cols),
			fmt.Sprintf("%d", r.Episodes),
			fmt.Sprintf("%d", r.Wins),
			fmt.Sprintf("%.1f", r.ScoreMean),
			r.CreatedAt.Format("Jan 02 15:04"),
		}
	}
	return rows, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Switch):
			if m.view == ViewRuns {
				m.view = ViewTopEpisodes
			} else {
				m.view = ViewRuns
			}
			m.reload()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.reload()
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229"))
	b.WriteString(titleStyle.Render(m.view.String()))
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(1, 2)

	switch {
	case m.err != nil:
		b.WriteString(boxStyle.Render(mutedStyle.Render("Cannot read ledger: " + m.err.Error())))
	case len(m.table.Rows()) == 0:
		b.WriteString(boxStyle.Render(mutedStyle.Render("No runs recorded yet.\nRun `snakesim simulate` to fill the ledger.")))
	default:
		b.WriteString(boxStyle.Render(m.table.View()))
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// CurrentView returns the listed view.
func (m ScoreboardModel) CurrentView() ScoreboardView {
	return m.view
}

// RunScoreboard runs the scoreboard screen until the user quits.
func RunScoreboard(ledger Ledger, agent string, width, height int) error {
	p := tea.NewProgram(NewScoreboardModel(ledger, agent, width, height), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
