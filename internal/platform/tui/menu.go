package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakesim/internal/registry"
)

// MenuItem is one selectable agent.
type MenuItem struct {
	AgentID     string // HumanAgent for keyboard play
	Description string
}

// MenuKeyMap defines the key bindings of the agent picker.
type MenuKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Quit   key.Binding
}

// DefaultMenuKeyMap returns default key bindings.
func DefaultMenuKeyMap() MenuKeyMap {
	return MenuKeyMap{
		Up:     key.NewBinding(key.WithKeys("up", "w", "k")),
		Down:   key.NewBinding(key.WithKeys("down", "s", "j")),
		Select: key.NewBinding(key.WithKeys("enter", " ")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c")),
	}
}

// MenuModel is the Bubble Tea model for the agent picker.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	keys     MenuKeyMap
	quitting bool
	selected *MenuItem
}

// NewMenuModel lists the keyboard first, then every registered agent.
func NewMenuModel(width, height int) MenuModel {
	agents := registry.List()
	items := make([]MenuItem, 0, len(agents)+1)
	items = append(items, MenuItem{AgentID: HumanAgent, Description: "play with the keyboard"})
	for _, a := range agents {
		items = append(items, MenuItem{AgentID: a.ID, Description: a.Description})
	}

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
		keys:   DefaultMenuKeyMap(),
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Select):
		if len(m.items) > 0 {
			selected := m.items[m.cursor]
			m.selected = &selected
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(centerText("  S N A K E S I M  ", m.width))
	b.WriteString("\n\n")
	b.WriteString(centerText("Select who plays", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := fmt.Sprintf("%s%-10s %s", cursor, item.AgentID, item.Description)
		b.WriteString(centerText(line, m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Select  |  Q: Quit", m.width))
	b.WriteString("\n")

	return b.String()
}

// Selected returns the selected item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	if len(text) >= width {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}

// RunMenu shows the picker and returns the chosen agent ID, or "" when the
// user quit.
func RunMenu(width, height int) (string, error) {
	p := tea.NewProgram(NewMenuModel(width, height), tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return "", err
	}

	m, ok := final.(MenuModel)
	if !ok || m.Selected() == nil {
		return "", nil
	}
	return m.Selected().AgentID, nil
}
