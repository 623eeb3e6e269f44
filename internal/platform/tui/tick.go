// Package tui provides the Bubble Tea driver for interactive play and for
// watching agents. It owns the fixed-timestep loop, input mapping and the
// SSH server.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snakesim/internal/games/snake"
)

// TickMsg is sent to trigger a game tick.
type TickMsg time.Time

// TickInterval returns the delay between ticks at the given speed tier.
func TickInterval(base time.Duration, speed snake.Speed) time.Duration {
	return time.Duration(float64(base) * speed.TimeScale())
}

// tickCmd returns a Bubble Tea command that sends one tick after interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
