package core

import "time"

// RuntimeConfig contains configuration passed to drivers at initialization.
// Drivers use this to adapt to screen size and for deterministic simulation.
type RuntimeConfig struct {
	ScreenW  int           // Screen width in characters
	ScreenH  int           // Screen height in characters
	Grid     Grid          // Board dimensions
	BaseTick time.Duration // Tick interval at the slowest speed tier
	Seed     uint64        // RNG seed for deterministic gameplay
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		Grid:     NewGrid(32, 40),
		BaseTick: 150 * time.Millisecond,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// RequiredScreen returns the minimum terminal size needed to draw the board
// with its border and the two HUD lines above it.
func (c RuntimeConfig) RequiredScreen() (w, h int) {
	return c.Grid.Cols + 2, c.Grid.Rows + 4
}
