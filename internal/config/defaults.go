package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/snakesim.yaml
var defaultYAML []byte

// Default returns the built-in configuration. It matches the embedded
// defaults/snakesim.yaml.
func Default() Config {
	return Config{
		Grid: GridConfig{
			Rows: 32,
			Cols: 40,
		},
		Simulator: SimulatorConfig{
			Agent:         "greedy",
			Episodes:      64,
			MaxIterations: 5000,
			ShapingLength: 10,
		},
		Play: PlayConfig{
			BaseTick: 150 * time.Millisecond,
			Agent:    "greedy",
		},
		Serve: ServeConfig{
			Host:    "0.0.0.0",
			Port:    2323,
			HostKey: "~/.snakesim/ssh_host_ed25519",
		},
		Storage: StorageConfig{
			DBPath:     "~/.snakesim/runs.db",
			DatasetDir: "./datasets",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Timestamps: true,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultYAML
}
