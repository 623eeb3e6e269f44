package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LocalPath is the project-local configuration file.
const LocalPath = "configs/snakesim.yaml"

// Load reads the configuration.
// Search order: customPath -> ~/.snakesim/config.yaml -> ./configs/snakesim.yaml -> embedded default.
// A custom path that cannot be read or parsed is an error; the other
// locations are skipped silently when absent or malformed.
func Load(customPath string) (Config, error) {
	if customPath != "" {
		cfg, err := loadFile(customPath)
		if err != nil {
			return Config{}, err
		}
		return finish(cfg)
	}

	for _, p := range []string{userConfigPath(), LocalPath} {
		if p == "" {
			continue
		}
		if cfg, err := loadFile(p); err == nil {
			return finish(cfg)
		}
	}

	var cfg Config
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		cfg = Default() // Fallback to hardcoded if embed fails
	}
	return finish(cfg)
}

// Parse decodes YAML content over the defaults and validates it.
func Parse(data []byte) (Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to parse: %w", err)
	}
	return finish(cfg)
}

func loadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	cfg, err := decode(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	cfg.Path = path
	return cfg, nil
}

// decode unmarshals data on top of the built-in defaults so partial files
// only override what they name.
func decode(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func finish(cfg Config) (Config, error) {
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// userConfigPath returns ~/.snakesim/config.yaml, or "" without a home.
func userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".snakesim", "config.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot expand home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
