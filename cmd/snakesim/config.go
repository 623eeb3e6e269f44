package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/snakesim/internal/config"
)

var flagDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration snakesim would run with, after the config file
and the global flags are applied. With --defaults, print the built-in
configuration file instead; it is a good starting point for
~/.snakesim/config.yaml.

Examples:
  snakesim config
  snakesim config --defaults > ~/.snakesim/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagDefaults, "defaults", false, "Print the built-in configuration file")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagDefaults {
		_, err := os.Stdout.Write(config.DefaultYAML())
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}

	source := cfg.Path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Printf("# source: %s\n", source)
	_, err = os.Stdout.Write(out)
	return err
}
