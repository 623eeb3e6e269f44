package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snakesim/internal/registry"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List all available agents",
	Long:  `Shows every agent registered for simulate and watch.`,
	Args:  cobra.NoArgs,
	Run:   runAgents,
}

func runAgents(_ *cobra.Command, _ []string) {
	agents := registry.List()

	if len(agents) == 0 {
		fmt.Println("No agents available.")
		return
	}

	fmt.Println("Available agents:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, a := range agents {
		if len(a.ID) > maxIDLen {
			maxIDLen = len(a.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Description")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----------")

	for _, a := range agents {
		fmt.Printf("  %-*s  %s\n", maxIDLen, a.ID, a.Description)
	}

	fmt.Println()
	fmt.Println("Run 'snakesim watch <id>' to watch one play.")
}
