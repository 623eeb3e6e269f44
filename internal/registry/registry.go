// Package registry provides a global registry for agent factories.
// Agents register themselves in init() functions, allowing the CLI to
// discover and instantiate them by name without hardcoded dependencies.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/snakesim/internal/sim"
)

// ErrUnknownAgent is returned by Create for unregistered names.
var ErrUnknownAgent = errors.New("registry: unknown agent")

// AgentInfo contains metadata about a registered agent.
type AgentInfo struct {
	ID          string
	Description string
}

// Factory creates a new agent instance.
type Factory func() sim.Agent

var (
	factories    = make(map[string]Factory)
	descriptions = make(map[string]string)
	mu           sync.RWMutex
)

// Register adds an agent factory to the registry.
// Typically called from an agent's init() function.
// Panics if an agent with the same ID is already registered.
func Register(id, description string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: agent %q already registered", id))
	}

	factories[id] = f
	descriptions[id] = description
}

// List returns information about all registered agents, sorted by ID.
func List() []AgentInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]AgentInfo, 0, len(factories))
	for id := range factories {
		result = append(result, AgentInfo{
			ID:          id,
			Description: descriptions[id],
		})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new agent by its ID.
func Create(id string) (sim.Agent, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownAgent, id)
	}

	return f(), nil
}

// Exists checks if an agent with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}
