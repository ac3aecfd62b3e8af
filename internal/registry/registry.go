// Package registry provides a global registry for scene factories.
// Scenes register themselves in init() functions, allowing the CLI and the
// SSH server to discover and instantiate scenes without hardcoded dependencies.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/topdown/internal/config"
	"github.com/vovakirdan/topdown/internal/engine"
)

// SceneInfo contains metadata about a registered scene.
type SceneInfo struct {
	ID          string
	Title       string
	Description string
}

// Options are passed to a factory when a scene is created.
type Options struct {
	ConfigPath string                  // Scene config file, empty for the search order
	Preset     config.DifficultyPreset // Empty keeps the configured difficulty
}

// Factory creates a new instance of a scene.
type Factory func(opts Options) (engine.Scene, error)

var (
	factories = make(map[string]Factory)
	infos     = make(map[string]SceneInfo)
	mu        sync.RWMutex
)

// Register adds a scene factory to the registry.
// Typically called from a scene package's init() function.
// Panics if a scene with the same ID is already registered.
func Register(info SceneInfo, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if info.ID == "" {
		panic("registry: scene registered without an ID")
	}
	if _, exists := factories[info.ID]; exists {
		panic(fmt.Sprintf("registry: scene %q already registered", info.ID))
	}

	factories[info.ID] = f
	infos[info.ID] = info
}

// List returns information about all registered scenes, sorted by ID.
func List() []SceneInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]SceneInfo, 0, len(infos))
	for _, info := range infos {
		result = append(result, info)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a new scene by its ID.
// Returns an error if the scene ID is not registered or the factory fails.
func Create(id string, opts Options) (engine.Scene, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("registry: unknown scene %q", id)
	}

	sc, err := f(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: create scene %q: %w", id, err)
	}
	return sc, nil
}

// Exists checks if a scene with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Lookup returns the metadata of a registered scene.
func Lookup(id string) (SceneInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	info, ok := infos[id]
	return info, ok
}
