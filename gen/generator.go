package gen

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// OutputFile represents a single generated file.
type OutputFile struct {
	Path    string // Relative path within output directory
	Content []byte
}

// Generator is the interface all binding renderers implement.
// Each generator renders one module plan for a specific target (e.g. Go, Rust, C header).
// Adding a target requires only implementing this interface and calling Register() in init().
type Generator interface {
	// Name returns the generator name (e.g., "go", "rust", "cheader").
	Name() string

	// Generate renders output files for the module plan in ctx.
	Generate(ctx *Context) ([]*OutputFile, error)
}

// DefaultTargets are rendered when no target list is given.
var DefaultTargets = []string{"go"}

var (
	registryMu sync.RWMutex
	registry   = map[string]func() Generator{}
)

// Register adds a generator factory to the registry.
// Typically called from init() in each generator's file.
func Register(name string, factory func() Generator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("generator %q already registered", name))
	}
	registry[name] = factory
}

// Get returns a new instance of the named generator.
func Get(name string) (Generator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// All returns the names of all registered generators, sorted.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTargets splits a comma-separated target list, dropping blanks and
// duplicates, and checks every name against the registry.
func ParseTargets(list string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		if _, ok := Get(name); !ok {
			return nil, fmt.Errorf("unknown target %q (available: %s)", name, strings.Join(All(), ", "))
		}
		seen[name] = true
		out = append(out, name)
	}
	if len(out) == 0 {
		return DefaultTargets, nil
	}
	return out, nil
}
