package module

import (
	"sort"
	"sync"
)

// Definition is the recipe for executing a module.
type Definition struct {
	// Source is an optional file backing the module, relative to the loader
	// search path or absolute. Its modification time drives reloads.
	Source string
	// Init executes the module, filling m's namespace. m.Path is already set.
	Init func(m *Module) error
}

// Registry maps fully-qualified module names to definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: map[string]Definition{}}
}

// Register makes a module importable under name.
func (r *Registry) Register(name string, def Definition) {
	if name == "" || def.Init == nil {
		panic("module: name and init required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.defs[name]; dup {
		panic("module: duplicate " + name)
	}
	r.defs[name] = def
}

// Lookup retrieves a definition by name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[name]
	return d, ok
}

// Names lists registered modules in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.defs))
	for k := range r.defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Default is the process-wide registry used by Register and Lookup.
var Default = NewRegistry()

// Register makes a module available under a name referenced in manifest.toml
func Register(name string, def Definition) {
	Default.Register(name, def)
}

// Lookup retrieves a definition from the default registry.
func Lookup(name string) (Definition, bool) {
	return Default.Lookup(name)
}
