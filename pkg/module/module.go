// Package module defines loadable handler modules: their namespaces of
// functions, classes and instances, the definition registry modules are
// imported from, and the resolver that turns a dotted object path into a
// callable handler.
package module

import (
	"sort"
	"time"

	"github.com/joeydtaylor/steeze-hooks/pkg/hook"
)

// Object is an instance whose attributes can be looked up by name.
type Object interface {
	Attr(name string) (any, bool)
}

// Class constructs a fresh instance. Classes take no arguments.
type Class func() Object

// Methods is an Object backed by a map of attributes.
type Methods map[string]any

func (m Methods) Attr(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Namespace holds the definitions of a module or a nested package.
type Namespace struct {
	defs map[string]any
}

// NewNamespace returns an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{defs: map[string]any{}}
}

// Func binds a bare handler function.
func (ns *Namespace) Func(name string, fn hook.HandlerFunc) { ns.defs[name] = fn }

// Class binds a zero-argument constructor.
func (ns *Namespace) Class(name string, c Class) { ns.defs[name] = c }

// Instance binds a pre-built object.
func (ns *Namespace) Instance(name string, o Object) { ns.defs[name] = o }

// Sub returns the nested namespace name, creating it on first use.
func (ns *Namespace) Sub(name string) *Namespace {
	if sub, ok := ns.defs[name].(*Namespace); ok {
		return sub
	}
	sub := NewNamespace()
	ns.defs[name] = sub
	return sub
}

// Set binds an arbitrary value; non-callable values are useful as module state.
func (ns *Namespace) Set(name string, v any) { ns.defs[name] = v }

func (ns *Namespace) Attr(name string) (any, bool) {
	v, ok := ns.defs[name]
	return v, ok
}

// Names lists the bound names in sorted order.
func (ns *Namespace) Names() []string {
	out := make([]string, 0, len(ns.defs))
	for k := range ns.defs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Module is a loaded code unit.
type Module struct {
	*Namespace

	Name string
	// Path is the resolved source file, empty when the module has none.
	Path string
	// MTime is the last observed modification time of Path.
	MTime time.Time
	// Generation counts executions: 1 after import, +1 per reload.
	Generation int
}

// Info is a read-only summary of a cached module.
type Info struct {
	Name       string    `json:"name"`
	Path       string    `json:"path,omitempty"`
	MTime      time.Time `json:"mtime,omitempty"`
	Generation int       `json:"generation"`
}

func (m *Module) Info() Info {
	return Info{Name: m.Name, Path: m.Path, MTime: m.MTime, Generation: m.Generation}
}
