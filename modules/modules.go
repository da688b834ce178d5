// Package modules describes module namespaces and the registry that lets a
// test harness substitute a module's exports before the module is required.
//
// A [Namespace] is a module's export table. A [Factory] maps the original
// namespace to the one consumers see; factories never mutate their input.
// [Table] is an in-memory [Registry] suitable for tests.
package modules

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModule is returned by Require for a path that was never defined.
var ErrUnknownModule = errors.New("unknown module")

// Export is one named entry of a module namespace. ReadOnly exports are
// left untouched by factories.
type Export struct {
	Value    any
	ReadOnly bool
}

// Namespace maps export names to exports.
type Namespace map[string]Export

// Clone returns a shallow copy of ns.
func (ns Namespace) Clone() Namespace {
	out := make(Namespace, len(ns))
	for name, exp := range ns {
		out[name] = exp
	}
	return out
}

// Names returns the export names in sorted order.
func (ns Namespace) Names() []string {
	names := make([]string, 0, len(ns))
	for name := range ns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Value returns the value exported under name.
func (ns Namespace) Value(name string) (any, bool) {
	exp, ok := ns[name]
	if !ok {
		return nil, false
	}
	return exp.Value, true
}

// Factory produces the namespace consumers of a module see.
type Factory func(Namespace) Namespace

// Registry is the module-mock registration facility.
type Registry interface {
	// Mock registers factory for the module at path. The factory runs when
	// the module is next required.
	Mock(path string, factory Factory) error
}

// Class is a constructor-call export. New builds an instance from args.
type Class struct {
	Name string
	New  func(args ...any) any
}

// Construct calls New. A nil Class or constructor yields nil.
func (c *Class) Construct(args ...any) any {
	if c == nil || c.New == nil {
		return nil
	}
	return c.New(args...)
}

// Table is an in-memory Registry. Modules are defined by path, mocks are
// applied once on first Require and cached until Reset.
type Table struct {
	defs  map[string]Namespace
	mocks map[string]Factory
	cache map[string]Namespace
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{
		defs:  make(map[string]Namespace),
		mocks: make(map[string]Factory),
		cache: make(map[string]Namespace),
	}
}

// Define installs the original namespace for path, replacing any earlier
// definition.
func (t *Table) Define(path string, ns Namespace) {
	t.defs[path] = ns
	delete(t.cache, path)
}

// Mock registers factory for path. Registering twice replaces the factory.
func (t *Table) Mock(path string, factory Factory) error {
	if path == "" {
		return fmt.Errorf("modules: mock: empty path")
	}
	if factory == nil {
		return fmt.Errorf("modules: mock %s: nil factory", path)
	}
	t.mocks[path] = factory
	delete(t.cache, path)
	return nil
}

// Mocked reports whether a factory is registered for path.
func (t *Table) Mocked(path string) bool {
	_, ok := t.mocks[path]
	return ok
}

// Paths returns the defined module paths in sorted order.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.defs))
	for p := range t.defs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Require returns the namespace for path, applying its mock factory if one
// is registered.
func (t *Table) Require(path string) (Namespace, error) {
	if ns, ok := t.cache[path]; ok {
		return ns, nil
	}
	def, ok := t.defs[path]
	if !ok {
		return nil, fmt.Errorf("modules: require %s: %w", path, ErrUnknownModule)
	}
	ns := def
	if factory, ok := t.mocks[path]; ok {
		ns = factory(def.Clone())
	}
	t.cache[path] = ns
	return ns, nil
}

// Reset drops cached namespaces so the next Require re-applies factories.
// Definitions and mocks are kept.
func (t *Table) Reset() {
	t.cache = make(map[string]Namespace)
}

var _ Registry = (*Table)(nil)
