// Package registry tracks the known symbols, units and models for a
// derivation context. Rather than process-global state, a Registry is an
// explicit object handed to model constructors and graph builders; tests
// construct isolated instances. No internal locking: callers running
// concurrent writers must serialize access.
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/matsolve/propgraph/internal/symbol"
	"github.com/matsolve/propgraph/internal/units"
)

// ErrDuplicateKey indicates a strict insert over an existing entry.
var ErrDuplicateKey = errors.New("registry: duplicate key")

// Model is the registrable face of an equation model. The concrete
// evaluation surface lives in the model package; graph code asserts to a
// wider interface when it needs to evaluate.
type Model interface {
	Name() string
	InputSymbols() []string
	OutputSymbols() []string
}

// Namespace is one named mapping of keys to entries with builtin marking.
type Namespace[T any] struct {
	name    string
	entries map[string]T
	builtin map[string]bool
}

func newNamespace[T any](name string) *Namespace[T] {
	return &Namespace[T]{
		name:    name,
		entries: make(map[string]T),
		builtin: make(map[string]bool),
	}
}

// Get returns the entry for key, if present.
func (n *Namespace[T]) Get(key string) (T, bool) {
	v, ok := n.entries[key]
	return v, ok
}

// Set inserts or overwrites.
func (n *Namespace[T]) Set(key string, v T) {
	n.entries[key] = v
}

// SetStrict inserts, failing if the key already exists.
func (n *Namespace[T]) SetStrict(key string, v T) error {
	if _, ok := n.entries[key]; ok {
		return fmt.Errorf("%w: %q in %s", ErrDuplicateKey, key, n.name)
	}
	n.entries[key] = v
	return nil
}

// Pop removes and returns the entry for key.
func (n *Namespace[T]) Pop(key string) (T, bool) {
	v, ok := n.entries[key]
	if ok {
		delete(n.entries, key)
		delete(n.builtin, key)
	}
	return v, ok
}

// Contains reports key membership.
func (n *Namespace[T]) Contains(key string) bool {
	_, ok := n.entries[key]
	return ok
}

// Names returns all keys in sorted order.
func (n *Namespace[T]) Names() []string {
	names := make([]string, 0, len(n.entries))
	for name := range n.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of entries.
func (n *Namespace[T]) Len() int { return len(n.entries) }

// MarkBuiltin flags an entry as part of the shipped library.
func (n *Namespace[T]) MarkBuiltin(key string) {
	if _, ok := n.entries[key]; ok {
		n.builtin[key] = true
	}
}

// IsBuiltin reports whether key was flagged builtin.
func (n *Namespace[T]) IsBuiltin(key string) bool { return n.builtin[key] }

// PurgeUser removes every entry not flagged builtin and returns the removed
// keys. Tests use this to reset shared fixtures.
func (n *Namespace[T]) PurgeUser() []string {
	var removed []string
	for key := range n.entries {
		if !n.builtin[key] {
			delete(n.entries, key)
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Registry bundles the three namespaces of a derivation context.
type Registry struct {
	Symbols *Namespace[*symbol.Symbol]
	Units   *Namespace[units.Units]
	Models  *Namespace[Model]
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		Symbols: newNamespace[*symbol.Symbol]("symbols"),
		Units:   newNamespace[units.Units]("units"),
		Models:  newNamespace[Model]("models"),
	}
}

// RegisterSymbol inserts a symbol under its name in both the symbols and
// units namespaces, overwriting existing entries.
func (r *Registry) RegisterSymbol(s *symbol.Symbol) {
	r.Symbols.Set(s.Name, s)
	r.Units.Set(s.Name, s.Units)
	if s.Builtin {
		r.Symbols.MarkBuiltin(s.Name)
		r.Units.MarkBuiltin(s.Name)
	}
}

// UnregisterSymbol removes a symbol from both namespaces.
func (r *Registry) UnregisterSymbol(name string) {
	r.Symbols.Pop(name)
	r.Units.Pop(name)
}
