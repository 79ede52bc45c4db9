// Package material groups the known quantities of one physical entity so a
// derivation graph can enrich it in place.
package material

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/units"
)

// Material is a named holder of quantities keyed by symbol name. Multiple
// quantities per symbol are allowed.
type Material struct {
	Name       string
	quantities map[string][]*quantity.Quantity
}

func New(name string) *Material {
	return &Material{
		Name:       name,
		quantities: make(map[string][]*quantity.Quantity),
	}
}

// Add attaches a quantity to the material.
func (m *Material) Add(q *quantity.Quantity) {
	name := q.Symbol.Name
	m.quantities[name] = append(m.quantities[name], q)
}

// Quantities returns every attached quantity, ordered by symbol name.
func (m *Material) Quantities() []*quantity.Quantity {
	var all []*quantity.Quantity
	for _, name := range m.SymbolNames() {
		all = append(all, m.quantities[name]...)
	}
	return all
}

// BySymbol returns the quantities attached under one symbol name.
func (m *Material) BySymbol(name string) []*quantity.Quantity {
	return m.quantities[name]
}

// SymbolNames returns the sorted symbol names with at least one quantity.
func (m *Material) SymbolNames() []string {
	names := make([]string, 0, len(m.quantities))
	for name := range m.quantities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of attached quantities.
func (m *Material) Len() int {
	n := 0
	for _, qs := range m.quantities {
		n += len(qs)
	}
	return n
}

type fileQuantity struct {
	Symbol string  `yaml:"symbol"`
	Value  float64 `yaml:"value"`
	Unit   string  `yaml:"unit,omitempty"`
}

type file struct {
	Name       string         `yaml:"name"`
	Quantities []fileQuantity `yaml:"quantities"`
}

// Load reads a material definition file, resolving symbol names and units
// against the registry. A quantity without a unit is taken in its symbol's
// canonical units.
func Load(path string, reg *registry.Registry) (*Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Name == "" {
		return nil, fmt.Errorf("material: %s: name must not be empty", path)
	}

	mat := New(f.Name)
	for _, fq := range f.Quantities {
		sym, ok := reg.Symbols.Get(fq.Symbol)
		if !ok {
			return nil, fmt.Errorf("material: %s: unknown symbol %q", path, fq.Symbol)
		}
		var q *quantity.Quantity
		if fq.Unit == "" {
			q, err = quantity.Create(sym, complex(fq.Value, 0))
		} else {
			var u units.Units
			u, err = units.Parse(fq.Unit)
			if err != nil {
				return nil, fmt.Errorf("material: %s: %w", path, err)
			}
			q, err = quantity.CreateIn(sym, complex(fq.Value, 0), u)
		}
		if err != nil {
			return nil, fmt.Errorf("material: %s: %w", path, err)
		}
		mat.Add(q)
	}
	return mat, nil
}
