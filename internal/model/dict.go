package model

import (
	"fmt"

	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/symbol"
)

// Dict is the serializable form of an equation model. Variables maps each
// equation variable to the name of a registered symbol.
type Dict struct {
	Name        string            `yaml:"name" json:"name"`
	Equations   []string          `yaml:"equations" json:"equations"`
	Variables   map[string]string `yaml:"variables" json:"variables"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
}

// Dict returns the serializable form of the model.
func (m *EquationModel) Dict() Dict {
	vars := make(map[string]string, len(m.symbolMap))
	for v, sym := range m.symbolMap {
		vars[v] = sym.Name
	}
	return Dict{
		Name:        m.name,
		Equations:   m.Equations(),
		Variables:   vars,
		Description: m.description,
	}
}

// FromDict reconstructs a model, resolving symbol names against the
// registry. Registration behavior follows opts, as with NewWithOptions.
func FromDict(reg *registry.Registry, d Dict, opts Options) (*EquationModel, error) {
	symbolMap := make(map[string]*symbol.Symbol, len(d.Variables))
	for v, symName := range d.Variables {
		sym, ok := reg.Symbols.Get(symName)
		if !ok {
			return nil, fmt.Errorf("model: symbol %q for variable %q not registered", symName, v)
		}
		symbolMap[v] = sym
	}
	if opts.Description == "" {
		opts.Description = d.Description
	}
	return NewWithOptions(reg, d.Name, d.Equations, symbolMap, opts)
}
