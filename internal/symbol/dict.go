package symbol

import (
	"slices"

	"github.com/matsolve/propgraph/internal/units"
)

// Dict is the serializable form of a Symbol. Round-tripping through Dict
// preserves every field that participates in equality.
type Dict struct {
	Name           string      `yaml:"name" json:"name"`
	Units          units.Units `yaml:"units" json:"units"`
	Shape          []int       `yaml:"shape,omitempty" json:"shape,omitempty"`
	Category       string      `yaml:"category,omitempty" json:"category,omitempty"`
	DisplayNames   []string    `yaml:"display_names,omitempty" json:"display_names,omitempty"`
	DisplaySymbols []string    `yaml:"display_symbols,omitempty" json:"display_symbols,omitempty"`
	Comment        string      `yaml:"comment,omitempty" json:"comment,omitempty"`
	Complex        bool        `yaml:"complex,omitempty" json:"complex,omitempty"`
}

// Dict returns the serializable form of the symbol.
func (s *Symbol) Dict() Dict {
	return Dict{
		Name:           s.Name,
		Units:          s.Units,
		Shape:          slices.Clone(s.Shape),
		Category:       s.Category,
		DisplayNames:   slices.Clone(s.DisplayNames),
		DisplaySymbols: slices.Clone(s.DisplaySymbols),
		Comment:        s.Comment,
		Complex:        s.Complex,
	}
}

// FromDict validates and constructs a Symbol from its serialized form.
func FromDict(d Dict) (*Symbol, error) {
	s := &Symbol{
		Name:           d.Name,
		Units:          d.Units,
		Shape:          slices.Clone(d.Shape),
		Category:       d.Category,
		DisplayNames:   slices.Clone(d.DisplayNames),
		DisplaySymbols: slices.Clone(d.DisplaySymbols),
		Comment:        d.Comment,
		Complex:        d.Complex,
	}
	if len(s.Shape) == 0 {
		s.Shape = []int{1}
	}
	if s.Category == "" {
		s.Category = CategoryProperty
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
