// Package symbol defines property types: the named, unit-bearing
// descriptors that quantities instantiate. Symbols are immutable value
// objects compared by structural content.
package symbol

import (
	"errors"
	"fmt"
	"slices"

	"github.com/matsolve/propgraph/internal/units"
)

// Domain errors for symbol construction.
var (
	ErrBadShape    = errors.New("symbol: shape entries must be positive")
	ErrEmptyName   = errors.New("symbol: name must not be empty")
	ErrBadCategory = errors.New("symbol: unknown category")
)

// Categories a symbol may belong to.
const (
	CategoryProperty  = "property"
	CategoryObject    = "object"
	CategoryCondition = "condition"
)

var categories = []string{CategoryProperty, CategoryObject, CategoryCondition}

// Symbol describes one physical property type. Once a symbol is registered
// its fields must not be mutated; derive a new symbol instead.
type Symbol struct {
	Name           string
	Units          units.Units
	Shape          []int
	Category       string
	DisplayNames   []string
	DisplaySymbols []string
	Comment        string

	// Complex marks the symbol's domain as permitting imaginary parts in
	// derived values.
	Complex bool

	// Builtin is set by the builtin loader so user entries can be purged
	// without disturbing the shipped library.
	Builtin bool
}

// New validates and constructs a Symbol. A nil or empty shape means scalar.
// An empty category defaults to "property".
func New(name string, u units.Units, shape []int) (*Symbol, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if len(shape) == 0 {
		shape = []int{1}
	}
	for _, dim := range shape {
		if dim < 1 {
			return nil, fmt.Errorf("%w: got %v", ErrBadShape, shape)
		}
	}
	if _, err := u.Dims(); err != nil {
		return nil, err
	}
	return &Symbol{
		Name:     name,
		Units:    u,
		Shape:    slices.Clone(shape),
		Category: CategoryProperty,
	}, nil
}

// Validate checks a fully-populated symbol, e.g. one decoded from a dict.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return ErrEmptyName
	}
	if len(s.Shape) == 0 {
		return fmt.Errorf("%w: empty shape", ErrBadShape)
	}
	for _, dim := range s.Shape {
		if dim < 1 {
			return fmt.Errorf("%w: got %v", ErrBadShape, s.Shape)
		}
	}
	if s.Category != "" && !slices.Contains(categories, s.Category) {
		return fmt.Errorf("%w: %q", ErrBadCategory, s.Category)
	}
	if _, err := s.Units.Dims(); err != nil {
		return err
	}
	return nil
}

// IsScalar reports whether the symbol describes a single value.
func (s *Symbol) IsScalar() bool {
	for _, dim := range s.Shape {
		if dim != 1 {
			return false
		}
	}
	return true
}

// Display returns the preferred human-readable name.
func (s *Symbol) Display() string {
	if len(s.DisplayNames) > 0 {
		return s.DisplayNames[0]
	}
	return s.Name
}

// Equal compares every structural field.
func (s *Symbol) Equal(other *Symbol) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Name == other.Name &&
		s.Units.Equal(other.Units) &&
		slices.Equal(s.Shape, other.Shape) &&
		s.Category == other.Category &&
		slices.Equal(s.DisplayNames, other.DisplayNames) &&
		slices.Equal(s.DisplaySymbols, other.DisplaySymbols) &&
		s.Comment == other.Comment &&
		s.Complex == other.Complex
}

func (s *Symbol) String() string {
	return fmt.Sprintf("%s [%s]", s.Name, s.Units)
}
