// Package quantity holds concrete values of symbols: a magnitude tagged
// with units and provenance. Quantities are created through factory
// functions that validate unit compatibility against the symbol's canonical
// units, and are immutable afterwards; conversion returns a new quantity.
package quantity

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/matsolve/propgraph/internal/symbol"
	"github.com/matsolve/propgraph/internal/units"
)

// ErrUnitMismatch indicates a unit dimensionally incompatible with the
// symbol's canonical unit.
var ErrUnitMismatch = errors.New("quantity: unit incompatible with symbol")

const imagTolerance = 1e-12

// Provenance records how a derived quantity was produced.
type Provenance struct {
	Model  string
	Inputs []uuid.UUID
}

// Quantity is one measured or derived value of a symbol. Magnitudes are
// complex; real values carry a zero imaginary part.
type Quantity struct {
	Symbol     *symbol.Symbol
	Magnitude  complex128
	Units      units.Units
	ID         uuid.UUID
	Provenance *Provenance
}

// Create builds a quantity in the symbol's canonical units.
func Create(sym *symbol.Symbol, magnitude complex128) (*Quantity, error) {
	return &Quantity{
		Symbol:    sym,
		Magnitude: magnitude,
		Units:     sym.Units,
		ID:        uuid.New(),
	}, nil
}

// CreateIn builds a quantity in the given units, which must be dimensionally
// compatible with the symbol's canonical units. No numeric-validity check
// happens here; raw measurements may hold NaN until evaluated.
func CreateIn(sym *symbol.Symbol, magnitude complex128, u units.Units) (*Quantity, error) {
	if !u.Compatible(sym.Units) {
		return nil, fmt.Errorf("%w: %s is not %s for symbol %s", ErrUnitMismatch, u, sym.Units, sym.Name)
	}
	return &Quantity{
		Symbol:    sym,
		Magnitude: magnitude,
		Units:     u,
		ID:        uuid.New(),
	}, nil
}

// To returns a copy of the quantity rescaled into target units. Rescaling is
// the only way a magnitude changes after construction; identity and
// provenance carry over.
func (q *Quantity) To(target units.Units) (*Quantity, error) {
	factor, err := units.ConversionFactor(q.Units, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnitMismatch, err)
	}
	return &Quantity{
		Symbol:     q.Symbol,
		Magnitude:  q.Magnitude * complex(factor, 0),
		Units:      target,
		ID:         q.ID,
		Provenance: q.Provenance,
	}, nil
}

// ToCanonical rescales into the symbol's canonical units.
func (q *Quantity) ToCanonical() (*Quantity, error) {
	return q.To(q.Symbol.Units)
}

// Real returns the real part of the magnitude.
func (q *Quantity) Real() float64 {
	return real(q.Magnitude)
}

// IsComplex reports a meaningfully non-zero imaginary part.
func (q *Quantity) IsComplex() bool {
	im := imag(q.Magnitude)
	re := real(q.Magnitude)
	if im == 0 {
		return false
	}
	return math.Abs(im) > imagTolerance*math.Max(1, math.Abs(re))
}

// HasNaN reports NaN in either component of the magnitude.
func (q *Quantity) HasNaN() bool {
	return math.IsNaN(real(q.Magnitude)) || math.IsNaN(imag(q.Magnitude))
}

func (q *Quantity) String() string {
	if q.IsComplex() {
		return fmt.Sprintf("%s = %g%+gj %s", q.Symbol.Name, real(q.Magnitude), imag(q.Magnitude), q.Units)
	}
	return fmt.Sprintf("%s = %g %s", q.Symbol.Name, real(q.Magnitude), q.Units)
}
