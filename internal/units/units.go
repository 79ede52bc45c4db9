// Package units implements dimensional signatures and conversion between
// named physical units. A unit value is a scale factor applied to a product
// of named units raised to powers, e.g. 1.0 * centimeter^2.
package units

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dims holds exponents over the seven SI base dimensions.
type Dims [7]float64

// Base dimension indices.
const (
	DimLength = iota
	DimMass
	DimTime
	DimCurrent
	DimTemperature
	DimAmount
	DimLuminosity
)

func (d Dims) Add(other Dims, power float64) Dims {
	for i := range d {
		d[i] += other[i] * power
	}
	return d
}

func (d Dims) Equal(other Dims) bool {
	for i := range d {
		if math.Abs(d[i]-other[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func (d Dims) IsDimensionless() bool {
	return d.Equal(Dims{})
}

// Term is one named unit raised to a power.
type Term struct {
	Unit  string  `yaml:"unit" json:"unit"`
	Power float64 `yaml:"power" json:"power"`
}

// Units is a scale factor times a product of unit terms. The zero value is
// not valid; use Dimensionless or New.
type Units struct {
	Scale float64 `yaml:"scale" json:"scale"`
	Terms []Term  `yaml:"terms,omitempty" json:"terms,omitempty"`
}

// Dimensionless is the unit of pure numbers.
var Dimensionless = Units{Scale: 1}

func New(scale float64, terms ...Term) Units {
	return Units{Scale: scale, Terms: terms}
}

// Factor returns the multiplier converting a magnitude in these units to SI
// base units.
func (u Units) Factor() (float64, error) {
	f := u.Scale
	if f == 0 {
		f = 1
	}
	for _, t := range u.Terms {
		base, _, err := Lookup(t.Unit)
		if err != nil {
			return 0, err
		}
		f *= math.Pow(base, t.Power)
	}
	return f, nil
}

// Dims returns the base-dimension exponents of these units.
func (u Units) Dims() (Dims, error) {
	var d Dims
	for _, t := range u.Terms {
		_, td, err := Lookup(t.Unit)
		if err != nil {
			return Dims{}, err
		}
		d = d.Add(td, t.Power)
	}
	return d, nil
}

// Compatible reports whether magnitudes in u can be converted to v.
func (u Units) Compatible(v Units) bool {
	du, err := u.Dims()
	if err != nil {
		return false
	}
	dv, err := v.Dims()
	if err != nil {
		return false
	}
	return du.Equal(dv)
}

// ConversionFactor returns the multiplier taking a magnitude in from-units
// to to-units.
func ConversionFactor(from, to Units) (float64, error) {
	df, err := from.Dims()
	if err != nil {
		return 0, err
	}
	dt, err := to.Dims()
	if err != nil {
		return 0, err
	}
	if !df.Equal(dt) {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrIncompatible, from, to)
	}
	ff, err := from.Factor()
	if err != nil {
		return 0, err
	}
	ft, err := to.Factor()
	if err != nil {
		return 0, err
	}
	return ff / ft, nil
}

// normalized returns terms merged by unit name and sorted, dropping zero
// powers.
func (u Units) normalized() []Term {
	merged := make(map[string]float64)
	for _, t := range u.Terms {
		merged[t.Unit] += t.Power
	}
	out := make([]Term, 0, len(merged))
	for name, p := range merged {
		if math.Abs(p) > 1e-12 {
			out = append(out, Term{Unit: name, Power: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Unit < out[j].Unit })
	return out
}

// Equal reports structural equality up to term ordering and merging.
func (u Units) Equal(v Units) bool {
	su, sv := u.Scale, v.Scale
	if su == 0 {
		su = 1
	}
	if sv == 0 {
		sv = 1
	}
	if math.Abs(su-sv) > 1e-12*math.Max(math.Abs(su), math.Abs(sv)) {
		return false
	}
	nu, nv := u.normalized(), v.normalized()
	if len(nu) != len(nv) {
		return false
	}
	for i := range nu {
		if nu[i].Unit != nv[i].Unit || math.Abs(nu[i].Power-nv[i].Power) > 1e-9 {
			return false
		}
	}
	return true
}

func (u Units) String() string {
	if len(u.Terms) == 0 {
		return "dimensionless"
	}
	var b strings.Builder
	if u.Scale != 0 && u.Scale != 1 {
		fmt.Fprintf(&b, "%g ", u.Scale)
	}
	for i, t := range u.Terms {
		if i > 0 {
			b.WriteString(" * ")
		}
		b.WriteString(t.Unit)
		if t.Power != 1 {
			fmt.Fprintf(&b, "^%g", t.Power)
		}
	}
	return b.String()
}

// UnmarshalYAML accepts either a unit expression string such as
// "gigapascal" or "gram / centimeter^3", or a mapping with scale and terms.
func (u *Units) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := Parse(value.Value)
		if err != nil {
			return err
		}
		*u = parsed
		return nil
	}
	type raw Units
	var r raw
	if err := value.Decode(&r); err != nil {
		return err
	}
	*u = Units(r)
	if u.Scale == 0 {
		u.Scale = 1
	}
	return nil
}
