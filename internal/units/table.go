package units

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Domain errors for unit handling.
var (
	ErrUnknownUnit  = errors.New("units: unknown unit name")
	ErrIncompatible = errors.New("units: incompatible dimensions")
	ErrBadExpr      = errors.New("units: malformed unit expression")
)

type unitDef struct {
	factor float64
	dims   Dims
}

func dims(l, m, t, i, temp, n, j float64) Dims {
	return Dims{l, m, t, i, temp, n, j}
}

// Named units with factors relative to SI base units. Mass base is the
// kilogram, so gram carries 1e-3.
var table = map[string]unitDef{
	"meter":    {1, dims(1, 0, 0, 0, 0, 0, 0)},
	"gram":     {1e-3, dims(0, 1, 0, 0, 0, 0, 0)},
	"second":   {1, dims(0, 0, 1, 0, 0, 0, 0)},
	"ampere":   {1, dims(0, 0, 0, 1, 0, 0, 0)},
	"kelvin":   {1, dims(0, 0, 0, 0, 1, 0, 0)},
	"mole":     {1, dims(0, 0, 0, 0, 0, 1, 0)},
	"candela":  {1, dims(0, 0, 0, 0, 0, 0, 1)},
	"radian":   {1, Dims{}},
	"angstrom": {1e-10, dims(1, 0, 0, 0, 0, 0, 0)},
	"liter":    {1e-3, dims(3, 0, 0, 0, 0, 0, 0)},
	"minute":   {60, dims(0, 0, 1, 0, 0, 0, 0)},
	"hour":     {3600, dims(0, 0, 1, 0, 0, 0, 0)},
	"day":      {86400, dims(0, 0, 1, 0, 0, 0, 0)},

	"hertz":   {1, dims(0, 0, -1, 0, 0, 0, 0)},
	"newton":  {1, dims(1, 1, -2, 0, 0, 0, 0)},
	"pascal":  {1, dims(-1, 1, -2, 0, 0, 0, 0)},
	"joule":   {1, dims(2, 1, -2, 0, 0, 0, 0)},
	"watt":    {1, dims(2, 1, -3, 0, 0, 0, 0)},
	"coulomb": {1, dims(0, 0, 1, 1, 0, 0, 0)},
	"volt":    {1, dims(2, 1, -3, -1, 0, 0, 0)},
	"ohm":     {1, dims(2, 1, -3, -2, 0, 0, 0)},
	"farad":   {1, dims(-2, -1, 4, 2, 0, 0, 0)},
	"siemens": {1, dims(-2, -1, 3, 2, 0, 0, 0)},
	"tesla":   {1, dims(0, 1, -2, -1, 0, 0, 0)},
	"weber":   {1, dims(2, 1, -2, -1, 0, 0, 0)},

	"bar":           {1e5, dims(-1, 1, -2, 0, 0, 0, 0)},
	"atmosphere":    {101325, dims(-1, 1, -2, 0, 0, 0, 0)},
	"electron_volt": {1.602176634e-19, dims(2, 1, -2, 0, 0, 0, 0)},
	"dalton":        {1.66053906660e-27, dims(0, 1, 0, 0, 0, 0, 0)},
}

var prefixes = map[string]float64{
	"yotta": 1e24,
	"zetta": 1e21,
	"exa":   1e18,
	"peta":  1e15,
	"tera":  1e12,
	"giga":  1e9,
	"mega":  1e6,
	"kilo":  1e3,
	"hecto": 1e2,
	"deca":  1e1,
	"deci":  1e-1,
	"centi": 1e-2,
	"milli": 1e-3,
	"micro": 1e-6,
	"nano":  1e-9,
	"pico":  1e-12,
	"femto": 1e-15,
	"atto":  1e-18,
	"zepto": 1e-21,
	"yocto": 1e-24,
}

// Lookup resolves a unit name, applying SI prefixes when the bare name is
// not in the table ("gigapascal" = giga + pascal).
func Lookup(name string) (float64, Dims, error) {
	if def, ok := table[name]; ok {
		return def.factor, def.dims, nil
	}
	for prefix, mult := range prefixes {
		if strings.HasPrefix(name, prefix) {
			base := strings.TrimPrefix(name, prefix)
			if def, ok := table[base]; ok {
				return def.factor * mult, def.dims, nil
			}
		}
	}
	return 0, Dims{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
}

// Known reports whether name resolves to a unit.
func Known(name string) bool {
	_, _, err := Lookup(name)
	return err == nil
}

// Parse reads a unit expression of the form
//
//	name[^power] { (* | /) name[^power] }
//
// or the literal "dimensionless". Powers may be negative or fractional.
func Parse(s string) (Units, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "dimensionless" {
		return Dimensionless, nil
	}

	u := Units{Scale: 1}
	sign := 1.0
	for _, part := range splitExpr(s) {
		switch part {
		case "*":
			sign = 1
			continue
		case "/":
			sign = -1
			continue
		}
		name, power, err := parseTerm(part)
		if err != nil {
			return Units{}, err
		}
		if !Known(name) {
			return Units{}, fmt.Errorf("%w: %q", ErrUnknownUnit, name)
		}
		u.Terms = append(u.Terms, Term{Unit: name, Power: sign * power})
		sign = 1
	}
	if len(u.Terms) == 0 {
		return Units{}, fmt.Errorf("%w: %q", ErrBadExpr, s)
	}
	return u, nil
}

// MustParse is Parse for static definitions; it panics on error.
func MustParse(s string) Units {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

func splitExpr(s string) []string {
	var parts []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch r {
		case ' ', '\t':
			flush()
		case '*', '/':
			flush()
			parts = append(parts, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return parts
}

func parseTerm(s string) (string, float64, error) {
	name := s
	power := 1.0
	if idx := strings.Index(s, "^"); idx >= 0 {
		name = s[:idx]
		p, err := strconv.ParseFloat(s[idx+1:], 64)
		if err != nil {
			return "", 0, fmt.Errorf("%w: bad power in %q", ErrBadExpr, s)
		}
		power = p
	}
	if name == "" || math.IsNaN(power) {
		return "", 0, fmt.Errorf("%w: %q", ErrBadExpr, s)
	}
	return name, power, nil
}
