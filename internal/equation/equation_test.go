package equation

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, src string, env map[string]complex128) complex128 {
	t.Helper()
	eq, err := Parse(src)
	require.NoError(t, err)
	unknowns := eq.Unknowns(env)
	require.Len(t, unknowns, 1)
	v, err := eq.SolveFor(unknowns[0], env)
	require.NoError(t, err)
	return v
}

func TestParseVars(t *testing.T) {
	eq, err := Parse("a = l1 * l2")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "l1", "l2"}, eq.Vars())
	assert.Equal(t, []string{"a"}, eq.OutputVars())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("a + b")
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse("a = b +* c")
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse("a = frobnicate(b)")
	assert.ErrorIs(t, err, ErrParse)
}

func TestSolveForward(t *testing.T) {
	v := eval(t, "a = l1 * l2", map[string]complex128{"l1": 100, "l2": 2})
	assert.InDelta(t, 200, real(v), 1e-9)
}

func TestSolveInverse(t *testing.T) {
	// same equation, solved for a factor instead of the product
	v := eval(t, "a = l1 * l2", map[string]complex128{"a": 200, "l2": 2})
	assert.InDelta(t, 100, real(v), 1e-9)

	v = eval(t, "E = 2 * G * (1 + nu)", map[string]complex128{"E": 100, "G": 40})
	assert.InDelta(t, 0.25, real(v), 1e-9)

	v = eval(t, "y = x^2", map[string]complex128{"y": 9})
	assert.InDelta(t, 3, real(v), 1e-9)

	v = eval(t, "y = 2^x", map[string]complex128{"y": 8})
	assert.InDelta(t, 3, real(v), 1e-9)

	v = eval(t, "y = sqrt(x)", map[string]complex128{"y": 5})
	assert.InDelta(t, 25, real(v), 1e-9)

	v = eval(t, "y = a - x", map[string]complex128{"y": 1, "a": 4})
	assert.InDelta(t, 3, real(v), 1e-9)

	v = eval(t, "y = a / x", map[string]complex128{"y": 2, "a": 10})
	assert.InDelta(t, 5, real(v), 1e-9)
}

func TestSolveNegation(t *testing.T) {
	v := eval(t, "y = -x + 1", map[string]complex128{"y": -1})
	assert.InDelta(t, 2, real(v), 1e-9)
}

func TestImaginaryLiteral(t *testing.T) {
	v := eval(t, "a = b + 1j", map[string]complex128{"b": 5})
	assert.InDelta(t, 5, real(v), 1e-12)
	assert.InDelta(t, 1, imag(v), 1e-12)

	v = eval(t, "a = b + 1j", map[string]complex128{"b": complex(0, 5)})
	assert.InDelta(t, 0, real(v), 1e-12)
	assert.InDelta(t, 6, imag(v), 1e-12)
}

func TestScientificNotation(t *testing.T) {
	v := eval(t, "y = 1.5e3 * x", map[string]complex128{"x": 2})
	assert.InDelta(t, 3000, real(v), 1e-9)
}

func TestPowAlias(t *testing.T) {
	v := eval(t, "y = x**3", map[string]complex128{"x": 2})
	assert.InDelta(t, 8, real(v), 1e-9)
}

func TestCannotIsolateRepeatedVar(t *testing.T) {
	eq, err := Parse("y = x + x")
	require.NoError(t, err)
	_, err = eq.SolveFor("x", map[string]complex128{"y": 4})
	assert.ErrorIs(t, err, ErrCannotIsolate)
}

func TestSolveForMissingVar(t *testing.T) {
	eq, err := Parse("y = x")
	require.NoError(t, err)
	_, err = eq.SolveFor("z", map[string]complex128{"y": 4})
	assert.ErrorIs(t, err, ErrUnknownVar)
}

func TestNaNPropagates(t *testing.T) {
	v := eval(t, "a = b", map[string]complex128{"b": complex(math.NaN(), 0)})
	assert.True(t, cmplx.IsNaN(v))
}

func TestSolveSetChains(t *testing.T) {
	eqs := []*Equation{
		mustParse(t, "b = 2 * a"),
		mustParse(t, "c = b + 1"),
	}
	env := map[string]complex128{"a": 3}
	solved := SolveSet(eqs, env)
	assert.Equal(t, []string{"b", "c"}, solved)
	assert.InDelta(t, 6, real(env["b"]), 1e-9)
	assert.InDelta(t, 7, real(env["c"]), 1e-9)
}

func TestSolveSetFixedPointOrder(t *testing.T) {
	// first pass cannot solve eq 1, second pass can
	eqs := []*Equation{
		mustParse(t, "c = b + 1"),
		mustParse(t, "b = 2 * a"),
	}
	env := map[string]complex128{"a": 3}
	solved := SolveSet(eqs, env)
	assert.ElementsMatch(t, []string{"b", "c"}, solved)
	assert.InDelta(t, 7, real(env["c"]), 1e-9)
}

func TestSolveSetStops(t *testing.T) {
	eqs := []*Equation{mustParse(t, "c = a + b")}
	env := map[string]complex128{"a": 1}
	solved := SolveSet(eqs, env)
	assert.Empty(t, solved)
}

func mustParse(t *testing.T, src string) *Equation {
	t.Helper()
	eq, err := Parse(src)
	require.NoError(t, err)
	return eq
}
