package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsolve/propgraph/internal/material"
	"github.com/matsolve/propgraph/internal/model"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/symbol"
	"github.com/matsolve/propgraph/internal/units"
)

// chainRegistry wires x --double--> y --increment--> z.
func chainRegistry(t *testing.T) (*registry.Registry, map[string]*symbol.Symbol) {
	t.Helper()
	reg := registry.New()
	syms := make(map[string]*symbol.Symbol)
	for _, name := range []string{"x", "y", "z"} {
		s, err := symbol.New(name, units.Dimensionless, nil)
		require.NoError(t, err)
		reg.RegisterSymbol(s)
		syms[name] = s
	}
	_, err := model.New(reg, "double", []string{"y = 2 * x"},
		map[string]*symbol.Symbol{"x": syms["x"], "y": syms["y"]})
	require.NoError(t, err)
	_, err = model.New(reg, "increment", []string{"z = y + 1"},
		map[string]*symbol.Symbol{"y": syms["y"], "z": syms["z"]})
	require.NoError(t, err)
	return reg, syms
}

func TestNodes(t *testing.T) {
	reg, _ := chainRegistry(t)
	g := New(reg)

	nodes := g.Nodes()
	assert.Equal(t, []Node{
		{Kind: SymbolNode, Name: "x"},
		{Kind: SymbolNode, Name: "y"},
		{Kind: SymbolNode, Name: "z"},
		{Kind: ModelNode, Name: "double"},
		{Kind: ModelNode, Name: "increment"},
	}, nodes)
}

func TestProducersConsumers(t *testing.T) {
	reg, _ := chainRegistry(t)
	g := New(reg)

	assert.Equal(t, []string{"double"}, g.Producers("y"))
	assert.Equal(t, []string{"increment"}, g.Consumers("y"))
	assert.Empty(t, g.Producers("x"))
	assert.Empty(t, g.Consumers("z"))
}

func TestDegreeOfSeparation(t *testing.T) {
	reg, _ := chainRegistry(t)
	g := New(reg)

	dist, found, err := g.DegreeOfSeparation("x", "y")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, dist)

	dist, found, err = g.DegreeOfSeparation("x", "z")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, dist)

	// no directed path in reverse
	_, found, err = g.DegreeOfSeparation("z", "x")
	require.NoError(t, err)
	assert.False(t, found)

	dist, found, err = g.DegreeOfSeparation("x", "x")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 0, dist)

	_, _, err = g.DegreeOfSeparation("x", "nonexistent")
	assert.ErrorIs(t, err, ErrNodeNotFound)
	_, _, err = g.DegreeOfSeparation("nonexistent", "x")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDegreeOfSeparationCached(t *testing.T) {
	reg, _ := chainRegistry(t)
	g := New(reg)

	first, foundFirst, err := g.DegreeOfSeparation("x", "z")
	require.NoError(t, err)
	second, foundSecond, err := g.DegreeOfSeparation("x", "z")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, foundFirst, foundSecond)
}

func TestEvaluateSaturates(t *testing.T) {
	reg, syms := chainRegistry(t)
	g := New(reg)

	x, err := quantity.Create(syms["x"], 3)
	require.NoError(t, err)

	derived := g.Evaluate([]*quantity.Quantity{x})
	require.Len(t, derived, 2)

	byName := make(map[string]*quantity.Quantity)
	for _, q := range derived {
		byName[q.Symbol.Name] = q
	}
	require.Contains(t, byName, "y")
	require.Contains(t, byName, "z")
	assert.InDelta(t, 6, byName["y"].Real(), 1e-9)
	assert.InDelta(t, 7, byName["z"].Real(), 1e-9)

	// provenance chains back through the producing models
	require.NotNil(t, byName["y"].Provenance)
	assert.Equal(t, "double", byName["y"].Provenance.Model)
	assert.Equal(t, "increment", byName["z"].Provenance.Model)
}

func TestEvaluateFailureIsolation(t *testing.T) {
	reg, syms := chainRegistry(t)

	// an extra branch whose input is NaN fails without aborting the rest
	w, err := symbol.New("w", units.Dimensionless, nil)
	require.NoError(t, err)
	reg.RegisterSymbol(w)
	n, err := symbol.New("n", units.Dimensionless, nil)
	require.NoError(t, err)
	reg.RegisterSymbol(n)
	_, err = model.New(reg, "copy_w", []string{"n = w"},
		map[string]*symbol.Symbol{"w": w, "n": n})
	require.NoError(t, err)

	g := New(reg)

	x, err := quantity.Create(syms["x"], 3)
	require.NoError(t, err)
	bad, err := quantity.Create(w, complex(math.NaN(), 0))
	require.NoError(t, err)

	derived := g.Evaluate([]*quantity.Quantity{x, bad})
	names := make(map[string]bool)
	for _, q := range derived {
		names[q.Symbol.Name] = true
	}
	assert.True(t, names["y"])
	assert.True(t, names["z"])
	assert.False(t, names["n"])
}

func TestEvaluateTerminatesOnCycle(t *testing.T) {
	reg := registry.New()
	a, err := symbol.New("a", units.Dimensionless, nil)
	require.NoError(t, err)
	b, err := symbol.New("b", units.Dimensionless, nil)
	require.NoError(t, err)
	reg.RegisterSymbol(a)
	reg.RegisterSymbol(b)

	symbolMap := map[string]*symbol.Symbol{"a": a, "b": b}
	_, err = model.New(reg, "forward", []string{"b = a + 1"}, symbolMap)
	require.NoError(t, err)
	_, err = model.New(reg, "backward", []string{"a = b + 1"}, symbolMap)
	require.NoError(t, err)

	g := New(reg)
	qa, err := quantity.Create(a, 0)
	require.NoError(t, err)

	derived := g.Evaluate([]*quantity.Quantity{qa})
	// a=0 -> b=1 -> a=2, then "forward" is blocked by lineage
	require.Len(t, derived, 2)
}

func TestEvaluateMultipleQuantitiesPerSymbol(t *testing.T) {
	reg, syms := chainRegistry(t)
	g := New(reg)

	x1, err := quantity.Create(syms["x"], 3)
	require.NoError(t, err)
	x2, err := quantity.Create(syms["x"], 5)
	require.NoError(t, err)

	derived := g.Evaluate([]*quantity.Quantity{x1, x2})

	var ys []float64
	for _, q := range derived {
		if q.Symbol.Name == "y" {
			ys = append(ys, q.Real())
		}
	}
	assert.ElementsMatch(t, []float64{6, 10}, ys)
}

func TestAddMaterial(t *testing.T) {
	reg, syms := chainRegistry(t)
	g := New(reg)

	mat := material.New("sample")
	x, err := quantity.Create(syms["x"], 3)
	require.NoError(t, err)
	mat.Add(x)

	g.AddMaterial(mat)
	assert.Equal(t, []string{"x", "y", "z"}, mat.SymbolNames())
	assert.Equal(t, 3, mat.Len())
}
