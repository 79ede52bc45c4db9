package builtin

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsolve/propgraph/internal/graph"
	"github.com/matsolve/propgraph/internal/quantity"
	"github.com/matsolve/propgraph/internal/registry"
	"github.com/matsolve/propgraph/internal/units"
)

func loaded(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	require.NoError(t, Load(reg))
	return reg
}

func TestLoadRegistersLibrary(t *testing.T) {
	reg := loaded(t)

	for _, name := range []string{
		"youngs_modulus", "shear_modulus", "bulk_modulus", "poisson_ratio",
		"density", "band_gap", "refractive_index",
	} {
		assert.True(t, reg.Symbols.Contains(name), name)
		assert.True(t, reg.Symbols.IsBuiltin(name), name)
	}
	for _, name := range []string{
		"isotropic_elasticity_shear", "density_from_mass_volume", "moss_relation",
	} {
		assert.True(t, reg.Models.Contains(name), name)
		assert.True(t, reg.Models.IsBuiltin(name), name)
	}

	e, ok := reg.Symbols.Get("youngs_modulus")
	require.True(t, ok)
	assert.True(t, e.Units.Equal(units.MustParse("gigapascal")))
	assert.Equal(t, "Young's modulus", e.Display())
}

func TestElasticityModel(t *testing.T) {
	reg := loaded(t)
	m, ok := reg.Models.Get("isotropic_elasticity_shear")
	require.True(t, ok)
	assert.Equal(t, []string{"poisson_ratio", "shear_modulus"}, m.InputSymbols())
	assert.Equal(t, []string{"youngs_modulus"}, m.OutputSymbols())
}

func TestSoundVelocityUnitsWorkOut(t *testing.T) {
	// fused silica: G = 31 GPa, rho = 2.2 g/cm^3 gives roughly 3.75 km/s
	reg := loaded(t)
	g := graph.New(reg)

	gs, _ := reg.Symbols.Get("shear_modulus")
	rho, _ := reg.Symbols.Get("density")
	qG, err := quantity.Create(gs, 31)
	require.NoError(t, err)
	qRho, err := quantity.Create(rho, 2.2)
	require.NoError(t, err)

	derived := g.Evaluate([]*quantity.Quantity{qG, qRho})
	var vs *quantity.Quantity
	for _, q := range derived {
		if q.Symbol.Name == "sound_velocity_shear" {
			vs = q
		}
	}
	require.NotNil(t, vs)
	assert.InDelta(t, 3754, vs.Real(), 1)
}

func TestBandGapToPermittivityPath(t *testing.T) {
	reg := loaded(t)
	g := graph.New(reg)

	dist, found, err := g.DegreeOfSeparation("band_gap", "relative_permittivity")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 4, dist)

	// no model derives a band gap, so the reverse direction is unreachable
	_, found, err = g.DegreeOfSeparation("relative_permittivity", "band_gap")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPurgeUserKeepsLibrary(t *testing.T) {
	reg := loaded(t)
	before := reg.Symbols.Len()

	dir := t.TempDir()
	symPath := filepath.Join(dir, "symbols.yaml")
	require.NoError(t, os.WriteFile(symPath, []byte(`
- name: hardness
  units: gigapascal
`), 0o644))
	require.NoError(t, LoadSymbolFile(reg, symPath))
	assert.True(t, reg.Symbols.Contains("hardness"))
	assert.False(t, reg.Symbols.IsBuiltin("hardness"))

	modPath := filepath.Join(dir, "models.yaml")
	require.NoError(t, os.WriteFile(modPath, []byte(`
- name: hardness_guess
  equations:
    - H = 2 * G / 15
  variables:
    H: hardness
    G: shear_modulus
`), 0o644))
	require.NoError(t, LoadModelFile(reg, modPath))
	assert.True(t, reg.Models.Contains("hardness_guess"))
	assert.False(t, reg.Models.IsBuiltin("hardness_guess"))

	removed := reg.Symbols.PurgeUser()
	assert.Equal(t, []string{"hardness"}, removed)
	assert.Equal(t, before, reg.Symbols.Len())
	reg.Models.PurgeUser()
	assert.False(t, reg.Models.Contains("hardness_guess"))
	assert.True(t, reg.Models.Contains("moss_relation"))
}

func TestLoadModelFileUnknownSymbol(t *testing.T) {
	reg := loaded(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: broken
  equations:
    - a = b
  variables:
    a: not_a_symbol
    b: density
`), 0o644))
	assert.Error(t, LoadModelFile(reg, path))
}
