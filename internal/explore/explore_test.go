package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsolve/propgraph/internal/builtin"
	"github.com/matsolve/propgraph/internal/registry"
)

func TestBuildTableRows(t *testing.T) {
	reg := registry.New()
	require.NoError(t, builtin.Load(reg))

	m := New(reg)
	m.section = "symbols"
	tbl := m.buildTable()
	assert.Equal(t, reg.Symbols.Len(), len(tbl.Rows()))

	m.section = "models"
	tbl = m.buildTable()
	assert.Equal(t, reg.Models.Len(), len(tbl.Rows()))

	m.section = "presets"
	tbl = m.buildTable()
	assert.NotEmpty(t, tbl.Rows())
}

func TestBuildDetail(t *testing.T) {
	reg := registry.New()
	require.NoError(t, builtin.Load(reg))

	m := New(reg)
	m.section = "symbols"
	detail := m.buildDetail("youngs_modulus")
	assert.Contains(t, detail, "youngs_modulus")
	assert.Contains(t, detail, "gigapascal")

	m.section = "models"
	detail = m.buildDetail("density_from_mass_volume")
	assert.Contains(t, detail, "rho = m / V")

	m.section = "presets"
	detail = m.buildDetail("silicon")
	assert.Contains(t, detail, "band_gap")
}
