package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsolve/propgraph/internal/symbol"
	"github.com/matsolve/propgraph/internal/units"
)

func TestNamespaceBasics(t *testing.T) {
	r := New()

	s, err := symbol.New("density", units.MustParse("gram / centimeter^3"), nil)
	require.NoError(t, err)

	r.Symbols.Set(s.Name, s)
	assert.True(t, r.Symbols.Contains("density"))

	got, ok := r.Symbols.Get("density")
	require.True(t, ok)
	assert.True(t, got.Equal(s))

	_, ok = r.Symbols.Get("missing")
	assert.False(t, ok)

	popped, ok := r.Symbols.Pop("density")
	require.True(t, ok)
	assert.True(t, popped.Equal(s))
	assert.False(t, r.Symbols.Contains("density"))

	_, ok = r.Symbols.Pop("density")
	assert.False(t, ok)
}

func TestSetStrict(t *testing.T) {
	r := New()
	s, err := symbol.New("x", units.Dimensionless, nil)
	require.NoError(t, err)

	require.NoError(t, r.Symbols.SetStrict("x", s))
	err = r.Symbols.SetStrict("x", s)
	assert.ErrorIs(t, err, ErrDuplicateKey)

	// plain Set overwrites silently
	r.Symbols.Set("x", s)
}

func TestRegisterSymbolPopulatesUnits(t *testing.T) {
	r := New()
	s, err := symbol.New("band_gap", units.MustParse("electron_volt"), nil)
	require.NoError(t, err)

	r.RegisterSymbol(s)
	assert.True(t, r.Symbols.Contains("band_gap"))

	u, ok := r.Units.Get("band_gap")
	require.True(t, ok)
	assert.True(t, u.Equal(s.Units))

	r.UnregisterSymbol("band_gap")
	assert.False(t, r.Symbols.Contains("band_gap"))
	assert.False(t, r.Units.Contains("band_gap"))
}

func TestPurgeUserKeepsBuiltins(t *testing.T) {
	r := New()

	builtin, err := symbol.New("shear_modulus", units.MustParse("gigapascal"), nil)
	require.NoError(t, err)
	builtin.Builtin = true
	r.RegisterSymbol(builtin)

	user, err := symbol.New("my_property", units.Dimensionless, nil)
	require.NoError(t, err)
	r.RegisterSymbol(user)

	assert.True(t, r.Symbols.IsBuiltin("shear_modulus"))
	assert.False(t, r.Symbols.IsBuiltin("my_property"))

	removed := r.Symbols.PurgeUser()
	assert.Equal(t, []string{"my_property"}, removed)
	assert.True(t, r.Symbols.Contains("shear_modulus"))
	assert.False(t, r.Symbols.Contains("my_property"))
}

func TestNamesSorted(t *testing.T) {
	r := New()
	for _, name := range []string{"c", "a", "b"} {
		s, err := symbol.New(name, units.Dimensionless, nil)
		require.NoError(t, err)
		r.Symbols.Set(name, s)
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.Symbols.Names())
	assert.Equal(t, 3, r.Symbols.Len())
}
