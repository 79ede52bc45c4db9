package quantity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsolve/propgraph/internal/symbol"
	"github.com/matsolve/propgraph/internal/units"
)

func lengthSymbol(t *testing.T) *symbol.Symbol {
	t.Helper()
	s, err := symbol.New("l", units.MustParse("centimeter"), []int{1})
	require.NoError(t, err)
	return s
}

func TestCreateDefaultsToCanonical(t *testing.T) {
	l := lengthSymbol(t)
	q, err := Create(l, 2)
	require.NoError(t, err)
	assert.True(t, q.Units.Equal(l.Units))
	assert.Equal(t, 2.0, q.Real())
	assert.NotEqual(t, q.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestCreateInValidatesDimensions(t *testing.T) {
	l := lengthSymbol(t)

	q, err := CreateIn(l, 1, units.MustParse("meter"))
	require.NoError(t, err)
	assert.Equal(t, 1.0, q.Real())

	_, err = CreateIn(l, 1, units.MustParse("second"))
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestToRescales(t *testing.T) {
	l := lengthSymbol(t)
	q, err := CreateIn(l, 1, units.MustParse("meter"))
	require.NoError(t, err)

	c, err := q.ToCanonical()
	require.NoError(t, err)
	assert.InDelta(t, 100, c.Real(), 1e-9)
	assert.True(t, c.Units.Equal(l.Units))
	assert.Equal(t, q.ID, c.ID)

	// original untouched
	assert.Equal(t, 1.0, q.Real())

	back, err := c.To(units.MustParse("meter"))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, back.Real(), 1e-12)
}

func TestToIncompatible(t *testing.T) {
	l := lengthSymbol(t)
	q, err := Create(l, 1)
	require.NoError(t, err)
	_, err = q.To(units.MustParse("gram"))
	assert.ErrorIs(t, err, ErrUnitMismatch)
}

func TestNaNAllowedAtConstruction(t *testing.T) {
	l := lengthSymbol(t)
	q, err := Create(l, complex(math.NaN(), 0))
	require.NoError(t, err)
	assert.True(t, q.HasNaN())
}

func TestIsComplex(t *testing.T) {
	l := lengthSymbol(t)

	q, _ := Create(l, complex(5, 0))
	assert.False(t, q.IsComplex())

	q, _ = Create(l, complex(5, 1))
	assert.True(t, q.IsComplex())

	// numerical dust below tolerance does not count
	q, _ = Create(l, complex(5, 1e-15))
	assert.False(t, q.IsComplex())
}
