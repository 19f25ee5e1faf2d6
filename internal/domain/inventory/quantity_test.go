package inventory_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/warehouse-tracker/internal/domain"
	"github.com/jhoicas/warehouse-tracker/internal/domain/inventory"
)

func TestNumeric(t *testing.T) {
	assert.Equal(t, 5.0, inventory.Numeric(5.0))
	assert.Equal(t, 7.5, inventory.Numeric(" 7.5 "))
	assert.True(t, math.IsNaN(inventory.Numeric(nil)))
	assert.True(t, math.IsNaN(inventory.Numeric("abc")))
	assert.True(t, math.IsNaN(inventory.Numeric(true)))
	assert.True(t, math.IsNaN(inventory.Numeric("Inf")))
}

func TestIntegerQuantity(t *testing.T) {
	q, err := inventory.IntegerQuantity(12.0)
	require.NoError(t, err)
	assert.Equal(t, int64(12), q)

	q, err = inventory.IntegerQuantity("-3")
	require.NoError(t, err)
	assert.Equal(t, int64(-3), q)

	// Una celda vacía arranca en cero.
	q, err = inventory.IntegerQuantity(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q)

	_, err = inventory.IntegerQuantity("muchos")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = inventory.IntegerQuantity(2.5)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// La suma no se limita a cero ni al máximo: cualquier signo y magnitud.
func TestApplyDelta_SinLimites(t *testing.T) {
	cases := []struct{ before, delta, want int64 }{
		{5, -2, 3},
		{5, 0, 5},
		{3, -10, -7},
		{-7, 7, 0},
		{10, 1000, 1010},
	}
	for _, c := range cases {
		got, err := inventory.ApplyDelta(c.before, c.delta)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestApplyDelta_FueraDeRango(t *testing.T) {
	_, err := inventory.ApplyDelta(inventory.MaxSafeQuantity, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = inventory.ApplyDelta(0, math.MinInt64)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
