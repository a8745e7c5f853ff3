package netcdfio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlatten(t *testing.T) {
	t.Run("1-D float64", func(t *testing.T) {
		flat, shape, err := flatten([]float64{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3}, flat)
		assert.Equal(t, []int{3}, shape)
	})

	t.Run("2-D float32 widens", func(t *testing.T) {
		flat, shape, err := flatten([][]float32{{1, 2, 3}, {4, 5, 6}})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, flat)
		assert.Equal(t, []int{2, 3}, shape)
	})

	t.Run("integer types widen", func(t *testing.T) {
		flat, shape, err := flatten([]int16{-7, 8})
		require.NoError(t, err)
		assert.Equal(t, []float64{-7, 8}, flat)
		assert.Equal(t, []int{2}, shape)
	})

	t.Run("scalar", func(t *testing.T) {
		flat, shape, err := flatten(float32(2.5))
		require.NoError(t, err)
		assert.Equal(t, []float64{2.5}, flat)
		assert.Empty(t, shape)
	})

	t.Run("non-numeric values rejected", func(t *testing.T) {
		_, _, err := flatten([]string{"a"})
		require.Error(t, err)
	})

	t.Run("ragged nesting rejected", func(t *testing.T) {
		_, _, err := flatten([][]float64{{1, 2}, {3}})
		require.Error(t, err)
	})
}

func TestScalarToFloat(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		expected float64
		ok       bool
	}{
		{"float64 scalar", float64(-9999), -9999, true},
		{"float32 scalar", float32(1.5), 1.5, true},
		{"int scalar", int32(7), 7, true},
		{"length-1 slice", []float32{-9999}, -9999, true},
		{"longer slice", []float64{1, 2}, 0, false},
		{"string", "UNK", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := scalarToFloat(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.expected, got, 1e-12)
			}
		})
	}
}

func TestTabularize(t *testing.T) {
	lon := gridVariable{name: "lon", dims: []string{"lon"}, shape: []int{3}, flat: []float64{0, 1, 2}}
	lat := gridVariable{name: "lat", dims: []string{"lat"}, shape: []int{2}, flat: []float64{10, 20}}
	// u(lat, lon) laid out row-major: u[lat][lon].
	u := gridVariable{
		name: "u", dims: []string{"lat", "lon"}, shape: []int{2, 3},
		flat: []float64{1, 2, 3, 4, 5, 6},
	}

	t.Run("broadcasts coordinates over the grid", func(t *testing.T) {
		batch, err := tabularize([]gridVariable{lon, lat, u})
		require.NoError(t, err)

		// Union dimension order is (lon, lat): lon varies slowest.
		require.Equal(t, 6, batch.Len())

		lons, err := batch.Column("lon")
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 1, 1, 2, 2}, lons)

		lats, err := batch.Column("lat")
		require.NoError(t, err)
		assert.Equal(t, []float64{10, 20, 10, 20, 10, 20}, lats)

		us, err := batch.Column("u")
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, us)
	})

	t.Run("scalar variable broadcasts everywhere", func(t *testing.T) {
		depth := gridVariable{name: "depth", flat: []float64{15}}
		batch, err := tabularize([]gridVariable{lon, depth})
		require.NoError(t, err)

		col, err := batch.Column("depth")
		require.NoError(t, err)
		assert.Equal(t, []float64{15, 15, 15}, col)
	})

	t.Run("conflicting dimension sizes rejected", func(t *testing.T) {
		bad := gridVariable{name: "v", dims: []string{"lon"}, shape: []int{4}, flat: []float64{1, 2, 3, 4}}
		_, err := tabularize([]gridVariable{lon, bad})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflicting sizes")
	})

	t.Run("empty input", func(t *testing.T) {
		batch, err := tabularize(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, batch.Len())
	})
}

func TestTabularize_NaNPassesThrough(t *testing.T) {
	v := gridVariable{name: "u", dims: []string{"x"}, shape: []int{2}, flat: []float64{math.NaN(), 1}}
	batch, err := tabularize([]gridVariable{v})
	require.NoError(t, err)

	col, err := batch.Column("u")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(col[0]))
	assert.Equal(t, 1.0, col[1])
}
