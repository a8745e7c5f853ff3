package domain

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func uvBatch() *RecordBatch {
	b := NewRecordBatch()
	b.SetColumn("lon", []float64{-170, -160})
	b.SetColumn("lat", []float64{10, 20})
	b.SetColumn("U", []float64{3, 0})
	b.SetColumn("V", []float64{4, -1})
	return b
}

func TestTransformRecords_ConvertUV(t *testing.T) {
	m := FieldMapping{
		UVar: "U", VVar: "V", ConvertUV: true,
		MagName: "magnitude", DirName: "direction",
	}

	got, err := TransformRecords(uvBatch(), m, discardLogger())
	require.NoError(t, err)

	// Derived fields replace the raw components.
	assert.Equal(t, []string{"magnitude", "direction"}, got.Columns())
	assert.False(t, got.HasColumn("U"))
	assert.False(t, got.HasColumn("V"))

	mags, err := got.Column("magnitude")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, mags[0], 1e-12)
	assert.InDelta(t, 1.0, mags[1], 1e-12)

	dirs, err := got.Column("direction")
	require.NoError(t, err)
	assert.InDelta(t, 270-math.Atan2(4, 3)*180/math.Pi, dirs[0], 1e-9)
	assert.InDelta(t, 0, dirs[1], 1e-9) // northerly
}

func TestTransformRecords_PassThroughUV(t *testing.T) {
	m := FieldMapping{
		UVar: "U", VVar: "V",
		MagName: "magnitude", DirName: "direction",
	}

	got, err := TransformRecords(uvBatch(), m, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"u", "v"}, got.Columns())
	u, err := got.Column("u")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 0}, u)
}

func TestTransformRecords_MagDir(t *testing.T) {
	batch := NewRecordBatch()
	batch.SetColumn("wind_speed", []float64{10})
	batch.SetColumn("wind_dir", []float64{90})

	t.Run("pass-through only", func(t *testing.T) {
		m := FieldMapping{
			MagVar: "wind_speed", DirVar: "wind_dir",
			MagName: "magnitude", DirName: "direction",
		}

		got, err := TransformRecords(batch, m, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, []string{"magnitude", "direction"}, got.Columns())
	})

	t.Run("convertMagDir also emits derived u and v", func(t *testing.T) {
		m := FieldMapping{
			MagVar: "wind_speed", DirVar: "wind_dir", ConvertMagDir: true,
			MagName: "magnitude", DirName: "direction",
		}

		got, err := TransformRecords(batch, m, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, []string{"u", "v", "magnitude", "direction"}, got.Columns())

		u, err := got.Column("u")
		require.NoError(t, err)
		v, err := got.Column("v")
		require.NoError(t, err)
		assert.InDelta(t, -10, u[0], 1e-9) // easterly points west
		assert.InDelta(t, 0, v[0], 1e-9)
	})

	t.Run("legacy naming variant", func(t *testing.T) {
		m := FieldMapping{
			MagVar: "wind_speed", DirVar: "wind_dir",
			MagName: "speed", DirName: "dir",
		}

		got, err := TransformRecords(batch, m, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, []string{"speed", "dir"}, got.Columns())
	})
}

func TestTransformRecords_ExtraVars(t *testing.T) {
	batch := uvBatch()
	batch.SetColumn("sst", []float64{290.5, 291})

	m := FieldMapping{
		UVar: "U", VVar: "V", ConvertUV: true,
		MagName: "magnitude", DirName: "direction",
		ExtraVars: []string{"U", "sst"},
	}

	got, err := TransformRecords(batch, m, discardLogger())
	require.NoError(t, err)

	// Raw U reappears only because extraVars asked for it.
	assert.Equal(t, []string{"magnitude", "direction", "U", "sst"}, got.Columns())
	sst, err := got.Column("sst")
	require.NoError(t, err)
	assert.Equal(t, []float64{290.5, 291}, sst)
}

func TestTransformRecords_MissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		mapping FieldMapping
		column  string
	}{
		{
			"missing u source",
			FieldMapping{UVar: "missing_u", VVar: "V", MagName: "magnitude", DirName: "direction"},
			"missing_u",
		},
		{
			"missing direction source",
			FieldMapping{MagVar: "U", DirVar: "nope", MagName: "magnitude", DirName: "direction"},
			"nope",
		},
		{
			"missing extra",
			FieldMapping{MagName: "magnitude", DirName: "direction", ExtraVars: []string{"ghost"}},
			"ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransformRecords(uvBatch(), tt.mapping, discardLogger())
			var missing *MissingColumnError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.column, missing.Column)
		})
	}
}
