package geojsonio

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/nc2geojson/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	f := geojson.NewFeature(orb.Point{-170, 10})
	f.Properties["magnitude"] = 5.0
	f.Properties["direction"] = 216.86989764584402
	fc.Append(f)
	return fc
}

func TestWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wind.json")
	w := NewWriter(discardLogger())

	require.NoError(t, w.Write(path, sampleCollection()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	got, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	require.Len(t, got.Features, 1)

	pt, ok := got.Features[0].Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, -170, pt[0], 1e-12)
	assert.InDelta(t, 10, pt[1], 1e-12)
	assert.InDelta(t, 5.0, got.Features[0].Properties["magnitude"].(float64), 1e-12)
}

func TestWrite_CreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output", "nested")
	path := filepath.Join(dir, "wind.json")
	w := NewWriter(discardLogger())

	require.NoError(t, w.Write(path, sampleCollection()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestWrite_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(discardLogger())

	require.NoError(t, w.Write(filepath.Join(dir, "wind.json"), sampleCollection()))

	leftovers, err := filepath.Glob(filepath.Join(dir, "*.tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestWrite_UnwritableDestination(t *testing.T) {
	// A file where the directory should be makes MkdirAll fail.
	base := t.TempDir()
	blocker := filepath.Join(base, "output")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	w := NewWriter(discardLogger())
	err := w.Write(filepath.Join(blocker, "wind.json"), sampleCollection())

	var writeErr *domain.OutputWriteError
	require.ErrorAs(t, err, &writeErr)
}
