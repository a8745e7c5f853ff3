// Package geojsonio persists feature collections as GeoJSON documents.
package geojsonio

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/nc2geojson/internal/domain"
)

// Writer serializes feature collections to disk. It implements
// pipeline.FeatureWriter.
type Writer struct {
	logger *slog.Logger
}

// NewWriter creates a GeoJSON document writer.
func NewWriter(logger *slog.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write marshals the collection and writes it at path atomically: the
// document is staged as a temp file in the destination directory and
// renamed into place, so a failed run never leaves a half-written output.
// The destination directory is created if absent.
func (w *Writer) Write(path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return &domain.OutputWriteError{Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.OutputWriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &domain.OutputWriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &domain.OutputWriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &domain.OutputWriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &domain.OutputWriteError{Path: path, Err: err}
	}

	w.logger.Debug("wrote geojson document", "output", path, "bytes", len(data))
	return nil
}
