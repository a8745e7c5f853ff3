// Package pipeline orchestrates the per-file conversion from NetCDF to
// GeoJSON and the batch run across many files.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/couchcryptid/nc2geojson/internal/config"
	"github.com/couchcryptid/nc2geojson/internal/domain"
	"github.com/couchcryptid/nc2geojson/internal/observability"
)

// DatasetReader tabularizes the configured columns of one dataset.
type DatasetReader interface {
	ReadBatch(path string, columns []string) (*domain.RecordBatch, error)
}

// FeatureWriter persists one feature collection at the given path.
type FeatureWriter interface {
	Write(path string, fc *geojson.FeatureCollection) error
}

// FeaturePublisher forwards a written feature collection to a side channel.
// A nil publisher disables publishing.
type FeaturePublisher interface {
	Publish(ctx context.Context, name string, fc *geojson.FeatureCollection) error
}

// Converter runs the per-file conversion: load, tabularize, filter,
// truncate, normalize, transform, attach geometry, write.
type Converter struct {
	cfg        *config.Model
	reader     DatasetReader
	writer     FeatureWriter
	publisher  FeaturePublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
	maxRecords int
}

// NewConverter creates a Converter. maxRecords <= 0 disables truncation;
// publisher may be nil.
func NewConverter(cfg *config.Model, reader DatasetReader, writer FeatureWriter, publisher FeaturePublisher,
	logger *slog.Logger, metrics *observability.Metrics, maxRecords int) *Converter {
	return &Converter{
		cfg:        cfg,
		reader:     reader,
		writer:     writer,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		maxRecords: maxRecords,
	}
}

// Convert processes a single input file and writes
// <outputDir>/<input base name>.json. Each step's failure is fatal to this
// file only; the returned error carries the taxonomy type of the failing
// step.
func (c *Converter) Convert(ctx context.Context, inputPath, outputDir string) error {
	start := clock.Now()
	c.logger.Info("reading input", "input", inputPath)

	batch, err := c.reader.ReadBatch(inputPath, c.cfg.Columns())
	if err != nil {
		return err
	}
	read := batch.Len()
	c.metrics.RecordsRead.Add(float64(read))

	batch = batch.DropIncompleteRows()
	if dropped := read - batch.Len(); dropped > 0 {
		c.logger.Debug("dropped rows with missing values", "input", inputPath, "rows", dropped)
		c.metrics.RecordsDropped.Add(float64(dropped))
	}

	if c.maxRecords > 0 {
		batch = batch.Truncate(c.maxRecords)
	}

	if *c.cfg.Is360 {
		lons, err := batch.Column(c.cfg.LonVar)
		if err != nil {
			return err
		}
		batch.SetColumn(c.cfg.LonVar, domain.NormalizeLongitudes(lons))
	}

	fields, err := domain.TransformRecords(batch, c.cfg.Mapping(), c.logger)
	if err != nil {
		return err
	}

	lons, err := batch.Column(c.cfg.LonVar)
	if err != nil {
		return err
	}
	lats, err := batch.Column(c.cfg.LatVar)
	if err != nil {
		return err
	}
	fc := attachGeometry(fields, lons, lats)

	outPath := outputPath(outputDir, inputPath)
	c.logger.Info("writing output", "output", outPath, "features", len(fc.Features))
	if err := c.writer.Write(outPath, fc); err != nil {
		return err
	}

	if c.publisher != nil {
		if err := c.publisher.Publish(ctx, filepath.Base(outPath), fc); err != nil {
			return fmt.Errorf("publish %s: %w", filepath.Base(outPath), err)
		}
	}

	c.metrics.FeaturesWritten.Add(float64(len(fc.Features)))
	c.metrics.FilesConverted.Inc()
	c.metrics.ConversionDuration.Observe(clock.Since(start).Seconds())
	c.logger.Info("created output", "output", outPath, "duration", clock.Since(start))
	return nil
}

// attachGeometry builds one point feature per record, carrying the output
// fields as properties.
func attachGeometry(fields *domain.RecordBatch, lons, lats []float64) *geojson.FeatureCollection {
	names := fields.Columns()
	cols := make([][]float64, len(names))
	for i, name := range names {
		// Names come from the field batch itself; lookup cannot fail.
		cols[i], _ = fields.Column(name)
	}

	fc := geojson.NewFeatureCollection()
	for row := range lons {
		f := geojson.NewFeature(orb.Point{lons[row], lats[row]})
		for i, name := range names {
			f.Properties[name] = cols[i][row]
		}
		fc.Append(f)
	}
	return fc
}

// outputPath derives the output document path: the input's base name with
// its extension replaced by .json, inside outputDir.
func outputPath(outputDir, inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outputDir, stem+".json")
}
