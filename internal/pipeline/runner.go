package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/nc2geojson/internal/domain"
	"github.com/couchcryptid/nc2geojson/internal/observability"
)

// Runner drives conversions across one or many input files.
type Runner struct {
	converter *Converter
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// NewRunner creates a Runner around a configured Converter.
func NewRunner(converter *Converter, logger *slog.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		converter: converter,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once at least one file has been converted.
func (r *Runner) CheckReadiness(_ context.Context) error {
	if !r.ready.Load() {
		return errors.New("no file converted yet")
	}
	return nil
}

// FileResult records the outcome of one file's pipeline run.
type FileResult struct {
	Input string
	Err   error
}

// Summary aggregates a directory run.
type Summary struct {
	Started   time.Time
	Duration  time.Duration
	Succeeded int
	Failed    []FileResult
}

// Log emits the end-of-run summary: counts, duration, and one entry per
// failed file with its taxonomy kind.
func (s *Summary) Log(logger *slog.Logger) {
	logger.Info("run complete",
		"succeeded", s.Succeeded,
		"failed", len(s.Failed),
		"duration", s.Duration,
	)
	for _, f := range s.Failed {
		logger.Error("file failed", "input", f.Input, "kind", errorKind(f.Err), "error", f.Err)
	}
}

// RunFile converts a single input file. Any failure is fatal to the run.
func (r *Runner) RunFile(ctx context.Context, inputPath, outputDir string) error {
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	if err := r.converter.Convert(ctx, inputPath, outputDir); err != nil {
		r.metrics.FileFailures.Inc()
		return err
	}
	r.ready.Store(true)
	return nil
}

// RunDir converts every *.nc file under inputDir, sorted by filename for a
// deterministic order. One file's failure does not stop the rest; failures
// are isolated per file and collected in the summary. The returned error is
// non-nil only when the directory itself cannot be scanned or the context
// is cancelled mid-run.
func (r *Runner) RunDir(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	r.metrics.PipelineRunning.Set(1)
	defer r.metrics.PipelineRunning.Set(0)

	matches, err := filepath.Glob(filepath.Join(inputDir, "*.nc"))
	if err != nil {
		return nil, &domain.InputReadError{Path: inputDir, Err: err}
	}
	sort.Strings(matches)

	summary := &Summary{Started: clock.Now()}
	if len(matches) == 0 {
		r.logger.Warn("no input files found", "input_dir", inputDir, "pattern", "*.nc")
	}

	for _, input := range matches {
		if ctx.Err() != nil {
			summary.Duration = clock.Since(summary.Started)
			return summary, ctx.Err()
		}

		if err := r.converter.Convert(ctx, input, outputDir); err != nil {
			r.logger.Error("conversion failed, continuing",
				"input", input, "kind", errorKind(err), "error", err)
			r.metrics.FileFailures.Inc()
			summary.Failed = append(summary.Failed, FileResult{Input: input, Err: err})
			continue
		}
		summary.Succeeded++
		r.ready.Store(true)
	}

	summary.Duration = clock.Since(summary.Started)
	return summary, nil
}

// errorKind labels an error with its taxonomy bucket for summary logging.
func errorKind(err error) string {
	var (
		configErr *domain.ConfigError
		inputErr  *domain.InputReadError
		columnErr *domain.MissingColumnError
		outputErr *domain.OutputWriteError
	)
	switch {
	case errors.As(err, &configErr):
		return "config"
	case errors.As(err, &inputErr):
		return "input_read"
	case errors.As(err, &columnErr):
		return "missing_column"
	case errors.As(err, &outputErr):
		return "output_write"
	default:
		return "internal"
	}
}
