// Command nc2geojson converts CF-compliant NetCDF files with vector
// attributes to GeoJSON point-feature collections.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/nc2geojson/internal/adapter/geojsonio"
	"github.com/couchcryptid/nc2geojson/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/nc2geojson/internal/adapter/kafka"
	"github.com/couchcryptid/nc2geojson/internal/adapter/netcdfio"
	"github.com/couchcryptid/nc2geojson/internal/config"
	"github.com/couchcryptid/nc2geojson/internal/observability"
	"github.com/couchcryptid/nc2geojson/internal/pipeline"
)

type options struct {
	configFile string
	inputFile  string
	inputDir   string
	maxRecords int
	outputDir  string

	logLevel    string
	logFormat   string
	metricsAddr string

	kafkaBrokers []string
	kafkaTopic   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "nc2geojson",
		Short:         "Convert CF-compliant NetCDF files with vector attributes to GeoJSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configFile, "config-file", "c", "", "dataset configuration file (JSON)")
	cmd.Flags().StringVarP(&opts.inputFile, "input-file", "i", "", "input NetCDF file")
	cmd.Flags().StringVarP(&opts.inputDir, "input-dir", "d", "", "directory containing input *.nc files")
	cmd.Flags().IntVarP(&opts.maxRecords, "max-records", "m", 0, "maximum number of records to process per file (0 = unlimited)")
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "./output", "output directory")

	cmd.Flags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "json", "log format (json, text)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /healthz, /readyz, and /metrics on this address during the run")

	cmd.Flags().StringSliceVar(&opts.kafkaBrokers, "kafka-brokers", nil, "publish converted collections to these Kafka brokers")
	cmd.Flags().StringVar(&opts.kafkaTopic, "kafka-topic", "", "Kafka topic for converted collections")

	cobra.CheckErr(cmd.MarkFlagRequired("config-file"))
	cmd.MarkFlagsMutuallyExclusive("input-file", "input-dir")
	cmd.MarkFlagsOneRequired("input-file", "input-dir")
	cmd.MarkFlagsRequiredTogether("kafka-brokers", "kafka-topic")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	logger := observability.NewLogger(opts.logLevel, opts.logFormat)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		logger.Error("failed to load config", "config_file", opts.configFile, "error", err)
		return err
	}

	metrics := observability.NewMetrics()
	reader := netcdfio.NewReader(logger)
	writer := geojsonio.NewWriter(logger)

	var publisher pipeline.FeaturePublisher
	if len(opts.kafkaBrokers) > 0 {
		kp := kafkaadapter.NewPublisher(opts.kafkaBrokers, opts.kafkaTopic, logger)
		defer func() {
			if err := kp.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kp
		logger.Info("kafka publishing enabled", "topic", opts.kafkaTopic)
	}

	converter := pipeline.NewConverter(cfg, reader, writer, publisher, logger, metrics, opts.maxRecords)
	runner := pipeline.NewRunner(converter, logger, metrics)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if opts.metricsAddr != "" {
		srv := httpadapter.NewServer(opts.metricsAddr, runner, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
		}()
	}

	if opts.inputDir != "" {
		summary, err := runner.RunDir(ctx, opts.inputDir, opts.outputDir)
		if err != nil {
			logger.Error("run failed", "input_dir", opts.inputDir, "error", err)
			return err
		}
		summary.Log(logger)
		return nil
	}

	if err := runner.RunFile(ctx, opts.inputFile, opts.outputDir); err != nil {
		logger.Error("conversion failed", "input", opts.inputFile, "error", err)
		return err
	}
	return nil
}
