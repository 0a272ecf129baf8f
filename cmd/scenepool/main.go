package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scenekit/scenepool/internal/sim"
	"github.com/scenekit/scenepool/pkg/config"
	"github.com/scenekit/scenepool/pkg/json"
	"github.com/scenekit/scenepool/pkg/logger"
	"github.com/scenekit/scenepool/pkg/observability"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "scenepool",
		Short: "Scenepool - scene-entity instance pooling engine",
		Long: `Scenepool reuses scene-entity instances instead of constructing and
destroying them per use. The CLI runs frame-driven benchmark simulations
against the pooling engine and reports pool and process statistics.`,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Scenepool v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	var initOut string
	initCmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a default benchmark configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewDefault("scenepool-bench")
			if err := config.Save(initOut, cfg); err != nil {
				return fmt.Errorf("failed to write config %s: %w", initOut, err)
			}
			fmt.Printf("Wrote default configuration to %s\n", initOut)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&initOut, "out", "o", "scenepool.yaml", "Path for the generated config file")
	root.AddCommand(initCmd)

	var configFile, reportOut, logLevel string
	var frames int
	var timeout time.Duration

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a pooling benchmark simulation",
		Long: `Run a frame-driven simulation that acquires, returns and cascades
pooled instances according to the given configuration, then write a JSON
report. An output path ending in .gz is gzip-compressed.

Example:
  scenepool bench --config bench.yaml --out report.json.gz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(configFile, reportOut, logLevel, frames, timeout)
		},
	}
	benchCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to YAML configuration file (defaults used when empty)")
	benchCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Report output path (stdout when empty, .gz for gzip)")
	benchCmd.Flags().StringVar(&logLevel, "log-level", "", "Override configured log level (debug, info, warn, error)")
	benchCmd.Flags().IntVar(&frames, "frames", 0, "Override configured frame count")
	benchCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Simulation timeout")
	root.AddCommand(benchCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadBenchConfig(configFile string) (*config.Config, error) {
	if configFile == "" {
		return config.NewDefault("scenepool-bench"), nil
	}
	cfg := &config.Config{}
	if err := config.Load(configFile, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", configFile, err)
	}
	return cfg, nil
}

func runBench(configFile, reportOut, logLevel string, frames int, timeout time.Duration) error {
	cfg, err := loadBenchConfig(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Observability.LogLevel = logLevel
	}
	if frames > 0 {
		cfg.Simulation.Frames = frames
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Development: cfg.Observability.Development,
		Encoding:    cfg.Observability.Encoding,
	}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Observability.EnableTracing {
		if err := observability.Init(observability.TracingConfig{
			ServiceName:    "scenepool",
			ServiceVersion: version,
			SamplingRate:   cfg.Observability.TracingSampleRate,
		}); err != nil {
			return fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	log := logger.Get().With(zap.String("run", cfg.Name))
	log.Info("starting benchmark",
		zap.Int("frames", cfg.Simulation.Frames),
		zap.Int("spawns_per_frame", cfg.Simulation.SpawnsPerFrame),
		zap.Int("prototypes", len(cfg.Simulation.Prototypes)))

	runner, err := sim.NewRunner(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build simulation: %w", err)
	}
	defer runner.Dispose()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	report, err := runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}

	log.Info("benchmark complete",
		zap.Int64("spawned", report.Spawned),
		zap.Int64("returned", report.Returned),
		zap.Duration("duration", report.Duration),
		zap.Duration("slowest_frame", report.SlowestFrame))

	if cfg.Observability.EnableMetrics {
		logMetricsSummary(log)
	}

	return writeReport(reportOut, report)
}

// logMetricsSummary dumps the prometheus collector state accumulated over
// the run. Bench processes are short-lived, so the collectors are reported
// at exit instead of being scraped.
func logMetricsSummary(log *zap.Logger) {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		log.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "scenepool_") {
			continue
		}
		log.Info("metric", zap.String("name", mf.GetName()),
			zap.Int("series", len(mf.GetMetric())))
	}
}

// writeReport encodes the report as JSON to the given path, gzipping
// when the path ends in .gz. An empty path writes indented JSON to
// stdout for interactive use.
func writeReport(path string, report *sim.Report) error {
	if path == "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if strings.HasSuffix(path, ".gz") {
		gw := gzip.NewWriter(f)
		if err := json.MarshalToWriter(gw, report); err != nil {
			_ = gw.Close()
			return fmt.Errorf("failed to write report: %w", err)
		}
		return gw.Close()
	}
	return json.MarshalToWriter(f, report)
}
