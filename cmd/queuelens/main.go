package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/queuelens/queuelens/internal/analysis"
	"github.com/queuelens/queuelens/internal/capacity"
	"github.com/queuelens/queuelens/internal/config"
	"github.com/queuelens/queuelens/internal/event"
	"github.com/queuelens/queuelens/internal/logging"
)

var (
	configFile = flag.String("config", "configs/config.dev.yaml", "Path to the configuration file")
	logger     *zap.Logger
)

func main() {
	// Initialize Configuration
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration from %s: %v\n", *configFile, err)
		os.Exit(1)
	}

	// Initialize Logger
	var logErr error
	logger, logErr = logging.NewLogger(cfg.Log)
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", logErr)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Infow("Logger initialized",
		"level", cfg.Log.Level,
		"format", cfg.Log.Format,
	)
	sugar.Infow("Configuration loaded successfully", "path", *configFile)

	// Handle Graceful Shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-signals
		sugar.Infow("Received signal, initiating shutdown...", "signal", sig.String())
		cancel()
	}()

	// Read Events
	events, err := readEvents(ctx, cfg, logger)
	if err != nil {
		sugar.Fatalw("Failed to read events", "error", err)
	}
	sugar.Infow("Events loaded", "count", len(events), "source", cfg.Input.Source)

	// Run Analysis
	analyzer, err := analysis.New(cfg.Analysis, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize analyzer", "error", err)
	}

	report, err := analyzer.Run(ctx, events)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		sugar.Info("Analysis cancelled (expected on shutdown).")
		return
	default:
		sugar.Fatalw("Analysis run failed", "error", err)
	}

	// Write Report
	if err := analysis.WriteReport(cfg.Report.Path, report, logger); err != nil {
		sugar.Fatalw("Failed to write report", "error", err)
	}

	logFeasibility(sugar, report)
	sugar.Info("QueueLens finished.")
}

// readEvents drains the configured input source into a batch of events.
func readEvents(ctx context.Context, cfg *config.Config, logger *zap.Logger) ([]event.Event, error) {
	switch cfg.Input.Source {
	case config.SourceFile:
		return event.NewFileReader(cfg.Input.Path, logger.Named("reader")).ReadAll(ctx)
	case config.SourceKafka:
		reader, err := event.NewKafkaReader(event.KafkaSettings{
			Brokers: cfg.Input.Kafka.Brokers,
			Topic:   cfg.Input.Kafka.Topic,
			GroupID: cfg.Input.Kafka.GroupID,
		}, logger.Named("reader"))
		if err != nil {
			return nil, err
		}
		return reader.ReadAll(ctx)
	default:
		return nil, config.ErrInvalidInputSource
	}
}

// logFeasibility surfaces infeasible wait targets at the end of the run so
// they are visible without opening the report.
func logFeasibility(sugar *zap.SugaredLogger, report *analysis.RunReport) {
	for _, res := range report.Entities {
		rec := res.Recommendation
		if rec == nil || rec.Feasible {
			continue
		}
		sugar.Warnw("Wait target infeasible within server bound",
			"entity", res.Entity,
			"bestServers", rec.Servers,
			"unstable", rec.Result.Unstable,
			"error", capacity.ErrInfeasible,
		)
	}
}
