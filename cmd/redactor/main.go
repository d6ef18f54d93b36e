package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/audit"
	"github.com/dhanjo/project-guardian-2.0/internal/cache"
	"github.com/dhanjo/project-guardian-2.0/internal/config"
	"github.com/dhanjo/project-guardian-2.0/internal/logger"
	"github.com/dhanjo/project-guardian-2.0/internal/pipeline"
	"github.com/dhanjo/project-guardian-2.0/internal/privacy"
)

func main() {
	var (
		configPath = flag.String("config", "", "Configuration file path")
		inputFile  = flag.String("input", "", "Input dataset file (CSV, JSONL, or Parquet)")
		outputFile = flag.String("output", "redacted_output.csv", "Redacted output CSV file")
		batchSize  = flag.Int("batch-size", 0, "Batch size for processing (0 uses config value)")
		workers    = flag.Int("workers", 0, "Number of worker goroutines (0 uses config value)")
		skipCache  = flag.Bool("skip-cache", false, "Skip the Redis result cache")
		showStats  = flag.Bool("stats", false, "Show cache and audit statistics and exit")
	)
	flag.Parse()

	if *inputFile == "" && !*showStats {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --input dataset.csv --output redacted_output.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --input dataset.parquet --workers 8\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --stats\n", os.Args[0])
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting batch redaction",
		zap.String("version", "2.0.0"),
		zap.String("config", *configPath))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal, cancelling operations...")
		cancel()
	}()

	services, err := initializeServices(cfg, *skipCache, log)
	if err != nil {
		log.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.cleanup()

	if *showStats {
		if err := showServiceStats(ctx, services); err != nil {
			log.Fatal("Failed to show stats", zap.Error(err))
		}
		return
	}

	pipelineConfig := &pipeline.Config{
		BatchSize:      cfg.Pipeline.BatchSize,
		WorkerCount:    cfg.Pipeline.WorkerCount,
		ProgressReport: cfg.Pipeline.ProgressReport,
	}
	if *batchSize > 0 {
		pipelineConfig.BatchSize = *batchSize
	}
	if *workers > 0 {
		pipelineConfig.WorkerCount = *workers
	}

	if err := processDataset(ctx, services, pipelineConfig, *inputFile, *outputFile, log); err != nil {
		log.Fatal("Redaction failed", zap.Error(err))
	}

	log.Info("Batch redaction completed successfully")
}

// services holds all initialized services
type services struct {
	detector    *privacy.Detector
	resultCache *cache.ResultCache
	auditStore  *audit.Store
}

func (s *services) cleanup() {
	if s.resultCache != nil {
		s.resultCache.Close()
	}
	if s.auditStore != nil {
		s.auditStore.Close()
	}
}

// initializeServices initializes the detector and its optional collaborators
func initializeServices(cfg *config.Config, skipCache bool, log *logger.Logger) (*services, error) {
	services := &services{
		detector: privacy.New(cfg.Privacy, log.WithComponent("privacy").Logger),
	}

	if cfg.Cache.Enabled && !skipCache {
		log.Info("Initializing result cache...")
		resultCache, err := cache.NewResultCache(cfg.Cache, log.WithComponent("cache").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize result cache: %w", err)
		}
		services.resultCache = resultCache
	}

	if cfg.Audit.Enabled {
		log.Info("Initializing audit store...")
		auditStore, err := audit.NewStore(cfg.Audit, log.WithComponent("audit").Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize audit store: %w", err)
		}
		services.auditStore = auditStore
	}

	return services, nil
}

// processDataset runs the scan pipeline over the input file
func processDataset(ctx context.Context, services *services, pipelineConfig *pipeline.Config, inputFile, outputFile string, log *logger.Logger) error {
	log.Info("Processing dataset",
		zap.String("input", inputFile),
		zap.String("output", outputFile))

	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	processor := pipeline.NewProcessor(
		services.detector,
		services.resultCache,
		services.auditStore,
		nil,
		nil,
		pipelineConfig,
		log.WithComponent("pipeline").Logger,
	)

	result, err := processor.ProcessFile(ctx, inputFile, outputFile)
	if err != nil {
		return fmt.Errorf("pipeline processing failed: %w", err)
	}

	runLog := log.WithRunID(result.RunID)
	runLog.Info("Dataset processing completed",
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("pii_records", result.PIIRecords),
		zap.Int64("repaired", result.Repaired),
		zap.Int64("raw_fallbacks", result.RawFallbacks),
		zap.Int64("failed_records", result.FailedRecords),
		zap.Duration("total_duration", result.Duration),
		zap.Float64("records_per_second", float64(result.TotalRecords)/result.Duration.Seconds()))

	if len(result.Errors) > 0 {
		runLog.Warn("Processing completed with errors", zap.Strings("errors", result.Errors))
	}

	fmt.Printf("\n=== Redaction Summary ===\n")
	fmt.Printf("Run ID:          %s\n", result.RunID)
	fmt.Printf("Total Records:   %d\n", result.TotalRecords)
	fmt.Printf("PII Records:     %d\n", result.PIIRecords)
	fmt.Printf("Repaired:        %d\n", result.Repaired)
	fmt.Printf("Raw Fallbacks:   %d\n", result.RawFallbacks)
	fmt.Printf("Failed Records:  %d\n", result.FailedRecords)
	fmt.Printf("Duration:        %v\n", result.Duration)

	return nil
}

// showServiceStats displays cache and audit statistics
func showServiceStats(ctx context.Context, services *services) error {
	if services.resultCache != nil {
		stats, err := services.resultCache.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get cache stats: %w", err)
		}
		fmt.Printf("\n=== Cache Statistics ===\n")
		fmt.Printf("Cache Hits:      %d\n", stats.Hits)
		fmt.Printf("Cache Misses:    %d\n", stats.Misses)
		fmt.Printf("Hit Rate:        %.1f%%\n", stats.HitRate)
		fmt.Printf("Total Keys:      %d\n", stats.TotalKeys)
		fmt.Printf("Memory Usage:    %.2f MB\n", float64(stats.MemoryUsage)/1024/1024)
	}

	if services.auditStore != nil {
		stats, err := services.auditStore.GetStats(ctx)
		if err != nil {
			return fmt.Errorf("failed to get audit stats: %w", err)
		}
		fmt.Printf("\n=== Audit Statistics ===\n")
		fmt.Printf("Total Runs:      %d\n", stats.TotalRuns)
		fmt.Printf("Total Findings:  %d\n", stats.TotalFindings)
		fmt.Printf("PII Findings:    %d\n", stats.PIICount)
		fmt.Printf("Clean Findings:  %d\n", stats.CleanCount)
	}

	if services.resultCache == nil && services.auditStore == nil {
		fmt.Println("Neither cache nor audit store is enabled; nothing to report.")
	}

	return nil
}
