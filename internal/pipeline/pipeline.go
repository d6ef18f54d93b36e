package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/audit"
	"github.com/dhanjo/project-guardian-2.0/internal/cache"
	"github.com/dhanjo/project-guardian-2.0/internal/metrics"
	"github.com/dhanjo/project-guardian-2.0/internal/privacy"
	"github.com/dhanjo/project-guardian-2.0/internal/websocket"
)

// Processor drives the batch scan: it iterates input records, runs each one
// through the PII engine, and writes the redacted output in input order.
// The cache, audit store, event hub, and metrics are optional collaborators;
// a nil value disables that concern.
type Processor struct {
	detector    *privacy.Detector
	resultCache *cache.ResultCache
	auditStore  *audit.Store
	hub         *websocket.Hub
	metrics     *metrics.Metrics
	config      *Config
	logger      *zap.Logger
}

// NewProcessor creates a new scan processor
func NewProcessor(
	detector *privacy.Detector,
	resultCache *cache.ResultCache,
	auditStore *audit.Store,
	hub *websocket.Hub,
	m *metrics.Metrics,
	config *Config,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		detector:    detector,
		resultCache: resultCache,
		auditStore:  auditStore,
		hub:         hub,
		metrics:     m,
		config:      config,
		logger:      logger,
	}
}

// ProcessFile scans every record of the input file and writes the redacted
// copy to outputPath. Records are processed batch by batch across a worker
// pool; per-record failures never abort the run.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString()}

	format := DetectFileFormat(inputPath)
	p.logger.Info("Starting scan run",
		zap.String("run_id", result.RunID),
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.String("format", string(format)),
		zap.Int("batch_size", p.config.BatchSize),
		zap.Int("workers", p.config.WorkerCount))

	reader, err := openReader(inputPath)
	if err != nil {
		return result, err
	}
	defer reader.Close()

	writer, err := newOutputWriter(outputPath)
	if err != nil {
		return result, err
	}

	var lastReported int64
	for {
		select {
		case <-ctx.Done():
			writer.Close()
			return result, ctx.Err()
		default:
		}

		batch, err := p.readBatch(reader)
		if err != nil {
			writer.Close()
			return result, fmt.Errorf("failed to read batch: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		outcomes := p.processBatch(ctx, batch)

		for _, outcome := range outcomes {
			if err := writer.Write(outcome); err != nil {
				writer.Close()
				return result, fmt.Errorf("failed to write output record: %w", err)
			}
		}

		p.tally(result, outcomes)
		p.recordAudit(ctx, result.RunID, outcomes)

		if p.config.ProgressReport > 0 && result.TotalRecords-lastReported >= int64(p.config.ProgressReport) {
			lastReported = result.TotalRecords
			p.reportProgress(result, start)
		}
	}

	if err := writer.Close(); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)

	if p.auditStore != nil {
		summary := &audit.RunSummary{
			RunID:        result.RunID,
			InputFile:    inputPath,
			TotalRecords: result.TotalRecords,
			PIIRecords:   result.PIIRecords,
			RawFallbacks: result.RawFallbacks,
			Duration:     result.Duration,
		}
		if err := p.auditStore.InsertRun(ctx, summary); err != nil {
			p.logger.Warn("Failed to record run summary", zap.Error(err))
			result.Errors = append(result.Errors, err.Error())
		}
	}

	p.logger.Info("Scan run completed",
		zap.String("run_id", result.RunID),
		zap.Int64("total_records", result.TotalRecords),
		zap.Int64("pii_records", result.PIIRecords),
		zap.Int64("repaired", result.Repaired),
		zap.Int64("raw_fallbacks", result.RawFallbacks),
		zap.Int64("failed_records", result.FailedRecords),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// readBatch reads up to BatchSize records from the input
func (p *Processor) readBatch(reader recordReader) ([]*Record, error) {
	var batch []*Record

	for len(batch) < p.config.BatchSize {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			// One unreadable row must not block the rest of the file.
			p.logger.Warn("Failed to read input record", zap.Error(err))
			continue
		}
		batch = append(batch, record)
	}

	return batch, nil
}

// processBatch fans a batch out across the worker pool. Outcomes land in a
// slice indexed by input position, so output order always matches input
// order regardless of worker scheduling.
func (p *Processor) processBatch(ctx context.Context, batch []*Record) []privacy.Outcome {
	outcomes := make([]privacy.Outcome, len(batch))

	workers := p.config.WorkerCount
	if workers < 1 {
		workers = 1
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				outcomes[i] = p.processRecord(ctx, batch[i])
			}
		}()
	}

	for i := range batch {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return outcomes
}

// processRecord scans one record, consulting the result cache when enabled
func (p *Processor) processRecord(ctx context.Context, record *Record) privacy.Outcome {
	start := time.Now()

	if p.resultCache != nil {
		if cached, ok := p.resultCache.Get(ctx, record.DataJSON); ok {
			if p.metrics != nil {
				p.metrics.CacheLookups.WithLabelValues("hit").Inc()
			}
			return privacy.Outcome{
				RecordID: record.RecordID,
				Redacted: cached.Redacted,
				IsPII:    cached.IsPII,
				Source:   privacy.Source(cached.Source),
			}
		}
		if p.metrics != nil {
			p.metrics.CacheLookups.WithLabelValues("miss").Inc()
		}
	}

	outcome := p.detector.ScanPayload(record.RecordID, record.DataJSON)

	if p.resultCache != nil && outcome.Source != privacy.SourceError {
		cached := &cache.CachedOutcome{
			Redacted: outcome.Redacted,
			IsPII:    outcome.IsPII,
			Source:   string(outcome.Source),
		}
		if err := p.resultCache.Store(ctx, record.DataJSON, cached); err != nil {
			p.logger.Debug("Failed to cache outcome", zap.Error(err))
		}
	}

	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.RecordsScanned.WithLabelValues(string(outcome.Source)).Inc()
		if outcome.IsPII {
			p.metrics.PIIRecords.Inc()
		}
		if outcome.Source == privacy.SourceRepaired {
			p.metrics.RepairAttempts.Inc()
		}
		if outcome.Source == privacy.SourceRaw {
			p.metrics.RawFallbacks.Inc()
		}
		p.metrics.ObserveScan(elapsed)
	}

	if p.hub != nil && outcome.IsPII {
		p.hub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeDetection,
			Timestamp: time.Now(),
			Data: websocket.DetectionEvent{
				RecordID:     outcome.RecordID,
				Source:       string(outcome.Source),
				MaskedFields: outcome.MaskedFields,
				FieldCount:   len(outcome.MaskedFields),
				ProcessingMS: float64(elapsed.Microseconds()) / 1000,
			},
		})
	}

	return outcome
}

// tally folds a batch's outcomes into the run result
func (p *Processor) tally(result *Result, outcomes []privacy.Outcome) {
	for _, outcome := range outcomes {
		result.TotalRecords++
		if outcome.IsPII {
			result.PIIRecords++
		}
		switch outcome.Source {
		case privacy.SourceRepaired:
			result.Repaired++
		case privacy.SourceRaw:
			result.RawFallbacks++
		case privacy.SourceError:
			result.FailedRecords++
		}
	}
}

// recordAudit batch-inserts the findings for one batch of outcomes
func (p *Processor) recordAudit(ctx context.Context, runID string, outcomes []privacy.Outcome) {
	if p.auditStore == nil {
		return
	}

	findings := make([]*audit.Finding, len(outcomes))
	for i, outcome := range outcomes {
		findings[i] = &audit.Finding{
			RunID:        runID,
			RecordID:     outcome.RecordID,
			IsPII:        outcome.IsPII,
			Source:       string(outcome.Source),
			MaskedFields: len(outcome.MaskedFields),
		}
	}

	if _, err := p.auditStore.BatchInsert(ctx, findings); err != nil {
		p.logger.Warn("Failed to persist audit findings", zap.Error(err))
	}
}

// reportProgress logs progress and broadcasts it to any connected dashboards
func (p *Processor) reportProgress(result *Result, start time.Time) {
	elapsed := time.Since(start)
	rate := float64(result.TotalRecords) / elapsed.Seconds()

	p.logger.Info("Scan progress",
		zap.Int64("records_scanned", result.TotalRecords),
		zap.Int64("pii_records", result.PIIRecords),
		zap.Int64("raw_fallbacks", result.RawFallbacks),
		zap.Float64("rate_per_sec", rate),
		zap.Duration("elapsed", elapsed))

	if p.hub != nil {
		p.hub.BroadcastEvent(websocket.Event{
			Type:      websocket.EventTypeProgress,
			Timestamp: time.Now(),
			Data: websocket.ProgressEvent{
				RunID:          result.RunID,
				RecordsScanned: result.TotalRecords,
				PIIRecords:     result.PIIRecords,
				RawFallbacks:   result.RawFallbacks,
				RatePerSecond:  rate,
			},
		})
	}
}
