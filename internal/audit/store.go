package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/dhanjo/project-guardian-2.0/internal/config"
)

// Store persists scan findings and run summaries to PostgreSQL so redaction
// runs stay auditable after the output files move on.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewStore creates a new audit store instance
func NewStore(cfg config.AuditConfig, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	store := &Store{
		db:     db,
		logger: logger,
	}

	if err := store.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	logger.Info("Audit store initialized successfully",
		zap.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns))

	return store, nil
}

// initialize checks the connection and ensures the audit tables exist
func (s *Store) initialize() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS scan_runs (
			run_id        TEXT PRIMARY KEY,
			input_file    TEXT NOT NULL,
			total_records BIGINT NOT NULL,
			pii_records   BIGINT NOT NULL,
			raw_fallbacks BIGINT NOT NULL,
			duration_ms   BIGINT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE TABLE IF NOT EXISTS scan_findings (
			id            BIGSERIAL PRIMARY KEY,
			run_id        TEXT NOT NULL,
			record_id     TEXT NOT NULL,
			is_pii        BOOLEAN NOT NULL,
			source        TEXT NOT NULL,
			masked_fields INT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_scan_findings_run_id ON scan_findings (run_id)`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure audit schema: %w", err)
	}

	s.logger.Info("Audit schema ready")
	return nil
}

// InsertFinding adds a single finding to the audit log
func (s *Store) InsertFinding(ctx context.Context, finding *Finding) error {
	query := `
		INSERT INTO scan_findings (run_id, record_id, is_pii, source, masked_fields)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := s.db.QueryRowContext(ctx, query,
		finding.RunID,
		finding.RecordID,
		finding.IsPII,
		finding.Source,
		finding.MaskedFields,
	).Scan(&finding.ID, &finding.CreatedAt)

	if err != nil {
		s.logger.Error("Failed to insert finding",
			zap.Error(err),
			zap.String("record_id", finding.RecordID))
		return fmt.Errorf("failed to insert finding: %w", err)
	}

	return nil
}

// BatchInsert adds multiple findings efficiently
func (s *Store) BatchInsert(ctx context.Context, findings []*Finding) (*BatchInsertResult, error) {
	if len(findings) == 0 {
		return &BatchInsertResult{}, nil
	}

	start := time.Now()
	result := &BatchInsertResult{}

	valueStrings := make([]string, 0, len(findings))
	valueArgs := make([]interface{}, 0, len(findings)*5)

	for i, finding := range findings {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", i*5+1, i*5+2, i*5+3, i*5+4, i*5+5))
		valueArgs = append(valueArgs,
			finding.RunID,
			finding.RecordID,
			finding.IsPII,
			finding.Source,
			finding.MaskedFields,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO scan_findings (run_id, record_id, is_pii, source, masked_fields)
		VALUES %s`,
		strings.Join(valueStrings, ","))

	res, err := s.db.ExecContext(ctx, query, valueArgs...)
	if err != nil {
		result.Failed = int64(len(findings))
		s.logger.Error("Batch insert failed", zap.Error(err))
		return result, fmt.Errorf("batch insert failed: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		s.logger.Warn("Could not get rows affected", zap.Error(err))
		inserted = int64(len(findings))
	}

	result.Inserted = inserted
	result.Failed = int64(len(findings)) - inserted
	result.Duration = time.Since(start)

	s.logger.Debug("Batch insert completed",
		zap.Int64("inserted", result.Inserted),
		zap.Int64("failed", result.Failed),
		zap.Duration("duration", result.Duration))

	return result, nil
}

// InsertRun writes the summary row for a completed scan run
func (s *Store) InsertRun(ctx context.Context, run *RunSummary) error {
	run.DurationMS = run.Duration.Milliseconds()

	query := `
		INSERT INTO scan_runs (run_id, input_file, total_records, pii_records, raw_fallbacks, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := s.db.QueryRowContext(ctx, query,
		run.RunID,
		run.InputFile,
		run.TotalRecords,
		run.PIIRecords,
		run.RawFallbacks,
		run.DurationMS,
	).Scan(&run.CreatedAt)

	if err != nil {
		s.logger.Error("Failed to insert run summary", zap.Error(err), zap.String("run_id", run.RunID))
		return fmt.Errorf("failed to insert run summary: %w", err)
	}

	s.logger.Info("Run summary recorded",
		zap.String("run_id", run.RunID),
		zap.Int64("total_records", run.TotalRecords),
		zap.Int64("pii_records", run.PIIRecords))

	return nil
}

// GetStats returns audit store statistics
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	query := `
		SELECT
			COUNT(*) as total,
			COUNT(CASE WHEN is_pii THEN 1 END) as pii,
			COUNT(CASE WHEN NOT is_pii THEN 1 END) as clean
		FROM scan_findings`

	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalFindings,
		&stats.PIICount,
		&stats.CleanCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get finding stats: %w", err)
	}

	if err := s.db.GetContext(ctx, &stats.TotalRuns, "SELECT COUNT(*) FROM scan_runs"); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// maskDatabaseURL masks credentials in a database URL for logging
func maskDatabaseURL(url string) string {
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) >= 2 {
			userPart := parts[0]
			if strings.Contains(userPart, ":") {
				userParts := strings.Split(userPart, ":")
				if len(userParts) >= 3 {
					userParts[len(userParts)-1] = "***"
					parts[0] = strings.Join(userParts, ":")
				}
			}
			return strings.Join(parts, "@")
		}
	}
	return url
}
