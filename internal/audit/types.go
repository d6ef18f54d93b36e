package audit

import "time"

// Finding is one record-level scan result persisted for audit. Only the
// shape of the detection is stored, never the payload or its redacted form.
type Finding struct {
	ID           int64     `db:"id" json:"id"`
	RunID        string    `db:"run_id" json:"run_id"`
	RecordID     string    `db:"record_id" json:"record_id"`
	IsPII        bool      `db:"is_pii" json:"is_pii"`
	Source       string    `db:"source" json:"source"`
	MaskedFields int       `db:"masked_fields" json:"masked_fields"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RunSummary is the per-run aggregate written when a batch scan finishes.
type RunSummary struct {
	RunID        string        `db:"run_id" json:"run_id"`
	InputFile    string        `db:"input_file" json:"input_file"`
	TotalRecords int64         `db:"total_records" json:"total_records"`
	PIIRecords   int64         `db:"pii_records" json:"pii_records"`
	RawFallbacks int64         `db:"raw_fallbacks" json:"raw_fallbacks"`
	Duration     time.Duration `db:"-" json:"duration"`
	DurationMS   int64         `db:"duration_ms" json:"duration_ms"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}

// BatchInsertResult represents the result of a batch insert operation
type BatchInsertResult struct {
	Inserted int64         `json:"inserted"`
	Failed   int64         `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Stats represents audit store statistics
type Stats struct {
	TotalFindings int64 `json:"total_findings"`
	PIICount      int64 `json:"pii_count"`
	CleanCount    int64 `json:"clean_count"`
	TotalRuns     int64 `json:"total_runs"`
}
