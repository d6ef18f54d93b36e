package pipeline

import (
	"time"
)

// Record is a single input row: an opaque identifier paired with a payload
// expected to be a JSON-object-shaped string.
type Record struct {
	RecordID string `csv:"record_id" parquet:"record_id" json:"record_id"`
	DataJSON string `csv:"data_json" parquet:"data_json" json:"data_json"`
}

// Result represents the result of processing one input file
type Result struct {
	RunID         string        `json:"run_id"`
	TotalRecords  int64         `json:"total_records"`
	PIIRecords    int64         `json:"pii_records"`
	Repaired      int64         `json:"repaired"`
	RawFallbacks  int64         `json:"raw_fallbacks"`
	FailedRecords int64         `json:"failed_records"`
	Duration      time.Duration `json:"duration"`
	Errors        []string      `json:"errors,omitempty"`
}

// Config contains scan pipeline configuration
type Config struct {
	BatchSize      int `yaml:"batch_size" mapstructure:"batch_size"`           // 500
	WorkerCount    int `yaml:"worker_count" mapstructure:"worker_count"`       // 4
	ProgressReport int `yaml:"progress_report" mapstructure:"progress_report"` // 1000
}

// FileFormat represents supported input file formats
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatJSONL   FileFormat = "jsonl"
	FormatParquet FileFormat = "parquet"
)

// DetectFileFormat detects the input format from the file extension
func DetectFileFormat(filename string) FileFormat {
	switch {
	case len(filename) >= 8 && filename[len(filename)-8:] == ".parquet":
		return FormatParquet
	case len(filename) >= 6 && filename[len(filename)-6:] == ".jsonl":
		return FormatJSONL
	case len(filename) >= 5 && filename[len(filename)-5:] == ".json":
		return FormatJSONL
	default:
		return FormatCSV
	}
}
