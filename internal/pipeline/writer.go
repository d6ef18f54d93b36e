package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/dhanjo/project-guardian-2.0/internal/privacy"
)

// outputWriter writes the redacted output CSV: one row per input record, in
// input order, with the header record_id,redacted_data_json,is_pii.
type outputWriter struct {
	file   *os.File
	writer *csv.Writer
}

func newOutputWriter(path string) (*outputWriter, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	w := &outputWriter{
		file:   file,
		writer: csv.NewWriter(file),
	}

	if err := w.writer.Write([]string{"record_id", "redacted_data_json", "is_pii"}); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write output header: %w", err)
	}

	return w, nil
}

func (w *outputWriter) Write(outcome privacy.Outcome) error {
	return w.writer.Write([]string{
		outcome.RecordID,
		outcome.Redacted,
		strconv.FormatBool(outcome.IsPII),
	})
}

func (w *outputWriter) Close() error {
	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return w.file.Close()
}
