package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/segmentio/parquet-go"
)

// maxJSONLLineSize bounds a single JSONL line; payloads are record-sized,
// not file-sized.
const maxJSONLLineSize = 16 * 1024 * 1024

// recordReader yields input records one at a time. Next returns io.EOF when
// the input is exhausted.
type recordReader interface {
	Next() (*Record, error)
	Close() error
}

// openReader opens the input file with the reader matching its format.
// A missing or unreadable file is the pipeline's only fatal condition.
func openReader(path string) (recordReader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	switch DetectFileFormat(path) {
	case FormatParquet:
		return &parquetReader{file: file, reader: parquet.NewReader(file)}, nil
	case FormatJSONL:
		return newJSONLReader(file), nil
	default:
		r, err := newCSVReader(file)
		if err != nil {
			file.Close()
			return nil, err
		}
		return r, nil
	}
}

// csvReader reads header-addressed CSV input. Column order does not matter;
// record_id and data_json are located by name.
type csvReader struct {
	file    *os.File
	reader  *csv.Reader
	idIdx   int
	dataIdx int
}

func newCSVReader(file *os.File) (*csvReader, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	idIdx, dataIdx := -1, -1
	for i, column := range header {
		switch column {
		case "record_id":
			idIdx = i
		case "data_json":
			dataIdx = i
		}
	}
	if idIdx < 0 || dataIdx < 0 {
		return nil, fmt.Errorf("CSV header missing record_id or data_json column: %v", header)
	}

	return &csvReader{file: file, reader: reader, idIdx: idIdx, dataIdx: dataIdx}, nil
}

func (r *csvReader) Next() (*Record, error) {
	row, err := r.reader.Read()
	if err != nil {
		return nil, err
	}

	record := &Record{}
	if r.idIdx < len(row) {
		record.RecordID = row[r.idIdx]
	}
	if r.dataIdx < len(row) {
		record.DataJSON = row[r.dataIdx]
	}
	return record, nil
}

func (r *csvReader) Close() error {
	return r.file.Close()
}

// jsonlReader reads one JSON object per line. Lines are consumed one at a
// time so a malformed line is skipped, not re-read forever.
type jsonlReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

func newJSONLReader(file *os.File) *jsonlReader {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxJSONLLineSize)
	return &jsonlReader{file: file, scanner: scanner}
}

func (r *jsonlReader) Next() (*Record, error) {
	for r.scanner.Scan() {
		line := bytes.TrimSpace(r.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, fmt.Errorf("malformed JSONL line: %w", err)
		}
		return &record, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

func (r *jsonlReader) Close() error {
	return r.file.Close()
}

// parquetReader reads Parquet row groups
type parquetReader struct {
	file   *os.File
	reader *parquet.Reader
}

func (r *parquetReader) Next() (*Record, error) {
	var record Record
	if err := r.reader.Read(&record); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	return &record, nil
}

func (r *parquetReader) Close() error {
	r.reader.Close()
	return r.file.Close()
}
