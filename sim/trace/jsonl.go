package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// JSONLWriter writes records as JSON lines to a file.
type JSONLWriter struct {
	file   *os.File
	writer *bufio.Writer
	count  uint64
}

// NewJSONLWriter creates a new record log at the given path.
func NewJSONLWriter(path string) (*JSONLWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create record log: %w", err)
	}
	return &JSONLWriter{
		file:   f,
		writer: bufio.NewWriterSize(f, 64*1024),
	}, nil
}

// Write appends a record to the log.
func (w *JSONLWriter) Write(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if _, err := w.writer.Write(data); err != nil {
		return err
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return err
	}
	w.count++
	return nil
}

// Close flushes and closes the log file.
func (w *JSONLWriter) Close() error {
	if err := w.writer.Flush(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Count returns the number of records written.
func (w *JSONLWriter) Count() uint64 {
	return w.count
}

// JSONLReader reads records from a JSON-lines log.
type JSONLReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewJSONLReader opens a record log for reading.
func NewJSONLReader(path string) (*JSONLReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open record log: %w", err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	return &JSONLReader{
		file:    f,
		scanner: scanner,
	}, nil
}

// Next reads the next record. Returns io.EOF at end of log.
func (r *JSONLReader) Next() (Record, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return Record{}, err
		}
		return Record{}, io.EOF
	}
	var rec Record
	if err := json.Unmarshal(r.scanner.Bytes(), &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}

// ReadAll reads all remaining records from the log.
func (r *JSONLReader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

// Close closes the log file.
func (r *JSONLReader) Close() error {
	return r.file.Close()
}
