package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// csvHeader is the event log layout; duration columns are empty when not yet known.
var csvHeader = []string{
	"ID", "Station", "Event", "Time", "SinceLastArrival", "QueueLen", "Busy",
	"ServiceStart", "ServiceEnd", "Wait", "Service", "Total",
}

// CSVSink writes one row per record.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
	header bool
	rows   int
}

// NewCSVSink writes CSV rows to w. The caller keeps ownership of w.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// CreateCSVSink creates (or truncates) the file at path and writes to it.
func CreateCSVSink(path string) (*CSVSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv trace: %w", err)
	}
	s := NewCSVSink(f)
	s.closer = f
	return s, nil
}

func (s *CSVSink) Write(rec Record) error {
	if !s.header {
		if err := s.w.Write(csvHeader); err != nil {
			return err
		}
		s.header = true
	}
	row := []string{
		strconv.Itoa(rec.EntityID),
		rec.Station,
		string(rec.Kind),
		formatFloat(rec.Timestamp),
		"",
		strconv.Itoa(rec.QueueLength),
		strconv.Itoa(rec.ServersBusy),
		"", "", "", "", "",
	}
	if rec.Kind == KindArrival {
		row[4] = formatFloat(rec.SinceLastArrival)
	}
	if st := rec.Service; st != nil {
		row[7] = formatFloat(st.Start)
		row[9] = formatFloat(st.Wait)
		if rec.Kind == KindServiceEnd {
			row[8] = formatFloat(st.End)
			row[10] = formatFloat(st.Service)
			row[11] = formatFloat(st.Sojourn)
		}
	}
	s.rows++
	return s.w.Write(row)
}

// Flush writes buffered rows to the underlying writer.
func (s *CSVSink) Flush() error {
	s.w.Flush()
	return s.w.Error()
}

// Close flushes and, when the sink owns its file, closes it.
func (s *CSVSink) Close() error {
	err := s.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
		s.closer = nil
	}
	return err
}

// Rows returns the number of data rows written.
func (s *CSVSink) Rows() int {
	return s.rows
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
