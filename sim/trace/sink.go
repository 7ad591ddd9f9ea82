package trace

import "errors"

// Sink receives records in dispatch order. Implementations are written only
// from the simulation loop and need not be safe for concurrent use.
type Sink interface {
	Write(rec Record) error
	Close() error
}

// MultiSink fans records out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that writes to every non-nil sink given.
func NewMultiSink(sinks ...Sink) *MultiSink {
	m := &MultiSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

// Add appends a sink.
func (m *MultiSink) Add(s Sink) {
	if s != nil {
		m.sinks = append(m.sinks, s)
	}
}

// Len returns the number of attached sinks.
func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// Write stops at the first failing sink.
func (m *MultiSink) Write(rec Record) error {
	for _, s := range m.sinks {
		if err := s.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink and joins their errors.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards records.
type Nop struct{}

func (Nop) Write(Record) error { return nil }
func (Nop) Close() error       { return nil }
