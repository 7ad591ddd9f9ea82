package trace

// TraceLevel controls whether entity events are kept in memory.
type TraceLevel string

const (
	// TraceLevelNone disables in-memory recording.
	TraceLevelNone TraceLevel = "none"
	// TraceLevelEvents keeps every arrival, service start and service end.
	TraceLevelEvents TraceLevel = "events"
)

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel
}

// SimulationTrace collects records in memory. It is a Sink.
type SimulationTrace struct {
	Config  TraceConfig
	Records []Record
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config:  config,
		Records: make([]Record, 0),
	}
}

// Write appends the record when the level is TraceLevelEvents.
func (st *SimulationTrace) Write(rec Record) error {
	if st.Config.Level == TraceLevelEvents {
		st.Records = append(st.Records, rec)
	}
	return nil
}

// Close is a no-op; the records stay available.
func (st *SimulationTrace) Close() error {
	return nil
}

// Filter returns the records of one kind, in dispatch order.
func (st *SimulationTrace) Filter(kind EventKind) []Record {
	var out []Record
	for _, r := range st.Records {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
