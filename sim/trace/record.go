// Package trace records the observable events of a queueing run and writes
// them to sinks (console table, CSV, JSON lines, SQLite).
// This package has no dependencies on sim/; it stores pure data types.
package trace

// EventKind names an entity event at a station.
type EventKind string

const (
	KindArrival      EventKind = "Arrival"
	KindServiceStart EventKind = "ServiceStart"
	KindServiceEnd   EventKind = "ServiceEnd"
)

// ServiceTimes carries the per-visit durations known at the time of a record.
// On ServiceStart only Start and Wait are set.
type ServiceTimes struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end,omitempty"`
	Wait    float64 `json:"wait"`
	Service float64 `json:"service,omitempty"`
	Sojourn float64 `json:"sojourn,omitempty"` // arrival at the station to departure
}

// Record captures one entity event. QueueLength and ServersBusy are the
// station state immediately after the event. An arriving entity that must
// wait counts in QueueLength; one about to be served does not yet count in
// ServersBusy until its ServiceStart record.
type Record struct {
	RunID            string        `json:"run_id"`
	Station          string        `json:"station"`
	EntityID         int           `json:"entity_id"`
	Kind             EventKind     `json:"kind"`
	Timestamp        float64       `json:"timestamp"`
	SinceLastArrival float64       `json:"since_last_arrival,omitempty"` // Arrival records only
	QueueLength      int           `json:"queue_length"`
	ServersBusy      int           `json:"servers_busy"`
	Service          *ServiceTimes `json:"service,omitempty"`
}
