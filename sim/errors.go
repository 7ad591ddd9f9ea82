package sim

import "errors"

// Structural errors abort a run. Callers match them with errors.Is; the
// returned errors wrap them with the offending times and names.
var (
	// ErrOrderingViolation is returned when an event would be scheduled
	// earlier than the current simulation time.
	ErrOrderingViolation = errors.New("ordering violation")

	// ErrEmptyQueue is returned when popping from an empty EventQueue.
	ErrEmptyQueue = errors.New("event queue is empty")

	// ErrConfiguration reports invalid parameters (zero capacity, negative
	// horizon, non-positive rates). Nothing is simulated when it is returned.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrResourceMisuse is returned for releases without a matching held
	// request and for re-entrant requests.
	ErrResourceMisuse = errors.New("resource misuse")

	// ErrProcessCancelled is returned to process code that tries to suspend
	// while it is being cancelled.
	ErrProcessCancelled = errors.New("process cancelled")

	// ErrSimulatorClosed is returned by operations on a closed Simulator.
	ErrSimulatorClosed = errors.New("simulator closed")
)
