package sim

import "github.com/sirupsen/logrus"

// Event defines the interface for all simulation events.
// Each event must have a Timestamp (in simulated time units) and an Execute
// method that advances simulation state when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
}

// ResumeEvent hands control back to a suspended process. It is created when a
// process requests a delay and when a resource grant becomes due.
type ResumeEvent struct {
	time    float64  // Simulation time of resumption
	Process *Process // The process whose continuation runs
}

// Timestamp returns the scheduled time of the ResumeEvent.
func (e *ResumeEvent) Timestamp() float64 {
	return e.time
}

// Execute resumes the process and blocks until it suspends again or terminates.
func (e *ResumeEvent) Execute(sim *Simulator) error {
	logrus.Tracef("<< Resume: %s at %.4f", e.Process.Name, e.time)
	return sim.resume(e.Process)
}

// FuncEvent runs a plain callback at a given time. Drivers use it for
// bookkeeping that does not belong to any process.
type FuncEvent struct {
	time float64
	Name string
	Fn   func(*Simulator) error
}

// Timestamp returns the scheduled time of the FuncEvent.
func (e *FuncEvent) Timestamp() float64 {
	return e.time
}

// Execute runs the callback.
func (e *FuncEvent) Execute(sim *Simulator) error {
	logrus.Tracef("<< %s at %.4f", e.Name, e.time)
	if e.Fn == nil {
		return nil
	}
	return e.Fn(sim)
}

// NewFuncEvent creates a FuncEvent scheduled at the given time.
func NewFuncEvent(at float64, name string, fn func(*Simulator) error) *FuncEvent {
	return &FuncEvent{time: at, Name: name, Fn: fn}
}
