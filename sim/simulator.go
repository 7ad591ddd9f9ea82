// sim/simulator.go
package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// SimState is the lifecycle state of a Simulator.
type SimState int

const (
	SimIdle SimState = iota
	SimRunning
	SimStopped
)

func (s SimState) String() string {
	switch s {
	case SimIdle:
		return "idle"
	case SimRunning:
		return "running"
	case SimStopped:
		return "stopped"
	}
	return fmt.Sprintf("SimState(%d)", int(s))
}

// Simulator is the core object that holds simulation time, the event queue
// and the set of live processes. It drives a cooperative scheduler: the run
// loop pops the earliest event and resumes the associated process, which runs
// until it suspends again or terminates.
//
// Simulator is not safe for concurrent use. Processes run on their own
// goroutines but only ever one at a time, handed control by the run loop.
type Simulator struct {
	HookableBase

	Clock float64
	// EventQueue has all pending events, ordered by (time, insertion order)
	EventQueue *EventQueue
	State      SimState
	// EventsDispatched counts events popped and executed across all runs
	EventsDispatched uint64

	processes     []*Process // live processes in creation order
	nextProcessID int
	current       *Process
	closed        bool
}

// NewSimulator creates an idle simulator at time zero.
func NewSimulator() *Simulator {
	return &Simulator{
		Clock:      0,
		EventQueue: NewEventQueue(),
		State:      SimIdle,
	}
}

// Now returns the current simulated time.
func (sim *Simulator) Now() float64 {
	return sim.Clock
}

// Schedule pushes an event into the simulator's EventQueue.
func (sim *Simulator) Schedule(ev Event) error {
	if sim.closed {
		return ErrSimulatorClosed
	}
	if ev != nil && ev.Timestamp() < sim.Clock {
		return fmt.Errorf("%w: %T at %.6f is earlier than clock %.6f", ErrOrderingViolation, ev, ev.Timestamp(), sim.Clock)
	}
	_, err := sim.EventQueue.Insert(ev)
	return err
}

// ScheduleFunc schedules fn to run at the given absolute time.
func (sim *Simulator) ScheduleFunc(at float64, name string, fn func(*Simulator) error) error {
	return sim.Schedule(NewFuncEvent(at, name, fn))
}

// Run dispatches events until the queue is exhausted.
func (sim *Simulator) Run() error {
	return sim.run(math.Inf(1), false)
}

// RunUntil dispatches events whose time is not later than horizon. The first
// event beyond the horizon stays queued, and the clock is left at the horizon.
// Processes suspended at that point remain suspended; a later Run drains them.
func (sim *Simulator) RunUntil(horizon float64) error {
	if math.IsNaN(horizon) || horizon < 0 {
		return fmt.Errorf("%w: horizon must be non-negative, got %v", ErrConfiguration, horizon)
	}
	if math.IsInf(horizon, 1) {
		return sim.Run()
	}
	if horizon < sim.Clock {
		return fmt.Errorf("%w: horizon %.6f is earlier than clock %.6f", ErrOrderingViolation, horizon, sim.Clock)
	}
	return sim.run(horizon, true)
}

func (sim *Simulator) run(horizon float64, bounded bool) error {
	if sim.closed {
		return ErrSimulatorClosed
	}
	if sim.State == SimRunning {
		return fmt.Errorf("simulator is already running")
	}
	sim.State = SimRunning
	defer func() { sim.State = SimStopped }()

	for !sim.EventQueue.IsEmpty() {
		if bounded && sim.EventQueue.Peek().Timestamp() > horizon {
			break
		}
		// get the next event to be simulated
		ev, err := sim.EventQueue.PopEarliest()
		if err != nil {
			return err
		}
		if ev.Timestamp() < sim.Clock {
			panic(fmt.Sprintf("clock went backwards: %.6f < %.6f", ev.Timestamp(), sim.Clock))
		}
		// advance the clock
		sim.Clock = ev.Timestamp()
		sim.EventsDispatched++
		logrus.Tracef("[t %12.4f] Executing %T", sim.Clock, ev)

		sim.InvokeHook(HookCtx{Domain: sim, Pos: HookPosBeforeEvent, Now: sim.Clock, Item: ev})
		if err := ev.Execute(sim); err != nil {
			return err
		}
		sim.InvokeHook(HookCtx{Domain: sim, Pos: HookPosAfterEvent, Now: sim.Clock, Item: ev})
	}

	if bounded && horizon > sim.Clock {
		sim.Clock = horizon
		sim.EventQueue.advanceTo(horizon)
	}
	logrus.Debugf("[t %12.4f] Run stopped, %d events pending, %d live processes",
		sim.Clock, sim.EventQueue.Len(), len(sim.processes))
	return nil
}

// Process creates a process running fn and schedules its first activation at
// the current time.
func (sim *Simulator) Process(name string, fn ProcessFunc) (*Process, error) {
	if sim.closed {
		return nil, ErrSimulatorClosed
	}
	if fn == nil {
		return nil, fmt.Errorf("process %q: nil body", name)
	}
	sim.nextProcessID++
	p := newProcess(sim, sim.nextProcessID, name)
	seq, err := sim.EventQueue.Insert(&ResumeEvent{time: sim.Clock, Process: p})
	if err != nil {
		return nil, err
	}
	p.pendingSeq = seq
	sim.processes = append(sim.processes, p)
	go p.run(fn)
	return p, nil
}

// Processes returns the processes that have not terminated yet.
func (sim *Simulator) Processes() []*Process {
	out := make([]*Process, len(sim.processes))
	copy(out, sim.processes)
	return out
}

// Current returns the running process, or nil when control is in the run loop.
func (sim *Simulator) Current() *Process {
	return sim.current
}

// Cancel removes a suspended process from the simulation. Its pending event or
// wait-queue entry is withdrawn and its goroutine is unwound, so deferred
// releases still run. Cancelling a finished process is a no-op.
func (sim *Simulator) Cancel(p *Process) error {
	if p == nil || p.sim != sim {
		return fmt.Errorf("%w: process does not belong to this simulator", ErrResourceMisuse)
	}
	if p.Finished() {
		return nil
	}
	if p == sim.current {
		return fmt.Errorf("process %s cannot cancel itself", p.Name)
	}
	sim.withdraw(p)
	sim.kill(p)
	sim.forget(p)
	logrus.Debugf("[t %12.4f] Cancelled %s", sim.Clock, p.Name)
	return nil
}

// Close unwinds every suspended process. Statistics and resources are not
// updated during teardown. A closed simulator cannot be run again.
func (sim *Simulator) Close() {
	if sim.closed {
		return
	}
	sim.closed = true
	for _, p := range sim.Processes() {
		if p.Finished() {
			continue
		}
		sim.withdraw(p)
		sim.kill(p)
	}
	sim.processes = nil
}

// Closed reports whether Close has been called.
func (sim *Simulator) Closed() bool {
	return sim.closed
}

// withdraw removes whatever would wake p: its pending event or its place in a
// resource wait queue.
func (sim *Simulator) withdraw(p *Process) {
	if p.pendingSeq != 0 {
		sim.EventQueue.Remove(p.pendingSeq)
		p.pendingSeq = 0
	}
	if req := p.waitingOn; req != nil {
		req.resource.withdraw(req)
		p.waitingOn = nil
	}
}

// resume hands control to p and waits until it yields back.
func (sim *Simulator) resume(p *Process) error {
	if p.Finished() {
		return nil
	}
	p.pendingSeq = 0
	sim.current = p
	p.state = ProcessRunning
	p.resumeCh <- resumeSignal{}
	<-p.yieldCh
	sim.current = nil

	if p.Finished() {
		sim.forget(p)
		if p.err != nil {
			return fmt.Errorf("process %s: %w", p.Name, p.err)
		}
	}
	return nil
}

// kill unwinds p's goroutine. Deferred code in p runs with p as the current
// process and may release resources.
func (sim *Simulator) kill(p *Process) {
	prev := sim.current
	sim.current = p
	p.killing = true
	p.resumeCh <- resumeSignal{kill: true}
	<-p.yieldCh
	sim.current = prev
}

func (sim *Simulator) forget(p *Process) {
	for i, q := range sim.processes {
		if q == p {
			sim.processes = append(sim.processes[:i], sim.processes[i+1:]...)
			return
		}
	}
}
