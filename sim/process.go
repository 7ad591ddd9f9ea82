package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// ProcessState represents the lifecycle state of a process.
type ProcessState string

const (
	ProcessReady               ProcessState = "ready"
	ProcessRunning             ProcessState = "running"
	ProcessSuspendedOnTimeout  ProcessState = "suspended-on-timeout"
	ProcessSuspendedOnResource ProcessState = "suspended-on-resource"
	ProcessTerminated          ProcessState = "terminated"
	ProcessCancelled           ProcessState = "cancelled"
)

// ProcessFunc is the body of a process. It runs synchronously between
// suspension points (Timeout, Resource.Request) and terminates by returning.
// A non-nil error aborts the simulation run.
type ProcessFunc func(p *Process) error

type resumeSignal struct {
	kill bool
}

// processKill is the panic value used to unwind a cancelled process.
type processKill struct{}

// Process is a suspendable unit of simulation logic, typically one entity's
// lifecycle or an arrival generator.
//
// Each process runs on its own goroutine, but control is handed over
// explicitly: the simulator blocks while a process runs and the process blocks
// while suspended, so exactly one of them executes at any instant.
type Process struct {
	ID   int
	Name string

	sim      *Simulator
	state    ProcessState
	err      error
	resumeCh chan resumeSignal
	yieldCh  chan struct{}

	pendingSeq uint64   // sequence of the pending ResumeEvent, 0 if none
	waitingOn  *Request // request queued at a resource, nil if none
	killing    bool
}

func newProcess(sim *Simulator, id int, name string) *Process {
	return &Process{
		ID:       id,
		Name:     name,
		sim:      sim,
		state:    ProcessReady,
		resumeCh: make(chan resumeSignal),
		yieldCh:  make(chan struct{}),
	}
}

func (p *Process) run(fn ProcessFunc) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(processKill); ok {
				p.state = ProcessCancelled
			} else {
				p.err = fmt.Errorf("panic: %v", r)
			}
		}
		if p.state != ProcessCancelled {
			p.state = ProcessTerminated
		}
		p.yieldCh <- struct{}{}
	}()

	if sig := <-p.resumeCh; sig.kill {
		panic(processKill{})
	}
	if err := fn(p); err != nil {
		p.err = err
	}
}

// suspend yields control back to the simulator and blocks until resumed.
func (p *Process) suspend(state ProcessState) {
	p.state = state
	p.yieldCh <- struct{}{}
	if sig := <-p.resumeCh; sig.kill {
		panic(processKill{})
	}
	p.state = ProcessRunning
}

// checkRunning verifies that p is the process currently holding control.
func (p *Process) checkRunning(op string) error {
	if p.killing {
		return fmt.Errorf("%s: %s: %w", p.Name, op, ErrProcessCancelled)
	}
	if p.sim.current != p {
		return fmt.Errorf("%w: %s called %s while not running", ErrResourceMisuse, p.Name, op)
	}
	return nil
}

// Timeout suspends the process for d simulated time units.
func (p *Process) Timeout(d float64) error {
	if err := p.checkRunning("timeout"); err != nil {
		return err
	}
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return fmt.Errorf("%w: %s requested delay %v", ErrOrderingViolation, p.Name, d)
	}
	at := p.sim.Clock + d
	seq, err := p.sim.EventQueue.Insert(&ResumeEvent{time: at, Process: p})
	if err != nil {
		return err
	}
	p.pendingSeq = seq
	logrus.Tracef("[t %12.4f] %s sleeps until %.4f", p.sim.Clock, p.Name, at)
	p.suspend(ProcessSuspendedOnTimeout)
	return nil
}

// Now returns the current simulated time.
func (p *Process) Now() float64 {
	return p.sim.Clock
}

// Sim returns the simulator that owns the process.
func (p *Process) Sim() *Simulator {
	return p.sim
}

// State returns the lifecycle state of the process.
func (p *Process) State() ProcessState {
	return p.state
}

// Err returns the error the process terminated with, if any.
func (p *Process) Err() error {
	return p.err
}

// Finished reports whether the process has terminated or was cancelled.
func (p *Process) Finished() bool {
	return p.state == ProcessTerminated || p.state == ProcessCancelled
}

// String returns a human-readable representation of the process.
func (p *Process) String() string {
	return fmt.Sprintf("Process: (ID: %d, Name: %s, State: %s)", p.ID, p.Name, p.state)
}
