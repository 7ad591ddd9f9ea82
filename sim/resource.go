package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ResourceObserver is notified immediately before every change of a
// resource's queue length or held count, with the values that were in effect
// up to now. Integrating these values over time yields exact occupancy areas.
type ResourceObserver interface {
	ObserveResource(now float64, queueLen, held int)
}

// Resource is a capacity-limited contention point with strict FIFO waiting.
//
// Invariants: 0 <= held <= capacity, and no request in the wait queue holds a
// unit. Both are checked on every call.
type Resource struct {
	name     string
	capacity int
	held     int
	waitQ    *WaitQueue
	holders  map[*Process]*Request

	sim       *Simulator
	observers []ResourceObserver
	nextID    uint64
	grants    uint64
}

// NewResource creates a resource with the given number of identical units.
func NewResource(sim *Simulator, name string, capacity int) (*Resource, error) {
	if sim == nil {
		return nil, fmt.Errorf("%w: resource %q needs a simulator", ErrConfiguration, name)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: resource %q capacity must be positive, got %d", ErrConfiguration, name, capacity)
	}
	return &Resource{
		name:     name,
		capacity: capacity,
		waitQ:    &WaitQueue{},
		holders:  make(map[*Process]*Request),
		sim:      sim,
	}, nil
}

// AddObserver registers an observer for state changes.
func (r *Resource) AddObserver(o ResourceObserver) {
	r.observers = append(r.observers, o)
}

func (r *Resource) notify() {
	if r.sim.closed {
		return
	}
	now := r.sim.Clock
	for _, o := range r.observers {
		o.ObserveResource(now, r.waitQ.Len(), r.held)
	}
}

// Request claims one unit for p. When a unit is free it is granted at once
// and p keeps running; otherwise p is queued and suspended until a release
// hands it a unit. The returned request must be released exactly once.
func (r *Resource) Request(p *Process) (req *Request, err error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil process requested %s", ErrResourceMisuse, r.name)
	}
	if err := p.checkRunning("request " + r.name); err != nil {
		return nil, err
	}
	if _, ok := r.holders[p]; ok {
		return nil, fmt.Errorf("%w: %s already holds a unit of %s", ErrResourceMisuse, p.Name, r.name)
	}

	r.notify()
	r.nextID++
	req = &Request{
		ID:          r.nextID,
		Process:     p,
		State:       RequestWaiting,
		EnqueueTime: r.sim.Clock,
		resource:    r,
	}

	if r.held < r.capacity {
		r.grant(req)
		return req, nil
	}

	r.waitQ.Enqueue(req)
	p.waitingOn = req
	logrus.Tracef("[t %12.4f] %s queued at %s (queue=%d)", r.sim.Clock, p.Name, r.name, r.waitQ.Len())

	// A process cancelled after its grant was scheduled but before it resumed
	// still owns the unit; give it back while unwinding.
	defer func() {
		if rec := recover(); rec != nil {
			if req.State == RequestGranted {
				_ = r.Release(req)
			}
			panic(rec)
		}
	}()
	p.suspend(ProcessSuspendedOnResource)
	return req, nil
}

// grant hands a unit to req. The caller is responsible for scheduling the
// process's resumption when it is suspended.
func (r *Resource) grant(req *Request) {
	r.held++
	r.grants++
	r.checkInvariants()
	req.State = RequestGranted
	req.GrantTime = r.sim.Clock
	r.holders[req.Process] = req
	logrus.Tracef("[t %12.4f] %s granted %s (busy=%d/%d)", r.sim.Clock, req.Process.Name, r.name, r.held, r.capacity)
}

// Release returns the unit held by req and passes it to the head of the wait
// queue, whose process is resumed at the current time.
func (r *Resource) Release(req *Request) error {
	if req == nil || req.resource != r {
		return fmt.Errorf("%w: release of a request not made against %s", ErrResourceMisuse, r.name)
	}
	if req.State != RequestGranted {
		return fmt.Errorf("%w: release of %s request %d in state %s", ErrResourceMisuse, r.name, req.ID, req.State)
	}

	if r.sim.closed {
		r.held--
		req.State = RequestReleased
		delete(r.holders, req.Process)
		return nil
	}

	r.notify()
	r.held--
	req.State = RequestReleased
	req.ReleaseTime = r.sim.Clock
	delete(r.holders, req.Process)

	if next := r.waitQ.Dequeue(); next != nil {
		next.Process.waitingOn = nil
		r.grant(next)
		seq, err := r.sim.EventQueue.Insert(&ResumeEvent{time: r.sim.Clock, Process: next.Process})
		if err != nil {
			return err
		}
		next.Process.pendingSeq = seq
	}
	r.checkInvariants()
	return nil
}

// With requests a unit for p, runs fn while holding it, and releases it on
// every exit path, including errors, panics and cancellation.
func (r *Resource) With(p *Process, fn func(req *Request) error) (err error) {
	req, err := r.Request(p)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := r.Release(req); relErr != nil && err == nil {
			err = relErr
		}
	}()
	return fn(req)
}

// withdraw removes a waiting request, used when its process is cancelled.
func (r *Resource) withdraw(req *Request) {
	if req.State != RequestWaiting {
		return
	}
	r.notify()
	if r.waitQ.Remove(req) {
		req.State = RequestCancelled
	}
}

func (r *Resource) checkInvariants() {
	if r.held < 0 || r.held > r.capacity {
		panic(fmt.Sprintf("resource %s: held %d outside [0, %d]", r.name, r.held, r.capacity))
	}
}

// Name returns the resource name.
func (r *Resource) Name() string {
	return r.name
}

// Capacity returns the number of units.
func (r *Resource) Capacity() int {
	return r.capacity
}

// Count returns the number of units currently held.
func (r *Resource) Count() int {
	return r.held
}

// QueueLen returns the number of waiting requests.
func (r *Resource) QueueLen() int {
	return r.waitQ.Len()
}

// Queue returns the wait queue. Callers must not modify it.
func (r *Resource) Queue() *WaitQueue {
	return r.waitQ
}

// Grants returns the number of grants made so far.
func (r *Resource) Grants() uint64 {
	return r.grants
}

// Idle reports whether no unit is held and nobody is waiting.
func (r *Resource) Idle() bool {
	return r.held == 0 && r.waitQ.Len() == 0
}
