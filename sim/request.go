// Defines the Request struct that models one process's claim on a unit of a Resource.
// Tracks enqueue, grant and release times so waiting time can be derived.

package sim

import (
	"fmt"
)

// RequestState represents the lifecycle state of a request.
type RequestState string

const (
	RequestWaiting   RequestState = "waiting"
	RequestGranted   RequestState = "granted"
	RequestReleased  RequestState = "released"
	RequestCancelled RequestState = "cancelled"
)

// Request is both the wait-queue entry and the grant handle returned by
// Resource.Request. It must be released exactly once after being granted.
type Request struct {
	ID      uint64   // Per-resource sequence number, in enqueue order
	Process *Process // The requesting process

	State       RequestState // waiting, granted, released, cancelled
	EnqueueTime float64      // Simulation time the request was made
	GrantTime   float64      // Simulation time a unit was handed over
	ReleaseTime float64      // Simulation time the unit was given back

	resource *Resource
}

// Resource returns the resource the request was made against.
func (req *Request) Resource() *Resource {
	return req.resource
}

// Release gives the held unit back to its resource.
func (req *Request) Release() error {
	if req.resource == nil {
		return fmt.Errorf("%w: request %d has no resource", ErrResourceMisuse, req.ID)
	}
	return req.resource.Release(req)
}

// Wait returns the time spent in the wait queue. Zero until granted.
func (req *Request) Wait() float64 {
	if req.State == RequestWaiting || req.State == RequestCancelled {
		return 0
	}
	return req.GrantTime - req.EnqueueTime
}

// This method returns a human-readable string representation of a Request.
func (req Request) String() string {
	owner := "<nil>"
	if req.Process != nil {
		owner = req.Process.Name
	}
	return fmt.Sprintf("Request: (ID: %d, Process: %s, State: %s, EnqueueTime: %.4f)", req.ID, owner, req.State, req.EnqueueTime)
}
