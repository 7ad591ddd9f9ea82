// Package sim provides the discrete-event simulation kernel for queueing-sim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event_queue.go: pending events ordered by (time, insertion sequence)
//   - simulator.go: the clock and the run loop (Run, RunUntil)
//   - process.go: suspendable processes (Timeout) and their lifecycle states
//   - resource.go: capacity-limited FIFO resources (Request, Release, With)
//   - metrics.go: time-weighted statistics (L, Lq, W, Wq, utilization)
//
// # Execution Model
//
// Simulated time is a float64 advanced only by dispatching events. A process
// runs without interruption until it calls Timeout or blocks in
// Resource.Request; control then returns to the run loop, which pops the next
// event. Events at equal times run in the order they were scheduled, so a run
// is fully determined by the durations it samples.
//
// Processes are goroutines used as coroutines: the run loop and the processes
// hand control to each other over unbuffered channels, and only one of them
// executes at a time. No locking is needed around resources or statistics.
//
// # Sub-packages
//   - sim/workload/: duration samplers (exponential, gamma, weibull, replay)
//   - sim/trace/: event records and reporting sinks (console, CSV, JSONL, SQLite)
//   - sim/scenario/: M/M/c and tandem-network drivers built on this kernel
package sim
