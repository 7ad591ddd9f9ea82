// Package scenario drives queueing experiments on the sim kernel.
//
// A Config describes Poisson (or otherwise distributed) arrivals feeding one
// or more stations in series. One station with one server is the M/M/1 bank
// queue, one station with c servers is M/M/c, and several stations form a
// tandem network such as a ticket office followed by a gate.
//
// Run simulates a config once and returns a Report with per-station L, Lq,
// W, Wq and utilization, next to the Erlang-C values when they apply.
// Replicate repeats a config over consecutive seeds and reports confidence
// intervals. Entity events go to a trace.Sink given with WithSink.
package scenario
