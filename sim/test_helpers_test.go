package sim

import "testing"

// stubEvent is a bare event for queue-level tests.
type stubEvent struct {
	at    float64
	label string
}

func (e *stubEvent) Timestamp() float64       { return e.at }
func (e *stubEvent) Execute(*Simulator) error { return nil }

// traceLog collects labels in execution order.
type traceLog struct {
	entries []string
}

func (l *traceLog) add(s string) { l.entries = append(l.entries, s) }

// observation is one ResourceObserver callback.
type observation struct {
	now      float64
	queueLen int
	held     int
}

type recordingObserver struct {
	seen []observation
}

func (o *recordingObserver) ObserveResource(now float64, queueLen, held int) {
	o.seen = append(o.seen, observation{now: now, queueLen: queueLen, held: held})
}

// mustResource creates a resource or fails the test.
func mustResource(t *testing.T, sim *Simulator, name string, capacity int) *Resource {
	t.Helper()
	r, err := NewResource(sim, name, capacity)
	if err != nil {
		t.Fatalf("NewResource(%q, %d): %v", name, capacity, err)
	}
	return r
}

// mustProcess creates a process or fails the test.
func mustProcess(t *testing.T, sim *Simulator, name string, fn ProcessFunc) *Process {
	t.Helper()
	p, err := sim.Process(name, fn)
	if err != nil {
		t.Fatalf("Process(%q): %v", name, err)
	}
	return p
}

// customer arrives at the given time, holds one unit of r for service and
// records its wait and departure time.
func customer(t *testing.T, sim *Simulator, r *Resource, name string, arrive, service float64, log *traceLog, waits map[string]float64) {
	t.Helper()
	mustProcess(t, sim, name, func(p *Process) error {
		if err := p.Timeout(arrive); err != nil {
			return err
		}
		return r.With(p, func(req *Request) error {
			if waits != nil {
				waits[name] = req.Wait()
			}
			if log != nil {
				log.add(name + ":start")
			}
			if err := p.Timeout(service); err != nil {
				return err
			}
			if log != nil {
				log.add(name + ":end")
			}
			return nil
		})
	})
}
