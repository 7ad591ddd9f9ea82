package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResource_InvalidCapacity(t *testing.T) {
	sim := NewSimulator()
	for _, c := range []int{0, -1} {
		_, err := NewResource(sim, "r", c)
		assert.True(t, errors.Is(err, ErrConfiguration), "capacity %d", c)
	}
	_, err := NewResource(nil, "r", 1)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestResource_CapacityBound_AndFIFO(t *testing.T) {
	// GIVEN capacity 2 and five customers arriving together
	sim := NewSimulator()
	r := mustResource(t, sim, "desk", 2)
	maxHeld := 0
	sim.AcceptHook(HookFunc(func(ctx HookCtx) {
		maxHeld = max(maxHeld, r.Count())
	}))
	log := &traceLog{}
	waits := map[string]float64{}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		customer(t, sim, r, name, 0, 3, log, waits)
	}

	// WHEN run
	require.NoError(t, sim.Run())

	// THEN at most two are served at once, in arrival order
	assert.Equal(t, 2, maxHeld)
	assert.Equal(t, []string{
		"A:start", "B:start", "A:end", "B:end",
		"C:start", "D:start", "C:end", "D:end",
		"E:start", "E:end",
	}, log.entries)
	assert.Equal(t, map[string]float64{"A": 0, "B": 0, "C": 3, "D": 3, "E": 6}, waits)
	assert.Equal(t, 9.0, sim.Clock)
	assert.Equal(t, uint64(5), r.Grants())
	assert.True(t, r.Idle())
}

func TestResource_ObserverSeesStateBeforeEachChange(t *testing.T) {
	// GIVEN one server, A arriving at 0 for 5 and B arriving at 3 for 3
	sim := NewSimulator()
	r := mustResource(t, sim, "server", 1)
	obs := &recordingObserver{}
	r.AddObserver(obs)
	customer(t, sim, r, "A", 0, 5, nil, nil)
	customer(t, sim, r, "B", 3, 3, nil, nil)

	// WHEN run
	require.NoError(t, sim.Run())

	// THEN each observation carries the values in effect up to that instant
	assert.Equal(t, []observation{
		{now: 0, queueLen: 0, held: 0}, // A requests
		{now: 3, queueLen: 0, held: 1}, // B requests
		{now: 5, queueLen: 1, held: 1}, // A releases, B granted
		{now: 8, queueLen: 0, held: 1}, // B releases
	}, obs.seen)
}

func TestResource_ReentrantRequest_IsMisuse(t *testing.T) {
	sim := NewSimulator()
	r := mustResource(t, sim, "server", 2)
	var second error
	mustProcess(t, sim, "greedy", func(p *Process) error {
		req, err := r.Request(p)
		if err != nil {
			return err
		}
		_, second = r.Request(p)
		return req.Release()
	})
	require.NoError(t, sim.Run())
	assert.True(t, errors.Is(second, ErrResourceMisuse))
	assert.Equal(t, 0, r.Count())
}

func TestResource_DoubleRelease_IsMisuse(t *testing.T) {
	sim := NewSimulator()
	r := mustResource(t, sim, "server", 1)
	var second error
	mustProcess(t, sim, "p", func(p *Process) error {
		req, err := r.Request(p)
		if err != nil {
			return err
		}
		if err := r.Release(req); err != nil {
			return err
		}
		second = r.Release(req)
		return nil
	})
	require.NoError(t, sim.Run())
	assert.True(t, errors.Is(second, ErrResourceMisuse))
	assert.Equal(t, 0, r.Count(), "held count must not go negative")
}

func TestResource_ReleaseForeignRequest_IsMisuse(t *testing.T) {
	sim := NewSimulator()
	a := mustResource(t, sim, "a", 1)
	b := mustResource(t, sim, "b", 1)
	var got error
	mustProcess(t, sim, "p", func(p *Process) error {
		req, err := a.Request(p)
		if err != nil {
			return err
		}
		got = b.Release(req)
		return a.Release(req)
	})
	require.NoError(t, sim.Run())
	assert.True(t, errors.Is(got, ErrResourceMisuse))
	assert.True(t, errors.Is(a.Release(nil), ErrResourceMisuse))
}

func TestResource_RequestOutsideProcess_IsMisuse(t *testing.T) {
	sim := NewSimulator()
	r := mustResource(t, sim, "server", 1)
	p := mustProcess(t, sim, "p", func(p *Process) error { return nil })
	require.NoError(t, sim.Run())

	_, err := r.Request(p)
	assert.True(t, errors.Is(err, ErrResourceMisuse))
	_, err = r.Request(nil)
	assert.True(t, errors.Is(err, ErrResourceMisuse))
}

func TestResource_With_ReleasesOnError(t *testing.T) {
	// GIVEN a scoped acquisition whose body fails after holding for 2
	sim := NewSimulator()
	r := mustResource(t, sim, "server", 1)
	fail := errors.New("service failed")
	var got error
	mustProcess(t, sim, "p", func(p *Process) error {
		got = r.With(p, func(*Request) error {
			if err := p.Timeout(2); err != nil {
				return err
			}
			return fail
		})
		return nil
	})
	waits := map[string]float64{}
	customer(t, sim, r, "next", 1, 1, nil, waits)

	// WHEN run
	require.NoError(t, sim.Run())

	// THEN the error surfaces and the unit was still handed on
	assert.True(t, errors.Is(got, fail))
	assert.Equal(t, 1.0, waits["next"])
	assert.True(t, r.Idle())
}

func TestResource_Accessors(t *testing.T) {
	sim := NewSimulator()
	r := mustResource(t, sim, "tellers", 3)
	assert.Equal(t, "tellers", r.Name())
	assert.Equal(t, 3, r.Capacity())
	assert.Equal(t, 0, r.Count())
	assert.Equal(t, 0, r.QueueLen())
	assert.Equal(t, 0, r.Queue().Len())
	assert.True(t, r.Idle())
}
