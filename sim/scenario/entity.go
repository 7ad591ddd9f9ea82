package scenario

import (
	"fmt"

	"github.com/inference-sim/queueing-sim/sim"
	"github.com/inference-sim/queueing-sim/sim/trace"
)

// EntityState is the position of an entity at its current station.
type EntityState string

const (
	EntityArrived   EntityState = "arrived"
	EntityQueued    EntityState = "queued"
	EntityInService EntityState = "in-service"
	EntityDeparted  EntityState = "departed"
)

// Entity is one customer travelling through the stations in order.
type Entity struct {
	ID        int
	State     EntityState
	Station   int     // index of the current station
	EnteredAt float64 // arrival time at the first station
	LeftAt    float64 // departure time from the last station
}

// station couples a resource with the statistics observing it.
type station struct {
	index       int
	cfg         StationConfig
	res         *sim.Resource
	stats       *sim.Statistics
	lastArrival float64
}

func newStation(s *sim.Simulator, index int, cfg StationConfig) (*station, error) {
	res, err := sim.NewResource(s, cfg.Name, cfg.Servers)
	if err != nil {
		return nil, fmt.Errorf("stations[%d]: %w", index, err)
	}
	stats := sim.NewStatistics(cfg.Name, cfg.Servers)
	res.AddObserver(stats)
	return &station{index: index, cfg: cfg, res: res, stats: stats}, nil
}

func (st *station) idle() bool {
	return st.res.Idle()
}

// lifecycle returns the process body of e: it visits every station in
// order and departs.
func (n *network) lifecycle(e *Entity) sim.ProcessFunc {
	return func(p *sim.Process) error {
		for _, st := range n.stations {
			if err := n.visit(p, e, st); err != nil {
				return err
			}
		}
		e.State = EntityDeparted
		e.LeftAt = p.Now()
		n.departed++
		n.sojourn += e.LeftAt - e.EnteredAt
		return nil
	}
}

// visit takes e through one station: arrive, wait for a server if all are
// busy, hold it for a sampled service time, and release it.
func (n *network) visit(p *sim.Process, e *Entity, st *station) error {
	arrivedAt := p.Now()
	e.Station = st.index
	e.State = EntityArrived
	st.stats.RecordArrival()

	queueLen := st.res.QueueLen()
	if st.res.Count() >= st.res.Capacity() {
		e.State = EntityQueued
		queueLen++
	}
	if err := n.sink.Write(trace.Record{
		RunID:            n.runID,
		Station:          st.cfg.Name,
		EntityID:         e.ID,
		Kind:             trace.KindArrival,
		Timestamp:        arrivedAt,
		SinceLastArrival: arrivedAt - st.lastArrival,
		QueueLength:      queueLen,
		ServersBusy:      st.res.Count(),
	}); err != nil {
		return err
	}
	st.lastArrival = arrivedAt

	var times trace.ServiceTimes
	err := st.res.With(p, func(req *sim.Request) error {
		e.State = EntityInService
		times.Start = p.Now()
		times.Wait = req.Wait()
		if err := n.sink.Write(trace.Record{
			RunID:       n.runID,
			Station:     st.cfg.Name,
			EntityID:    e.ID,
			Kind:        trace.KindServiceStart,
			Timestamp:   times.Start,
			QueueLength: st.res.QueueLen(),
			ServersBusy: st.res.Count(),
			Service:     &trace.ServiceTimes{Start: times.Start, Wait: times.Wait},
		}); err != nil {
			return err
		}

		times.Service = n.sampler.SampleService(st.index)
		if err := p.Timeout(times.Service); err != nil {
			return err
		}
		times.End = p.Now()
		times.Sojourn = times.End - arrivedAt
		st.stats.RecordCompletion(req, arrivedAt, times.Service, times.End)
		return nil
	})
	if err != nil {
		return fmt.Errorf("entity %d at %s: %w", e.ID, st.cfg.Name, err)
	}

	return n.sink.Write(trace.Record{
		RunID:       n.runID,
		Station:     st.cfg.Name,
		EntityID:    e.ID,
		Kind:        trace.KindServiceEnd,
		Timestamp:   times.End,
		QueueLength: st.res.QueueLen(),
		ServersBusy: st.res.Count(),
		Service:     &times,
	})
}
