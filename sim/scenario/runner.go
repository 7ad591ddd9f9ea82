package scenario

import (
	"fmt"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queueing-sim/sim"
	"github.com/inference-sim/queueing-sim/sim/trace"
)

// Option customizes a single Run.
type Option func(*runOptions)

type runOptions struct {
	sampler Sampler
	sink    trace.Sink
	runID   string
	hooks   []sim.Hook
}

// WithSampler replaces the seeded samplers built from the config.
func WithSampler(s Sampler) Option {
	return func(o *runOptions) { o.sampler = s }
}

// WithSink sends every entity event to s. The sink is not closed by Run.
func WithSink(s trace.Sink) Option {
	return func(o *runOptions) { o.sink = s }
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *runOptions) { o.runID = id }
}

// WithHook attaches a hook to the simulator before it starts.
func WithHook(h sim.Hook) Option {
	return func(o *runOptions) { o.hooks = append(o.hooks, h) }
}

// network is the state of one run: the simulator, its stations and the
// entity bookkeeping shared by the generator and the entity processes.
type network struct {
	cfg     Config
	runID   string
	sim     *sim.Simulator
	sampler Sampler
	sink    trace.Sink

	stations []*station
	entities []*Entity
	spawned  int
	departed int
	sojourn  float64 // summed first-arrival-to-departure times
}

// Run simulates cfg once and returns its report. The config is validated
// before anything is scheduled.
func Run(cfg Config, opts ...Option) (*Report, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := runOptions{sink: trace.Nop{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = xid.New().String()
	}
	if o.sampler == nil {
		s, err := NewSampler(cfg)
		if err != nil {
			return nil, err
		}
		o.sampler = s
	}

	s := sim.NewSimulator()
	defer s.Close()
	for _, h := range o.hooks {
		s.AcceptHook(h)
	}

	n := &network{cfg: cfg, runID: o.runID, sim: s, sampler: o.sampler, sink: o.sink}
	for i, sc := range cfg.Stations {
		st, err := newStation(s, i, sc)
		if err != nil {
			return nil, err
		}
		n.stations = append(n.stations, st)
	}
	if _, err := s.Process("arrivals", n.generate); err != nil {
		return nil, err
	}

	logrus.Infof("Starting %s (run %s): lambda=%.4f, %d station(s), horizon=%v, drain=%v, seed=%d",
		cfg.Name, o.runID, cfg.ArrivalRate, len(cfg.Stations), cfg.Horizon, cfg.Drain, cfg.Seed)
	if err := n.drive(); err != nil {
		return nil, fmt.Errorf("run %s: %w", o.runID, err)
	}

	report := n.report()
	logrus.Infof("Finished %s at t=%.4f: %d arrived, %d departed, %d in flight, %d events",
		cfg.Name, report.Clock, report.Arrivals, report.Departed, report.InFlight, report.EventsDispatched)
	return report, nil
}

// drive advances the clock according to the horizon policy. A bounded run
// without drain stops at the horizon; otherwise the horizon only ends
// arrivals and the run continues until every station is idle.
func (n *network) drive() error {
	if n.cfg.Bounded() {
		if err := n.sim.RunUntil(n.cfg.Horizon); err != nil {
			return err
		}
		if !n.cfg.Drain {
			return nil
		}
	}
	if err := n.sim.Run(); err != nil {
		return err
	}
	for _, st := range n.stations {
		if !st.idle() {
			return fmt.Errorf("station %s still busy with no pending events at t=%.4f", st.cfg.Name, n.sim.Clock)
		}
	}
	return nil
}

func (n *network) report() *Report {
	now := n.sim.Clock
	refs := references(n.cfg)
	r := &Report{
		RunID:            n.runID,
		Name:             n.cfg.Name,
		Seed:             n.cfg.Seed,
		Horizon:          n.cfg.Horizon,
		Drain:            n.cfg.Drain,
		Clock:            now,
		EventsDispatched: n.sim.EventsDispatched,
		Arrivals:         n.spawned,
		Departed:         n.departed,
		InFlight:         n.spawned - n.departed,
		Stations:         make([]StationReport, len(n.stations)),
	}
	if n.departed > 0 {
		r.MeanSojourn = sim.Defined(n.sojourn / float64(n.departed))
	}
	if now > 0 {
		r.Throughput = sim.Defined(float64(n.departed) / now)
	}
	for i, st := range n.stations {
		r.Stations[i] = StationReport{
			Results:     st.stats.Finalize(now, st.res.QueueLen(), st.res.Count()),
			ServiceRate: st.cfg.ServiceRate,
			Service:     st.cfg.Service.String(),
			Reference:   refs[i],
		}
	}
	return r
}
