package scenario

import (
	"fmt"

	"github.com/inference-sim/queueing-sim/sim"
	"github.com/inference-sim/queueing-sim/sim/workload"
)

// Sampler supplies the random durations of a run. Station indices follow
// Config.Stations.
type Sampler interface {
	SampleInterarrival() float64
	SampleService(station int) float64
}

// StreamSampler draws every duration from its own partitioned RNG stream,
// so the arrival sequence of a seed does not depend on the number of
// stations and each station's service times are independent of the others.
type StreamSampler struct {
	arrivals *workload.Stream
	services []*workload.Stream
}

// NewSampler builds the samplers described by cfg, seeded from cfg.Seed.
func NewSampler(cfg Config) (*StreamSampler, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))

	arrival, err := workload.NewDurationSampler(cfg.Arrival, cfg.ArrivalRate)
	if err != nil {
		return nil, fmt.Errorf("arrival: %w", err)
	}
	s := &StreamSampler{
		arrivals: workload.NewStream(arrival, rng.ForSubsystem(sim.SubsystemArrivals)),
		services: make([]*workload.Stream, len(cfg.Stations)),
	}
	for i, st := range cfg.Stations {
		service, err := workload.NewDurationSampler(st.Service, st.ServiceRate)
		if err != nil {
			return nil, fmt.Errorf("stations[%d]: service: %w", i, err)
		}
		s.services[i] = workload.NewStream(service, rng.ForSubsystem(sim.SubsystemStation(i)))
	}
	return s, nil
}

func (s *StreamSampler) SampleInterarrival() float64 {
	return s.arrivals.Next()
}

func (s *StreamSampler) SampleService(station int) float64 {
	return s.services[station].Next()
}

// MeanInterarrival returns the configured mean time between arrivals.
func (s *StreamSampler) MeanInterarrival() float64 {
	return s.arrivals.Sampler().Mean()
}

// MeanService returns the configured mean service time of a station.
func (s *StreamSampler) MeanService(station int) float64 {
	return s.services[station].Sampler().Mean()
}
