package workload

import (
	"bytes"
	"fmt"
	"math"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queueing-sim/sim"
)

// ReplaySampler returns recorded durations in order, wrapping around at the
// end. It ignores the RNG, so a replayed stream is identical for every seed.
type ReplaySampler struct {
	values []float64
	next   int
	mean   float64
}

// NewReplaySampler copies values into a cycling sampler.
func NewReplaySampler(values []float64) (*ReplaySampler, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: replay needs at least one value", sim.ErrConfiguration)
	}
	s := &ReplaySampler{values: make([]float64, len(values))}
	copy(s.values, values)
	for i, v := range s.values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: replay value %d is %v", sim.ErrConfiguration, i, v)
		}
	}
	s.mean = sim.CalculateMean(s.values)
	return s, nil
}

func (s *ReplaySampler) Sample(_ *rand.Rand) float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

func (s *ReplaySampler) Mean() float64 { return s.mean }

// LoadReplayFile reads a YAML sequence of durations, e.g. "[1.5, 0.2, 3]".
func LoadReplayFile(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}
	var values []float64
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&values); err != nil {
		return nil, fmt.Errorf("parsing replay file %s: %w", path, err)
	}
	return values, nil
}
