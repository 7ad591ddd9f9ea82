package workload

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/inference-sim/queueing-sim/sim"
)

// DurationSampler draws non-negative durations in simulated time units.
type DurationSampler interface {
	// Sample returns the next duration. Never negative, never NaN.
	Sample(rng *rand.Rand) float64
	// Mean returns the distribution mean, used for reporting and Erlang-C references.
	Mean() float64
}

// ExponentialSampler produces exponentially-distributed durations (CV=1).
type ExponentialSampler struct {
	rate float64 // events per time unit
}

func (s *ExponentialSampler) Sample(rng *rand.Rand) float64 {
	return rng.ExpFloat64() / s.rate
}

func (s *ExponentialSampler) Mean() float64 { return 1 / s.rate }

// ConstantSampler always returns the same duration.
type ConstantSampler struct {
	value float64
}

func (s *ConstantSampler) Sample(_ *rand.Rand) float64 {
	return s.value
}

func (s *ConstantSampler) Mean() float64 { return s.value }

// UniformSampler draws uniformly from [min, max).
type UniformSampler struct {
	min, max float64
}

func (s *UniformSampler) Sample(rng *rand.Rand) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

func (s *UniformSampler) Mean() float64 { return (s.min + s.max) / 2 }

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("%w: distribution requires parameter %q", sim.ErrConfiguration, k)
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec. rate is the
// event rate configured next to the spec; distributions that are not given an
// explicit scale use 1/rate as their mean.
func NewDurationSampler(spec DistSpec, rate float64) (DurationSampler, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return nil, fmt.Errorf("%w: rate must be a positive finite number, got %v", sim.ErrConfiguration, rate)
	}
	mean := 1.0 / rate

	switch spec.Type {
	case "", DistExponential:
		return &ExponentialSampler{rate: rate}, nil

	case DistConstant:
		if v, ok := spec.Params["value"]; ok {
			return &ConstantSampler{value: v}, nil
		}
		return &ConstantSampler{value: mean}, nil

	case DistUniform:
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		return &UniformSampler{min: spec.Params["min"], max: spec.Params["max"]}, nil

	case DistGamma:
		cv := spec.cv()
		// shape = 1/CV², scale = mean * CV²
		shape := 1.0 / (cv * cv)
		if shape < 0.01 {
			logrus.Warnf("Gamma shape %.4f (CV=%.1f) is very small; falling back to exponential", shape, cv)
			return &ExponentialSampler{rate: rate}, nil
		}
		return &GammaSampler{shape: shape, scale: mean * cv * cv}, nil

	case DistWeibull:
		k := weibullShapeFromCV(spec.cv())
		// scale = mean / Γ(1 + 1/k)
		return &WeibullSampler{shape: k, scale: mean / math.Gamma(1.0+1.0/k)}, nil

	case DistReplay:
		if len(spec.Values) > 0 {
			return NewReplaySampler(spec.Values)
		}
		values, err := LoadReplayFile(spec.File)
		if err != nil {
			return nil, err
		}
		return NewReplaySampler(values)

	default:
		return nil, fmt.Errorf("%w: unknown distribution type %q", sim.ErrConfiguration, spec.Type)
	}
}

// Stream binds a sampler to its random stream.
type Stream struct {
	sampler DurationSampler
	rng     *rand.Rand
}

// NewStream pairs a sampler with the RNG it draws from.
func NewStream(sampler DurationSampler, rng *rand.Rand) *Stream {
	return &Stream{sampler: sampler, rng: rng}
}

// Next returns the next duration of the stream.
func (s *Stream) Next() float64 {
	return s.sampler.Sample(s.rng)
}

// Sampler returns the underlying sampler.
func (s *Stream) Sampler() DurationSampler {
	return s.sampler
}
