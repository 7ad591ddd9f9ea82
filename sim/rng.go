package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of a run. Two runs with the same key and
// the same scenario produce identical event logs.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemArrivals names the inter-arrival stream. It is seeded with the
// master seed itself, so every scenario seeded with S sees the same arrivals.
const SubsystemArrivals = "arrivals"

// SubsystemStation names the service-time stream of station id. It also
// serves as the default station name.
func SubsystemStation(id int) string {
	return fmt.Sprintf("station_%d", id)
}

// PartitionedRNG hands out one *rand.Rand per named stream, each seeded from
// the master key and the stream name. Adding a station therefore leaves the
// draws of the arrival stream and of every other station unchanged.
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key        SimulationKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// ForSubsystem returns the stream for name, creating it on first use. Later
// calls with the same name return the same generator.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	rng, ok := p.subsystems[name]
	if !ok {
		rng = rand.New(rand.NewSource(p.seedFor(name)))
		p.subsystems[name] = rng
	}
	return rng
}

// seedFor is the master seed for the arrival stream and the master seed
// XOR fnv1a64(name) for every other stream.
func (p *PartitionedRNG) seedFor(name string) int64 {
	if name == SubsystemArrivals {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
