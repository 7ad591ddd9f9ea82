package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/inference-sim/queueing-sim/sim"
	"github.com/inference-sim/queueing-sim/sim/workload"
)

// StationConfig describes one service station: a pool of identical servers
// fed by a single FIFO queue.
type StationConfig struct {
	Name        string            `yaml:"name" json:"name"`
	Servers     int               `yaml:"servers" json:"servers"`
	ServiceRate float64           `yaml:"service_rate" json:"service_rate"` // μ per server
	Service     workload.DistSpec `yaml:"service,omitempty" json:"service,omitempty"`
}

// Config is a complete queueing scenario. Entities arrive at rate
// ArrivalRate and visit Stations in order.
//
// Horizon bounds the run. With Drain set the horizon only stops new
// arrivals and the run continues until every station is idle; otherwise the
// clock stops at the horizon and entities still in the system are left
// unfinished. Horizon 0 means no time bound and requires MaxEntities.
type Config struct {
	Name        string            `yaml:"name" json:"name"`
	ArrivalRate float64           `yaml:"arrival_rate" json:"arrival_rate"` // λ
	Arrival     workload.DistSpec `yaml:"arrival,omitempty" json:"arrival,omitempty"`
	Stations    []StationConfig   `yaml:"stations" json:"stations"`
	Horizon     float64           `yaml:"horizon" json:"horizon"`
	Drain       bool              `yaml:"drain" json:"drain"`
	MaxEntities int               `yaml:"max_entities,omitempty" json:"max_entities,omitempty"`
	Seed        int64             `yaml:"seed" json:"seed"`
}

// LoadConfig reads a scenario from a YAML file.
// Unknown keys are rejected so typos surface as errors.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a scenario from YAML bytes with strict field checking.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing scenario config: %w", err)
	}
	return &cfg, nil
}

// WithDefaults returns a copy with unnamed stations named after their
// position. The receiver is not modified.
func (c Config) WithDefaults() Config {
	out := c
	out.Stations = make([]StationConfig, len(c.Stations))
	copy(out.Stations, c.Stations)
	for i := range out.Stations {
		if out.Stations[i].Name == "" {
			out.Stations[i].Name = sim.SubsystemStation(i)
		}
	}
	if out.Name == "" {
		out.Name = defaultName(out)
	}
	return out
}

func defaultName(c Config) string {
	if len(c.Stations) == 1 {
		return fmt.Sprintf("M/M/%d", c.Stations[0].Servers)
	}
	return fmt.Sprintf("tandem-%d", len(c.Stations))
}

// Validate reports the first invalid parameter. Every error wraps
// sim.ErrConfiguration; nothing is simulated when Validate fails.
func (c Config) Validate() error {
	if err := checkRate("arrival_rate", c.ArrivalRate); err != nil {
		return err
	}
	if err := c.Arrival.Validate(); err != nil {
		return fmt.Errorf("arrival: %w", err)
	}
	if c.MaxEntities == 0 {
		// Zero gaps never move the clock towards the horizon.
		arrival, err := workload.NewDurationSampler(c.Arrival, c.ArrivalRate)
		if err != nil {
			return fmt.Errorf("arrival: %w", err)
		}
		if arrival.Mean() == 0 {
			return fmt.Errorf("%w: arrival: every inter-arrival gap is 0, so max_entities must be > 0", sim.ErrConfiguration)
		}
	}
	if len(c.Stations) == 0 {
		return fmt.Errorf("%w: at least one station is required", sim.ErrConfiguration)
	}
	seen := make(map[string]int, len(c.Stations))
	for i, st := range c.Stations {
		prefix := fmt.Sprintf("stations[%d]", i)
		if st.Servers < 1 {
			return fmt.Errorf("%s: %w: servers must be >= 1, got %d", prefix, sim.ErrConfiguration, st.Servers)
		}
		if err := checkRate("service_rate", st.ServiceRate); err != nil {
			return fmt.Errorf("%s: %w", prefix, err)
		}
		if err := st.Service.Validate(); err != nil {
			return fmt.Errorf("%s: service: %w", prefix, err)
		}
		if st.Name == "" {
			continue
		}
		if j, dup := seen[st.Name]; dup {
			return fmt.Errorf("%s: %w: name %q already used by stations[%d]", prefix, sim.ErrConfiguration, st.Name, j)
		}
		seen[st.Name] = i
	}
	if math.IsNaN(c.Horizon) || math.IsInf(c.Horizon, 0) || c.Horizon < 0 {
		return fmt.Errorf("%w: horizon must be a finite number >= 0, got %v", sim.ErrConfiguration, c.Horizon)
	}
	if c.MaxEntities < 0 {
		return fmt.Errorf("%w: max_entities must be >= 0, got %d", sim.ErrConfiguration, c.MaxEntities)
	}
	if c.Horizon == 0 && c.MaxEntities == 0 {
		return fmt.Errorf("%w: horizon 0 runs until drained and requires max_entities > 0", sim.ErrConfiguration)
	}
	return nil
}

// Bounded reports whether the horizon limits the run.
func (c Config) Bounded() bool {
	return c.Horizon > 0
}

func checkRate(name string, rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return fmt.Errorf("%w: %s must be a finite number > 0, got %v", sim.ErrConfiguration, name, rate)
	}
	return nil
}
