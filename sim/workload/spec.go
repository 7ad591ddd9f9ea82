package workload

import (
	"fmt"
	"math"

	"github.com/inference-sim/queueing-sim/sim"
)

// Distribution type names accepted in DistSpec.Type. The empty type means
// exponential, which is what the M/M/c scenarios assume.
const (
	DistExponential = "exponential"
	DistConstant    = "constant"
	DistUniform     = "uniform"
	DistGamma       = "gamma"
	DistWeibull     = "weibull"
	DistReplay      = "replay"
)

var validDistTypes = map[string]bool{
	"": true, DistExponential: true, DistConstant: true, DistUniform: true,
	DistGamma: true, DistWeibull: true, DistReplay: true,
}

// DistSpec parameterizes a duration distribution. Its mean comes from the
// rate configured next to it unless the type takes explicit parameters.
type DistSpec struct {
	Type   string             `yaml:"type,omitempty" json:"type,omitempty"`
	CV     *float64           `yaml:"cv,omitempty" json:"cv,omitempty"`
	Params map[string]float64 `yaml:"params,omitempty" json:"params,omitempty"`
	Values []float64          `yaml:"values,omitempty" json:"values,omitempty"`
	File   string             `yaml:"file,omitempty" json:"file,omitempty"`
}

// IsExponential reports whether the spec describes a memoryless distribution.
func (d DistSpec) IsExponential() bool {
	return d.Type == "" || d.Type == DistExponential
}

// String names the distribution for reports.
func (d DistSpec) String() string {
	if d.Type == "" {
		return DistExponential
	}
	if d.CV != nil {
		return fmt.Sprintf("%s(cv=%g)", d.Type, *d.CV)
	}
	return d.Type
}

func (d DistSpec) cv() float64 {
	if d.CV == nil || *d.CV <= 0 {
		return 1.0
	}
	return *d.CV
}

// Validate checks the spec without building a sampler.
func (d DistSpec) Validate() error {
	if !validDistTypes[d.Type] {
		return fmt.Errorf("%w: unknown distribution type %q; valid: exponential, constant, uniform, gamma, weibull, replay",
			sim.ErrConfiguration, d.Type)
	}
	for name, val := range d.Params {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return fmt.Errorf("%w: params.%s must be a finite number, got %f", sim.ErrConfiguration, name, val)
		}
		if val < 0 {
			return fmt.Errorf("%w: params.%s must be non-negative, got %f", sim.ErrConfiguration, name, val)
		}
	}
	if d.CV != nil {
		if err := validateFinitePositive("cv", *d.CV); err != nil {
			return err
		}
		if d.Type == DistWeibull && (*d.CV < 0.01 || *d.CV > 10.4) {
			return fmt.Errorf("%w: weibull cv must be in [0.01, 10.4], got %f", sim.ErrConfiguration, *d.CV)
		}
	}
	switch d.Type {
	case DistUniform:
		if err := requireParam(d.Params, "min", "max"); err != nil {
			return err
		}
		if d.Params["max"] < d.Params["min"] {
			return fmt.Errorf("%w: uniform max %f is below min %f", sim.ErrConfiguration, d.Params["max"], d.Params["min"])
		}
	case DistReplay:
		if len(d.Values) == 0 && d.File == "" {
			return fmt.Errorf("%w: replay distribution requires values or a file", sim.ErrConfiguration)
		}
		for i, v := range d.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: values[%d] must be a non-negative finite number, got %f", sim.ErrConfiguration, i, v)
			}
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %f", sim.ErrConfiguration, name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %f", sim.ErrConfiguration, name, val)
	}
	return nil
}
