package workload

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inference-sim/queueing-sim/sim"
)

func floatPtr(v float64) *float64 { return &v }

func TestDistSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    DistSpec
		wantErr string
	}{
		{"zero value is exponential", DistSpec{}, ""},
		{"gamma with cv", DistSpec{Type: DistGamma, CV: floatPtr(2)}, ""},
		{"uniform", DistSpec{Type: DistUniform, Params: map[string]float64{"min": 1, "max": 2}}, ""},
		{"replay values", DistSpec{Type: DistReplay, Values: []float64{1}}, ""},
		{"unknown type", DistSpec{Type: "pareto"}, "unknown distribution type"},
		{"NaN param", DistSpec{Type: DistConstant, Params: map[string]float64{"value": math.NaN()}}, "params.value must be a finite number"},
		{"negative param", DistSpec{Type: DistConstant, Params: map[string]float64{"value": -1}}, "params.value must be non-negative"},
		{"zero cv", DistSpec{Type: DistGamma, CV: floatPtr(0)}, "cv must be positive"},
		{"weibull cv out of range", DistSpec{Type: DistWeibull, CV: floatPtr(20)}, "weibull cv must be in"},
		{"uniform missing max", DistSpec{Type: DistUniform, Params: map[string]float64{"min": 1}}, `parameter "max"`},
		{"uniform inverted", DistSpec{Type: DistUniform, Params: map[string]float64{"min": 3, "max": 1}}, "below min"},
		{"replay empty", DistSpec{Type: DistReplay}, "requires values or a file"},
		{"replay negative", DistSpec{Type: DistReplay, Values: []float64{1, -1}}, "values[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, sim.ErrConfiguration), "got %v", err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDistSpec_String(t *testing.T) {
	assert.Equal(t, "exponential", DistSpec{}.String())
	assert.Equal(t, "gamma(cv=2)", DistSpec{Type: DistGamma, CV: floatPtr(2)}.String())
	assert.Equal(t, "replay", DistSpec{Type: DistReplay}.String())
}

func TestDistSpec_IsExponential(t *testing.T) {
	assert.True(t, DistSpec{}.IsExponential())
	assert.True(t, DistSpec{Type: DistExponential}.IsExponential())
	assert.False(t, DistSpec{Type: DistConstant}.IsExponential())
}
