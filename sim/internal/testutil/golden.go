// Package testutil provides shared test infrastructure for queueing-sim.
// It holds the golden dataset of hand-computed scenarios and the float
// assertion helpers used by the sim/ and sim/scenario/ test packages.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is a scenario driven by fixed durations, so its metrics can
// be worked out by hand.
type GoldenTestCase struct {
	Name        string          `json:"name"`
	ArrivalGaps []float64       `json:"arrival_gaps"` // replayed, cycling
	Stations    []GoldenStation `json:"stations"`
	Horizon     float64         `json:"horizon"`
	Drain       bool            `json:"drain"`
	MaxEntities int             `json:"max_entities"`
	Metrics     GoldenMetrics   `json:"metrics"`
}

// GoldenStation is one station of a golden scenario.
type GoldenStation struct {
	Name         string    `json:"name"`
	Servers      int       `json:"servers"`
	ServiceTimes []float64 `json:"service_times"` // replayed, cycling
}

// GoldenMetrics represents the expected outcome of a golden test case.
// Nil pointers are metrics expected to be undefined.
type GoldenMetrics struct {
	Clock       float64                `json:"clock"`
	Arrivals    int                    `json:"arrivals"`
	Departed    int                    `json:"departed"`
	InFlight    int                    `json:"in_flight"`
	MeanSojourn *float64               `json:"mean_sojourn"`
	Stations    []GoldenStationMetrics `json:"stations"`
}

// GoldenStationMetrics are the expected results of one station.
type GoldenStationMetrics struct {
	Completed   int      `json:"completed"`
	MaxQueue    int      `json:"max_queue"`
	Utilization *float64 `json:"utilization"`
	L           *float64 `json:"l"`
	Lq          *float64 `json:"lq"`
	W           *float64 `json:"w"`
	Wq          *float64 `json:"wq"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	// Navigate from sim/internal/testutil/ to repo root testdata/
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}

	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertOptionalFloat64 checks a metric that may be undefined. A nil want
// expects defined to be false.
func AssertOptionalFloat64(t *testing.T, name string, want *float64, got float64, defined bool, relTol float64) {
	t.Helper()
	if want == nil {
		if defined {
			t.Errorf("%s: got %v, want undefined", name, got)
		}
		return
	}
	if !defined {
		t.Errorf("%s: got undefined, want %v", name, *want)
		return
	}
	AssertFloat64Equal(t, name, *want, got, relTol)
}
