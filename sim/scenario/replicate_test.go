package scenario

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inference-sim/queueing-sim/sim"
)

func TestNewEstimate(t *testing.T) {
	tests := []struct {
		name      string
		values    []sim.Metric
		wantN     int
		wantMean  sim.Metric
		wantSD    sim.Metric
		wantHalfW sim.Metric
	}{
		{
			name:   "empty",
			values: nil,
		},
		{
			name:     "single value has no interval",
			values:   []sim.Metric{sim.Defined(3)},
			wantN:    1,
			wantMean: sim.Defined(3),
		},
		{
			name:   "undefined values are skipped",
			values: []sim.Metric{sim.Undefined, sim.Undefined},
		},
		{
			// sd = sqrt(2.5), t(0.975, 4) = 2.776445
			name:      "five values",
			values:    []sim.Metric{sim.Defined(1), sim.Defined(2), sim.Undefined, sim.Defined(3), sim.Defined(4), sim.Defined(5)},
			wantN:     5,
			wantMean:  sim.Defined(3),
			wantSD:    sim.Defined(1.5811388),
			wantHalfW: sim.Defined(1.9632),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := newEstimate(tc.values)

			assert.Equal(t, tc.wantN, e.N)
			assert.Equal(t, tc.wantMean.Defined, e.Mean.Defined)
			assert.InDelta(t, tc.wantMean.Value, e.Mean.Value, 1e-9)
			assert.Equal(t, tc.wantSD.Defined, e.StdDev.Defined)
			assert.InDelta(t, tc.wantSD.Value, e.StdDev.Value, 1e-6)
			assert.Equal(t, tc.wantHalfW.Defined, e.HalfWidth.Defined)
			assert.InDelta(t, tc.wantHalfW.Value, e.HalfWidth.Value, 1e-3)
		})
	}
}

func TestEstimate_String(t *testing.T) {
	assert.Equal(t, "n/a", Estimate{}.String())
	assert.Equal(t, "3.0000", Estimate{N: 1, Mean: sim.Defined(3)}.String())
	assert.Equal(t, "3.0000 ± 0.5000", Estimate{N: 4, Mean: sim.Defined(3), HalfWidth: sim.Defined(0.5)}.String())
}

func TestReplicate_ConsecutiveSeeds(t *testing.T) {
	// GIVEN a short M/M/1 scenario
	cfg := mm1(100)
	cfg.Horizon = 100

	// WHEN replicated 5 times
	summary, err := Replicate(cfg, 5)
	require.NoError(t, err)

	// THEN each run used the next seed and got its own run ID
	assert.Equal(t, []int64{100, 101, 102, 103, 104}, summary.Seeds)
	require.Len(t, summary.Runs, 5)
	ids := map[string]bool{}
	for i, r := range summary.Runs {
		assert.Equal(t, summary.Seeds[i], r.Seed)
		ids[r.RunID] = true
	}
	assert.Len(t, ids, 5)

	// AND the estimates cover every run with an interval
	require.Len(t, summary.Stations, 1)
	st := summary.Stations[0]
	assert.Equal(t, "teller", st.Name)
	assert.Equal(t, 5, st.Utilization.N)
	assert.True(t, st.W.HalfWidth.Defined)
	assert.NotNil(t, st.Reference)
	assert.Equal(t, ConfidenceLevel, summary.Confidence)
}

func TestReplicate_MatchesIndividualRuns(t *testing.T) {
	// GIVEN a replication study
	cfg := mm1(7)
	cfg.Horizon = 80
	summary, err := Replicate(cfg, 3)
	require.NoError(t, err)

	// WHEN the second replication is run on its own
	single := cfg
	single.Seed = 8
	report, err := Run(single)
	require.NoError(t, err)

	// THEN it reproduces the replication's results
	assert.Equal(t, report.Stations, summary.Runs[1].Stations)
}

func TestReplicate_InvalidInput(t *testing.T) {
	_, err := Replicate(mm1(1), 0)
	assert.True(t, errors.Is(err, sim.ErrConfiguration))

	bad := mm1(1)
	bad.ArrivalRate = -1
	_, err = Replicate(bad, 3)
	assert.True(t, errors.Is(err, sim.ErrConfiguration))
}

func TestReplicationSummary_Print(t *testing.T) {
	cfg := mm1(1)
	cfg.Horizon = 50
	summary, err := Replicate(cfg, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	summary.Print(&buf)

	out := buf.String()
	assert.Contains(t, out, "--- Replications: bank-1 (2 runs, 95% CI) ---")
	assert.Contains(t, out, "=== teller ===")
	assert.Contains(t, out, "Average wait in queue (Wq)")
	assert.Contains(t, out, "M/M/1 reference")
}
