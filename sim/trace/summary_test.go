package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_NilTrace_ReturnsZeroSummary(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.TotalRecords)
	assert.NotNil(t, summary.Stations)
	assert.Empty(t, summary.StationOrder)
}

func TestSummarize_SingleStation(t *testing.T) {
	// GIVEN the two-entity trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	require.NoError(t, writeAll(st, twoEntityRecords()))

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts, peaks and mean wait match the stream
	assert.Equal(t, 6, summary.TotalRecords)
	assert.Equal(t, 2, summary.Arrivals)
	assert.Equal(t, 2, summary.Completions)
	assert.Equal(t, 8.0, summary.LastTime)
	require.Contains(t, summary.Stations, "server")
	s := summary.Stations["server"]
	assert.Equal(t, 2, s.Arrivals)
	assert.Equal(t, 2, s.ServiceStarts)
	assert.Equal(t, 2, s.ServiceEnds)
	assert.Equal(t, 1, s.PeakQueue)
	assert.Equal(t, 1, s.PeakBusy)
	assert.InDelta(t, 1.0, s.MeanWait, 1e-12)
}

func TestSummarize_Tandem_UsesFirstAndLastStation(t *testing.T) {
	// GIVEN one entity visiting two stations, and a second still at the first
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelEvents})
	records := []Record{
		{Station: "ticket_office", EntityID: 1, Kind: KindArrival, Timestamp: 0},
		{Station: "ticket_office", EntityID: 1, Kind: KindServiceStart, Timestamp: 0, ServersBusy: 1, Service: &ServiceTimes{}},
		{Station: "ticket_office", EntityID: 2, Kind: KindArrival, Timestamp: 1, QueueLength: 1, ServersBusy: 1},
		{Station: "ticket_office", EntityID: 1, Kind: KindServiceEnd, Timestamp: 2, ServersBusy: 1, Service: &ServiceTimes{End: 2, Service: 2, Sojourn: 2}},
		{Station: "gate", EntityID: 1, Kind: KindArrival, Timestamp: 2},
		{Station: "gate", EntityID: 1, Kind: KindServiceStart, Timestamp: 2, ServersBusy: 1, Service: &ServiceTimes{Start: 2}},
		{Station: "gate", EntityID: 1, Kind: KindServiceEnd, Timestamp: 3, Service: &ServiceTimes{Start: 2, End: 3, Service: 1, Sojourn: 1}},
	}
	require.NoError(t, writeAll(st, records))

	// WHEN summarized
	summary := Summarize(st)

	// THEN arrivals come from the first station and completions from the last
	assert.Equal(t, []string{"ticket_office", "gate"}, summary.StationOrder)
	assert.Equal(t, 2, summary.Arrivals)
	assert.Equal(t, 1, summary.Completions)
	assert.Equal(t, 1, summary.Stations["ticket_office"].PeakQueue)
}
