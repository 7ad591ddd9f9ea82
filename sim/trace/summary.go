package trace

// StationSummary aggregates the records of one station.
type StationSummary struct {
	Arrivals      int
	ServiceStarts int
	ServiceEnds   int
	PeakQueue     int
	PeakBusy      int
	MeanWait      float64 // over ServiceStart records; 0 when none
}

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalRecords int
	Arrivals     int
	Completions  int
	FirstTime    float64
	LastTime     float64
	Stations     map[string]*StationSummary
	StationOrder []string // stations in order of first appearance
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		Stations: make(map[string]*StationSummary),
	}
	if st == nil || len(st.Records) == 0 {
		return summary
	}

	summary.TotalRecords = len(st.Records)
	summary.FirstTime = st.Records[0].Timestamp
	waitSums := make(map[string]float64)

	for _, r := range st.Records {
		s, ok := summary.Stations[r.Station]
		if !ok {
			s = &StationSummary{}
			summary.Stations[r.Station] = s
			summary.StationOrder = append(summary.StationOrder, r.Station)
		}
		switch r.Kind {
		case KindArrival:
			s.Arrivals++
		case KindServiceStart:
			s.ServiceStarts++
			if r.Service != nil {
				waitSums[r.Station] += r.Service.Wait
			}
		case KindServiceEnd:
			s.ServiceEnds++
		}
		s.PeakQueue = max(s.PeakQueue, r.QueueLength)
		s.PeakBusy = max(s.PeakBusy, r.ServersBusy)
		summary.LastTime = max(summary.LastTime, r.Timestamp)
	}

	for name, s := range summary.Stations {
		if s.ServiceStarts > 0 {
			s.MeanWait = waitSums[name] / float64(s.ServiceStarts)
		}
	}
	// entities enter at the first station and leave from the last
	summary.Arrivals = summary.Stations[summary.StationOrder[0]].Arrivals
	summary.Completions = summary.Stations[summary.StationOrder[len(summary.StationOrder)-1]].ServiceEnds
	return summary
}
