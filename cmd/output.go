package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/inference-sim/queueing-sim/sim/trace"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printTraceSummary prints record counts per station after the event table.
func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "\n--- Trace Summary ---")
	fmt.Fprintf(w, "Records: %d, entered: %d, left: %d, span: [%.4f, %.4f]\n",
		s.TotalRecords, s.Arrivals, s.Completions, s.FirstTime, s.LastTime)
	for _, name := range s.StationOrder {
		st := s.Stations[name]
		fmt.Fprintf(w, "%-16s arrivals=%d starts=%d ends=%d peak_queue=%d peak_busy=%d mean_wait=%.4f\n",
			name, st.Arrivals, st.ServiceStarts, st.ServiceEnds, st.PeakQueue, st.PeakBusy, st.MeanWait)
	}
}

// printPresets lists presets with their main parameters.
func printPresets(w io.Writer, p *Presets) {
	for _, name := range p.Names() {
		preset := p.Scenarios[name]
		cfg := preset.Config.WithDefaults()
		stations := make([]string, len(cfg.Stations))
		for i, st := range cfg.Stations {
			stations[i] = fmt.Sprintf("%s(c=%d, mu=%g)", st.Name, st.Servers, st.ServiceRate)
		}
		policy := "hard horizon"
		if preset.Drain {
			policy = "drain"
		}
		fmt.Fprintf(w, "%-10s lambda=%g %s horizon=%g (%s)\n", name, cfg.ArrivalRate,
			strings.Join(stations, " -> "), cfg.Horizon, policy)
		if preset.Description != "" {
			fmt.Fprintf(w, "%-10s %s\n", "", preset.Description)
		}
	}
}
