package scenario

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/inference-sim/queueing-sim/sim"
)

// StationReport is the outcome of one station, with its Erlang-C reference
// when the station is an M/M/c queue.
type StationReport struct {
	sim.Results
	ServiceRate float64  `json:"service_rate"`
	Service     string   `json:"service_dist"`
	Reference   *ErlangC `json:"erlang_c,omitempty"`
}

// Report is the outcome of one run.
type Report struct {
	RunID            string  `json:"run_id"`
	Name             string  `json:"name"`
	Seed             int64   `json:"seed"`
	Horizon          float64 `json:"horizon"`
	Drain            bool    `json:"drain"`
	Clock            float64 `json:"clock"` // end of the observation window
	EventsDispatched uint64  `json:"events_dispatched"`

	Arrivals    int        `json:"arrivals"`
	Departed    int        `json:"departed"`
	InFlight    int        `json:"in_flight"` // entered but not departed when the run stopped
	MeanSojourn sim.Metric `json:"mean_sojourn"`
	Throughput  sim.Metric `json:"throughput"`

	Stations []StationReport `json:"stations"`
}

// Print writes the human-readable report.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "\n--- Simulation Results: %s ---\n", r.Name)
	fmt.Fprintf(w, "Run ID                              : %s\n", r.RunID)
	fmt.Fprintf(w, "Seed                                : %d\n", r.Seed)
	fmt.Fprintf(w, "Final clock                         : %.4f\n", r.Clock)
	fmt.Fprintf(w, "Entities arrived / departed         : %d / %d (%d in flight)\n", r.Arrivals, r.Departed, r.InFlight)
	if len(r.Stations) > 1 {
		fmt.Fprintf(w, "End-to-end time in system           : %s\n", r.MeanSojourn)
		fmt.Fprintf(w, "End-to-end throughput               : %s\n", r.Throughput)
	}
	for _, st := range r.Stations {
		fmt.Fprintln(w)
		st.Results.Print(w)
		if st.Reference != nil {
			st.Reference.Print(w)
		}
	}
}

// Print writes the analytic values next to the simulated ones.
func (e *ErlangC) Print(w io.Writer) {
	if !e.Stable {
		fmt.Fprintf(w, "M/M/%d reference                     : unstable (rho=%.4f >= 1)\n", e.Servers, e.Rho)
		return
	}
	fmt.Fprintf(w, "M/M/%d reference rho / L / Lq        : %.4f / %s / %s\n", e.Servers, e.Rho, e.L, e.Lq)
	fmt.Fprintf(w, "M/M/%d reference W / Wq / P(wait)    : %s / %s / %s\n", e.Servers, e.W, e.Wq, e.PWait)
}

// WriteJSON writes the report as indented JSON. Undefined metrics are null.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
