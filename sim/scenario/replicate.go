package scenario

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/inference-sim/queueing-sim/sim"
)

// ConfidenceLevel is the coverage of the intervals reported by Replicate.
const ConfidenceLevel = 0.95

// Estimate summarizes one metric across replications. Runs where the metric
// was undefined are left out of N.
type Estimate struct {
	N         int        `json:"n"`
	Mean      sim.Metric `json:"mean"`
	StdDev    sim.Metric `json:"std_dev"`
	HalfWidth sim.Metric `json:"half_width"` // Student-t confidence half-width
}

func (e Estimate) String() string {
	if !e.Mean.Defined {
		return "n/a"
	}
	if !e.HalfWidth.Defined {
		return e.Mean.String()
	}
	return fmt.Sprintf("%.4f ± %.4f", e.Mean.Value, e.HalfWidth.Value)
}

// newEstimate computes mean, sample standard deviation and the confidence
// half-width of the defined values in ms.
func newEstimate(ms []sim.Metric) Estimate {
	values := make([]float64, 0, len(ms))
	for _, m := range ms {
		if m.Defined {
			values = append(values, m.Value)
		}
	}
	e := Estimate{N: len(values)}
	switch {
	case e.N == 0:
		return e
	case e.N == 1:
		e.Mean = sim.Defined(values[0])
		return e
	}
	mean, sd := stat.MeanStdDev(values, nil)
	e.Mean = sim.Defined(mean)
	e.StdDev = sim.Defined(sd)
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(e.N - 1)}.Quantile(1 - (1-ConfidenceLevel)/2)
	e.HalfWidth = sim.Defined(t * sd / math.Sqrt(float64(e.N)))
	return e
}

// StationEstimates holds the per-station estimates of a replication study.
type StationEstimates struct {
	Name        string   `json:"name"`
	Utilization Estimate `json:"utilization"`
	L           Estimate `json:"l"`
	Lq          Estimate `json:"lq"`
	W           Estimate `json:"w"`
	Wq          Estimate `json:"wq"`
	Throughput  Estimate `json:"throughput"`
	Reference   *ErlangC `json:"erlang_c,omitempty"`
}

// ReplicationSummary is the outcome of Replicate.
type ReplicationSummary struct {
	Name         string             `json:"name"`
	Replications int                `json:"replications"`
	Confidence   float64            `json:"confidence"`
	Seeds        []int64            `json:"seeds"`
	MeanSojourn  Estimate           `json:"mean_sojourn"`
	Stations     []StationEstimates `json:"stations"`
	Runs         []*Report          `json:"-"`
}

// Replicate runs n independent replications of cfg. Replication i uses seed
// cfg.Seed+i, so the study is reproducible from the base seed. Options apply
// to every run; a sampler given with WithSampler is shared and should only be
// used when identical runs are wanted.
func Replicate(cfg Config, n int, opts ...Option) (*ReplicationSummary, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: replications must be >= 1, got %d", sim.ErrConfiguration, n)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	summary := &ReplicationSummary{
		Name:         cfg.Name,
		Replications: n,
		Confidence:   ConfidenceLevel,
		Seeds:        make([]int64, n),
		Runs:         make([]*Report, n),
	}
	for i := 0; i < n; i++ {
		rc := cfg
		rc.Seed = cfg.Seed + int64(i)
		report, err := Run(rc, opts...)
		if err != nil {
			return nil, fmt.Errorf("replication %d (seed %d): %w", i, rc.Seed, err)
		}
		summary.Seeds[i] = rc.Seed
		summary.Runs[i] = report
		logrus.Debugf("Replication %d/%d done (run %s)", i+1, n, report.RunID)
	}

	sojourns := make([]sim.Metric, n)
	for i, r := range summary.Runs {
		sojourns[i] = r.MeanSojourn
	}
	summary.MeanSojourn = newEstimate(sojourns)

	summary.Stations = make([]StationEstimates, len(cfg.Stations))
	for s := range cfg.Stations {
		pick := func(f func(StationReport) sim.Metric) Estimate {
			ms := make([]sim.Metric, n)
			for i, r := range summary.Runs {
				ms[i] = f(r.Stations[s])
			}
			return newEstimate(ms)
		}
		first := summary.Runs[0].Stations[s]
		summary.Stations[s] = StationEstimates{
			Name:        first.Name,
			Utilization: pick(func(r StationReport) sim.Metric { return r.Utilization }),
			L:           pick(func(r StationReport) sim.Metric { return r.L }),
			Lq:          pick(func(r StationReport) sim.Metric { return r.Lq }),
			W:           pick(func(r StationReport) sim.Metric { return r.W }),
			Wq:          pick(func(r StationReport) sim.Metric { return r.Wq }),
			Throughput:  pick(func(r StationReport) sim.Metric { return r.Throughput }),
			Reference:   first.Reference,
		}
	}
	return summary, nil
}

// Print writes the replication table.
func (s *ReplicationSummary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n--- Replications: %s (%d runs, %.0f%% CI) ---\n", s.Name, s.Replications, s.Confidence*100)
	if len(s.Stations) > 1 {
		fmt.Fprintf(w, "End-to-end time in system           : %s\n", s.MeanSojourn)
	}
	for _, st := range s.Stations {
		fmt.Fprintf(w, "\n=== %s ===\n", st.Name)
		fmt.Fprintf(w, "Server utilization (rho)            : %s\n", st.Utilization)
		fmt.Fprintf(w, "Average number in system (L)        : %s\n", st.L)
		fmt.Fprintf(w, "Average number in queue (Lq)        : %s\n", st.Lq)
		fmt.Fprintf(w, "Average time in system (W)          : %s\n", st.W)
		fmt.Fprintf(w, "Average wait in queue (Wq)          : %s\n", st.Wq)
		fmt.Fprintf(w, "Throughput                          : %s\n", st.Throughput)
		if st.Reference != nil {
			st.Reference.Print(w)
		}
	}
}
