package scenario

import (
	"fmt"
	"math"

	"github.com/inference-sim/queueing-sim/sim"
)

// ErlangC holds the steady-state M/M/c measures of a station with Poisson
// arrivals at rate Lambda and c exponential servers at rate Mu each.
type ErlangC struct {
	Lambda  float64 `json:"lambda"`
	Mu      float64 `json:"mu"`
	Servers int     `json:"servers"`

	Rho    float64    `json:"rho"`    // λ / (c·μ)
	Stable bool       `json:"stable"` // ρ < 1
	P0     sim.Metric `json:"p0"`     // probability of an empty system
	PWait  sim.Metric `json:"p_wait"` // probability an arrival waits (Erlang C formula)
	Lq     sim.Metric `json:"lq"`
	Wq     sim.Metric `json:"wq"`
	L      sim.Metric `json:"l"`
	W      sim.Metric `json:"w"`
}

// NewErlangC computes the M/M/c reference values. An unstable station
// (ρ >= 1) has no steady state and all queue measures are undefined.
func NewErlangC(lambda, mu float64, servers int) (ErlangC, error) {
	if err := checkRate("lambda", lambda); err != nil {
		return ErlangC{}, err
	}
	if err := checkRate("mu", mu); err != nil {
		return ErlangC{}, err
	}
	if servers < 1 {
		return ErlangC{}, fmt.Errorf("%w: servers must be >= 1, got %d", sim.ErrConfiguration, servers)
	}

	c := float64(servers)
	a := lambda / mu // offered load
	rho := a / c
	ref := ErlangC{Lambda: lambda, Mu: mu, Servers: servers, Rho: rho, Stable: rho < 1}
	if !ref.Stable {
		return ref, nil
	}

	// sum_{n<c} a^n/n! and a^c/c!, built term by term to avoid factorials.
	sum, term := 0.0, 1.0
	for n := 0; n < servers; n++ {
		sum += term
		term *= a / float64(n+1)
	}
	termC := term

	p0 := 1 / (sum + termC/(1-rho))
	lq := p0 * termC * rho / math.Pow(1-rho, 2)
	wq := lq / lambda
	w := wq + 1/mu

	ref.P0 = sim.Defined(p0)
	ref.PWait = sim.Defined(p0 * termC / (1 - rho))
	ref.Lq = sim.Defined(lq)
	ref.Wq = sim.Defined(wq)
	ref.W = sim.Defined(w)
	ref.L = sim.Defined(lambda * w)
	return ref, nil
}

// references returns the Erlang-C values of every station whose input is a
// Poisson stream: arrivals are exponential and every station up to and
// including it serves exponentially and is stable (Burke's theorem).
// Other stations get nil.
func references(cfg Config) []*ErlangC {
	refs := make([]*ErlangC, len(cfg.Stations))
	if !cfg.Arrival.IsExponential() {
		return refs
	}
	for i, st := range cfg.Stations {
		if !st.Service.IsExponential() {
			break
		}
		ref, err := NewErlangC(cfg.ArrivalRate, st.ServiceRate, st.Servers)
		if err != nil {
			break
		}
		refs[i] = &ref
		if !ref.Stable {
			break
		}
	}
	return refs
}
