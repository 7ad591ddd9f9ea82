// Tracks time-weighted occupancy and per-entity durations for one resource:
// area under the queue-length and system-occupancy curves, busy time, waits and sojourns.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
)

// Metric is a derived statistic that may be undefined because its
// denominator (completions or elapsed time) is zero.
type Metric struct {
	Value   float64
	Defined bool
}

// Defined wraps a value as a defined metric.
func Defined(v float64) Metric {
	return Metric{Value: v, Defined: true}
}

// Undefined is the distinguished "not available" metric.
var Undefined = Metric{}

// ratio returns num/den, or Undefined when den is zero.
func ratio(num, den float64) Metric {
	if den == 0 {
		return Undefined
	}
	return Defined(num / den)
}

func (m Metric) String() string {
	if !m.Defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", m.Value)
}

// MarshalJSON encodes an undefined metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as an undefined metric.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Undefined
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Defined(v)
	return nil
}

// Statistics accumulates the raw integrals and counters for one resource.
// It observes the resource through ResourceObserver and is told about
// arrivals and completions by the entity processes.
type Statistics struct {
	Name     string
	Capacity int

	LastEventTime float64 // time of the previous observation
	AreaQueue     float64 // ∫ queue length dt
	AreaSystem    float64 // ∫ (queue length + busy units) dt
	BusyTime      float64 // sum of completed service durations
	WaitTime      float64 // sum of completed waits in queue
	SojournTime   float64 // sum of completed times in system

	Arrivals       int
	Completed      int
	MaxQueueLength int
	MaxBusy        int

	waits []float64
}

// NewStatistics creates an empty accumulator for a resource of the given capacity.
func NewStatistics(name string, capacity int) *Statistics {
	return &Statistics{
		Name:     name,
		Capacity: capacity,
		waits:    make([]float64, 0),
	}
}

// ObserveResource integrates the state in effect since the last observation
// and then moves the observation point to now.
func (s *Statistics) ObserveResource(now float64, queueLen, held int) {
	dt := now - s.LastEventTime
	if dt > 0 {
		s.AreaQueue += float64(queueLen) * dt
		s.AreaSystem += float64(queueLen+held) * dt
	}
	s.LastEventTime = now
	s.MaxQueueLength = max(s.MaxQueueLength, queueLen)
	s.MaxBusy = max(s.MaxBusy, held)
}

// RecordArrival counts an entity reaching the resource.
func (s *Statistics) RecordArrival() {
	s.Arrivals++
}

// RecordCompletion accumulates the durations of an entity whose service
// just ended. arrival is the time the entity reached this resource.
func (s *Statistics) RecordCompletion(req *Request, arrival, service, now float64) {
	wait := req.GrantTime - req.EnqueueTime
	s.WaitTime += wait
	s.BusyTime += service
	s.SojournTime += now - arrival
	s.Completed++
	s.waits = append(s.waits, wait)
}

// Results holds the derived metrics of one resource at the end of a run.
type Results struct {
	Name        string  `json:"name"`
	Capacity    int     `json:"capacity"`
	Horizon     float64 `json:"horizon"`
	Arrivals    int     `json:"arrivals"`
	Completed   int     `json:"completed"`
	Utilization Metric  `json:"utilization"` // ρ = busy / (horizon × capacity)
	L           Metric  `json:"l"`           // time-average number in system
	Lq          Metric  `json:"lq"`          // time-average number in queue
	W           Metric  `json:"w"`           // mean time in system
	Wq          Metric  `json:"wq"`          // mean wait in queue
	Throughput  Metric  `json:"throughput"`  // completions per time unit
	WaitP50     Metric  `json:"wait_p50"`
	WaitP90     Metric  `json:"wait_p90"`
	WaitP99     Metric  `json:"wait_p99"`
	MaxQueue    int     `json:"max_queue"`
	MaxBusy     int     `json:"max_busy"`

	AreaQueue   float64 `json:"area_queue"`
	AreaSystem  float64 `json:"area_system"`
	BusyTime    float64 `json:"busy_time"`
	WaitTime    float64 `json:"wait_time"`
	SojournTime float64 `json:"sojourn_time"`
}

// Finalize integrates the tail up to now with the given final state and
// derives the metrics, using now as the horizon.
func (s *Statistics) Finalize(now float64, queueLen, held int) Results {
	s.ObserveResource(now, queueLen, held)

	n := float64(s.Completed)
	res := Results{
		Name:        s.Name,
		Capacity:    s.Capacity,
		Horizon:     now,
		Arrivals:    s.Arrivals,
		Completed:   s.Completed,
		Utilization: ratio(s.BusyTime, now*float64(s.Capacity)),
		L:           ratio(s.AreaSystem, now),
		Lq:          ratio(s.AreaQueue, now),
		W:           ratio(s.SojournTime, n),
		Wq:          ratio(s.WaitTime, n),
		Throughput:  ratio(n, now),
		MaxQueue:    s.MaxQueueLength,
		MaxBusy:     s.MaxBusy,
		AreaQueue:   s.AreaQueue,
		AreaSystem:  s.AreaSystem,
		BusyTime:    s.BusyTime,
		WaitTime:    s.WaitTime,
		SojournTime: s.SojournTime,
	}
	if len(s.waits) > 0 {
		sorted := make([]float64, len(s.waits))
		copy(sorted, s.waits)
		sort.Float64s(sorted)
		res.WaitP50 = Defined(CalculatePercentile(sorted, 50))
		res.WaitP90 = Defined(CalculatePercentile(sorted, 90))
		res.WaitP99 = Defined(CalculatePercentile(sorted, 99))
	}
	return res
}

// Waits returns the recorded per-entity waits in completion order.
func (s *Statistics) Waits() []float64 {
	return s.waits
}

// Print displays the derived metrics at the end of the simulation.
func (r Results) Print(w io.Writer) {
	fmt.Fprintf(w, "=== %s (%d server(s)) ===\n", r.Name, r.Capacity)
	fmt.Fprintf(w, "Simulated time                      : %.4f\n", r.Horizon)
	fmt.Fprintf(w, "Arrivals / Completed                : %d / %d\n", r.Arrivals, r.Completed)
	fmt.Fprintf(w, "Server utilization (rho)            : %s\n", percent(r.Utilization))
	fmt.Fprintf(w, "Average number in system (L)        : %s\n", r.L)
	fmt.Fprintf(w, "Average number in queue (Lq)        : %s\n", r.Lq)
	fmt.Fprintf(w, "Average time in system (W)          : %s\n", r.W)
	fmt.Fprintf(w, "Average wait in queue (Wq)          : %s\n", r.Wq)
	fmt.Fprintf(w, "Wait p50 / p90 / p99                : %s / %s / %s\n", r.WaitP50, r.WaitP90, r.WaitP99)
	fmt.Fprintf(w, "Throughput                          : %s\n", r.Throughput)
	fmt.Fprintf(w, "Peak queue / peak busy              : %d / %d\n", r.MaxQueue, r.MaxBusy)
}

func percent(m Metric) string {
	if !m.Defined || math.IsNaN(m.Value) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", m.Value*100)
}
