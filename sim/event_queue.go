package sim

import (
	"container/heap"
	"fmt"
	"math"
)

// queuedEvent pairs an Event with its insertion sequence number and its
// position in the heap (needed for removal on cancellation).
type queuedEvent struct {
	ev    Event
	seq   uint64
	index int
}

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: timestamp → insertion sequence.
type eventHeap []*queuedEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	ti, tj := h[i].ev.Timestamp(), h[j].ev.Timestamp()
	if ti != tj {
		return ti < tj
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *eventHeap) Push(x any) {
	qe := x.(*queuedEvent)
	qe.index = len(*h)
	*h = append(*h, qe)
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// EventQueue holds pending events and returns the earliest one on demand.
// Events with equal timestamps are returned in insertion order, which keeps
// simultaneous arrivals and departures FIFO and runs reproducible.
//
// The queue remembers the timestamp of the last popped event and rejects
// insertions earlier than it, so the dispatch order can never go backwards.
type EventQueue struct {
	events  eventHeap
	bySeq   map[uint64]*queuedEvent
	nextSeq uint64
	now     float64
}

// NewEventQueue creates an empty EventQueue positioned at time zero.
func NewEventQueue() *EventQueue {
	q := &EventQueue{
		events: make(eventHeap, 0),
		bySeq:  make(map[uint64]*queuedEvent),
	}
	heap.Init(&q.events)
	return q
}

// Insert adds an event and returns the sequence number assigned to it.
func (q *EventQueue) Insert(ev Event) (uint64, error) {
	if ev == nil {
		return 0, fmt.Errorf("%w: nil event", ErrOrderingViolation)
	}
	t := ev.Timestamp()
	if math.IsNaN(t) {
		return 0, fmt.Errorf("%w: %T has NaN timestamp", ErrOrderingViolation, ev)
	}
	if t < q.now {
		return 0, fmt.Errorf("%w: %T at %.6f is earlier than current time %.6f", ErrOrderingViolation, ev, t, q.now)
	}
	q.nextSeq++
	qe := &queuedEvent{ev: ev, seq: q.nextSeq}
	heap.Push(&q.events, qe)
	q.bySeq[qe.seq] = qe
	return qe.seq, nil
}

// PopEarliest removes and returns the event with minimal (timestamp, sequence).
func (q *EventQueue) PopEarliest() (Event, error) {
	if q.events.Len() == 0 {
		return nil, ErrEmptyQueue
	}
	qe := heap.Pop(&q.events).(*queuedEvent)
	delete(q.bySeq, qe.seq)
	q.now = qe.ev.Timestamp()
	return qe.ev, nil
}

// Peek returns the next event without removing it.
// Returns nil if the queue is empty.
func (q *EventQueue) Peek() Event {
	if q.events.Len() == 0 {
		return nil
	}
	return q.events[0].ev
}

// Remove deletes the pending event with the given sequence number.
// Returns false if no such event is pending.
func (q *EventQueue) Remove(seq uint64) bool {
	qe, ok := q.bySeq[seq]
	if !ok {
		return false
	}
	heap.Remove(&q.events, qe.index)
	delete(q.bySeq, seq)
	return true
}

// IsEmpty reports whether no events are pending.
func (q *EventQueue) IsEmpty() bool {
	return q.events.Len() == 0
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return q.events.Len()
}

// Now returns the timestamp of the most recently popped event.
func (q *EventQueue) Now() float64 {
	return q.now
}

// advanceTo moves the insertion floor forward without popping. Used when a
// bounded run stops at its horizon.
func (q *EventQueue) advanceTo(t float64) {
	if t > q.now {
		q.now = t
	}
}
