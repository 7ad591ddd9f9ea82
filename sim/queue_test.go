package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWaitQueue_Peek_NonEmpty_ReturnsFront(t *testing.T) {
	// GIVEN a queue with requests [A, B]
	wq := &WaitQueue{}
	reqA := &Request{ID: 1}
	reqB := &Request{ID: 2}
	wq.Enqueue(reqA)
	wq.Enqueue(reqB)

	// WHEN Peek() is called
	got := wq.Peek()

	// THEN it returns the front element without removing it
	if got != reqA {
		t.Errorf("Peek: got request %v, want %v", got.ID, reqA.ID)
	}
	if wq.Len() != 2 {
		t.Errorf("Peek modified queue length: got %d, want 2", wq.Len())
	}
}

func TestWaitQueue_Peek_Empty_ReturnsNil(t *testing.T) {
	wq := &WaitQueue{}
	if got := wq.Peek(); got != nil {
		t.Errorf("Peek on empty queue: got %v, want nil", got)
	}
}

func TestWaitQueue_Dequeue_PreservesFIFO(t *testing.T) {
	// GIVEN a queue with requests enqueued in order 1..5
	wq := &WaitQueue{}
	for i := uint64(1); i <= 5; i++ {
		wq.Enqueue(&Request{ID: i})
	}

	// WHEN all requests are dequeued
	var ids []uint64
	for wq.Len() > 0 {
		ids = append(ids, wq.Dequeue().ID)
	}

	// THEN they come out in enqueue order and the queue is empty
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids)
	assert.Nil(t, wq.Dequeue())
}

func TestWaitQueue_Remove_KeepsOrderOfOthers(t *testing.T) {
	// GIVEN a queue [A, B, C]
	wq := &WaitQueue{}
	reqA, reqB, reqC := &Request{ID: 1}, &Request{ID: 2}, &Request{ID: 3}
	wq.Enqueue(reqA)
	wq.Enqueue(reqB)
	wq.Enqueue(reqC)

	// WHEN B is removed
	removed := wq.Remove(reqB)

	// THEN A and C remain in order and a second removal is a no-op
	assert.True(t, removed)
	assert.Equal(t, []*Request{reqA, reqC}, wq.Items())
	assert.False(t, wq.Remove(reqB))
}

func TestWaitQueue_Items_EmptyQueue(t *testing.T) {
	wq := &WaitQueue{}
	if items := wq.Items(); len(items) != 0 {
		t.Errorf("Items on empty queue: got %d elements, want 0", len(items))
	}
}

func TestWaitQueue_Enqueue_NilPanics(t *testing.T) {
	wq := &WaitQueue{}
	assert.Panics(t, func() { wq.Enqueue(nil) })
}

func TestWaitQueue_String_ListsRequests(t *testing.T) {
	wq := &WaitQueue{}
	wq.Enqueue(&Request{ID: 7, State: RequestWaiting})
	assert.Contains(t, wq.String(), "ID: 7")
	assert.Equal(t, "[]", (&WaitQueue{}).String())
}
