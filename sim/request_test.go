package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, RequestState("waiting"), RequestWaiting)
	assert.Equal(t, RequestState("granted"), RequestGranted)
	assert.Equal(t, RequestState("released"), RequestReleased)
	assert.Equal(t, RequestState("cancelled"), RequestCancelled)
}

func TestRequest_String_IncludesState(t *testing.T) {
	req := Request{ID: 3, State: RequestWaiting}
	s := req.String()
	assert.Contains(t, s, "waiting")
	assert.Contains(t, s, "<nil>")
}

func TestRequest_Wait(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want float64
	}{
		{"waiting has no wait yet", Request{State: RequestWaiting, EnqueueTime: 1}, 0},
		{"cancelled never waited", Request{State: RequestCancelled, EnqueueTime: 1, GrantTime: 9}, 0},
		{"granted", Request{State: RequestGranted, EnqueueTime: 1, GrantTime: 4}, 3},
		{"released", Request{State: RequestReleased, EnqueueTime: 2, GrantTime: 2}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Wait())
		})
	}
}

func TestRequest_Release_WithoutResource_IsMisuse(t *testing.T) {
	req := &Request{ID: 1, State: RequestGranted}
	err := req.Release()
	assert.True(t, errors.Is(err, ErrResourceMisuse))
}
