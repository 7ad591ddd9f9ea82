package trace

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleSink_PrintsEventTable(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleSink(&buf)
	require.NoError(t, writeAll(c, twoEntityRecords()))
	require.NoError(t, c.Close())

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "--- Event Table ---"), "header printed once")
	assert.Contains(t, out, "2,3.00,server,Arrival,1,1,since last arrival 3.0000\n")
	assert.Contains(t, out, "2,5.00,server,ServiceStart,0,1,waited 2.0000\n")
	assert.Contains(t, out, "2,8.00,server,ServiceEnd,0,0,served 3.0000, in system 5.0000\n")
}
