package model

import (
	"encoding/json"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortResultLine(t *testing.T) {
	r := PortResult{IP: netip.MustParseAddr("127.0.0.1"), Port: 8080, State: StateOpen}
	assert.Equal(t, "127.0.0.1: Port 8080 is open", r.Line())

	v6 := PortResult{IP: netip.MustParseAddr("::1"), Port: 22, State: StateOpen}
	assert.Equal(t, "::1: Port 22 is open", v6.Line())
}

func TestPortResultRows(t *testing.T) {
	r := PortResult{Target: "localhost", IP: netip.MustParseAddr("127.0.0.1"), Port: 443, State: StateOpen}
	rows := r.Rows()
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"127.0.0.1", "443", "open", "N/A", "localhost"}, rows[0])
	assert.Len(t, r.Headers(), len(rows[0]))
}

func TestProbeStateJSON(t *testing.T) {
	data, err := json.Marshal(PortResult{IP: netip.MustParseAddr("10.0.0.1"), Port: 80, State: StateOpen})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"open"`)
	assert.Contains(t, string(data), `"ip":"10.0.0.1"`)
	assert.Equal(t, "closed|filtered", StateClosedOrFiltered.String())
}

func TestNewTask(t *testing.T) {
	a := NewTask(TaskTypePortScan, "127.0.0.1")
	b := NewTask(TaskTypePortScan, "127.0.0.1")
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.IsMultiTarget())

	a.TargetFile = "targets.txt"
	assert.True(t, a.IsMultiTarget())
}

func TestScanSummaryRows(t *testing.T) {
	s := &ScanSummary{OpenPorts: []PortResult{
		{IP: netip.MustParseAddr("10.0.0.1"), Port: 22, State: StateOpen},
		{IP: netip.MustParseAddr("10.0.0.2"), Port: 80, State: StateOpen},
	}}
	assert.Len(t, s.Rows(), 2)
	assert.Equal(t, PortResult{}.Headers(), s.Headers())
}
