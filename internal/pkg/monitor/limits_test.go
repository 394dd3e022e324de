package monitor

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFDLimitAvailable(t *testing.T) {
	l := &FDLimit{Soft: 1024, Open: 10}
	assert.Equal(t, int64(1024-10-fdReserve), l.Available())

	l = &FDLimit{Soft: 8, Open: 10}
	assert.Zero(t, l.Available())
}

func TestGetFDLimit(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("rlimit is read from /proc")
	}
	l, err := GetFDLimit(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, l.Soft)
	assert.GreaterOrEqual(t, l.Hard, l.Soft)
}

func TestCheckWorkerBudget(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("rlimit is read from /proc")
	}
	assert.True(t, CheckWorkerBudget(context.Background(), 1))
	assert.False(t, CheckWorkerBudget(context.Background(), 1<<30))
}

func TestGetHostInfo(t *testing.T) {
	info := GetHostInfo(context.Background())
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.Equal(t, runtime.GOARCH, info.Arch)
}
