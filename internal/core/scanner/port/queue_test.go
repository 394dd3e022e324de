package port

import (
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkQueueLIFO(t *testing.T) {
	q := NewWorkQueue([]uint16{1, 2, 3})
	assert.Equal(t, 3, q.Len())

	for _, want := range []uint16{3, 2, 1} {
		p, ok := q.Claim()
		require.True(t, ok)
		assert.Equal(t, want, p)
	}
	_, ok := q.Claim()
	assert.False(t, ok)
	assert.Zero(t, q.Len())
}

func TestWorkQueueCopiesInput(t *testing.T) {
	ports := []uint16{10, 20}
	q := NewWorkQueue(ports)
	ports[1] = 99

	p, ok := q.Claim()
	require.True(t, ok)
	assert.Equal(t, uint16(20), p)
}

func TestWorkQueueConcurrentClaim(t *testing.T) {
	ports := AllPorts()
	q := NewWorkQueue(ports)

	var mu sync.Mutex
	var claimed []uint16
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var local []uint16
			for {
				p, ok := q.Claim()
				if !ok {
					break
				}
				local = append(local, p)
			}
			mu.Lock()
			claimed = append(claimed, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	// 每个端口恰好被取出一次
	sort.Slice(claimed, func(i, j int) bool { return claimed[i] < claimed[j] })
	assert.Equal(t, ports, claimed)
}
