package port

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portscanner/internal/core/model"
	"portscanner/internal/core/reporter"
)

// countingProber 记录每个 (地址, 端口) 被探测的次数，openPorts 中的端口返回 open
type countingProber struct {
	mu        sync.Mutex
	calls     map[netip.AddrPort]int
	openPorts map[uint16]bool
}

func newCountingProber(open ...uint16) *countingProber {
	p := &countingProber{calls: make(map[netip.AddrPort]int), openPorts: make(map[uint16]bool)}
	for _, o := range open {
		p.openPorts[o] = true
	}
	return p
}

func (p *countingProber) Probe(_ context.Context, ip netip.Addr, port uint16) model.PortResult {
	p.mu.Lock()
	p.calls[netip.AddrPortFrom(ip, port)]++
	p.mu.Unlock()

	state := model.StateClosedOrFiltered
	if p.openPorts[port] {
		state = model.StateOpen
	}
	return model.PortResult{IP: ip, Port: port, State: state, Time: time.Now()}
}

func (p *countingProber) count(ip netip.Addr, port uint16) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[netip.AddrPortFrom(ip, port)]
}

func (p *countingProber) total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

func newTask(target string, ports []uint16, workers int) *model.Task {
	task := model.NewTask(model.TaskTypePortScan, target)
	task.Ports = ports
	task.Concurrency = workers
	task.Timeout = time.Second
	return task
}

func TestScanExactlyOnce(t *testing.T) {
	ports := portRange(1, 3000)
	for _, workers := range []int{1, 4, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			prober := newCountingProber()
			s := NewPortScanner(prober, nil)

			summary, err := s.Scan(context.Background(), newTask("10.0.0.1", ports, workers))
			require.NoError(t, err)

			ip := netip.MustParseAddr("10.0.0.1")
			for _, p := range ports {
				if c := prober.count(ip, p); c != 1 {
					t.Fatalf("port %d probed %d times", p, c)
				}
			}
			assert.Equal(t, len(ports), prober.total())
			assert.Equal(t, int64(len(ports)), summary.PortsProbed)
			assert.Equal(t, 1, summary.Targets)
			assert.Empty(t, summary.OpenPorts)
		})
	}
}

func TestScanMoreWorkersThanPorts(t *testing.T) {
	prober := newCountingProber(443)
	var buf bytes.Buffer
	s := NewPortScanner(prober, reporter.NewLineReporter(&buf))

	summary, err := s.Scan(context.Background(), newTask("192.0.2.7", []uint16{80, 443}, 32))
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.PortsProbed)
	assert.Equal(t, "192.0.2.7: Port 443 is open\n", buf.String())
}

func TestScanEmptyPortSequence(t *testing.T) {
	prober := newCountingProber()
	summary, err := NewPortScanner(prober, nil).Scan(context.Background(), newTask("127.0.0.1", nil, 4))
	require.NoError(t, err)
	assert.Zero(t, summary.PortsProbed)
	assert.Zero(t, prober.total())
}

// 127.0.0.1 上监听一个端口，其余端口刚释放，4 个 worker，只输出一行
func TestScanLoopbackEndToEnd(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	openPort := uint16(l.Addr().(*net.TCPAddr).Port)

	ports := []uint16{openPort}
	for i := 0; i < 8; i++ {
		ports = append(ports, closedPort(t))
	}

	var buf bytes.Buffer
	collect := reporter.NewCollectReporter()
	s := NewPortScanner(NewTCPProber(nil, time.Second), reporter.NewMultiReporter(reporter.NewLineReporter(&buf), collect))

	summary, err := s.Scan(context.Background(), newTask("127.0.0.1", ports, 4))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("127.0.0.1: Port %d is open\n", openPort), buf.String())
	require.Len(t, summary.OpenPorts, 1)
	assert.Equal(t, "127.0.0.1", summary.OpenPorts[0].Target)
	assert.Len(t, collect.Results(), 1)
	assert.Equal(t, int64(len(ports)), summary.PortsProbed)
	assert.False(t, summary.EndTime.Before(summary.StartTime))
}

func TestScanPreResolvedIP(t *testing.T) {
	prober := newCountingProber(22)
	task := newTask("myhost.internal", []uint16{22}, 1)
	task.IP = netip.MustParseAddr("10.9.8.7")

	summary, err := NewPortScanner(prober, nil).Scan(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, summary.OpenPorts, 1)
	assert.Equal(t, "10.9.8.7: Port 22 is open", summary.OpenPorts[0].Line())
	assert.Equal(t, "myhost.internal", summary.OpenPorts[0].Target)
}

func TestScanInvalidInput(t *testing.T) {
	s := NewPortScanner(newCountingProber(), nil)

	_, err := s.Scan(context.Background(), newTask("127.0.0.1", []uint16{80}, 0))
	assert.Error(t, err)

	_, err = s.Scan(context.Background(), newTask("10.0.0.0/24", []uint16{80}, 4))
	assert.Error(t, err)

	task := newTask("", []uint16{80}, 4)
	task.TargetFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = s.Scan(context.Background(), task)
	assert.Error(t, err)
}

func TestScanMultiTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	content := "127.0.0.1\n\n10.0.0.0/24\n192.0.2.1\n::1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	prober := newCountingProber(80)
	var buf bytes.Buffer
	s := NewPortScanner(prober, reporter.NewLineReporter(&buf))

	task := newTask("", []uint16{79, 80, 81}, 4)
	task.TargetFile = path
	summary, err := s.Scan(context.Background(), task)
	require.NoError(t, err)

	// 非法行只影响自己，合法目标全部扫描
	assert.Equal(t, 3, summary.Targets)
	assert.Equal(t, 2, summary.FailedTargets)
	require.Len(t, summary.Failures, 2)
	failed := []int{summary.Failures[0].Line, summary.Failures[1].Line}
	sort.Ints(failed)
	assert.Equal(t, []int{2, 3}, failed)

	for _, target := range []string{"127.0.0.1", "192.0.2.1", "::1"} {
		ip := netip.MustParseAddr(target)
		for _, p := range task.Ports {
			assert.Equal(t, 1, prober.count(ip, p), "%s:%d", target, p)
		}
	}
	assert.Equal(t, int64(9), summary.PortsProbed)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{
		"127.0.0.1: Port 80 is open",
		"192.0.2.1: Port 80 is open",
		"::1: Port 80 is open",
	}, lines)
}

// 同一目标在文件中出现两次时各自独立扫描
func TestScanMultiTargetDuplicateLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.txt")
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.5\n10.0.0.5\n"), 0644))

	prober := newCountingProber()
	task := newTask("", []uint16{1, 2, 3}, 2)
	task.TargetFile = path
	summary, err := NewPortScanner(prober, nil).Scan(context.Background(), task)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Targets)
	assert.Equal(t, 2, prober.count(netip.MustParseAddr("10.0.0.5"), 1))
}

type brokenReporter struct {
	mu    sync.Mutex
	calls int
}

func (r *brokenReporter) Report(context.Context, *model.PortResult) error {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return errors.New("disk full")
}

func TestScanReporterFailureDoesNotStopScan(t *testing.T) {
	prober := newCountingProber(1, 2, 3)
	rep := &brokenReporter{}

	summary, err := NewPortScanner(prober, rep).Scan(context.Background(), newTask("10.0.0.1", portRange(1, 100), 4))
	require.NoError(t, err)
	assert.Equal(t, 3, rep.calls)
	assert.Len(t, summary.OpenPorts, 3)
	assert.Equal(t, int64(100), summary.PortsProbed)
}

func TestPortScannerRun(t *testing.T) {
	s := NewPortScanner(newCountingProber(8080), nil)
	assert.Equal(t, model.TaskTypePortScan, s.Name())

	task := newTask("10.0.0.1", []uint16{8080}, 1)
	results, err := s.Run(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, task.ID, results[0].TaskID)
	assert.Equal(t, model.TaskStatusCompleted, results[0].Status)
	summary, ok := results[0].Data.(*model.ScanSummary)
	require.True(t, ok)
	assert.Len(t, summary.OpenPorts, 1)

	results, err = s.Run(context.Background(), newTask("", []uint16{80}, 1))
	assert.Error(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, model.TaskStatusFailed, results[0].Status)
	assert.NotEmpty(t, results[0].Error)
}
