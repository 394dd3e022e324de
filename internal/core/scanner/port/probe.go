package port

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"portscanner/internal/core/lib/network/dialer"
	"portscanner/internal/core/model"
	"portscanner/internal/pkg/logger"
)

// DefaultTimeout 单次连接的超时时间
const DefaultTimeout = time.Second

// Prober 对单个 (地址, 端口) 做一次探测
type Prober interface {
	Probe(ctx context.Context, ip netip.Addr, port uint16) model.PortResult
}

// TCPProber TCP Connect 探测
// 握手在超时前完成即为 open，连接立即关闭；其余情况一律 closed|filtered
type TCPProber struct {
	dialer  dialer.Dialer
	timeout time.Duration
}

// NewTCPProber d 为 nil 时使用全局拨号器，timeout <= 0 时使用 DefaultTimeout
func NewTCPProber(d dialer.Dialer, timeout time.Duration) *TCPProber {
	if d == nil {
		d = dialer.Get()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &TCPProber{dialer: d, timeout: timeout}
}

func (p *TCPProber) Probe(ctx context.Context, ip netip.Addr, port uint16) model.PortResult {
	address := netip.AddrPortFrom(ip, port).String()
	result := model.PortResult{
		IP:    ip,
		Port:  port,
		State: model.StateClosedOrFiltered,
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", address)
	result.Time = time.Now()
	if err != nil {
		logger.LogProbeFailure(address, classifyDialError(err), err)
		return result
	}
	conn.Close()

	result.State = model.StateOpen
	result.Latency = result.Time.Sub(start)
	return result
}

// classifyDialError 失败原因只用于日志，不进入结果
func classifyDialError(err error) string {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return "refused"
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return "timeout"
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return "timeout"
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return "unreachable"
	}
	return "error"
}
