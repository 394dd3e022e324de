package monitor

import (
	"context"
	"fmt"
	"math"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/process"

	"portscanner/internal/pkg/logger"
)

// fdReserve 预留给日志、输出文件、标准流等的描述符数量
const fdReserve = 16

// FDLimit 当前进程的文件描述符限制
type FDLimit struct {
	Soft uint64
	Hard uint64
	Open int32 // 已打开的描述符数
}

// Available 还可以打开的描述符数量 (扣除预留)
func (l *FDLimit) Available() int64 {
	if l.Soft > math.MaxInt64 {
		return math.MaxInt64
	}
	avail := int64(l.Soft) - int64(l.Open) - fdReserve
	if avail < 0 {
		return 0
	}
	return avail
}

// GetFDLimit 读取当前进程的 RLIMIT_NOFILE
// 非 Linux 平台 gopsutil 可能不支持，返回错误
func GetFDLimit(ctx context.Context) (*FDLimit, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect current process: %w", err)
	}

	limits, err := p.RlimitWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rlimit: %w", err)
	}

	for _, l := range limits {
		if l.Resource != process.RLIMIT_NOFILE {
			continue
		}
		fdl := &FDLimit{Soft: l.Soft, Hard: l.Hard}
		if n, err := p.NumFDsWithContext(ctx); err == nil {
			fdl.Open = n
		}
		return fdl, nil
	}
	return nil, fmt.Errorf("RLIMIT_NOFILE not reported")
}

// CheckWorkerBudget 检查并发 worker 数是否可能耗尽文件描述符
// 每个 worker 同一时刻最多持有一个 socket。超出只告警，不阻止扫描。
func CheckWorkerBudget(ctx context.Context, workers int) bool {
	limit, err := GetFDLimit(ctx)
	if err != nil {
		logger.Debugf("fd limit check skipped: %v", err)
		return true
	}

	if int64(workers) <= limit.Available() {
		return true
	}

	logger.LogSystemEvent("monitor", "fd_limit",
		fmt.Sprintf("%d workers may exceed the open file limit (soft=%d, open=%d)", workers, limit.Soft, limit.Open),
		logger.WarnLevel, map[string]interface{}{"workers": workers, "soft_limit": limit.Soft})
	return false
}

// HostInfo 主机静态信息，用于 version 输出
type HostInfo struct {
	Hostname string
	OS       string
	Platform string
	Kernel   string
	Arch     string
}

// GetHostInfo 获取主机信息
func GetHostInfo(ctx context.Context) *HostInfo {
	info := &HostInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}

	h, err := host.InfoWithContext(ctx)
	if err != nil {
		logger.LogSystemEvent("monitor", "host_info", "Failed to get host info: "+err.Error(), logger.DebugLevel, nil)
		return info
	}
	info.Hostname = h.Hostname
	info.Platform = h.Platform + " " + h.PlatformVersion
	info.Kernel = h.KernelVersion
	return info
}
