/**
 * TCP Connect 端口扫描器
 * @author: Sun977
 * @date: 2026.10.13
 * @description: 单目标: 一个队列 + N 个 worker；多目标: 文件中每行一个目标，
 *               每个目标独立的队列与 N 个 worker，所有目标并发执行。
 */

package port

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"portscanner/internal/core/model"
	"portscanner/internal/core/pipeline"
	"portscanner/internal/core/reporter"
	"portscanner/internal/pkg/logger"
)

// PortScanner 实现 runner.Runner
type PortScanner struct {
	prober   Prober
	reporter reporter.Reporter
}

func NewPortScanner(prober Prober, rep reporter.Reporter) *PortScanner {
	return &PortScanner{
		prober:   prober,
		reporter: rep,
	}
}

func (s *PortScanner) Name() model.TaskType {
	return model.TaskTypePortScan
}

// Run 执行扫描任务，Data 为 *model.ScanSummary
func (s *PortScanner) Run(ctx context.Context, task *model.Task) ([]*model.TaskResult, error) {
	startTime := time.Now()
	summary, err := s.Scan(ctx, task)

	result := &model.TaskResult{
		TaskID:    task.ID,
		Status:    model.TaskStatusCompleted,
		Data:      summary,
		StartTime: startTime,
		EndTime:   time.Now(),
	}
	if err != nil {
		result.Status = model.TaskStatusFailed
		result.Error = err.Error()
		return []*model.TaskResult{result}, err
	}
	return []*model.TaskResult{result}, nil
}

// Scan 扫描并阻塞直到所有目标的所有 worker 结束
// 返回错误仅限于扫描无法开始的情况 (目标非法、目标文件无法打开)
func (s *PortScanner) Scan(ctx context.Context, task *model.Task) (*model.ScanSummary, error) {
	if task.Concurrency <= 0 {
		return nil, fmt.Errorf("invalid concurrency: %d", task.Concurrency)
	}

	c := &collector{summary: &model.ScanSummary{StartTime: time.Now()}}

	if task.IsMultiTarget() {
		if err := s.scanFile(ctx, task, c); err != nil {
			return nil, err
		}
	} else {
		ip := task.IP
		if !ip.IsValid() {
			var err error
			if ip, err = pipeline.ParseTarget(ctx, task.Target); err != nil {
				return nil, err
			}
		}
		c.addTarget()
		s.scanTarget(ctx, task, task.Target, ip, c)
	}

	return c.finish(), nil
}

// scanFile 多目标模式
// 每行在自己的 goroutine 中解析一次，解析失败只记录该目标，不影响其他目标
func (s *PortScanner) scanFile(ctx context.Context, task *model.Task, c *collector) error {
	lines, errc, err := pipeline.ReadTargetLines(ctx, task.TargetFile)
	if err != nil {
		return err
	}

	var g errgroup.Group
	for line := range lines {
		line := line
		g.Go(func() error {
			ip, err := pipeline.ParseTarget(ctx, line.Raw)
			if err != nil {
				c.addFailure(line, err)
				logger.LogScanOperation(task.ID, string(task.Type), line.Raw, "failed", err.Error(), 0,
					map[string]interface{}{"line": line.Num})
				return nil
			}
			c.addTarget()
			s.scanTarget(ctx, task, line.Raw, ip, c)
			return nil
		})
	}
	_ = g.Wait()

	if err := <-errc; err != nil {
		// 已读到的目标已经扫描完成，结果有效
		logger.Errorf("target file %s: %v", task.TargetFile, err)
	}
	return nil
}

// scanTarget 一个目标: 新的队列 + N 个 worker，全部结束后返回
func (s *PortScanner) scanTarget(ctx context.Context, task *model.Task, raw string, ip netip.Addr, c *collector) {
	start := time.Now()
	queue := NewWorkQueue(task.Ports)
	logger.LogScanOperation(task.ID, string(task.Type), raw, "running", "", 0,
		map[string]interface{}{"ip": ip.String(), "ports": len(task.Ports), "workers": task.Concurrency})

	var open atomic.Int64
	var g errgroup.Group
	for i := 0; i < task.Concurrency; i++ {
		g.Go(func() error {
			open.Add(s.worker(ctx, queue, raw, ip, c))
			return nil
		})
	}
	_ = g.Wait()

	logger.LogScanOperation(task.ID, string(task.Type), raw, "completed",
		strconv.FormatInt(open.Load(), 10)+" open", time.Since(start).Milliseconds(), nil)
}

// worker 循环取端口并探测，队列为空时退出；返回发现的开放端口数
func (s *PortScanner) worker(ctx context.Context, queue Queue, raw string, ip netip.Addr, c *collector) int64 {
	var open int64
	for {
		port, ok := queue.Claim()
		if !ok {
			return open
		}

		result := s.prober.Probe(ctx, ip, port)
		c.probed.Add(1)
		if result.State != model.StateOpen {
			continue
		}

		open++
		result.Target = raw
		c.addOpen(result)
		if s.reporter == nil {
			continue
		}
		if err := s.reporter.Report(ctx, &result); err != nil {
			// 输出失败只丢这一行，扫描继续
			logger.Errorf("failed to report %q: %v", result.Line(), err)
		}
	}
}

// collector 汇总各 worker 的结果
type collector struct {
	mu      sync.Mutex
	summary *model.ScanSummary
	probed  atomic.Int64
}

func (c *collector) addTarget() {
	c.mu.Lock()
	c.summary.Targets++
	c.mu.Unlock()
}

func (c *collector) addFailure(line pipeline.TargetLine, err error) {
	c.mu.Lock()
	c.summary.FailedTargets++
	c.summary.Failures = append(c.summary.Failures, model.TargetError{Line: line.Num, Target: line.Raw, Error: err.Error()})
	c.mu.Unlock()
}

func (c *collector) addOpen(r model.PortResult) {
	c.mu.Lock()
	c.summary.OpenPorts = append(c.summary.OpenPorts, r)
	c.mu.Unlock()
}

func (c *collector) finish() *model.ScanSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.PortsProbed = c.probed.Load()
	c.summary.EndTime = time.Now()
	return c.summary
}
