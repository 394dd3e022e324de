/**
 * 结果上报接口定义
 * @author: Sun977
 * @date: 2026.10.13
 * @description: 开放端口的输出接口，解耦 Console/File/Redis 输出。
 */

package reporter

import (
	"context"
	"errors"

	"portscanner/internal/core/model"
)

// TabularData 是一个可以被渲染为表格的数据接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Reporter 定义结果上报的行为
// 每个开放端口调用一次，实现必须支持多个 worker 并发调用
type Reporter interface {
	Report(ctx context.Context, result *model.PortResult) error
}

// MultiReporter 支持同时向多个目标上报 (e.g., File + Redis)
// 某个目标失败不影响其余目标
type MultiReporter struct {
	reporters []Reporter
}

func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{
		reporters: reporters,
	}
}

func (m *MultiReporter) Report(ctx context.Context, result *model.PortResult) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Report(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
