package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"portscanner/internal/core/model"
)

// LineReporter 将 "<address>: Port <port> is open" 逐行写入 Writer (通常为 stdout)
// 每行一次写入，多个 worker 并发时行与行之间可以交错，行内不会
type LineReporter struct {
	mu sync.Mutex
	w  io.Writer
}

func NewLineReporter(w io.Writer) *LineReporter {
	return &LineReporter{w: w}
}

func (r *LineReporter) Report(ctx context.Context, result *model.PortResult) error {
	line := result.Line() + "\n"

	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := io.WriteString(r.w, line)
	return err
}

// FileReporter 以追加方式写入 -o 指定的文件
// 文件在第一次写入时打开；打开或写入失败只影响当前这一行，下一行会重新尝试
type FileReporter struct {
	Path string
	mu   sync.Mutex
	file *os.File
}

func NewFileReporter(path string) *FileReporter {
	return &FileReporter{Path: path}
}

func (r *FileReporter) Report(ctx context.Context, result *model.PortResult) error {
	line := result.Line() + "\n"

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		f, err := os.OpenFile(r.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open output file: %w", err)
		}
		r.file = f
	}

	if _, err := r.file.WriteString(line); err != nil {
		r.file.Close()
		r.file = nil
		return fmt.Errorf("failed to write output file %s: %w", r.Path, err)
	}
	return nil
}

// Close 关闭输出文件，之后的 Report 会重新打开
func (r *FileReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// CollectReporter 在内存中收集结果，用于扫描结束后的汇总与导出
type CollectReporter struct {
	mu      sync.Mutex
	results []model.PortResult
}

func NewCollectReporter() *CollectReporter {
	return &CollectReporter{}
}

func (r *CollectReporter) Report(ctx context.Context, result *model.PortResult) error {
	r.mu.Lock()
	r.results = append(r.results, *result)
	r.mu.Unlock()
	return nil
}

// Results 返回已收集结果的副本
func (r *CollectReporter) Results() []model.PortResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.PortResult, len(r.results))
	copy(out, r.results)
	return out
}
