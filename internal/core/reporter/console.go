package reporter

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"portscanner/internal/core/model"
)

// ConsoleReporter 扫描结束后的控制台汇总 (--summary)
// 逐行结果由 LineReporter 负责，这里只负责表格
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// PrintSummary 打印汇总信息与开放端口表格
func (r *ConsoleReporter) PrintSummary(summary *model.ScanSummary) error {
	if summary == nil {
		return nil
	}

	pterm.Info.Printfln("Targets: %d scanned, %d failed | Probes: %d | Open: %d | Elapsed: %s",
		summary.Targets, summary.FailedTargets, summary.PortsProbed, len(summary.OpenPorts), summary.Duration().Round(time.Millisecond))

	for _, f := range summary.Failures {
		pterm.Warning.Printfln("line %d %q: %s", f.Line, f.Target, f.Error)
	}

	if len(summary.OpenPorts) == 0 {
		pterm.Warning.Println("No open ports found.")
		return nil
	}

	table, err := r.Render(summary)
	if err != nil {
		return err
	}
	pterm.Println(table)
	return nil
}

// Render 将表格数据渲染为字符串
func (r *ConsoleReporter) Render(data TabularData) (string, error) {
	rows := data.Rows()
	if len(rows) == 0 {
		return "", nil
	}

	tableData := pterm.TableData{data.Headers()}
	tableData = append(tableData, rows...)

	out, err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return out, nil
}
