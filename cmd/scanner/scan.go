package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"portscanner/internal/config"
	"portscanner/internal/core/lib/network/dialer"
	"portscanner/internal/core/model"
	"portscanner/internal/core/reporter"
	"portscanner/internal/core/runner"
	"portscanner/internal/core/scanner/port"
	"portscanner/internal/pkg/logger"
	"portscanner/internal/pkg/monitor"
)

// runScan 参数校验 -> 构建任务与输出 -> 执行 -> 导出
func (c *cli) runScan(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	stdout := cmd.OutOrStdout()
	opts := c.opts

	opts.ApplyConfig(c.cfg, cmd.Flags())
	if err := opts.Validate(); err != nil {
		return err
	}

	d, err := dialer.New(opts.Proxy, opts.Timeout)
	if err != nil {
		return err
	}
	dialer.SetGlobalDialer(d)

	task, err := opts.ToTask(ctx)
	if err != nil {
		return err
	}

	// 以下为运行期错误，不再打印用法
	cmd.SilenceUsage = true

	sink, closeSink, err := buildReporter(ctx, opts.Output.OutputFile, opts.Output.RedisURL, opts.Output.RedisChannel, stdout)
	if err != nil {
		return err
	}
	defer closeSink()

	if !task.IsMultiTarget() {
		monitor.CheckWorkerBudget(ctx, task.Concurrency)
	}

	if c.cfgPath != "" {
		stop := watchConfig(c.cfgPath, c.cfg)
		defer stop()
	}

	scanTarget := task.Target
	if task.IsMultiTarget() {
		scanTarget = task.TargetFile
	}
	separator(stdout)
	fmt.Fprintf(stdout, "Scanning Target: %s\n", scanTarget)
	fmt.Fprintf(stdout, "Threads: %d\n", task.Concurrency)
	fmt.Fprintf(stdout, "Time Started: %s\n", logger.FormatTimestamp(time.Now()))

	manager := runner.NewRunnerManager(port.NewPortScanner(port.NewTCPProber(d, task.Timeout), sink))
	results, err := manager.Execute(ctx, task)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Time finished: %s\n", logger.FormatTimestamp(time.Now()))

	var summary *model.ScanSummary
	if len(results) > 0 {
		summary, _ = results[0].Data.(*model.ScanSummary)
	}
	if summary == nil {
		return nil
	}
	logger.LogScanOperation(task.ID, string(task.Type), scanTarget, "completed",
		fmt.Sprintf("%d open", len(summary.OpenPorts)), summary.Duration().Milliseconds(),
		map[string]interface{}{"targets": summary.Targets, "failed_targets": summary.FailedTargets, "probes": summary.PortsProbed})

	if opts.Output.Summary {
		if err := reporter.NewConsoleReporter().PrintSummary(summary); err != nil {
			logger.Errorf("failed to print summary: %v", err)
		}
	}
	exportResults(stdout, opts.Output.OutputJson, opts.Output.OutputCsv, opts.Output.OutputYaml, summary)
	return nil
}

// buildReporter 组装结果输出: -o 文件或标准输出，可选 Redis 推送
func buildReporter(ctx context.Context, outputFile, redisURL, redisChannel string, stdout io.Writer) (reporter.Reporter, func(), error) {
	var closers []func() error
	var reporters []reporter.Reporter

	if outputFile != "" {
		fr := reporter.NewFileReporter(outputFile)
		reporters = append(reporters, fr)
		closers = append(closers, fr.Close)
	} else {
		reporters = append(reporters, reporter.NewLineReporter(stdout))
	}

	if redisURL != "" {
		rr, err := reporter.NewRedisReporter(redisURL, redisChannel)
		if err != nil {
			return nil, nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		err = rr.Ping(pingCtx)
		cancel()
		if err != nil {
			// Redis 只是附加输出，不可达时照常扫描
			pterm.Warning.WithWriter(os.Stderr).Printfln("redis publishing disabled: %v", err)
			_ = rr.Close()
		} else {
			reporters = append(reporters, rr)
			closers = append(closers, rr.Close)
		}
	}

	closeAll := func() {
		for _, fn := range closers {
			if err := fn(); err != nil {
				logger.Errorf("failed to close output: %v", err)
			}
		}
	}

	if len(reporters) == 1 {
		return reporters[0], closeAll, nil
	}
	return reporter.NewMultiReporter(reporters...), closeAll, nil
}

// exportResults 扫描结束后的文件导出，失败只记录日志
func exportResults(w io.Writer, jsonPath, csvPath, yamlPath string, summary *model.ScanSummary) {
	exports := []struct {
		path string
		save func(string) error
	}{
		{jsonPath, func(p string) error { return reporter.SaveJsonResult(p, summary) }},
		{csvPath, func(p string) error { return reporter.SaveCsvResult(p, summary) }},
		{yamlPath, func(p string) error { return reporter.SaveYamlResult(p, summary) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.save(e.path); err != nil {
			logger.Errorf("export failed: %v", err)
			continue
		}
		fmt.Fprintf(w, "[+] Results saved to %s\n", e.path)
	}
}

// watchConfig 扫描期间监听配置文件，日志配置变更立即生效
func watchConfig(path string, current *config.Config) func() {
	w, err := config.NewConfigWatcher(path, current)
	if err != nil {
		logger.Debugf("config watcher disabled: %v", err)
		return func() {}
	}
	w.OnError(func(err error) {
		logger.Errorf("config reload: %v", err)
	})
	w.AddCallback(func(oldConfig, newConfig *config.Config) error {
		if logger.LoggerInstance == nil {
			return errors.New("logger not initialized")
		}
		if err := logger.LoggerInstance.UpdateConfig(newConfig.Log); err != nil {
			return err
		}
		logger.LogSystemEvent("config", "reload", "configuration reloaded from "+path, logger.InfoLevel, nil)
		return nil
	})
	if err := w.Start(); err != nil {
		logger.Debugf("config watcher disabled: %v", err)
		return func() {}
	}
	return func() { _ = w.Stop() }
}
