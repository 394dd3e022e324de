/*
 * @author: Sun977
 * @date: 2026.10.14
 * @description: Cobra Root Command 定义，根命令即扫描
 */

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"portscanner/internal/config"
	"portscanner/internal/core/options"
	"portscanner/internal/pkg/logger"
)

// cli 一次命令执行的状态
type cli struct {
	cfgFile  string
	logLevel string
	cfg      *config.Config
	cfgPath  string // 实际使用的配置文件，未使用时为空
	opts     *options.PortScanOptions
}

func newRootCmd() *cobra.Command {
	c := &cli{opts: options.NewPortScanOptions()}

	cmd := &cobra.Command{
		Use:   "portscanner [target] [flags]",
		Short: "并发 TCP Connect 端口扫描器",
		Long: `portscanner 对一个或多个目标发起限时 TCP 连接，输出开放的端口。

示例:
  1.扫描单个目标的默认端口 (1-1024)
	portscanner 192.168.1.1
  2.指定端口与并发数
	portscanner 192.168.1.1 -p 22,80,8000-8100 -t 64
  3.从文件读取目标，结果追加到文件
	portscanner -f targets.txt -p all -t 200 -o open.txt
  4.通过 SOCKS5 代理扫描并导出 JSON
	portscanner 10.0.0.5 --proxy socks5://127.0.0.1:1080 --oj result.json
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		// PersistentPreRunE: 全局初始化逻辑，确保所有子命令都能使用配置与日志
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				c.opts.Target = args[0]
			}
			// 没有目标时只打印帮助
			if c.opts.Target == "" && c.opts.TargetFile == "" {
				return cmd.Help()
			}
			return c.runScan(cmd)
		},
	}

	pflags := cmd.PersistentFlags()
	pflags.StringVar(&c.cfgFile, "config", "", "配置文件路径 (默认: ./configs/config.yaml)")
	pflags.StringVar(&c.logLevel, "log-level", "", "日志级别 (debug, info, warn, error)")

	c.opts.AddFlags(cmd.Flags())
	cmd.Flags().SortFlags = false

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func Execute() {
	// 全局 Panic Recovery
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n[FATAL] scanner crashed unexpectedly: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// init 读取配置文件和环境变量，初始化日志
func (c *cli) init(cmd *cobra.Command) error {
	cfg, loader, err := config.LoadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.cfgPath = loader.GetConfigPath()

	// --log-level 优先于配置文件
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		c.cfg.Log.Level = c.logLevel
	}
	return initCLILogger(c.cfg.Log)
}

// initCLILogger 初始化 CLI 模式下的日志
// 日志默认写 stderr，标准输出只留给进度与扫描结果
func initCLILogger(cfg *config.LogConfig) error {
	switch cfg.Level {
	case "debug", "trace":
		pterm.EnableDebugMessages()
	default:
		pterm.DisableDebugMessages()
	}

	if _, err := logger.InitLogger(cfg); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	return nil
}

// separator 进度输出的分隔线
func separator(w io.Writer) {
	fmt.Fprintln(w, "--------------------------------------------------")
}
