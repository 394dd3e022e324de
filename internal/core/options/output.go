package options

import (
	"fmt"

	"github.com/spf13/pflag"

	"portscanner/internal/config"
)

// OutputOptions 定义结果输出的通用参数
type OutputOptions struct {
	OutputFile   string // -o, 开放端口逐行追加到文件，替代 stdout
	OutputJson   string // --oj
	OutputCsv    string // --oc
	OutputYaml   string // --oy
	Summary      bool   // --summary, 扫描结束后打印表格
	RedisURL     string // --redis-url
	RedisChannel string // --redis-channel
}

// AddFlags 注册输出相关参数
func (o *OutputOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&o.OutputFile, "output", "o", o.OutputFile, "将开放端口追加写入文件 (替代标准输出)")
	fs.StringVar(&o.OutputJson, "oj", o.OutputJson, "扫描结束后导出 JSON 结果")
	fs.StringVar(&o.OutputCsv, "oc", o.OutputCsv, "扫描结束后导出 CSV 结果")
	fs.StringVar(&o.OutputYaml, "oy", o.OutputYaml, "扫描结束后导出 YAML 结果")
	fs.BoolVar(&o.Summary, "summary", o.Summary, "扫描结束后打印汇总表格")
	fs.StringVar(&o.RedisURL, "redis-url", o.RedisURL, "实时推送开放端口到 Redis (redis://host:6379/0)")
	fs.StringVar(&o.RedisChannel, "redis-channel", o.RedisChannel, "Redis Pub/Sub 频道")
}

// ApplyConfig 未在命令行显式指定的参数取配置文件/环境变量中的值
func (o *OutputOptions) ApplyConfig(cfg *config.OutputConfig, fs *pflag.FlagSet) {
	if cfg == nil {
		return
	}
	if !fs.Changed("redis-url") && cfg.RedisURL != "" {
		o.RedisURL = cfg.RedisURL
	}
	if !fs.Changed("redis-channel") && cfg.RedisChannel != "" {
		o.RedisChannel = cfg.RedisChannel
	}
}

func (o *OutputOptions) Validate() error {
	if o.RedisURL != "" && o.RedisChannel == "" {
		return fmt.Errorf("redis channel is required when redis url is set")
	}
	return nil
}
