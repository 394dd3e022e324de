/**
 * 配置定义
 * @author: Sun977
 * @date: 2026.10.12
 * @description: 扫描器配置结构。优先级: 命令行参数 > 环境变量(PORTSCAN_*) > 配置文件 > 默认值
 */

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 扫描器配置
type Config struct {
	App    *AppConfig    `yaml:"app" mapstructure:"app"`
	Scan   *ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Log    *LogConfig    `yaml:"log" mapstructure:"log"`
	Output *OutputConfig `yaml:"output" mapstructure:"output"`
}

// AppConfig 应用信息
type AppConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
}

// ScanConfig 扫描默认参数
type ScanConfig struct {
	Ports   string        `yaml:"ports" mapstructure:"ports"`     // 端口描述，为空时扫描 1-1024
	Threads int           `yaml:"threads" mapstructure:"threads"` // 每个目标的 worker 数
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"` // 单次连接超时
	Proxy   string        `yaml:"proxy" mapstructure:"proxy"`     // socks5://host:port
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`             // debug, info, warn, error
	Format     string `yaml:"format" mapstructure:"format"`           // text, json
	Output     string `yaml:"output" mapstructure:"output"`           // stdout, stderr, file
	FilePath   string `yaml:"file_path" mapstructure:"file_path"`     // output=file 时的日志路径
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"`       // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"` // 保留的备份文件数
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"`         // 保留天数
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Caller     bool   `yaml:"caller" mapstructure:"caller"`
}

// OutputConfig 结果输出配置
type OutputConfig struct {
	RedisURL     string `yaml:"redis_url" mapstructure:"redis_url"`         // redis://host:6379/0，为空则不推送
	RedisChannel string `yaml:"redis_channel" mapstructure:"redis_channel"` // Pub/Sub 频道
}

// DefaultConfig 返回默认配置，与 ConfigLoader 的默认值保持一致
func DefaultConfig() *Config {
	return &Config{
		App: &AppConfig{
			Name:        "portscanner",
			Environment: "production",
		},
		Scan: &ScanConfig{
			Threads: 4,
			Timeout: time.Second,
		},
		Log: &LogConfig{
			Level:      "error",
			Format:     "text",
			Output:     "stderr",
			FilePath:   "./logs/portscanner.log",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
		Output: &OutputConfig{
			RedisChannel: "portscan:open",
		},
	}
}

// Validate 校验配置取值
func (c *Config) Validate() error {
	if c.Scan == nil || c.Log == nil || c.Output == nil {
		return fmt.Errorf("incomplete config: scan, log and output sections are required")
	}
	if c.Scan.Threads <= 0 {
		return fmt.Errorf("invalid scan.threads: %d", c.Scan.Threads)
	}
	if c.Scan.Timeout <= 0 {
		return fmt.Errorf("invalid scan.timeout: %s", c.Scan.Timeout)
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
	return nil
}

// Save 以 YAML 格式写出配置 (用于生成配置模板)
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadFromYAML 直接解析 YAML 文件，不经过环境变量覆盖
// 缺失的字段保留默认值
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
