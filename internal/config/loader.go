package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，scan.threads 对应 PORTSCAN_SCAN_THREADS
const EnvPrefix = "PORTSCAN"

// ConfigLoader 配置加载器
type ConfigLoader struct {
	configFile string
	envPrefix  string
	envLoader  *EnvLoader
	viper      *viper.Viper
}

// NewConfigLoader 创建配置加载器
// configFile 为空时在 ./configs 与当前目录下查找 config.yaml，找不到则只使用默认值
func NewConfigLoader(configFile, envPrefix string) *ConfigLoader {
	if envPrefix == "" {
		envPrefix = EnvPrefix
	}

	return &ConfigLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
		envLoader:  NewEnvLoader(),
		viper:      viper.New(),
	}
}

// WithEnvFiles 指定 .env 文件列表
func (cl *ConfigLoader) WithEnvFiles(files ...string) *ConfigLoader {
	cl.envLoader = NewEnvLoader(files...)
	return cl
}

// LoadConfig 加载配置
func (cl *ConfigLoader) LoadConfig() (*Config, error) {
	if err := cl.envLoader.Load(); err != nil {
		return nil, err
	}

	cl.viper.SetConfigType("yaml")

	cl.viper.SetEnvPrefix(cl.envPrefix)
	cl.viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cl.viper.AutomaticEnv()

	cl.setDefaults()

	if err := cl.loadConfigFile(); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	var config Config
	if err := cl.viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// loadConfigFile 加载配置文件
// 显式指定的文件必须存在；自动查找时文件缺失不算错误
func (cl *ConfigLoader) loadConfigFile() error {
	if cl.configFile == "" {
		cl.configFile = os.Getenv(cl.envPrefix + "_CONFIG_PATH")
	}

	if cl.configFile != "" {
		cl.viper.SetConfigFile(cl.configFile)
		return cl.viper.ReadInConfig()
	}

	cl.viper.SetConfigName("config")
	cl.viper.AddConfigPath("./configs")
	cl.viper.AddConfigPath(".")

	if err := cl.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// setDefaults 设置默认值
func (cl *ConfigLoader) setDefaults() {
	def := DefaultConfig()

	cl.viper.SetDefault("app.name", def.App.Name)
	cl.viper.SetDefault("app.environment", def.App.Environment)

	cl.viper.SetDefault("scan.ports", def.Scan.Ports)
	cl.viper.SetDefault("scan.threads", def.Scan.Threads)
	cl.viper.SetDefault("scan.timeout", time.Second)
	cl.viper.SetDefault("scan.proxy", def.Scan.Proxy)

	cl.viper.SetDefault("log.level", def.Log.Level)
	cl.viper.SetDefault("log.format", def.Log.Format)
	cl.viper.SetDefault("log.output", def.Log.Output)
	cl.viper.SetDefault("log.file_path", def.Log.FilePath)
	cl.viper.SetDefault("log.max_size", def.Log.MaxSize)
	cl.viper.SetDefault("log.max_backups", def.Log.MaxBackups)
	cl.viper.SetDefault("log.max_age", def.Log.MaxAge)
	cl.viper.SetDefault("log.compress", def.Log.Compress)
	cl.viper.SetDefault("log.caller", def.Log.Caller)

	cl.viper.SetDefault("output.redis_url", def.Output.RedisURL)
	cl.viper.SetDefault("output.redis_channel", def.Output.RedisChannel)
}

// GetConfigPath 获取实际使用的配置文件路径，未使用配置文件时为空
func (cl *ConfigLoader) GetConfigPath() string {
	return cl.viper.ConfigFileUsed()
}

// LoadConfig 加载配置（便捷函数）
func LoadConfig(configFile string) (*Config, *ConfigLoader, error) {
	loader := NewConfigLoader(configFile, EnvPrefix)
	cfg, err := loader.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, loader, nil
}
