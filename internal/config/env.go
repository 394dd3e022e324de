package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvLoader 环境变量加载器
// @author: sun977
// @date: 2025.01.14
// @description: 从 .env 文件加载环境变量，已存在的环境变量不会被覆盖
type EnvLoader struct {
	envFiles []string // .env文件路径列表
	loaded   bool
}

// NewEnvLoader 创建环境变量加载器
func NewEnvLoader(envFiles ...string) *EnvLoader {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	return &EnvLoader{
		envFiles: envFiles,
	}
}

// Load 加载环境变量
func (e *EnvLoader) Load() error {
	if e.loaded {
		return nil
	}

	for _, envFile := range e.envFiles {
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			// .env文件不存在不算错误
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	e.loaded = true
	return nil
}
