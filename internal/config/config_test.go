package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir 切换到临时目录，避免读到仓库里的 config.yaml / .env
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, loader, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, loader.GetConfigPath())

	assert.Equal(t, 4, cfg.Scan.Threads)
	assert.Equal(t, time.Second, cfg.Scan.Timeout)
	assert.Empty(t, cfg.Scan.Ports)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, "portscan:open", cfg.Output.RedisChannel)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORTSCAN_SCAN_THREADS", "16")
	t.Setenv("PORTSCAN_SCAN_TIMEOUT", "250ms")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Scan.Threads)
	assert.Equal(t, 250*time.Millisecond, cfg.Scan.Timeout)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "scan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  ports: \"22,80\"\n  threads: 8\n  timeout: 2s\nlog:\n  level: debug\n"), 0644))

	cfg, loader, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, loader.GetConfigPath())
	assert.Equal(t, "22,80", cfg.Scan.Ports)
	assert.Equal(t, 8, cfg.Scan.Threads)
	assert.Equal(t, 2*time.Second, cfg.Scan.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未出现在文件中的字段保持默认值
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, _, err := LoadConfig("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  threads: 0\n"), 0644))

	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvLoader(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORTSCAN_TEST_DOTENV_KEY=from-dotenv\n"), 0644))
	t.Cleanup(func() { _ = os.Unsetenv("PORTSCAN_TEST_DOTENV_KEY") })

	// 不存在的文件被跳过
	loader := NewEnvLoader(filepath.Join(dir, "missing.env"), envFile)
	require.NoError(t, loader.Load())
	assert.Equal(t, "from-dotenv", os.Getenv("PORTSCAN_TEST_DOTENV_KEY"))
}

func TestSaveAndLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "config.yaml")

	cfg := DefaultConfig()
	cfg.Scan.Ports = "all"
	cfg.Scan.Timeout = 3 * time.Second
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadFromYAML(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Log.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Scan.Timeout = 0
	assert.Error(t, cfg.Validate())
}
