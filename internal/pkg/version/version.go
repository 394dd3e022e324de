// ### 发布流程
// 1. **更新版本号**：修改 `internal/pkg/version/version.go`
// 2. **构建**：make build 通过 -ldflags 注入 BuildTime 与 GitCommit
// 3. **推送 Tag**

package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "0.3.0" // 版本号 -- 发布时候更新版本号
	BuildTime string
	GitCommit string
)

func GetVersion() string {
	return Version
}

// GetFullVersion 返回带构建信息的版本串
func GetFullVersion() string {
	s := Version
	if GitCommit != "" {
		s += " (" + GitCommit + ")"
	}
	if BuildTime != "" {
		s += " built " + BuildTime
	}
	return fmt.Sprintf("%s %s/%s %s", s, runtime.GOOS, runtime.GOARCH, runtime.Version())
}
