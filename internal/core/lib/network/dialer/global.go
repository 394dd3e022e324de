package dialer

import (
	"sync"
	"time"
)

// 全局拨号器，Prober 未显式指定 Dialer 时使用
var (
	globalMu     sync.RWMutex
	globalDialer Dialer = NewDefaultDialer(time.Second)
)

// SetGlobalDialer 设置全局拨号器 (例如配置了 --proxy 时)
func SetGlobalDialer(d Dialer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalDialer = d
}

// Get 获取全局拨号器
func Get() Dialer {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalDialer
}
