package port

import "sync"

// Queue 待扫描端口队列
// Claim 原子地取出一个端口，队列为空时 ok 为 false。每个端口只会被取出一次。
type Queue interface {
	Claim() (port uint16, ok bool)
}

// WorkQueue 基于互斥锁的后进先出队列，每个目标一个
type WorkQueue struct {
	mu    sync.Mutex
	ports []uint16
}

// NewWorkQueue 以端口序列的副本创建队列，调用方之后修改 ports 不影响队列
func NewWorkQueue(ports []uint16) *WorkQueue {
	cp := make([]uint16, len(ports))
	copy(cp, ports)
	return &WorkQueue{ports: cp}
}

// Claim 取出队尾端口
func (q *WorkQueue) Claim() (uint16, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.ports)
	if n == 0 {
		return 0, false
	}
	p := q.ports[n-1]
	q.ports = q.ports[:n-1]
	return p, true
}

// Len 剩余端口数
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ports)
}
