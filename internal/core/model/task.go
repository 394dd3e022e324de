/**
 * 任务模型定义 (Core Domain)
 * @author: Sun977
 * @date: 2026.10.12
 * @description: 端口扫描任务模型。CLI 参数与配置文件最终都转换为 Task，扫描开始后不可变。
 */

package model

import (
	"net/netip"
	"time"

	"github.com/google/uuid"
)

// TaskType 定义任务类型
type TaskType string

const (
	TaskTypePortScan TaskType = "port_scan" // TCP Connect 端口扫描
)

// TaskStatus 定义任务状态
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task 核心任务结构体
// Target 与 TargetFile 二选一，TargetFile 非空时为多目标模式
type Task struct {
	ID          string        `json:"id" yaml:"id"`
	Type        TaskType      `json:"type" yaml:"type"`
	Target      string        `json:"target,omitempty" yaml:"target,omitempty"`           // 单目标 (IP/Domain)
	IP          netip.Addr    `json:"ip,omitempty" yaml:"ip,omitempty"`                   // 单目标解析结果，未设置时扫描前解析 Target
	TargetFile  string        `json:"target_file,omitempty" yaml:"target_file,omitempty"` // 目标列表文件，每行一个
	PortRange   string        `json:"port_range" yaml:"port_range"`                       // 原始端口描述 (e.g. "80,443,1000-2000")
	Ports       []uint16      `json:"-" yaml:"-"`                                         // 解析后的端口序列
	Concurrency int           `json:"concurrency" yaml:"concurrency"`                     // 每个目标的 worker 数
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`                             // 单次探测超时
	CreatedAt   time.Time     `json:"created_at" yaml:"created_at"`
}

// TaskResult 任务执行结果
type TaskResult struct {
	TaskID    string      `json:"task_id" yaml:"task_id"`
	Status    TaskStatus  `json:"status" yaml:"status"`
	Data      interface{} `json:"data" yaml:"data"` // 具体的扫描结果 (*ScanSummary)
	Error     string      `json:"error,omitempty" yaml:"error,omitempty"`
	StartTime time.Time   `json:"start_time" yaml:"start_time"`
	EndTime   time.Time   `json:"end_time" yaml:"end_time"`
}

// NewTask 创建一个新任务
func NewTask(taskType TaskType, target string) *Task {
	return &Task{
		ID:        uuid.NewString(),
		Type:      taskType,
		Target:    target,
		CreatedAt: time.Now(),
	}
}

// IsMultiTarget 是否为多目标 (文件) 模式
func (t *Task) IsMultiTarget() bool {
	return t.TargetFile != ""
}
