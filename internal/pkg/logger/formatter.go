// 结构化日志辅助方法
package logger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// FormatTimestamp 格式化时间戳为统一的毫秒精度格式
// 返回格式："2006-01-02 15:04:05.000"
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05.000")
}

// LogType 日志类型枚举
type LogType string

const (
	// SystemLog 系统日志 - 配置加载、资源检查等
	SystemLog LogType = "system"
	// ScanLog 扫描日志 - 记录每个目标的扫描情况
	ScanLog LogType = "scan"
	// ProbeLog 探测日志 - 单个端口的探测失败原因，仅 debug
	ProbeLog LogType = "probe"
)

// ScanLogEntry 扫描日志条目结构
type ScanLogEntry struct {
	TaskID   string `json:"task_id"`
	ScanType string `json:"scan_type"`
	Target   string `json:"target"`
	Status   string `json:"status"`   // running, completed, failed
	Result   string `json:"result"`   // 结果摘要
	Duration int64  `json:"duration"` // 耗时（毫秒）
}

// LogScanOperation 记录扫描操作日志
func LogScanOperation(taskID, scanType, target, status, result string, duration int64, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	entry := ScanLogEntry{
		TaskID:   taskID,
		ScanType: scanType,
		Target:   target,
		Status:   status,
		Result:   result,
		Duration: duration,
	}

	fields := logrus.Fields{
		"type":      ScanLog,
		"task_id":   entry.TaskID,
		"scan_type": entry.ScanType,
		"target":    entry.Target,
		"status":    entry.Status,
		"result":    entry.Result,
		"duration":  entry.Duration,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	l := LoggerInstance.logger.WithFields(fields)
	switch status {
	case "completed":
		l.Info(fmt.Sprintf("Scan completed: %s on %s", scanType, target))
	case "failed":
		l.Error(fmt.Sprintf("Scan failed: %s on %s", scanType, target))
	case "running":
		l.Debug(fmt.Sprintf("Scan running: %s on %s", scanType, target))
	default:
		l.Info(fmt.Sprintf("Scan %s: %s on %s", status, scanType, target))
	}
}

// LogProbeFailure 记录单次探测失败原因
// 结果里只有 closed|filtered，原因只在 debug 日志中可见
func LogProbeFailure(address, reason string, err error) {
	if LoggerInstance == nil || !LoggerInstance.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	LoggerInstance.logger.WithFields(logrus.Fields{
		"type":    ProbeLog,
		"address": address,
		"reason":  reason,
	}).Debugf("probe %s: %v", reason, err)
}

// LogSystemEvent 记录系统事件日志
// 用于记录启动、配置热加载、资源限制检查等系统级事件
func LogSystemEvent(component, event, message string, level LogLevel, extraFields map[string]interface{}) {
	if LoggerInstance == nil {
		return
	}

	logrusLevel := toLogrusLevel(level)

	fields := logrus.Fields{
		"type":      SystemLog,
		"component": component,
		"event":     event,
		"detail":    message,
	}
	for k, v := range extraFields {
		fields[k] = v
	}

	LoggerInstance.logger.WithFields(fields).Log(logrusLevel, fmt.Sprintf("System event: %s - %s", component, event))
}

// LogLevel 日志级别类型，封装logrus.Level避免业务层直接依赖logrus
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// toLogrusLevel 将封装的LogLevel转换为logrus.Level
func toLogrusLevel(level LogLevel) logrus.Level {
	switch level {
	case DebugLevel:
		return logrus.DebugLevel
	case WarnLevel:
		return logrus.WarnLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
