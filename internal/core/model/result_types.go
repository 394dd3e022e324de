package model

import (
	"fmt"
	"net/netip"
	"strconv"
	"time"
)

// ProbeState 单次探测结果，只区分两种状态
// 拒绝、不可达、超时都归为 StateClosedOrFiltered
type ProbeState int

const (
	StateClosedOrFiltered ProbeState = iota
	StateOpen
)

func (s ProbeState) String() string {
	if s == StateOpen {
		return "open"
	}
	return "closed|filtered"
}

// MarshalText 让 json/yaml 导出可读的状态字符串
func (s ProbeState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// PortResult 端口扫描结果
type PortResult struct {
	Target  string        `json:"target" yaml:"target"` // 用户给出的原始目标串
	IP      netip.Addr    `json:"ip" yaml:"ip"`
	Port    uint16        `json:"port" yaml:"port"`
	State   ProbeState    `json:"state" yaml:"state"`
	Latency time.Duration `json:"latency,omitempty" yaml:"latency,omitempty"`
	Time    time.Time     `json:"time" yaml:"time"`
}

// Line 返回输出行，不含换行符
// 127.0.0.1: Port 8080 is open
func (r PortResult) Line() string {
	return fmt.Sprintf("%s: Port %d is open", r.IP, r.Port)
}

// Headers 实现 TabularData 接口
// IP        | Port | State | Latency | Target
// 127.0.0.1 | 8080 | open  | 120µs   | localhost
func (r PortResult) Headers() []string {
	return []string{"IP", "Port", "State", "Latency", "Target"}
}

// Rows 实现 TabularData 接口
func (r PortResult) Rows() [][]string {
	latency := "N/A"
	if r.Latency > 0 {
		latency = r.Latency.String()
	}
	return [][]string{{r.IP.String(), strconv.Itoa(int(r.Port)), r.State.String(), latency, r.Target}}
}

// TargetError 记录一个无法解析的目标行
type TargetError struct {
	Line   int    `json:"line" yaml:"line"`
	Target string `json:"target" yaml:"target"`
	Error  string `json:"error" yaml:"error"`
}

// ScanSummary 一次扫描的汇总
type ScanSummary struct {
	Targets       int           `json:"targets" yaml:"targets"`               // 成功解析并扫描的目标数
	FailedTargets int           `json:"failed_targets" yaml:"failed_targets"` // 解析失败的目标数
	PortsProbed   int64         `json:"ports_probed" yaml:"ports_probed"`
	OpenPorts     []PortResult  `json:"open_ports" yaml:"open_ports"`
	Failures      []TargetError `json:"failures,omitempty" yaml:"failures,omitempty"`
	StartTime     time.Time     `json:"start_time" yaml:"start_time"`
	EndTime       time.Time     `json:"end_time" yaml:"end_time"`
}

// Duration 扫描耗时
func (s *ScanSummary) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Headers 实现 TabularData 接口，按开放端口展开
func (s *ScanSummary) Headers() []string {
	return PortResult{}.Headers()
}

// Rows 实现 TabularData 接口
func (s *ScanSummary) Rows() [][]string {
	rows := make([][]string, 0, len(s.OpenPorts))
	for _, r := range s.OpenPorts {
		rows = append(rows, r.Rows()...)
	}
	return rows
}
