package port

import (
	"strconv"
	"strings"

	"portscanner/internal/pkg/logger"
)

// 端口描述关键字: 全端口
const allPortsKeyword = "all"

// DefaultPorts 未指定端口时的扫描范围 1-1024，升序
func DefaultPorts() []uint16 {
	return portRange(1, 1024)
}

// AllPorts 返回 1-65535，升序
func AllPorts() []uint16 {
	return portRange(1, 65535)
}

// ParsePortList 解析端口描述
// 格式: "all" | "80,443" | "20-22" 以及它们的逗号组合，如 "22,80,8000-8100"
//
// 解析是宽松的: 无法解析的片段直接丢弃，不报错 (只写 debug 日志)。
// 不去重、不排序，保持片段顺序；起始大于结束的范围产生空结果。
// 结果中的端口都在 [1, 65535]，0 被视为非法片段。
func ParsePortList(expr string) []uint16 {
	var ports []uint16
	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)

		if part == allPortsKeyword {
			ports = append(ports, AllPorts()...)
			continue
		}

		if strings.Contains(part, "-") {
			bounds := strings.Split(part, "-")
			if len(bounds) != 2 {
				logger.Debugf("dropping malformed port range %q", part)
				continue
			}
			start, ok1 := parsePort(bounds[0])
			end, ok2 := parsePort(bounds[1])
			if !ok1 || !ok2 {
				logger.Debugf("dropping malformed port range %q", part)
				continue
			}
			ports = append(ports, portRange(start, end)...)
			continue
		}

		p, ok := parsePort(part)
		if !ok {
			logger.Debugf("dropping malformed port %q", part)
			continue
		}
		ports = append(ports, p)
	}
	return ports
}

// parsePort 解析单个端口，0 与超出 uint16 的值都视为非法
func parsePort(s string) (uint16, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint16(v), true
}

// portRange 返回 [start, end] 闭区间，start > end 时为空
func portRange(start, end uint16) []uint16 {
	if start > end {
		return nil
	}
	ports := make([]uint16, 0, int(end)-int(start)+1)
	for p := int(start); p <= int(end); p++ {
		ports = append(ports, uint16(p))
	}
	return ports
}
