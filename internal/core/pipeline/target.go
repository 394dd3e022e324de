package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"
)

// TargetLine 目标文件中的一行，原样保留 (不过滤空行)
type TargetLine struct {
	Num int    // 行号，从 1 开始
	Raw string // 原始内容
}

// ReadTargetLines 逐行读取目标文件并以流的方式发送
// 文件打开失败直接返回错误；读取中途出错时通过 errc 返回，lines 随后关闭。
// 空行和非法行同样发送，由扫描端在解析时报错。
func ReadTargetLines(ctx context.Context, path string) (<-chan TargetLine, <-chan error, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open target file: %w", err)
	}

	out := make(chan TargetLine, 100)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)
		defer file.Close()

		scanner := bufio.NewScanner(file)
		num := 0
		for scanner.Scan() {
			num++
			select {
			case out <- TargetLine{Num: num, Raw: scanner.Text()}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			errc <- fmt.Errorf("failed to read target file at line %d: %w", num+1, err)
		}
	}()

	return out, errc, nil
}

// ParseTarget 将目标串解析为地址
// 支持 IPv4/IPv6 字面量；域名通过系统解析器解析，优先取 IPv4
func ParseTarget(ctx context.Context, target string) (netip.Addr, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return netip.Addr{}, fmt.Errorf("invalid target: empty address")
	}

	if addr, err := netip.ParseAddr(target); err == nil {
		return addr, nil
	}

	// 带端口、CIDR、范围等都不属于合法目标
	if strings.ContainsAny(target, "/: ") {
		return netip.Addr{}, fmt.Errorf("invalid target: %q is not an IP address or hostname", target)
	}

	addrs, err := net.DefaultResolver.LookupNetIP(ctx, "ip", target)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid target: failed to resolve %q: %w", target, err)
	}
	if len(addrs) == 0 {
		return netip.Addr{}, fmt.Errorf("invalid target: no address for %q", target)
	}

	for _, a := range addrs {
		if a.Unmap().Is4() {
			return a.Unmap(), nil
		}
	}
	return addrs[0], nil
}
