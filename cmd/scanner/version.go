package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"portscanner/internal/pkg/monitor"
	"portscanner/internal/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "显示版本信息",
		Long:  "显示 portscanner 的版本信息，包括版本号、构建时间、Git 提交、Go 版本与运行平台。",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "portscanner %s\n", version.GetFullVersion())

			host := monitor.GetHostInfo(cmd.Context())
			if host.Hostname != "" {
				fmt.Fprintf(out, "Host: %s (%s, kernel %s)\n", host.Hostname, host.Platform, host.Kernel)
			}
		},
	}
}
