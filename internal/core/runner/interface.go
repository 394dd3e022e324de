package runner

import (
	"context"

	"portscanner/internal/core/model"
)

// Runner 定义了扫描执行器的通用接口
type Runner interface {
	// Name 返回 Runner 的名称 (对应 TaskType)
	Name() model.TaskType

	// Run 执行具体的扫描任务
	// 返回: 扫描结果列表，失败时结果中带有错误信息
	Run(ctx context.Context, task *model.Task) ([]*model.TaskResult, error)
}
