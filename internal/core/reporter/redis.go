package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portscanner/internal/core/model"
)

// RedisReporter 将开放端口实时推送到 Redis Pub/Sub 频道
// 消息内容与输出行一致，订阅方: redis-cli SUBSCRIBE <channel>
type RedisReporter struct {
	client  *redis.Client
	channel string
}

// NewRedisReporter 根据 redis://[:password@]host:port/db 创建上报器
func NewRedisReporter(url, channel string) (*RedisReporter, error) {
	if channel == "" {
		return nil, fmt.Errorf("redis channel is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	// 快速失败，不重试
	opts.DialTimeout = 3 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.MaxRetries = -1

	return &RedisReporter{
		client:  redis.NewClient(opts),
		channel: channel,
	}, nil
}

// Ping 检查 Redis 是否可达，扫描开始前调用
func (r *RedisReporter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisReporter) Report(ctx context.Context, result *model.PortResult) error {
	if err := r.client.Publish(ctx, r.channel, result.Line()).Err(); err != nil {
		return fmt.Errorf("failed to publish to redis channel %s: %w", r.channel, err)
	}
	return nil
}

func (r *RedisReporter) Close() error {
	return r.client.Close()
}
