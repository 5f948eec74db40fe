// Package cache 定义键值存储接口以及基于键前缀的仓储：
// 页面缓存、API 登录令牌、密码重置验证码。
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrMiss        = errors.New("cache miss")
	ErrUnavailable = errors.New("cache unavailable")
)

// Store 由 redis 或进程内实现；ttl<=0 表示不过期
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix 删除所有以 prefix 开头的键，返回删除数量
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}
