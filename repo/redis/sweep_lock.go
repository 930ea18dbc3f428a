package redis

import (
	"context"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/constant"
)

// SweepLock 附件清扫的跨实例互斥锁。
// HTTP、CLI、定时任务都可能触发清扫，SETNX + TTL 保证同一时刻只有一次在执行；
// TTL 兜底持锁方崩溃的情况。释放时校验持有者令牌，避免误删他人的锁。
type SweepLock interface {
	// TryAcquire 尝试获取锁。返回 (持有者令牌, 是否成功)。
	TryAcquire(ctx context.Context, ttl time.Duration) (string, bool, error)

	// Release 释放锁。仅当锁仍由 token 持有时删除；锁已过期或易主时为空操作。
	Release(ctx context.Context, token string) error
}

type sweepLock struct {
	client *redis.Client
	logger *core.ZapLogger
}

// NewSweepLock 创建 SweepLock 实例。
func NewSweepLock(client *redis.Client, logger *core.ZapLogger) SweepLock {
	return &sweepLock{client: client, logger: logger}
}

// releaseScript 比较持有者令牌后删除，保证释放的原子性。
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *sweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, constant.SweepLockKey, token, ttl).Result()
	if err != nil {
		l.logger.Error("获取清扫锁失败", zap.Error(err))
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	l.logger.Info("已获取清扫锁", zap.Duration("ttl", ttl))
	return token, true, nil
}

func (l *sweepLock) Release(ctx context.Context, token string) error {
	deleted, err := releaseScript.Run(ctx, l.client, []string{constant.SweepLockKey}, token).Int()
	if err != nil {
		l.logger.Error("释放清扫锁失败", zap.Error(err))
		return err
	}
	if deleted == 0 {
		l.logger.Warn("清扫锁已过期或被其它持有者接管，跳过释放")
	}
	return nil
}
