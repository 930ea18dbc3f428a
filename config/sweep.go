package config

import "time"

// SweepConfig 附件一致性清扫的配置。
type SweepConfig struct {
	// UnattachedGraceSeconds 孤儿 Blob 的宽限期（秒）。
	// 直传流程会先乐观地创建 Blob 行、等浏览器上传完成后再确认挂载，
	// 宽限期保证这段窗口内的 Blob 不会被误清扫。0 表示不设宽限（测试用）。
	UnattachedGraceSeconds int `mapstructure:"unattachedGraceSeconds" json:"unattachedGraceSeconds" yaml:"unattachedGraceSeconds"`

	// ConcurrencyLevel 清除孤儿 Blob 时并发执行 Store 删除的 worker 数量。
	// 每个 Blob 的清除相互独立，单个失败只记入报告，不影响其它 Blob。
	ConcurrencyLevel int `mapstructure:"concurrencyLevel" json:"concurrencyLevel" yaml:"concurrencyLevel"`

	// BatchSize 单次清扫最多处理的孤儿 Blob 数量，0 表示不限制。
	// 清扫幂等，超出部分留给下一轮即可。
	BatchSize int `mapstructure:"batchSize" json:"batchSize" yaml:"batchSize"`

	// LockTTLSeconds Redis 清扫锁的过期时间（秒），默认 600。
	LockTTLSeconds int `mapstructure:"lockTtlSeconds" json:"lockTtlSeconds" yaml:"lockTtlSeconds"`
}

// GracePeriod 返回宽限期时长。
func (c SweepConfig) GracePeriod() time.Duration {
	return time.Duration(c.UnattachedGraceSeconds) * time.Second
}

// LockTTL 返回清扫锁的过期时长，未配置时取 10 分钟。
func (c SweepConfig) LockTTL() time.Duration {
	if c.LockTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// Workers 返回并发 worker 数，未配置时取 4。
func (c SweepConfig) Workers() int {
	if c.ConcurrencyLevel <= 0 {
		return 4
	}
	return c.ConcurrencyLevel
}
