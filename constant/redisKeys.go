package constant

// Redis 键定义。
const (
	// SweepLockKey 附件清扫任务的跨实例互斥锁。
	// 清扫被设计为旁路维护任务，可能同时存在 HTTP 触发、CLI 触发与定时触发，
	// 通过 SETNX 该键保证同一时刻只有一次清扫在执行。
	SweepLockKey = "blog_service:attachment_sweep:lock"
)
