package myErrors

import "errors"

// 博客服务的领域错误。
// 读路径上的悬挂引用（Attachment 指向的 Blob 已不存在）永远不会以错误形式抛给
// 调用方，而是在查询层被静默过滤；ErrDanglingReference 只出现在写路径上
// （例如确认挂载时 Blob 已被清扫掉）。
var (
	// ErrValidation 表示请求缺少必填字段或字段不合法
	// （帖子的标题/内容/作者，评论的作者/内容，挂载的归属方/插槽等）。
	ErrValidation = errors.New("blog: validation failed")

	// ErrDanglingReference 表示 Attachment 引用的 Blob 无法解析。
	ErrDanglingReference = errors.New("blog: attachment references a missing blob")

	// ErrStoreUnavailable 表示对象存储后端不可达（上传或删除字节失败）。
	// - 写路径: 作为 "上传失败，请重试" 透出给用户。
	// - 清扫路径: 记录日志并跳过该 Blob，不中断整体清扫。
	ErrStoreUnavailable = errors.New("blog: object storage backend unavailable")

	// ErrSweepInProgress 表示已有一次清扫正在执行（跨实例的 Redis 锁被占用）。
	ErrSweepInProgress = errors.New("blog: attachment sweep already in progress")

	// ErrDirectUploadTokenInvalid 表示本地直传回传请求携带的签名令牌无效或已过期。
	ErrDirectUploadTokenInvalid = errors.New("blog: direct upload token invalid or expired")
)
