package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Attachment 附件台账的 "链接" 侧：把一个 Blob 挂到某个归属实体的具名插槽下。
//   - 表名: attachments
//   - 期望不变量（线上会被破坏）: 每条 Attachment 的 BlobID 都应能解析到存在的
//     Blob；反过来每个 Blob 都应至少被一条 Attachment 引用。直传中断、事务部分
//     回滚都会造成 "悬挂 Attachment" 或 "孤儿 Blob"，读路径必须过滤而不是报错，
//     修复交给清扫任务。
//   - 删除语义: 归属方删除 / 显式解除挂载走软删除（与其它实体一致）；
//     清扫任务对悬挂行做硬删除。软删除的 Attachment 不再算作对 Blob 的引用。
type Attachment struct {
	entities.BaseModel // 嵌入公共 BaseModel，包含 ID, CreatedAt, UpdatedAt, DeletedAt

	// 归属方类型，如 "post"（联合索引支撑按归属方查询与级联删除）
	OwnerType string `gorm:"type:varchar(50);not null;index:idx_attachments_owner"`

	// 归属方 ID
	OwnerID uint64 `gorm:"not null;index:idx_attachments_owner"`

	// 插槽名，如 "images"，同一插槽可挂多条
	SlotName string `gorm:"type:varchar(50);not null;index:idx_attachments_owner"`

	// 引用的 Blob ID。刻意不加数据库级外键约束：悬挂引用是需要容忍并清扫的
	// 已知状态，外键会让中断的直传直接变成写入失败
	BlobID uint64 `gorm:"not null;index"`

	// 多附件插槽内的展示顺序
	Position int `gorm:"not null;default:0"`

	// Blob 关联，仅用于 Preload；悬挂行 Preload 后该字段为 nil，
	// 调用方必须显式处理缺失而不是解引用
	Blob *Blob `gorm:"foreignKey:BlobID;references:ID;constraint:-"`
}
