package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Blob 已存储文件的元数据与定位信息（附件台账的 "文件" 侧）。
//   - 表名: blobs
//   - StorageKey 创建后不可变：重新上传永远生成新键、新 Blob，
//     绝不原地改写已有键指向的字节。
//   - 生命周期: 上传完成（服务端中转或直传）时创建；当没有任何 Attachment
//     引用它时成为孤儿，由清扫任务 "彻底清除"（purge）——先删 Store 里的字节，
//     再硬删台账行，不可恢复。Blob 行不会被软删除。
type Blob struct {
	entities.BaseModel // 嵌入公共 BaseModel，包含 ID, CreatedAt, UpdatedAt, DeletedAt

	// 存储键，定位 Store 中字节的不透明字符串，创建后不可变
	StorageKey string `gorm:"type:varchar(255);not null;uniqueIndex"`

	// 原始文件名（仅做展示，不参与寻址）
	Filename string `gorm:"type:varchar(255);not null"`

	// MIME 类型，如 image/jpeg
	ContentType string `gorm:"type:varchar(100);not null"`

	// 字节大小
	ByteSize int64 `gorm:"not null;default:0"`

	// 内容校验和（MD5 十六进制）。服务端中转上传时边读边算；
	// 直传时由客户端申报，确认挂载前仅作记录。
	Checksum string `gorm:"type:varchar(64);not null;default:''"`
}
