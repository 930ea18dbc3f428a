package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Comment 帖子评论实体。
// - 表名: comments
// - 关系: 与 Post 多对一，通过 PostID 外键关联；删除帖子时在服务层事务内级联删除。
type Comment struct {
	entities.BaseModel // 嵌入公共 BaseModel，包含 ID, CreatedAt, UpdatedAt, DeletedAt

	// 所属帖子 ID，外键，建索引以支持按帖子拉取评论
	PostID uint64 `gorm:"not null;index"`

	// 评论者名，必填
	AuthorName string `gorm:"type:varchar(50);not null"`

	// 评论内容，必填
	Content string `gorm:"type:text;not null"`
}
