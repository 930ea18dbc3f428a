package entities

import "github.com/Xushengqwer/go-common/models/entities"

// Post 博客帖子实体。
// - 表名: posts (GORM 默认使用结构体名复数形式)
// - 关系: 一个 Post 拥有零到多条 Comment（随帖子级联删除），
//   以及 "images" 插槽下零到多条 Attachment（通过台账表按 owner_type/owner_id 关联，
//   不走 GORM 的多态关联，避免对缺失 Blob 的隐式解引用直接抛错）。
type Post struct {
	entities.BaseModel // 嵌入公共 BaseModel，包含 ID, CreatedAt, UpdatedAt, DeletedAt，支持软删除

	// 标题，必填，最大长度 255 个字符
	Title string `gorm:"type:varchar(255);not null"`

	// 正文内容，支持多行文本
	Content string `gorm:"type:text;not null"`

	// 作者名，必填
	// - 本服务无账号体系（见 Non-goals），作者以展示名的形式随帖子存储
	AuthorName string `gorm:"type:varchar(50);not null;index"`

	// 发布标记，false 表示草稿，公开列表只返回已发布的帖子
	Published bool `gorm:"default:false;index"`
}
