package dto

// CreatePostRequest 创建帖子的请求数据结构。
// - 图片文件不在 DTO 里，而是作为 multipart/form-data 的 "images" 文件字段上传，
//   后端按接收顺序作为插槽内的展示顺序。
type CreatePostRequest struct {
	Title      string `json:"title" form:"title" binding:"required,max=255"`            // 帖子标题，必填
	Content    string `json:"content" form:"content" binding:"required"`                // 帖子内容，必填
	AuthorName string `json:"author_name" form:"author_name" binding:"required,max=50"` // 作者名，必填
	Published  bool   `json:"published" form:"published"`                               // 是否直接发布，默认为草稿
}

// UpdatePostRequest 更新帖子的请求数据结构。
// 指针字段区分 "未提交" 与 "提交为零值"，未提交的字段保持原值。
type UpdatePostRequest struct {
	Title     *string `json:"title" form:"title" binding:"omitempty,max=255"`
	Content   *string `json:"content" form:"content" binding:"omitempty"`
	Published *bool   `json:"published" form:"published"`
}
