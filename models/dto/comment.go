package dto

// CreateCommentRequest 创建评论的请求数据结构。
type CreateCommentRequest struct {
	AuthorName string `json:"author_name" binding:"required,max=50"` // 评论者名，必填
	Content    string `json:"content" binding:"required"`            // 评论内容，必填
}
