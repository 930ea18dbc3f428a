package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CommentVO 评论视图对象。
type CommentVO struct {
	ID         uint64    `json:"id"`
	PostID     uint64    `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewCommentVOFromEntity 将 Comment 实体转换为 CommentVO。
func NewCommentVOFromEntity(comment *entities.Comment) CommentVO {
	if comment == nil {
		return CommentVO{}
	}
	return CommentVO{
		ID:         comment.ID,
		PostID:     comment.PostID,
		AuthorName: comment.AuthorName,
		Content:    comment.Content,
		CreatedAt:  comment.CreatedAt,
	}
}

// NewCommentVOsFromEntities 将 Comment 实体切片转换为 CommentVO 切片。
func NewCommentVOsFromEntities(comments []*entities.Comment) []CommentVO {
	vos := make([]CommentVO, 0, len(comments))
	for _, c := range comments {
		if c != nil {
			vos = append(vos, NewCommentVOFromEntity(c))
		}
	}
	return vos
}
