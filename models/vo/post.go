package vo

import (
	"time"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// PostVO 帖子列表项视图对象。
type PostVO struct {
	ID         uint64    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	Published  bool      `json:"published"`
}

// PostDetailVO 帖子详情页视图对象，聚合帖子、评论与可解析的附件。
// Images 只包含 Blob 引用仍可解析的附件，悬挂行在查询层已被过滤，
// 渲染侧拿到的永远是安全数据。
type PostDetailVO struct {
	PostVO
	Content  string         `json:"content"`
	Comments []CommentVO    `json:"comments"`
	Images   []AttachmentVO `json:"images"`

	// ImageWarnings 帖子保存成功但个别图片处理失败时的字段级告警
	// （部分失败语义：正文保存不因图片失败而回滚）。
	ImageWarnings []string `json:"image_warnings,omitempty"`
}

// NewPostVOFromEntity 将 Post 实体转换为 PostVO。
func NewPostVOFromEntity(post *entities.Post) PostVO {
	if post == nil {
		return PostVO{}
	}
	return PostVO{
		ID:         post.ID,
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
		Title:      post.Title,
		AuthorName: post.AuthorName,
		Published:  post.Published,
	}
}

// NewPostVOsFromEntities 将 Post 实体切片转换为 PostVO 切片。
// 返回空的非 nil 切片，保证 JSON 序列化为 [] 而不是 null。
func NewPostVOsFromEntities(posts []*entities.Post) []PostVO {
	vos := make([]PostVO, 0, len(posts))
	for _, p := range posts {
		if p != nil {
			vos = append(vos, NewPostVOFromEntity(p))
		}
	}
	return vos
}
