package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// PostRepository 定义了与 posts 表交互的接口。
// 写操作接收 db *gorm.DB 参数，由服务层决定是否在事务内执行。
type PostRepository interface {
	// CreatePost 插入一条新帖子。
	CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// GetPostByID 按 ID 获取帖子，未找到返回 commonerrors.ErrRepoNotFound。
	GetPostByID(ctx context.Context, id uint64) (*entities.Post, error)

	// UpdatePost 按主键更新帖子的标题/内容/发布标记。
	UpdatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error

	// DeletePostByID 软删除帖子，未找到返回 commonerrors.ErrRepoNotFound。
	// 评论与附件的级联删除由服务层在同一事务内完成。
	DeletePostByID(ctx context.Context, db *gorm.DB, id uint64) error

	// ListPublishedPosts 返回全部已发布帖子，按创建时间倒序。
	ListPublishedPosts(ctx context.Context) ([]*entities.Post, error)
}

type postRepository struct {
	db     *gorm.DB
	logger *core.ZapLogger
}

// NewPostRepository 创建 PostRepository 实例。
func NewPostRepository(db *gorm.DB, logger *core.ZapLogger) PostRepository {
	return &postRepository{db: db, logger: logger}
}

func (r *postRepository) CreatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	return db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetPostByID(ctx context.Context, id uint64) (*entities.Post, error) {
	var post entities.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) UpdatePost(ctx context.Context, db *gorm.DB, post *entities.Post) error {
	// Select 显式列出可变列，避免 Updates 因零值跳过 Published=false 的更新
	result := db.WithContext(ctx).Model(post).
		Select("title", "content", "published").
		Updates(map[string]interface{}{
			"title":     post.Title,
			"content":   post.Content,
			"published": post.Published,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

func (r *postRepository) DeletePostByID(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Post{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	r.logger.Info("帖子已软删除", zap.Uint64("postID", id))
	return nil
}

func (r *postRepository) ListPublishedPosts(ctx context.Context) ([]*entities.Post, error) {
	var posts []*entities.Post
	err := r.db.WithContext(ctx).
		Where("published = ?", true).
		Order("created_at DESC, id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}
