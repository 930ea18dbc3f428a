package mysql

import (
	"context"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// CommentRepository 定义了与 comments 表交互的接口。
type CommentRepository interface {
	// CreateComment 插入一条新评论。
	CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error

	// ListByPostID 返回指定帖子的全部评论，按创建时间正序。
	// 未找到返回空切片而不是错误。
	ListByPostID(ctx context.Context, postID uint64) ([]*entities.Comment, error)

	// DeleteCommentByID 软删除单条评论，未找到返回 commonerrors.ErrRepoNotFound。
	DeleteCommentByID(ctx context.Context, db *gorm.DB, id uint64) error

	// DeleteByPostID 软删除某帖子的全部评论（帖子删除时的级联步骤）。
	DeleteByPostID(ctx context.Context, db *gorm.DB, postID uint64) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository 创建 CommentRepository 实例。
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) CreateComment(ctx context.Context, db *gorm.DB, comment *entities.Comment) error {
	return db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListByPostID(ctx context.Context, postID uint64) ([]*entities.Comment, error) {
	var comments []*entities.Comment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *commentRepository) DeleteCommentByID(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Comment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

func (r *commentRepository) DeleteByPostID(ctx context.Context, db *gorm.DB, postID uint64) error {
	return db.WithContext(ctx).Where("post_id = ?", postID).Delete(&entities.Comment{}).Error
}
