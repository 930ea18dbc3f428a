package service

import (
	"context"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

// CommentService 定义了评论业务逻辑的接口。
type CommentService interface {
	// CreateComment 在指定帖子下创建评论，帖子不存在时返回 commonerrors.ErrRepoNotFound。
	CreateComment(ctx context.Context, postID uint64, req *dto.CreateCommentRequest) (*vo.CommentVO, error)

	// ListComments 返回指定帖子的全部评论，按创建顺序正序。
	ListComments(ctx context.Context, postID uint64) ([]vo.CommentVO, error)

	// DeleteComment 删除单条评论。
	DeleteComment(ctx context.Context, id uint64) error
}

type commentService struct {
	db          *gorm.DB
	postRepo    mysql.PostRepository
	commentRepo mysql.CommentRepository
	logger      *core.ZapLogger
}

// NewCommentService 创建 commentService 实例。
func NewCommentService(db *gorm.DB, postRepo mysql.PostRepository, commentRepo mysql.CommentRepository, logger *core.ZapLogger) CommentService {
	return &commentService{db: db, postRepo: postRepo, commentRepo: commentRepo, logger: logger}
}

func (s *commentService) CreateComment(ctx context.Context, postID uint64, req *dto.CreateCommentRequest) (*vo.CommentVO, error) {
	// 先确认帖子存在，避免评论挂在不存在的帖子下
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &entities.Comment{
		PostID:     postID,
		AuthorName: req.AuthorName,
		Content:    req.Content,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.commentRepo.CreateComment(ctx, tx, comment)
	})
	if err != nil {
		s.logger.Error("创建评论失败", zap.Uint64("postID", postID), zap.Error(err))
		return nil, err
	}

	commentVO := vo.NewCommentVOFromEntity(comment)
	return &commentVO, nil
}

func (s *commentService) ListComments(ctx context.Context, postID uint64) ([]vo.CommentVO, error) {
	if _, err := s.postRepo.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}
	return vo.NewCommentVOsFromEntities(comments), nil
}

func (s *commentService) DeleteComment(ctx context.Context, id uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.commentRepo.DeleteCommentByID(ctx, tx, id)
	})
}
