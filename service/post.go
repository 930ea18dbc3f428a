package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/events"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/mq/producer"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/storage"
)

// PostService 定义了帖子核心业务逻辑的接口。
type PostService interface {
	// CreatePost 创建帖子，可同时携带 "images" 插槽的图片文件。
	// 部分失败语义：帖子行先行提交，之后逐张处理图片；任何一张图片失败都不会
	// 让帖子保存失败，失败信息以字段级告警的形式出现在返回 VO 的 ImageWarnings 中。
	CreatePost(ctx context.Context, req *dto.CreatePostRequest, imageFiles []*multipart.FileHeader) (*vo.PostDetailVO, error)

	// GetPostByID 获取帖子详情：帖子 + 评论 + 可解析的图片附件。
	// 悬挂附件在查询层已被过滤，本方法对混有坏行的帖子绝不报错。
	GetPostByID(ctx context.Context, id uint64) (*vo.PostDetailVO, error)

	// ListPublishedPosts 返回全部已发布帖子，按创建时间倒序。
	ListPublishedPosts(ctx context.Context) ([]vo.PostVO, error)

	// UpdatePost 更新帖子字段，可追加 "images" 插槽的图片，图片语义同 CreatePost。
	UpdatePost(ctx context.Context, id uint64, req *dto.UpdatePostRequest, imageFiles []*multipart.FileHeader) (*vo.PostDetailVO, error)

	// DeletePost 删除帖子：同一事务内级联删除其全部评论与挂载记录（不触碰 Blob，
	// 变成孤儿的 Blob 由清扫任务回收），随后投递删除事件。
	DeletePost(ctx context.Context, id uint64) error
}

type postService struct {
	db             *gorm.DB
	postRepo       mysql.PostRepository
	commentRepo    mysql.CommentRepository
	blobRepo       mysql.BlobRepository
	attachmentRepo mysql.AttachmentRepository
	store          storage.ObjectStorage
	envPrefix      string // 存储键的环境前缀，启动时注入
	kafkaSvc       *producer.KafkaProducer
	logger         *core.ZapLogger
}

// NewPostService 创建 postService 实例。kafkaSvc 允许为 nil（未配置 brokers）。
func NewPostService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	commentRepo mysql.CommentRepository,
	blobRepo mysql.BlobRepository,
	attachmentRepo mysql.AttachmentRepository,
	store storage.ObjectStorage,
	envPrefix string,
	kafkaSvc *producer.KafkaProducer,
	logger *core.ZapLogger,
) PostService {
	return &postService{
		db:             db,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		blobRepo:       blobRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		envPrefix:      envPrefix,
		kafkaSvc:       kafkaSvc,
		logger:         logger,
	}
}

func (s *postService) CreatePost(ctx context.Context, req *dto.CreatePostRequest, imageFiles []*multipart.FileHeader) (*vo.PostDetailVO, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" || strings.TrimSpace(req.AuthorName) == "" {
		return nil, fmt.Errorf("%w: 标题、内容、作者名均为必填", myErrors.ErrValidation)
	}

	// 1. 先提交帖子本体，图片失败不回滚正文
	post := &entities.Post{
		Title:      req.Title,
		Content:    req.Content,
		AuthorName: req.AuthorName,
		Published:  req.Published,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.postRepo.CreatePost(ctx, tx, post)
	})
	if err != nil {
		s.logger.Error("创建帖子失败", zap.Error(err))
		return nil, err
	}

	// 2. 逐张上传并挂载图片，失败转为字段级告警
	warnings := s.attachImages(ctx, post.ID, imageFiles, 0)

	// 3. 投递创建事件（尽力而为）
	if s.kafkaSvc != nil {
		postData := events.PostData{
			PostID:     post.ID,
			Title:      post.Title,
			AuthorName: post.AuthorName,
			Published:  post.Published,
			CreatedAt:  post.CreatedAt,
		}
		if evErr := s.kafkaSvc.SendPostCreatedEvent(ctx, postData); evErr != nil {
			s.logger.Warn("帖子创建事件投递失败", zap.Uint64("postID", post.ID), zap.Error(evErr))
		}
	}

	return s.buildPostDetailVO(ctx, post, warnings)
}

// attachImages 逐张处理图片：上传字节，再在事务内写 Blob + Attachment。
// 每张图片相互独立，失败只产生针对 "images" 插槽的告警文案，调用方可提示重试。
func (s *postService) attachImages(ctx context.Context, postID uint64, imageFiles []*multipart.FileHeader, startPosition int) []string {
	var warnings []string
	position := startPosition

	for _, fileHeader := range imageFiles {
		file, err := fileHeader.Open()
		if err != nil {
			s.logger.Error("打开上传图片失败", zap.String("filename", fileHeader.Filename), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("images: 文件 %s 读取失败，请重试", fileHeader.Filename))
			continue
		}

		contentType := fileHeader.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := storage.NewImageObjectKey(s.envPrefix, fileHeader.Filename)

		// 边上传边计算校验和
		hasher := md5.New()
		_, err = s.store.Upload(ctx, key, io.TeeReader(file, hasher), fileHeader.Size, contentType)
		file.Close()
		if err != nil {
			s.logger.Error("上传图片到存储后端失败",
				zap.String("filename", fileHeader.Filename), zap.String("key", key), zap.Error(err))
			warnings = append(warnings, fmt.Sprintf("images: 文件 %s 上传失败，请重试", fileHeader.Filename))
			continue
		}

		blob := &entities.Blob{
			StorageKey:  key,
			Filename:    fileHeader.Filename,
			ContentType: contentType,
			ByteSize:    fileHeader.Size,
			Checksum:    hex.EncodeToString(hasher.Sum(nil)),
		}
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if repoErr := s.blobRepo.CreateBlob(ctx, tx, blob); repoErr != nil {
				return repoErr
			}
			att := &entities.Attachment{
				OwnerType: constant.OwnerTypePost,
				OwnerID:   postID,
				SlotName:  constant.SlotPostImages,
				BlobID:    blob.ID,
				Position:  position,
			}
			return s.attachmentRepo.CreateAttachment(ctx, tx, att)
		})
		if err != nil {
			// 台账写入失败：回收已上传的字节，避免制造存储垃圾
			s.logger.Error("写入附件台账失败，回收已上传字节",
				zap.String("key", key), zap.Error(err))
			if cleanupErr := s.store.Delete(context.Background(), key); cleanupErr != nil {
				s.logger.Error("回收已上传字节失败，留给清扫任务",
					zap.String("key", key), zap.Error(cleanupErr))
			}
			warnings = append(warnings, fmt.Sprintf("images: 文件 %s 保存失败，请重试", fileHeader.Filename))
			continue
		}
		position++
	}
	return warnings
}

func (s *postService) GetPostByID(ctx context.Context, id uint64) (*vo.PostDetailVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.buildPostDetailVO(ctx, post, nil)
}

func (s *postService) ListPublishedPosts(ctx context.Context) ([]vo.PostVO, error) {
	posts, err := s.postRepo.ListPublishedPosts(ctx)
	if err != nil {
		return nil, err
	}
	return vo.NewPostVOsFromEntities(posts), nil
}

func (s *postService) UpdatePost(ctx context.Context, id uint64, req *dto.UpdatePostRequest, imageFiles []*multipart.FileHeader) (*vo.PostDetailVO, error) {
	post, err := s.postRepo.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, fmt.Errorf("%w: 标题不能为空", myErrors.ErrValidation)
		}
		post.Title = *req.Title
	}
	if req.Content != nil {
		if strings.TrimSpace(*req.Content) == "" {
			return nil, fmt.Errorf("%w: 内容不能为空", myErrors.ErrValidation)
		}
		post.Content = *req.Content
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.postRepo.UpdatePost(ctx, tx, post)
	})
	if err != nil {
		return nil, err
	}

	// 追加图片：顺序接在当前插槽末尾
	var warnings []string
	if len(imageFiles) > 0 {
		count, countErr := s.attachmentRepo.CountByOwnerSlot(ctx, constant.OwnerTypePost, post.ID, constant.SlotPostImages)
		if countErr != nil {
			return nil, countErr
		}
		warnings = s.attachImages(ctx, post.ID, imageFiles, int(count))
	}

	return s.buildPostDetailVO(ctx, post, warnings)
}

func (s *postService) DeletePost(ctx context.Context, id uint64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 级联顺序：先挂载记录和评论，最后帖子本体；Blob 不动，留给清扫
		if repoErr := s.attachmentRepo.DeleteByOwner(ctx, tx, constant.OwnerTypePost, id); repoErr != nil {
			return repoErr
		}
		if repoErr := s.commentRepo.DeleteByPostID(ctx, tx, id); repoErr != nil {
			return repoErr
		}
		return s.postRepo.DeletePostByID(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	if s.kafkaSvc != nil {
		if evErr := s.kafkaSvc.SendPostDeletedEvent(ctx, id); evErr != nil {
			s.logger.Warn("帖子删除事件投递失败", zap.Uint64("postID", id), zap.Error(evErr))
		}
	}
	return nil
}

// buildPostDetailVO 聚合帖子详情：评论 + 可解析的图片附件 + 图片告警。
func (s *postService) buildPostDetailVO(ctx context.Context, post *entities.Post, warnings []string) (*vo.PostDetailVO, error) {
	comments, err := s.commentRepo.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListValidByOwner(ctx, constant.OwnerTypePost, post.ID, constant.SlotPostImages)
	if err != nil {
		return nil, err
	}

	detail := &vo.PostDetailVO{
		PostVO:        vo.NewPostVOFromEntity(post),
		Content:       post.Content,
		Comments:      vo.NewCommentVOsFromEntities(comments),
		Images:        vo.NewAttachmentVOsFromEntities(attachments, s.store),
		ImageWarnings: warnings,
	}
	return detail, nil
}
