package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/models/vo"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/storage"
)

// UploadService 定义了直传与附件挂载管理的接口。
//
// 直传是两段式：先申请（乐观创建 Blob 行 + 签出上传地址），客户端把字节直接
// 推到存储后端，完成后再回来确认挂载。上传失败或被放弃的 Blob 不需要客户端
// 善后，清扫任务会在宽限期后回收。
type UploadService interface {
	// CreateDirectUpload 申请一次直传：分配存储键、创建 Blob 行、签出上传地址。
	CreateDirectUpload(ctx context.Context, req *dto.CreateDirectUploadRequest) (*vo.DirectUploadVO, error)

	// ConfirmAttachment 直传完成后确认挂载。
	// 归属方或插槽不合法返回 myErrors.ErrValidation；
	// Blob 不存在（已被清扫或从未创建）返回 myErrors.ErrDanglingReference，
	// 写路径拒绝制造悬挂引用，客户端应重新发起直传。
	ConfirmAttachment(ctx context.Context, req *dto.ConfirmAttachmentRequest) (*vo.AttachmentVO, error)

	// ListAttachments 返回某归属方某插槽下全部可解析的附件。
	ListAttachments(ctx context.Context, ownerType string, ownerID uint64, slotName string) ([]vo.AttachmentVO, error)

	// Detach 解除单条挂载。只软删除 Attachment，Blob 留给清扫任务回收。
	Detach(ctx context.Context, attachmentID uint64) error

	// ReceiveDirectUpload 本地存储后端的直传回传入口：校验 HMAC 令牌后落盘，
	// 并把实际写入的字节数回填到 Blob 行。仅本地后端支持，云端直传不经过服务器。
	ReceiveDirectUpload(ctx context.Context, key, token string, expiresAt int64, reader io.Reader, size int64, contentType string) error
}

type uploadService struct {
	db             *gorm.DB
	postRepo       mysql.PostRepository
	blobRepo       mysql.BlobRepository
	attachmentRepo mysql.AttachmentRepository
	store          storage.ObjectStorage
	envPrefix      string
	logger         *core.ZapLogger
}

// NewUploadService 创建 uploadService 实例。
func NewUploadService(
	db *gorm.DB,
	postRepo mysql.PostRepository,
	blobRepo mysql.BlobRepository,
	attachmentRepo mysql.AttachmentRepository,
	store storage.ObjectStorage,
	envPrefix string,
	logger *core.ZapLogger,
) UploadService {
	return &uploadService{
		db:             db,
		postRepo:       postRepo,
		blobRepo:       blobRepo,
		attachmentRepo: attachmentRepo,
		store:          store,
		envPrefix:      envPrefix,
		logger:         logger,
	}
}

func (s *uploadService) CreateDirectUpload(ctx context.Context, req *dto.CreateDirectUploadRequest) (*vo.DirectUploadVO, error) {
	key := storage.NewImageObjectKey(s.envPrefix, req.Filename)

	// 乐观创建：此刻字节还不存在，ByteSize/Checksum 先记客户端申报值
	blob := &entities.Blob{
		StorageKey:  key,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		ByteSize:    req.ByteSize,
		Checksum:    req.Checksum,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.blobRepo.CreateBlob(ctx, tx, blob)
	})
	if err != nil {
		s.logger.Error("创建直传 Blob 行失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	uploadURL, expiresIn, err := s.store.PresignUpload(ctx, key, req.ContentType)
	if err != nil {
		s.logger.Error("签发直传地址失败", zap.String("key", key), zap.Error(err))
		return nil, err
	}

	s.logger.Info("已签发直传地址",
		zap.Uint64("blobID", blob.ID), zap.String("key", key), zap.Duration("expiresIn", expiresIn))
	return &vo.DirectUploadVO{
		BlobID:    blob.ID,
		UploadURL: uploadURL,
		Key:       key,
		ExpiresIn: int64(expiresIn.Seconds()),
	}, nil
}

func (s *uploadService) ConfirmAttachment(ctx context.Context, req *dto.ConfirmAttachmentRequest) (*vo.AttachmentVO, error) {
	// 归属方类型与插槽必须在白名单内
	if req.OwnerType != constant.OwnerTypePost {
		return nil, fmt.Errorf("%w: 不支持的归属方类型 %q", myErrors.ErrValidation, req.OwnerType)
	}
	if req.SlotName != constant.SlotPostImages {
		return nil, fmt.Errorf("%w: 不支持的插槽 %q", myErrors.ErrValidation, req.SlotName)
	}

	// 归属方必须存在
	if _, err := s.postRepo.GetPostByID(ctx, req.OwnerID); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, fmt.Errorf("%w: 归属方 post/%d 不存在", myErrors.ErrValidation, req.OwnerID)
		}
		return nil, err
	}

	// Blob 必须仍然存在，写路径不制造悬挂引用
	blob, err := s.blobRepo.GetBlobByID(ctx, req.BlobID)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			return nil, fmt.Errorf("%w: Blob %d 不存在或已被清扫，请重新上传", myErrors.ErrDanglingReference, req.BlobID)
		}
		return nil, err
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		count, countErr := s.attachmentRepo.CountByOwnerSlot(ctx, req.OwnerType, req.OwnerID, req.SlotName)
		if countErr != nil {
			return nil, countErr
		}
		position = int(count)
	}

	att := &entities.Attachment{
		OwnerType: req.OwnerType,
		OwnerID:   req.OwnerID,
		SlotName:  req.SlotName,
		BlobID:    blob.ID,
		Position:  position,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.attachmentRepo.CreateAttachment(ctx, tx, att)
	})
	if err != nil {
		s.logger.Error("确认挂载失败",
			zap.Uint64("blobID", blob.ID), zap.Uint64("ownerID", req.OwnerID), zap.Error(err))
		return nil, err
	}

	att.Blob = blob
	attVO, _ := vo.NewAttachmentVOFromEntity(att, s.store)
	return &attVO, nil
}

func (s *uploadService) ListAttachments(ctx context.Context, ownerType string, ownerID uint64, slotName string) ([]vo.AttachmentVO, error) {
	atts, err := s.attachmentRepo.ListValidByOwner(ctx, ownerType, ownerID, slotName)
	if err != nil {
		return nil, err
	}
	return vo.NewAttachmentVOsFromEntities(atts, s.store), nil
}

func (s *uploadService) Detach(ctx context.Context, attachmentID uint64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.attachmentRepo.DetachByID(ctx, tx, attachmentID)
	})
}

func (s *uploadService) ReceiveDirectUpload(ctx context.Context, key, token string, expiresAt int64, reader io.Reader, size int64, contentType string) error {
	local, ok := s.store.(*storage.LocalStorage)
	if !ok {
		return fmt.Errorf("%w: 当前存储后端不接受服务端回传", myErrors.ErrValidation)
	}
	if err := local.VerifyUploadToken(key, token, expiresAt); err != nil {
		return err
	}
	if _, err := local.Upload(ctx, key, reader, size, contentType); err != nil {
		return err
	}

	// 回填实际字节数，申报值可能与实际不符
	err := s.db.WithContext(ctx).Model(&entities.Blob{}).
		Where("storage_key = ?", key).
		Update("byte_size", size).Error
	if err != nil {
		s.logger.Warn("回填 Blob 字节数失败", zap.String("key", key), zap.Error(err))
	}
	return nil
}
