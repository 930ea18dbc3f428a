package mysql

import (
	"context"
	"errors"
	"time"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// BlobRepository 定义了与 blobs 表交互的接口（附件台账的文件侧）。
// Blob 行只有两种退出方式：从未有过 —— 或被清扫任务硬删除（purge）。
// 这里不提供软删除入口。
type BlobRepository interface {
	// CreateBlob 插入一条新 Blob。StorageKey 必须唯一，创建后不可变。
	CreateBlob(ctx context.Context, db *gorm.DB, blob *entities.Blob) error

	// GetBlobByID 按 ID 获取 Blob，未找到返回 commonerrors.ErrRepoNotFound。
	GetBlobByID(ctx context.Context, id uint64) (*entities.Blob, error)

	// ListOrphanBlobs 返回孤儿 Blob：没有任何存活 Attachment 引用、
	// 且创建时间早于 cutoff（宽限期保护直传确认窗口）的 Blob。
	// limit > 0 时限制返回条数，超出部分留给下一轮清扫。
	// 反连接: blobs.id NOT IN (SELECT blob_id FROM attachments WHERE deleted_at IS NULL)
	ListOrphanBlobs(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Blob, error)

	// PurgeBlobByID 硬删除 Blob 行（不可恢复）。
	// 行已不存在时静默返回 nil：清扫与正常流量并发时，查询阶段与删除阶段之间
	// 行可能已被别处删掉，按键删除对缺失行是空操作，竞态不升级为错误。
	PurgeBlobByID(ctx context.Context, db *gorm.DB, id uint64) error
}

type blobRepository struct {
	db *gorm.DB
}

// NewBlobRepository 创建 BlobRepository 实例。
func NewBlobRepository(db *gorm.DB) BlobRepository {
	return &blobRepository{db: db}
}

func (r *blobRepository) CreateBlob(ctx context.Context, db *gorm.DB, blob *entities.Blob) error {
	return db.WithContext(ctx).Create(blob).Error
}

func (r *blobRepository) GetBlobByID(ctx context.Context, id uint64) (*entities.Blob, error) {
	var blob entities.Blob
	if err := r.db.WithContext(ctx).First(&blob, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, err
	}
	return &blob, nil
}

func (r *blobRepository) ListOrphanBlobs(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Blob, error) {
	// 子查询走默认作用域，软删除的 Attachment 不再算作引用
	referenced := r.db.Model(&entities.Attachment{}).Select("blob_id")

	query := r.db.WithContext(ctx).
		Where("id NOT IN (?)", referenced).
		Where("created_at <= ?", cutoff).
		Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var blobs []*entities.Blob
	if err := query.Find(&blobs).Error; err != nil {
		return nil, err
	}
	return blobs, nil
}

func (r *blobRepository) PurgeBlobByID(ctx context.Context, db *gorm.DB, id uint64) error {
	return db.WithContext(ctx).Unscoped().Delete(&entities.Blob{}, id).Error
}
