package mysql

import (
	"context"
	"errors"

	"github.com/Xushengqwer/go-common/commonerrors"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

// AttachmentRepository 定义了与 attachments 表交互的接口（附件台账的链接侧）。
//
// 读路径契约：悬挂引用（BlobID 解析不到 Blob）是线上会出现的已知状态，
// ListValidByOwner 必须过滤这些行而不是抛错 —— 反复查询直接报错正是
// 故障场景下渲染层崩溃的根因，台账的职责是优雅降级（跳过坏行），
// 把修复留给清扫任务。
type AttachmentRepository interface {
	// CreateAttachment 插入一条挂载记录。归属方/插槽合法性由服务层校验。
	CreateAttachment(ctx context.Context, db *gorm.DB, att *entities.Attachment) error

	// GetAttachmentByID 按 ID 获取挂载记录，未找到返回 commonerrors.ErrRepoNotFound。
	GetAttachmentByID(ctx context.Context, id uint64) (*entities.Attachment, error)

	// ListValidByOwner 面向展示层的安全访问器：只返回 Blob 引用当前可解析的
	// 挂载记录（已 Preload Blob），按 Position、ID 正序。悬挂行被静默过滤。
	ListValidByOwner(ctx context.Context, ownerType string, ownerID uint64, slotName string) ([]*entities.Attachment, error)

	// CountByOwnerSlot 统计某归属方某插槽下的存活挂载数（含悬挂行），
	// 用于计算追加挂载时的 Position。
	CountByOwnerSlot(ctx context.Context, ownerType string, ownerID uint64, slotName string) (int64, error)

	// DetachByID 软删除单条挂载记录；不触碰 Blob（Blob 可能被共享，
	// 或等待清扫统一回收）。未找到返回 commonerrors.ErrRepoNotFound。
	DetachByID(ctx context.Context, db *gorm.DB, id uint64) error

	// DeleteByOwner 软删除某归属方的全部挂载记录（归属方删除时的级联步骤），
	// 不级联到 Blob。
	DeleteByOwner(ctx context.Context, db *gorm.DB, ownerType string, ownerID uint64) error

	// ListDanglingAttachments 返回悬挂挂载：Blob 引用解析不到存活 Blob 的行。
	// 包含软删除的行（它们同样是需要回收的台账垃圾）。
	// 反连接: attachments.blob_id NOT IN (SELECT id FROM blobs)
	ListDanglingAttachments(ctx context.Context) ([]*entities.Attachment, error)

	// HardDeleteByIDs 按 ID 批量硬删除挂载记录（清扫专用）。
	// 返回实际删除的行数；目标行已不存在时不算错误（并发竞态保护）。
	HardDeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error)
}

type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建 AttachmentRepository 实例。
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepository{db: db}
}

func (r *attachmentRepository) CreateAttachment(ctx context.Context, db *gorm.DB, att *entities.Attachment) error {
	return db.WithContext(ctx).Create(att).Error
}

func (r *attachmentRepository) GetAttachmentByID(ctx context.Context, id uint64) (*entities.Attachment, error) {
	var att entities.Attachment
	if err := r.db.WithContext(ctx).First(&att, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, commonerrors.ErrRepoNotFound
		}
		return nil, err
	}
	return &att, nil
}

func (r *attachmentRepository) ListValidByOwner(ctx context.Context, ownerType string, ownerID uint64, slotName string) ([]*entities.Attachment, error) {
	liveBlobs := r.db.Model(&entities.Blob{}).Select("id")

	var atts []*entities.Attachment
	err := r.db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ? AND slot_name = ?", ownerType, ownerID, slotName).
		Where("blob_id IN (?)", liveBlobs).
		Preload("Blob").
		Order("position ASC, id ASC").
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

func (r *attachmentRepository) CountByOwnerSlot(ctx context.Context, ownerType string, ownerID uint64, slotName string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Attachment{}).
		Where("owner_type = ? AND owner_id = ? AND slot_name = ?", ownerType, ownerID, slotName).
		Count(&count).Error
	return count, err
}

func (r *attachmentRepository) DetachByID(ctx context.Context, db *gorm.DB, id uint64) error {
	result := db.WithContext(ctx).Delete(&entities.Attachment{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return commonerrors.ErrRepoNotFound
	}
	return nil
}

func (r *attachmentRepository) DeleteByOwner(ctx context.Context, db *gorm.DB, ownerType string, ownerID uint64) error {
	return db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Delete(&entities.Attachment{}).Error
}

func (r *attachmentRepository) ListDanglingAttachments(ctx context.Context) ([]*entities.Attachment, error) {
	liveBlobs := r.db.Model(&entities.Blob{}).Select("id")

	var atts []*entities.Attachment
	err := r.db.WithContext(ctx).Unscoped().
		Where("blob_id NOT IN (?)", liveBlobs).
		Order("id ASC").
		Find(&atts).Error
	if err != nil {
		return nil, err
	}
	return atts, nil
}

func (r *attachmentRepository) HardDeleteByIDs(ctx context.Context, db *gorm.DB, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Unscoped().
		Where("id IN ?", ids).
		Delete(&entities.Attachment{})
	return result.RowsAffected, result.Error
}
