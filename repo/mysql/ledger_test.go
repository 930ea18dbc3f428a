package mysql_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

func createBlob(t *testing.T, db *gorm.DB, key string) *entities.Blob {
	blob := &entities.Blob{
		StorageKey:  key,
		Filename:    "photo.jpg",
		ContentType: "image/jpeg",
		ByteSize:    1024,
	}
	require.NoError(t, db.Create(blob).Error)
	return blob
}

func createAttachment(t *testing.T, db *gorm.DB, ownerID, blobID uint64, position int) *entities.Attachment {
	att := &entities.Attachment{
		OwnerType: constant.OwnerTypePost,
		OwnerID:   ownerID,
		SlotName:  constant.SlotPostImages,
		BlobID:    blobID,
		Position:  position,
	}
	require.NoError(t, db.Create(att).Error)
	return att
}

func TestAttachmentRepository_ListValidByOwner_FiltersDangling(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	good := createBlob(t, db, "dev/blog/images/a.jpg")
	createAttachment(t, db, 1, good.ID, 1)
	// 悬挂行：指向不存在的 Blob
	createAttachment(t, db, 1, 999999, 0)

	atts, err := repo.ListValidByOwner(ctx, constant.OwnerTypePost, 1, constant.SlotPostImages)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, good.ID, atts[0].BlobID)
	require.NotNil(t, atts[0].Blob)
	assert.Equal(t, "dev/blog/images/a.jpg", atts[0].Blob.StorageKey)
}

func TestAttachmentRepository_ListValidByOwner_OrderedByPosition(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	b1 := createBlob(t, db, "dev/blog/images/1.jpg")
	b2 := createBlob(t, db, "dev/blog/images/2.jpg")
	b3 := createBlob(t, db, "dev/blog/images/3.jpg")
	createAttachment(t, db, 7, b3.ID, 2)
	createAttachment(t, db, 7, b1.ID, 0)
	createAttachment(t, db, 7, b2.ID, 1)

	atts, err := repo.ListValidByOwner(ctx, constant.OwnerTypePost, 7, constant.SlotPostImages)
	require.NoError(t, err)
	require.Len(t, atts, 3)
	assert.Equal(t, []uint64{b1.ID, b2.ID, b3.ID},
		[]uint64{atts[0].BlobID, atts[1].BlobID, atts[2].BlobID})
}

func TestAttachmentRepository_DetachByID(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	blob := createBlob(t, db, "dev/blog/images/d.jpg")
	att := createAttachment(t, db, 1, blob.ID, 0)

	require.NoError(t, repo.DetachByID(ctx, db, att.ID))

	// 解除后读路径不再返回
	atts, err := repo.ListValidByOwner(ctx, constant.OwnerTypePost, 1, constant.SlotPostImages)
	require.NoError(t, err)
	assert.Empty(t, atts)

	// 重复解除同一条返回未找到
	err = repo.DetachByID(ctx, db, att.ID)
	assert.Error(t, err)
}

func TestAttachmentRepository_ListDanglingIncludesSoftDeleted(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	// 存活的悬挂行
	live := createAttachment(t, db, 1, 888888, 0)
	// 软删除的悬挂行，同样是台账垃圾
	deleted := createAttachment(t, db, 2, 777777, 0)
	require.NoError(t, repo.DetachByID(ctx, db, deleted.ID))
	// 正常行不应出现
	blob := createBlob(t, db, "dev/blog/images/ok.jpg")
	createAttachment(t, db, 3, blob.ID, 0)

	dangling, err := repo.ListDanglingAttachments(ctx)
	require.NoError(t, err)
	require.Len(t, dangling, 2)
	ids := []uint64{dangling[0].ID, dangling[1].ID}
	assert.Contains(t, ids, live.ID)
	assert.Contains(t, ids, deleted.ID)
}

func TestAttachmentRepository_HardDeleteByIDs(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	a1 := createAttachment(t, db, 1, 111111, 0)
	a2 := createAttachment(t, db, 1, 222222, 1)

	removed, err := repo.HardDeleteByIDs(ctx, db, []uint64{a1.ID, a2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	// 硬删除后连 Unscoped 查询也不存在
	var count int64
	require.NoError(t, db.Unscoped().Model(&entities.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)

	// 空 ID 列表是空操作
	removed, err = repo.HardDeleteByIDs(ctx, db, nil)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestBlobRepository_ListOrphanBlobs(t *testing.T) {
	db := setupDB(t)
	blobRepo := mysql.NewBlobRepository(db)
	attRepo := mysql.NewAttachmentRepository(db)
	ctx := context.Background()

	orphan := createBlob(t, db, "dev/blog/images/orphan.jpg")
	referenced := createBlob(t, db, "dev/blog/images/ref.jpg")
	createAttachment(t, db, 1, referenced.ID, 0)

	// 软删除的挂载不算引用：detach 后 Blob 成为孤儿
	detachedBlob := createBlob(t, db, "dev/blog/images/detached.jpg")
	att := createAttachment(t, db, 2, detachedBlob.ID, 0)
	require.NoError(t, attRepo.DetachByID(ctx, db, att.ID))

	orphans, err := blobRepo.ListOrphanBlobs(ctx, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, orphans, 2)
	keys := []string{orphans[0].StorageKey, orphans[1].StorageKey}
	assert.Contains(t, keys, orphan.StorageKey)
	assert.Contains(t, keys, detachedBlob.StorageKey)
}

func TestBlobRepository_ListOrphanBlobs_GracePeriod(t *testing.T) {
	db := setupDB(t)
	blobRepo := mysql.NewBlobRepository(db)
	ctx := context.Background()

	createBlob(t, db, "dev/blog/images/fresh.jpg")

	// cutoff 在创建之前：刚创建的孤儿 Blob 受宽限期保护
	orphans, err := blobRepo.ListOrphanBlobs(ctx, time.Now().Add(-time.Hour), 0)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestBlobRepository_PurgeBlobByID_Idempotent(t *testing.T) {
	db := setupDB(t)
	blobRepo := mysql.NewBlobRepository(db)
	ctx := context.Background()

	blob := createBlob(t, db, "dev/blog/images/purge.jpg")
	require.NoError(t, blobRepo.PurgeBlobByID(ctx, db, blob.ID))

	var count int64
	require.NoError(t, db.Unscoped().Model(&entities.Blob{}).Count(&count).Error)
	assert.Zero(t, count)

	// 行已不存在时按键删除是空操作
	require.NoError(t, blobRepo.PurgeBlobByID(ctx, db, blob.ID))
}
