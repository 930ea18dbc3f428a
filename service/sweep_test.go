package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

// newSweepService 构造清扫服务：宽限期 0（测试场景立即可清），无 Kafka。
func newSweepService(t *testing.T, db *gorm.DB, store *fakeStore, lock *fakeSweepLock, cfg config.SweepConfig) service.SweepService {
	blobRepo := mysql.NewBlobRepository(db)
	attRepo := mysql.NewAttachmentRepository(db)
	// 注意 nil 接口：typed-nil 的 *fakeSweepLock 塞进接口后不再等于 nil
	if lock != nil {
		return service.NewSweepService(db, blobRepo, attRepo, store, lock, cfg, nil, newTestLogger(t))
	}
	return service.NewSweepService(db, blobRepo, attRepo, store, nil, cfg, nil, newTestLogger(t))
}

func seedBlob(t *testing.T, db *gorm.DB, store *fakeStore, key string) *entities.Blob {
	blob := &entities.Blob{StorageKey: key, Filename: "f.jpg", ContentType: "image/jpeg", ByteSize: 10}
	require.NoError(t, db.Create(blob).Error)
	if store != nil {
		store.objects[key] = []byte("bytes")
	}
	return blob
}

func seedAttachment(t *testing.T, db *gorm.DB, ownerID, blobID uint64) *entities.Attachment {
	att := &entities.Attachment{
		OwnerType: constant.OwnerTypePost,
		OwnerID:   ownerID,
		SlotName:  constant.SlotPostImages,
		BlobID:    blobID,
	}
	require.NoError(t, db.Create(att).Error)
	return att
}

func TestSweep_DetachedBlobPurgedExactlyOnce(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newSweepService(t, db, store, nil, config.SweepConfig{})
	ctx := context.Background()

	blob := seedBlob(t, db, store, "dev/blog/images/a.jpg")
	att := seedAttachment(t, db, 1, blob.ID)
	// 解除挂载：Blob 失去最后一个引用
	require.NoError(t, db.Delete(att).Error)

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrphanBlobsPurged)
	assert.Equal(t, []uint64{blob.ID}, report.PurgedBlobIDs)
	assert.Equal(t, 1, store.deletes(blob.StorageKey))
	assert.False(t, store.has(blob.StorageKey))
	assert.Empty(t, report.Failures)

	// 台账行已硬删除
	var count int64
	require.NoError(t, db.Unscoped().Model(&entities.Blob{}).Count(&count).Error)
	assert.Zero(t, count)

	// 软删除的挂载行在同一轮里变成悬挂并被硬删
	require.NoError(t, db.Unscoped().Model(&entities.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSweep_Idempotent(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newSweepService(t, db, store, nil, config.SweepConfig{})
	ctx := context.Background()

	blob := seedBlob(t, db, store, "dev/blog/images/b.jpg")
	att := seedAttachment(t, db, 1, blob.ID)
	require.NoError(t, db.Delete(att).Error)

	first, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.True(t, first.Changed())

	// 没有新写入时紧接着再跑一次：所有计数为 0，存储不再被触碰
	second, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.False(t, second.Changed())
	assert.Zero(t, second.OrphanBlobsPurged)
	assert.Zero(t, second.DanglingAttachmentsRemoved)
	assert.Empty(t, second.Failures)
	assert.Equal(t, 1, store.deletes(blob.StorageKey))
}

func TestSweep_DanglingAttachmentsRemoved_ValidUntouched(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newSweepService(t, db, store, nil, config.SweepConfig{})
	ctx := context.Background()

	valid := seedBlob(t, db, store, "dev/blog/images/valid.jpg")
	validAtt := seedAttachment(t, db, 1, valid.ID)
	dangling := seedAttachment(t, db, 1, 999999)

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.OrphanBlobsPurged)
	assert.Equal(t, 1, report.DanglingAttachmentsRemoved)
	assert.Equal(t, []uint64{dangling.ID}, report.RemovedAttachmentIDs)

	// 正常挂载与其 Blob 原样保留
	var att entities.Attachment
	require.NoError(t, db.First(&att, validAtt.ID).Error)
	assert.True(t, store.has(valid.StorageKey))
	assert.Zero(t, store.deletes(valid.StorageKey))
}

func TestSweep_GracePeriodProtectsFreshBlobs(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	// 宽限期 1 小时：刚创建的未挂载 Blob（直传确认窗口内）不可清扫
	svc := newSweepService(t, db, store, nil, config.SweepConfig{UnattachedGraceSeconds: 3600})
	ctx := context.Background()

	fresh := seedBlob(t, db, store, "dev/blog/images/fresh.jpg")

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.OrphanBlobsPurged)
	assert.Zero(t, store.deletes(fresh.StorageKey))

	var count int64
	require.NoError(t, db.Model(&entities.Blob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSweep_StoreFailureKeepsRowForRetry(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newSweepService(t, db, store, nil, config.SweepConfig{})
	ctx := context.Background()

	blob := seedBlob(t, db, store, "dev/blog/images/flaky.jpg")
	store.failDelete[blob.StorageKey] = true

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.OrphanBlobsPurged)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, blob.ID, report.Failures[0].BlobID)

	// 字节删除失败：台账行保留，等待下一轮
	var count int64
	require.NoError(t, db.Model(&entities.Blob{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 存储恢复后下一轮成功清除
	store.failDelete[blob.StorageKey] = false
	report, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrphanBlobsPurged)
	require.NoError(t, db.Unscoped().Model(&entities.Blob{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSweep_BatchSizeLimitsWork(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newSweepService(t, db, store, nil, config.SweepConfig{BatchSize: 2, ConcurrencyLevel: 2})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedBlob(t, db, store, "dev/blog/images/batch-"+string(rune('a'+i))+".jpg")
	}

	report, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrphanBlobsPurged)

	// 超出批次的留给下一轮，清扫幂等所以多跑几轮即可清完
	report, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrphanBlobsPurged)
	report, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.OrphanBlobsPurged)
}

func TestSweep_LockHeldReturnsInProgress(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	lock := &fakeSweepLock{held: true}
	svc := newSweepService(t, db, store, lock, config.SweepConfig{})

	_, err := svc.Sweep(context.Background())
	assert.True(t, errors.Is(err, myErrors.ErrSweepInProgress))
	assert.Equal(t, 1, lock.acquires)
	assert.Zero(t, lock.releases)
}

func TestSweep_LockAcquiredAndReleased(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	lock := &fakeSweepLock{}
	svc := newSweepService(t, db, store, lock, config.SweepConfig{})

	_, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, lock.acquires)
	assert.Equal(t, 1, lock.releases)
}
