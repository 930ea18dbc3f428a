package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

func newUploadService(t *testing.T, db *gorm.DB, store *fakeStore) service.UploadService {
	logger := newTestLogger(t)
	return service.NewUploadService(
		db,
		mysql.NewPostRepository(db, logger),
		mysql.NewBlobRepository(db),
		mysql.NewAttachmentRepository(db),
		store,
		"test",
		logger,
	)
}

func createPostRow(t *testing.T, db *gorm.DB) *entities.Post {
	post := &entities.Post{Title: "t", Content: "c", AuthorName: "a", Published: true}
	require.NoError(t, db.Create(post).Error)
	return post
}

func TestUploadService_CreateDirectUpload_CreatesBlobEagerly(t *testing.T) {
	db := setupDB(t)
	svc := newUploadService(t, db, newFakeStore())
	ctx := context.Background()

	result, err := svc.CreateDirectUpload(ctx, &dto.CreateDirectUploadRequest{
		Filename: "photo.jpg", ContentType: "image/jpeg", ByteSize: 2048,
	})
	require.NoError(t, err)
	assert.NotZero(t, result.BlobID)
	assert.NotEmpty(t, result.UploadURL)
	assert.NotEmpty(t, result.Key)
	assert.Positive(t, result.ExpiresIn)

	// Blob 行在签发时就已存在（上传放弃时由清扫回收）
	var blob entities.Blob
	require.NoError(t, db.First(&blob, result.BlobID).Error)
	assert.Equal(t, result.Key, blob.StorageKey)
	assert.Equal(t, "photo.jpg", blob.Filename)
}

func TestUploadService_ConfirmAttachment_AppendsPosition(t *testing.T) {
	db := setupDB(t)
	svc := newUploadService(t, db, newFakeStore())
	ctx := context.Background()
	post := createPostRow(t, db)

	first, err := svc.CreateDirectUpload(ctx, &dto.CreateDirectUploadRequest{
		Filename: "a.jpg", ContentType: "image/jpeg", ByteSize: 1,
	})
	require.NoError(t, err)
	second, err := svc.CreateDirectUpload(ctx, &dto.CreateDirectUploadRequest{
		Filename: "b.jpg", ContentType: "image/jpeg", ByteSize: 1,
	})
	require.NoError(t, err)

	att1, err := svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: first.BlobID, OwnerType: constant.OwnerTypePost, OwnerID: post.ID, SlotName: constant.SlotPostImages,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, att1.Position)

	att2, err := svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: second.BlobID, OwnerType: constant.OwnerTypePost, OwnerID: post.ID, SlotName: constant.SlotPostImages,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, att2.Position)

	images, err := svc.ListAttachments(ctx, constant.OwnerTypePost, post.ID, constant.SlotPostImages)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "a.jpg", images[0].Filename)
	assert.Equal(t, "b.jpg", images[1].Filename)
}

func TestUploadService_ConfirmAttachment_RejectsUnknownOwnerOrSlot(t *testing.T) {
	db := setupDB(t)
	svc := newUploadService(t, db, newFakeStore())
	ctx := context.Background()
	post := createPostRow(t, db)

	upload, err := svc.CreateDirectUpload(ctx, &dto.CreateDirectUploadRequest{
		Filename: "a.jpg", ContentType: "image/jpeg", ByteSize: 1,
	})
	require.NoError(t, err)

	// 未知归属方类型
	_, err = svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: upload.BlobID, OwnerType: "page", OwnerID: post.ID, SlotName: constant.SlotPostImages,
	})
	assert.True(t, errors.Is(err, myErrors.ErrValidation))

	// 未知插槽
	_, err = svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: upload.BlobID, OwnerType: constant.OwnerTypePost, OwnerID: post.ID, SlotName: "cover",
	})
	assert.True(t, errors.Is(err, myErrors.ErrValidation))

	// 归属方不存在
	_, err = svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: upload.BlobID, OwnerType: constant.OwnerTypePost, OwnerID: 987654, SlotName: constant.SlotPostImages,
	})
	assert.True(t, errors.Is(err, myErrors.ErrValidation))
}

func TestUploadService_ConfirmAttachment_MissingBlobIsDangling(t *testing.T) {
	db := setupDB(t)
	svc := newUploadService(t, db, newFakeStore())
	ctx := context.Background()
	post := createPostRow(t, db)

	// Blob 从未存在（或已被清扫）：写路径拒绝制造悬挂引用
	_, err := svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: 31337, OwnerType: constant.OwnerTypePost, OwnerID: post.ID, SlotName: constant.SlotPostImages,
	})
	assert.True(t, errors.Is(err, myErrors.ErrDanglingReference))

	// 失败的确认不留挂载行
	var count int64
	require.NoError(t, db.Model(&entities.Attachment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUploadService_DetachLeavesBlobForSweep(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newUploadService(t, db, store)
	ctx := context.Background()
	post := createPostRow(t, db)

	upload, err := svc.CreateDirectUpload(ctx, &dto.CreateDirectUploadRequest{
		Filename: "a.jpg", ContentType: "image/jpeg", ByteSize: 1,
	})
	require.NoError(t, err)
	att, err := svc.ConfirmAttachment(ctx, &dto.ConfirmAttachmentRequest{
		BlobID: upload.BlobID, OwnerType: constant.OwnerTypePost, OwnerID: post.ID, SlotName: constant.SlotPostImages,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Detach(ctx, att.ID))

	images, err := svc.ListAttachments(ctx, constant.OwnerTypePost, post.ID, constant.SlotPostImages)
	require.NoError(t, err)
	assert.Empty(t, images)

	// Blob 不随解除挂载而删除
	var blob entities.Blob
	require.NoError(t, db.First(&blob, upload.BlobID).Error)
}
