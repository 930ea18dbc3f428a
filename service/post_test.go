package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/constant"
	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/repo/mysql"
	"github.com/Xushengqwer/blog_service/service"
)

func newPostService(t *testing.T, db *gorm.DB, store *fakeStore) service.PostService {
	logger := newTestLogger(t)
	return service.NewPostService(
		db,
		mysql.NewPostRepository(db, logger),
		mysql.NewCommentRepository(db),
		mysql.NewBlobRepository(db),
		mysql.NewAttachmentRepository(db),
		store,
		"test",
		nil,
		logger,
	)
}

func TestPostService_CreatePost_NoImages(t *testing.T) {
	db := setupDB(t)
	svc := newPostService(t, db, newFakeStore())
	ctx := context.Background()

	detail, err := svc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "你好", Content: "正文", AuthorName: "张三", Published: true,
	}, nil)
	require.NoError(t, err)
	assert.NotZero(t, detail.ID)
	assert.Equal(t, "正文", detail.Content)
	assert.Empty(t, detail.Images)
	assert.Empty(t, detail.ImageWarnings)
}

func TestPostService_CreatePost_Validation(t *testing.T) {
	db := setupDB(t)
	svc := newPostService(t, db, newFakeStore())

	_, err := svc.CreatePost(context.Background(), &dto.CreatePostRequest{
		Title: "  ", Content: "c", AuthorName: "a",
	}, nil)
	assert.True(t, errors.Is(err, myErrors.ErrValidation))
}

func TestPostService_CreatePost_WithImages(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newPostService(t, db, store)
	ctx := context.Background()

	files := makeImageFiles(t, "one.jpg", "two.png")
	detail, err := svc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "t", Content: "c", AuthorName: "a", Published: true,
	}, files)
	require.NoError(t, err)
	require.Len(t, detail.Images, 2)
	assert.Empty(t, detail.ImageWarnings)

	// 插槽内顺序与上传顺序一致
	assert.Equal(t, 0, detail.Images[0].Position)
	assert.Equal(t, 1, detail.Images[1].Position)
	assert.Equal(t, "one.jpg", detail.Images[0].Filename)

	// 每张图片都真正写入了存储
	for _, img := range detail.Images {
		assert.NotEmpty(t, img.URL)
	}
	var blobCount int64
	require.NoError(t, db.Model(&entities.Blob{}).Count(&blobCount).Error)
	assert.Equal(t, int64(2), blobCount)
}

func TestPostService_CreatePost_ImageFailureIsPartial(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	store.failUpload = true
	svc := newPostService(t, db, store)
	ctx := context.Background()

	files := makeImageFiles(t, "broken.jpg")
	detail, err := svc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "t", Content: "c", AuthorName: "a",
	}, files)

	// 图片全部失败也不影响帖子保存
	require.NoError(t, err)
	assert.NotZero(t, detail.ID)
	assert.Empty(t, detail.Images)
	require.Len(t, detail.ImageWarnings, 1)
	assert.Contains(t, detail.ImageWarnings[0], "images:")

	// 失败的图片不留台账垃圾
	var blobCount int64
	require.NoError(t, db.Model(&entities.Blob{}).Count(&blobCount).Error)
	assert.Zero(t, blobCount)
}

func TestPostService_GetPostByID_SkipsDanglingImages(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newPostService(t, db, store)
	ctx := context.Background()

	detail, err := svc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "t", Content: "c", AuthorName: "a",
	}, makeImageFiles(t, "keep.jpg"))
	require.NoError(t, err)
	require.Len(t, detail.Images, 1)

	// 直接制造一条悬挂挂载，模拟台账损坏
	dangling := &entities.Attachment{
		OwnerType: constant.OwnerTypePost,
		OwnerID:   detail.ID,
		SlotName:  constant.SlotPostImages,
		BlobID:    424242,
		Position:  5,
	}
	require.NoError(t, db.Create(dangling).Error)

	// 详情读取绝不因坏行报错，坏行被静默跳过
	got, err := svc.GetPostByID(ctx, detail.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 1)
	assert.Equal(t, "keep.jpg", got.Images[0].Filename)
}

func TestPostService_DeletePost_Cascades(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	svc := newPostService(t, db, store)
	commentSvc := service.NewCommentService(db, mysql.NewPostRepository(db, newTestLogger(t)), mysql.NewCommentRepository(db), newTestLogger(t))
	ctx := context.Background()

	detail, err := svc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "t", Content: "c", AuthorName: "a",
	}, makeImageFiles(t, "img.jpg"))
	require.NoError(t, err)
	_, err = commentSvc.CreateComment(ctx, detail.ID, &dto.CreateCommentRequest{AuthorName: "b", Content: "nice"})
	require.NoError(t, err)

	require.NoError(t, svc.DeletePost(ctx, detail.ID))

	// 帖子、评论、挂载全部软删除
	_, err = svc.GetPostByID(ctx, detail.ID)
	assert.True(t, errors.Is(err, commonerrors.ErrRepoNotFound))
	var liveComments, liveAtts int64
	require.NoError(t, db.Model(&entities.Comment{}).Count(&liveComments).Error)
	require.NoError(t, db.Model(&entities.Attachment{}).Count(&liveAtts).Error)
	assert.Zero(t, liveComments)
	assert.Zero(t, liveAtts)

	// Blob 与字节此刻原样保留，回收是清扫任务的职责
	var blobCount int64
	require.NoError(t, db.Model(&entities.Blob{}).Count(&blobCount).Error)
	assert.Equal(t, int64(1), blobCount)
	var blob entities.Blob
	require.NoError(t, db.First(&blob).Error)
	assert.True(t, store.has(blob.StorageKey))
	assert.Zero(t, store.deletes(blob.StorageKey))
}

func TestPostService_DeleteThenSweep_ReclaimsEverything(t *testing.T) {
	db := setupDB(t)
	store := newFakeStore()
	postSvc := newPostService(t, db, store)
	sweepSvc := newSweepService(t, db, store, nil, config.SweepConfig{})
	ctx := context.Background()

	detail, err := postSvc.CreatePost(ctx, &dto.CreatePostRequest{
		Title: "t", Content: "c", AuthorName: "a",
	}, makeImageFiles(t, "a.jpg", "b.jpg"))
	require.NoError(t, err)
	require.Len(t, detail.Images, 2)
	require.NoError(t, postSvc.DeletePost(ctx, detail.ID))

	report, err := sweepSvc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.OrphanBlobsPurged)
	assert.Equal(t, 2, report.DanglingAttachmentsRemoved)

	// 台账与存储都回到一致的空状态
	var blobs, atts int64
	require.NoError(t, db.Unscoped().Model(&entities.Blob{}).Count(&blobs).Error)
	require.NoError(t, db.Unscoped().Model(&entities.Attachment{}).Count(&atts).Error)
	assert.Zero(t, blobs)
	assert.Zero(t, atts)
	for _, key := range report.PurgedBlobKeys {
		assert.False(t, store.has(key))
	}
}
