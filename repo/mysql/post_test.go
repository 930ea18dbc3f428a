package mysql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/repo/mysql"
)

func TestPostRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewPostRepository(db, newTestLogger(t))
	ctx := context.Background()

	post := &entities.Post{Title: "标题", Content: "正文", AuthorName: "作者", Published: true}
	require.NoError(t, repo.CreatePost(ctx, db, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "标题", got.Title)
	assert.True(t, got.Published)
}

func TestPostRepository_GetPostByID_NotFound(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewPostRepository(db, newTestLogger(t))

	_, err := repo.GetPostByID(context.Background(), 12345)
	assert.True(t, errors.Is(err, commonerrors.ErrRepoNotFound))
}

func TestPostRepository_UpdatePost_PublishedFalse(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewPostRepository(db, newTestLogger(t))
	ctx := context.Background()

	post := &entities.Post{Title: "t", Content: "c", AuthorName: "a", Published: true}
	require.NoError(t, repo.CreatePost(ctx, db, post))

	// Published 回退为 false 也必须真正写入
	post.Published = false
	post.Title = "new"
	require.NoError(t, repo.UpdatePost(ctx, db, post))

	got, err := repo.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Title)
	assert.False(t, got.Published)
}

func TestPostRepository_DeleteIsSoft(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewPostRepository(db, newTestLogger(t))
	ctx := context.Background()

	post := &entities.Post{Title: "t", Content: "c", AuthorName: "a"}
	require.NoError(t, repo.CreatePost(ctx, db, post))
	require.NoError(t, repo.DeletePostByID(ctx, db, post.ID))

	_, err := repo.GetPostByID(ctx, post.ID)
	assert.True(t, errors.Is(err, commonerrors.ErrRepoNotFound))

	// 软删除：行仍在表里
	var count int64
	require.NoError(t, db.Unscoped().Model(&entities.Post{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// 重复删除返回未找到
	err = repo.DeletePostByID(ctx, db, post.ID)
	assert.True(t, errors.Is(err, commonerrors.ErrRepoNotFound))
}

func TestPostRepository_ListPublishedPosts(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewPostRepository(db, newTestLogger(t))
	ctx := context.Background()

	require.NoError(t, repo.CreatePost(ctx, db, &entities.Post{Title: "draft", Content: "c", AuthorName: "a", Published: false}))
	require.NoError(t, repo.CreatePost(ctx, db, &entities.Post{Title: "p1", Content: "c", AuthorName: "a", Published: true}))
	require.NoError(t, repo.CreatePost(ctx, db, &entities.Post{Title: "p2", Content: "c", AuthorName: "a", Published: true}))

	posts, err := repo.ListPublishedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// 创建时间倒序，同秒内按 ID 倒序
	assert.Equal(t, "p2", posts[0].Title)
	assert.Equal(t, "p1", posts[1].Title)
}

func TestCommentRepository_ListAndCascade(t *testing.T) {
	db := setupDB(t)
	repo := mysql.NewCommentRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.CreateComment(ctx, db, &entities.Comment{PostID: 1, AuthorName: "a", Content: "first"}))
	require.NoError(t, repo.CreateComment(ctx, db, &entities.Comment{PostID: 1, AuthorName: "b", Content: "second"}))
	require.NoError(t, repo.CreateComment(ctx, db, &entities.Comment{PostID: 2, AuthorName: "c", Content: "other"}))

	comments, err := repo.ListByPostID(ctx, 1)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)

	require.NoError(t, repo.DeleteByPostID(ctx, db, 1))
	comments, err = repo.ListByPostID(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// 其它帖子的评论不受影响
	comments, err = repo.ListByPostID(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
