package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	commonConfig "github.com/Xushengqwer/go-common/config"
	"github.com/Xushengqwer/go-common/core"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Xushengqwer/blog_service/models/entities"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&entities.Post{},
		&entities.Comment{},
		&entities.Blob{},
		&entities.Attachment{},
	))
	return db
}

func newTestLogger(t *testing.T) *core.ZapLogger {
	logger, err := core.NewZapLogger(commonConfig.ZapConfig{})
	require.NoError(t, err)
	return logger
}

// fakeStore 内存对象存储，记录每个键的删除调用次数并支持按键注入删除失败。
type fakeStore struct {
	mu          sync.Mutex
	objects     map[string][]byte
	deleteCalls map[string]int
	failDelete  map[string]bool
	failUpload  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:     make(map[string][]byte),
		deleteCalls: make(map[string]int),
		failDelete:  make(map[string]bool),
	}
}

func (f *fakeStore) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", fmt.Errorf("fake store: upload unavailable")
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return f.ObjectURL(key), nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls[key]++
	if f.failDelete[key] {
		return fmt.Errorf("fake store: delete unavailable")
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeStore) ObjectURL(key string) string {
	return "http://store.test/" + key
}

func (f *fakeStore) PresignUpload(ctx context.Context, key string, contentType string) (string, time.Duration, error) {
	return "http://store.test/upload/" + key, 15 * time.Minute, nil
}

func (f *fakeStore) deletes(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls[key]
}

func (f *fakeStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// fakeSweepLock 可配置占用状态的清扫锁。
type fakeSweepLock struct {
	held     bool
	acquires int
	releases int
}

func (l *fakeSweepLock) TryAcquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	l.acquires++
	if l.held {
		return "", false, nil
	}
	return "test-token", true, nil
}

func (l *fakeSweepLock) Release(ctx context.Context, token string) error {
	l.releases++
	return nil
}

// makeImageFiles 构造可打开的 multipart 文件头，模拟表单图片上传。
func makeImageFiles(t *testing.T, names ...string) []*multipart.FileHeader {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes for " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	reader := multipart.NewReader(&buf, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}
