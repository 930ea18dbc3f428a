package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/google/uuid"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/constant"
)

// ObjectStorage 附件字节存储的统一抽象（Attachment Store）。
// 后端由配置在启动时选定并注入，调用方（台账、清扫、上传服务）不感知差异。
type ObjectStorage interface {
	// Upload 从 reader 上传字节并返回对象的公开访问 URL。
	// 键由调用方生成且一次性使用：重新上传永远用新键，不原地覆盖旧键内容。
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)

	// Delete 按键删除字节。幂等：键不存在不算错误。
	// 后端不可达时返回包装了 myErrors.ErrStoreUnavailable 的错误。
	Delete(ctx context.Context, key string) error

	// ObjectURL 返回对象的公开访问 URL（COS 为桶/CDN 域名，本地为静态服务路径）。
	ObjectURL(key string) string

	// PresignUpload 签出一个免经应用服务器中转的 PUT 上传地址。
	// COS 后端返回 SDK 预签名 URL；本地后端返回指向服务自身直传回传端点的
	// HMAC 签名 URL。返回地址及其有效期。
	PresignUpload(ctx context.Context, key string, contentType string) (uploadURL string, expiresIn time.Duration, err error)
}

// New 根据配置构造存储后端。Kind 不合法时报错，绝不静默回落。
func New(cfg *config.StorageConfig, logger *core.ZapLogger) (ObjectStorage, error) {
	switch cfg.Kind {
	case config.StorageBackendLocal:
		return NewLocalStorage(&cfg.Local, logger)
	case config.StorageBackendCOS:
		return NewCOSStorage(&cfg.COS, logger)
	default:
		return nil, fmt.Errorf("未知的存储后端类型: %q (支持 %q / %q)",
			cfg.Kind, config.StorageBackendLocal, config.StorageBackendCOS)
	}
}

// NewImageObjectKey 为一次图片上传分配不透明存储键。
// 形如: <envPrefix>/blog/images/YYYYMMDD/<uuid><ext>。
// envPrefix 隔离环境；日期段只为便于人工巡查，寻址本身只依赖整个键的唯一性。
func NewImageObjectKey(envPrefix, originalFilename string) string {
	datePrefix := time.Now().Format("20060102")
	ext := strings.ToLower(filepath.Ext(originalFilename))

	key := fmt.Sprintf("%s%s/%s%s", constant.StorageKeyPrefixImages, datePrefix, uuid.NewString(), ext)
	if envPrefix != "" {
		key = strings.TrimSuffix(envPrefix, "/") + "/" + key
	}
	return key
}
