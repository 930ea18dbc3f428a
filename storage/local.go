package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/myErrors"
)

// LocalStorage 本地磁盘后端（开发/测试）。
// 直传模式下没有云端可签，改为签出指向服务自身回传端点的 URL，
// 用 HMAC-SHA256 令牌限制可写的键和有效期，语义与云端预签名对齐。
type LocalStorage struct {
	rootDir       string
	publicBaseURL string
	uploadBaseURL string
	secret        []byte
	presignExpire time.Duration
	logger        *core.ZapLogger
}

// NewLocalStorage 初始化本地磁盘存储后端，启动时即创建根目录。
func NewLocalStorage(cfg *config.LocalConfig, logger *core.ZapLogger) (*LocalStorage, error) {
	if cfg == nil || cfg.RootDir == "" {
		return nil, fmt.Errorf("本地存储配置不完整，缺少 rootDir")
	}
	if err := os.MkdirAll(cfg.RootDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建本地存储根目录 '%s' 失败: %w", cfg.RootDir, err)
	}

	expire := time.Duration(cfg.PresignExpireSeconds) * time.Second
	if expire <= 0 {
		expire = 15 * time.Minute
	}

	logger.Info("本地磁盘存储后端初始化成功", zap.String("rootDir", cfg.RootDir))
	return &LocalStorage{
		rootDir:       cfg.RootDir,
		publicBaseURL: strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		uploadBaseURL: strings.TrimSuffix(cfg.UploadBaseURL, "/"),
		secret:        []byte(cfg.SigningSecret),
		presignExpire: expire,
		logger:        logger,
	}, nil
}

// diskPath 把存储键映射为磁盘路径，并拒绝逃出根目录的键。
func (l *LocalStorage) diskPath(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("非法的存储键: %q", key)
	}
	return filepath.Join(l.rootDir, cleaned), nil
}

// Upload 把字节写入磁盘并返回公开访问 URL。
func (l *LocalStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := l.diskPath(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: 创建目录失败: %v", myErrors.ErrStoreUnavailable, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: 创建文件失败: %v", myErrors.ErrStoreUnavailable, err)
	}
	written, err := io.Copy(f, reader)
	closeErr := f.Close()
	if err != nil {
		return "", fmt.Errorf("%w: 写入文件失败: %v", myErrors.ErrStoreUnavailable, err)
	}
	if closeErr != nil {
		return "", fmt.Errorf("%w: 关闭文件失败: %v", myErrors.ErrStoreUnavailable, closeErr)
	}

	l.logger.Info("本地存储写入成功",
		zap.String("key", key), zap.Int64("bytes", written), zap.String("contentType", contentType))
	return l.ObjectURL(key), nil
}

// Delete 删除键对应的文件。幂等：文件不存在直接返回 nil。
func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := l.diskPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: 删除文件失败: %v", myErrors.ErrStoreUnavailable, err)
	}
	l.logger.Info("本地存储删除成功", zap.String("key", key))
	return nil
}

// ObjectURL 返回对象的公开访问 URL（由静态文件服务或反向代理提供）。
func (l *LocalStorage) ObjectURL(key string) string {
	return l.publicBaseURL + "/" + strings.TrimPrefix(key, "/")
}

// PresignUpload 签出指向本服务直传回传端点的 PUT 地址。
func (l *LocalStorage) PresignUpload(ctx context.Context, key string, contentType string) (string, time.Duration, error) {
	expiresAt := time.Now().Add(l.presignExpire).Unix()
	token := l.uploadToken(key, expiresAt)
	uploadURL := fmt.Sprintf("%s/%s?token=%s&expires=%d", l.uploadBaseURL, key, token, expiresAt)
	return uploadURL, l.presignExpire, nil
}

// VerifyUploadToken 校验直传回传请求的令牌。令牌不匹配或已过期均拒绝。
func (l *LocalStorage) VerifyUploadToken(key, token string, expiresAt int64) error {
	if time.Now().Unix() > expiresAt {
		return myErrors.ErrDirectUploadTokenInvalid
	}
	expected := l.uploadToken(key, expiresAt)
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return myErrors.ErrDirectUploadTokenInvalid
	}
	return nil
}

// uploadToken 计算 key + 过期时间的 HMAC-SHA256 令牌。
func (l *LocalStorage) uploadToken(key string, expiresAt int64) string {
	mac := hmac.New(sha256.New, l.secret)
	mac.Write([]byte(key))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(expiresAt, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
