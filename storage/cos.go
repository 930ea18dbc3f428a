package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Xushengqwer/go-common/core"
	"github.com/tencentyun/cos-go-sdk-v5"
	"go.uber.org/zap"

	"github.com/Xushengqwer/blog_service/config"
	"github.com/Xushengqwer/blog_service/myErrors"
)

// cosStorage 腾讯云 COS 后端。
type cosStorage struct {
	client              *cos.Client
	sdkBucketURL        *url.URL // SDK 操作时使用的存储桶 URL
	publicAccessURLBase *url.URL // 拼接对象公开访问 URL 的基础部分
	logger              *core.ZapLogger
	cfg                 *config.COSConfig
}

// NewCOSStorage 初始化腾讯云 COS 存储后端。
func NewCOSStorage(cfg *config.COSConfig, logger *core.ZapLogger) (ObjectStorage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("COS 配置不能为 nil")
	}
	if cfg.SecretID == "" || cfg.SecretKey == "" || cfg.BucketName == "" || cfg.AppID == "" || cfg.Region == "" {
		logger.Error("COS 配置不完整", zap.String("bucket", cfg.BucketName), zap.String("region", cfg.Region))
		return nil, fmt.Errorf("COS 配置不完整，缺少关键字段 (SecretID, SecretKey, BucketName, AppID, Region)")
	}

	sdkBucketURLStr := fmt.Sprintf("https://%s-%s.cos.%s.myqcloud.com", cfg.BucketName, cfg.AppID, cfg.Region)
	sdkURL, err := url.Parse(sdkBucketURLStr)
	if err != nil {
		return nil, fmt.Errorf("解析 COS 存储桶 SDK 操作 URL '%s' 失败: %w", sdkBucketURLStr, err)
	}

	// 公开访问基础 URL：优先用配置的 CDN / 自定义域名，否则用标准桶域名
	publicBase := sdkURL
	if cfg.BaseURL != "" {
		pu, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("解析 COS 公共访问 BaseURL '%s' 失败: %w", cfg.BaseURL, err)
		}
		publicBase = pu
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: sdkURL}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  cfg.SecretID,
			SecretKey: cfg.SecretKey,
		},
	})

	logger.Info("COS 存储后端初始化成功",
		zap.String("bucket", cfg.BucketName),
		zap.String("region", cfg.Region),
		zap.String("publicBase", publicBase.String()),
	)

	return &cosStorage{
		client:              client,
		sdkBucketURL:        sdkURL,
		publicAccessURLBase: publicBase,
		logger:              logger,
		cfg:                 cfg,
	}, nil
}

// ObjectURL 构建对象的完整公开访问 URL。
func (c *cosStorage) ObjectURL(key string) string {
	basePath := c.publicAccessURLBase.Path
	if basePath != "/" && !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	finalURL := *c.publicAccessURLBase
	finalURL.Path = basePath + strings.TrimPrefix(key, "/")
	return finalURL.String()
}

// Upload 上传字节到 COS 并返回公开访问 URL。
func (c *cosStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   contentType,
			ContentLength: size,
		},
	}

	resp, err := c.client.Object.Put(ctx, key, reader, opts)
	if err != nil {
		c.logger.Error("COS 上传 API 调用失败", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: 上传对象 '%s' 失败: %v", myErrors.ErrStoreUnavailable, key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("COS 上传返回非 200 状态码",
			zap.String("key", key), zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return "", fmt.Errorf("%w: 上传对象 '%s' 状态码 %d", myErrors.ErrStoreUnavailable, key, resp.StatusCode)
	}

	publicURL := c.ObjectURL(key)
	c.logger.Info("COS 上传成功", zap.String("key", key), zap.String("url", publicURL))
	return publicURL, nil
}

// Delete 删除 COS 对象。COS 对不存在的键同样返回 204，天然幂等。
func (c *cosStorage) Delete(ctx context.Context, key string) error {
	resp, err := c.client.Object.Delete(ctx, key)
	if err != nil {
		c.logger.Error("COS 删除 API 调用失败", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%w: 删除对象 '%s' 失败: %v", myErrors.ErrStoreUnavailable, key, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK, http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("COS 删除返回非成功状态码",
			zap.String("key", key), zap.Int("status", resp.StatusCode), zap.ByteString("body", body))
		return fmt.Errorf("%w: 删除对象 '%s' 状态码 %d", myErrors.ErrStoreUnavailable, key, resp.StatusCode)
	}
}

// PresignUpload 签出 COS 预签名 PUT 地址，浏览器可凭此直传字节，应用服务器不中转。
func (c *cosStorage) PresignUpload(ctx context.Context, key string, contentType string) (string, time.Duration, error) {
	expire := time.Duration(c.cfg.PresignExpireSeconds) * time.Second
	if expire <= 0 {
		expire = 15 * time.Minute
	}

	presigned, err := c.client.Object.GetPresignedURL(
		ctx, http.MethodPut, key,
		c.cfg.SecretID, c.cfg.SecretKey,
		expire, nil,
	)
	if err != nil {
		c.logger.Error("生成 COS 预签名上传 URL 失败", zap.String("key", key), zap.Error(err))
		return "", 0, fmt.Errorf("%w: 生成预签名 URL 失败: %v", myErrors.ErrStoreUnavailable, err)
	}
	return presigned.String(), expire, nil
}
