package config

// StorageBackendKind 存储后端类型的合法取值。
const (
	StorageBackendLocal = "local" // 本地磁盘（开发/测试）
	StorageBackendCOS   = "cos"   // 腾讯云 COS（生产）
)

// StorageConfig 附件字节存储的配置。
// Kind 决定启用哪个后端；两个后端的键空间布局一致，
// EnvPrefix 用于在共享桶/共享目录里隔离不同环境（例如 "dev"、"prod"）。
type StorageConfig struct {
	Kind      string      `mapstructure:"kind" json:"kind" yaml:"kind"`
	EnvPrefix string      `mapstructure:"envPrefix" json:"envPrefix" yaml:"envPrefix"`
	COS       COSConfig   `mapstructure:"cos" json:"cos" yaml:"cos"`
	Local     LocalConfig `mapstructure:"local" json:"local" yaml:"local"`
}

// COSConfig 腾讯云 COS 后端配置。
type COSConfig struct {
	SecretID   string `mapstructure:"secretId" json:"secretId" yaml:"secretId"`
	SecretKey  string `mapstructure:"secretKey" json:"secretKey" yaml:"secretKey"`
	AppID      string `mapstructure:"appId" json:"appId" yaml:"appId"`
	Region     string `mapstructure:"region" json:"region" yaml:"region"`
	BucketName string `mapstructure:"bucketName" json:"bucketName" yaml:"bucketName"`
	// BaseURL 可选，配置后用它拼接对象的公开访问 URL（CDN 或自定义域名）；
	// 为空时使用存储桶的标准访问域名。
	BaseURL string `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
	// PresignExpireSeconds 直传预签名 URL 的有效期（秒），默认 900。
	PresignExpireSeconds int `mapstructure:"presignExpireSeconds" json:"presignExpireSeconds" yaml:"presignExpireSeconds"`
}

// LocalConfig 本地磁盘后端配置。
// 直传模式下，本地后端签出的上传地址指向服务自身的回传端点，
// 用 HMAC 令牌防止任意写入，语义上与云端预签名 URL 对齐。
type LocalConfig struct {
	// RootDir 字节落盘的根目录。
	RootDir string `mapstructure:"rootDir" json:"rootDir" yaml:"rootDir"`
	// PublicBaseURL 对象公开访问 URL 的前缀（由静态文件服务或反向代理提供）。
	PublicBaseURL string `mapstructure:"publicBaseUrl" json:"publicBaseUrl" yaml:"publicBaseUrl"`
	// UploadBaseURL 直传回传端点的前缀，例如 http://localhost:8082/api/v1/blog/uploads/local。
	UploadBaseURL string `mapstructure:"uploadBaseUrl" json:"uploadBaseUrl" yaml:"uploadBaseUrl"`
	// SigningSecret HMAC 直传令牌的签名密钥。
	SigningSecret string `mapstructure:"signingSecret" json:"signingSecret" yaml:"signingSecret"`
	// PresignExpireSeconds 直传令牌有效期（秒），默认 900。
	PresignExpireSeconds int `mapstructure:"presignExpireSeconds" json:"presignExpireSeconds" yaml:"presignExpireSeconds"`
}
