package vo

import (
	"github.com/Xushengqwer/blog_service/models/entities"
	"github.com/Xushengqwer/blog_service/storage"
)

// AttachmentVO 单条可解析附件的视图对象。
// 只有 Blob 引用能解析的附件才会被转换成 VO，URL 在转换时由 Store 生成。
type AttachmentVO struct {
	ID          uint64 `json:"id"`           // Attachment ID
	BlobID      uint64 `json:"blob_id"`      // 引用的 Blob ID
	SlotName    string `json:"slot_name"`    // 插槽名
	Position    int    `json:"position"`     // 插槽内顺序
	Filename    string `json:"filename"`     // 原始文件名
	ContentType string `json:"content_type"` // MIME 类型
	ByteSize    int64  `json:"byte_size"`    // 字节大小
	URL         string `json:"url"`          // 公开访问 URL（COS 域名或本地服务路径）
}

// NewAttachmentVOFromEntity 将 Attachment 实体转换为 AttachmentVO。
// 悬挂行（Blob 为 nil）返回 false，调用方跳过即可，这里不负责报错。
func NewAttachmentVOFromEntity(att *entities.Attachment, store storage.ObjectStorage) (AttachmentVO, bool) {
	if att == nil || att.Blob == nil {
		return AttachmentVO{}, false
	}
	return AttachmentVO{
		ID:          att.ID,
		BlobID:      att.BlobID,
		SlotName:    att.SlotName,
		Position:    att.Position,
		Filename:    att.Blob.Filename,
		ContentType: att.Blob.ContentType,
		ByteSize:    att.Blob.ByteSize,
		URL:         store.ObjectURL(att.Blob.StorageKey),
	}, true
}

// NewAttachmentVOsFromEntities 将附件实体切片转换为 VO 切片，静默跳过悬挂行。
func NewAttachmentVOsFromEntities(atts []*entities.Attachment, store storage.ObjectStorage) []AttachmentVO {
	vos := make([]AttachmentVO, 0, len(atts))
	for _, att := range atts {
		if vo, ok := NewAttachmentVOFromEntity(att, store); ok {
			vos = append(vos, vo)
		}
	}
	return vos
}

// DirectUploadVO 申请直传的响应视图对象。
type DirectUploadVO struct {
	BlobID    uint64 `json:"blob_id"`    // 乐观创建的 Blob ID，上传完成后用于确认挂载
	UploadURL string `json:"upload_url"` // 预签名 PUT 地址（COS）或本地回传地址
	Key       string `json:"key"`        // 分配的存储键
	ExpiresIn int64  `json:"expires_in"` // 上传地址有效期（秒）
}
