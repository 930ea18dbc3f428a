package dto

// CreateDirectUploadRequest 申请直传的请求数据结构。
// 服务端据此生成存储键、乐观创建 Blob 行并签出上传地址；
// 字节由客户端直接上传到存储后端，应用服务器不中转。
type CreateDirectUploadRequest struct {
	Filename    string `json:"filename" binding:"required,max=255"`     // 原始文件名
	ContentType string `json:"content_type" binding:"required,max=100"` // MIME 类型
	ByteSize    int64  `json:"byte_size" binding:"required,gt=0"`       // 字节大小
	Checksum    string `json:"checksum" binding:"omitempty,max=64"`     // 内容校验和（客户端申报，可选）
}

// ListAttachmentsRequest 查询某归属方某插槽下附件列表的查询参数。
type ListAttachmentsRequest struct {
	OwnerType string `form:"owner_type" binding:"required,max=50"` // 归属方类型
	OwnerID   uint64 `form:"owner_id" binding:"required"`          // 归属方 ID
	SlotName  string `form:"slot_name" binding:"required,max=50"`  // 插槽名
}

// ConfirmAttachmentRequest 直传完成后确认挂载的请求数据结构。
// 上传失败或被放弃时客户端不会发起本请求，乐观创建的 Blob 留给清扫任务回收。
type ConfirmAttachmentRequest struct {
	BlobID    uint64 `json:"blob_id" binding:"required"`              // 申请直传时返回的 Blob ID
	OwnerType string `json:"owner_type" binding:"required,max=50"`    // 归属方类型，目前仅支持 "post"
	OwnerID   uint64 `json:"owner_id" binding:"required"`             // 归属方 ID
	SlotName  string `json:"slot_name" binding:"required,max=50"`     // 插槽名，目前仅支持 "images"
	Position  *int   `json:"position" binding:"omitempty,gte=0"`      // 插槽内顺序，缺省时追加到末尾
}
