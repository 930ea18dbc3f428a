package vo

// --- 用于 Swagger 文档的响应包装器 ---
// 对应 response.APIResponse[T]，swag 不支持泛型，逐个展开。

// PostDetailResponseWrapper 对应 response.APIResponse[vo.PostDetailVO]
type PostDetailResponseWrapper struct {
	Code    int          `json:"code" example:"0"`
	Message string       `json:"message,omitempty" example:"success"`
	Data    PostDetailVO `json:"data"`
}

// PostListResponseWrapper 对应 response.APIResponse[[]vo.PostVO]
type PostListResponseWrapper struct {
	Code    int      `json:"code" example:"0"`
	Message string   `json:"message,omitempty" example:"success"`
	Data    []PostVO `json:"data"`
}

// CommentResponseWrapper 对应 response.APIResponse[vo.CommentVO]
type CommentResponseWrapper struct {
	Code    int       `json:"code" example:"0"`
	Message string    `json:"message,omitempty" example:"success"`
	Data    CommentVO `json:"data"`
}

// CommentListResponseWrapper 对应 response.APIResponse[[]vo.CommentVO]
type CommentListResponseWrapper struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message,omitempty" example:"success"`
	Data    []CommentVO `json:"data"`
}

// AttachmentResponseWrapper 对应 response.APIResponse[vo.AttachmentVO]
type AttachmentResponseWrapper struct {
	Code    int          `json:"code" example:"0"`
	Message string       `json:"message,omitempty" example:"success"`
	Data    AttachmentVO `json:"data"`
}

// AttachmentListResponseWrapper 对应 response.APIResponse[[]vo.AttachmentVO]
type AttachmentListResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    []AttachmentVO `json:"data"`
}

// DirectUploadResponseWrapper 对应 response.APIResponse[vo.DirectUploadVO]
type DirectUploadResponseWrapper struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message,omitempty" example:"success"`
	Data    DirectUploadVO `json:"data"`
}

// SweepReportResponseWrapper 对应 response.APIResponse[vo.SweepReportVO]
type SweepReportResponseWrapper struct {
	Code    int           `json:"code" example:"0"`
	Message string        `json:"message,omitempty" example:"success"`
	Data    SweepReportVO `json:"data"`
}

// BaseResponseWrapper 只包含 Code 和 Message 的响应。
// 用于错误情况（RespondError 返回时 Data 为 nil 且 omitempty）
// 以及 DELETE 之类只需确认结果的成功响应。
type BaseResponseWrapper struct {
	Code    int    `json:"code" example:"0"`
	Message string `json:"message" example:"success"`
}
