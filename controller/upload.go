package controller

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/service"
)

// UploadController 定义直传与附件管理控制器的结构体
type UploadController struct {
	uploadService service.UploadService
}

// NewUploadController 构造函数，用于创建 UploadController 实例
func NewUploadController(uploadService service.UploadService) *UploadController {
	return &UploadController{uploadService: uploadService}
}

// CreateDirectUpload 处理申请直传的 HTTP 请求
// @Summary      申请一次文件直传
// @Description  服务端分配存储键、登记文件元数据并签出限时上传地址；客户端拿到地址后将字节直接 PUT 到存储后端，应用服务器不中转。上传被放弃的文件会在宽限期后被后台清扫回收，客户端无需善后。
// @Tags         uploads (直传)
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateDirectUploadRequest true "文件元数据"
// @Success      200 {object} vo.DirectUploadResponseWrapper "直传地址签发成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      500 {object} vo.BaseResponseWrapper "签发直传地址时发生内部服务器错误"
// @Router       /api/v1/blog/uploads [post]
func (ctrl *UploadController) CreateDirectUpload(c *gin.Context) {
	var req dto.CreateDirectUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	uploadVO, serviceErr := ctrl.uploadService.CreateDirectUpload(c.Request.Context(), &req)
	if serviceErr != nil {
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "签发直传地址失败: "+serviceErr.Error())
		return
	}

	response.RespondSuccess(c, uploadVO, "直传地址签发成功")
}

// ConfirmAttachment 处理直传完成后确认挂载的 HTTP 请求
// @Summary      确认直传并挂载附件
// @Description  直传完成后将文件挂载到归属方的插槽上。归属方或插槽不合法返回 400；文件已被清扫回收（上传到确认之间拖得太久）返回 409，客户端应重新发起直传。
// @Tags         uploads (直传)
// @Accept       json
// @Produce      json
// @Param        request body dto.ConfirmAttachmentRequest true "挂载信息"
// @Success      200 {object} vo.AttachmentResponseWrapper "挂载成功"
// @Failure      400 {object} vo.BaseResponseWrapper "归属方或插槽不合法"
// @Failure      409 {object} vo.BaseResponseWrapper "文件已不存在，需重新上传"
// @Failure      500 {object} vo.BaseResponseWrapper "确认挂载时发生内部服务器错误"
// @Router       /api/v1/blog/attachments/confirm [post]
func (ctrl *UploadController) ConfirmAttachment(c *gin.Context) {
	var req dto.ConfirmAttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	attachmentVO, serviceErr := ctrl.uploadService.ConfirmAttachment(c.Request.Context(), &req)
	if serviceErr != nil {
		switch {
		case errors.Is(serviceErr, myErrors.ErrValidation):
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, serviceErr.Error())
		case errors.Is(serviceErr, myErrors.ErrDanglingReference):
			response.RespondError(c, http.StatusConflict, response.ErrCodeClientInvalidInput, serviceErr.Error())
		default:
			response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "确认挂载失败: "+serviceErr.Error())
		}
		return
	}

	response.RespondSuccess(c, attachmentVO, "附件挂载成功")
}

// ListAttachments 处理获取附件列表的 HTTP 请求
// @Summary      获取归属方某插槽下的附件列表
// @Description  返回指定归属方指定插槽下全部可解析的附件，按插槽内顺序排列。引用已失效的附件被静默过滤。
// @Tags         uploads (直传)
// @Accept       json
// @Produce      json
// @Param        owner_type query string true "归属方类型 (post)" maxLength(50)
// @Param        owner_id query uint64 true "归属方 ID" Format(uint64)
// @Param        slot_name query string true "插槽名 (images)" maxLength(50)
// @Success      200 {object} vo.AttachmentListResponseWrapper "附件列表检索成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的查询参数"
// @Failure      500 {object} vo.BaseResponseWrapper "检索附件时发生内部服务器错误"
// @Router       /api/v1/blog/attachments [get]
func (ctrl *UploadController) ListAttachments(c *gin.Context) {
	var req dto.ListAttachmentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的查询参数: "+err.Error())
		return
	}

	attachments, serviceErr := ctrl.uploadService.ListAttachments(c.Request.Context(), req.OwnerType, req.OwnerID, req.SlotName)
	if serviceErr != nil {
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "检索附件失败: "+serviceErr.Error())
		return
	}

	response.RespondSuccess(c, attachments, "附件列表检索成功")
}

// DetachAttachment 处理解除附件挂载的 HTTP 请求
// @Summary      解除一条附件挂载
// @Description  解除文件与归属方的挂载关系。文件本体不会立即删除，失去全部引用后由后台清扫任务统一回收。
// @Tags         uploads (直传)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "附件 ID" Format(uint64)
// @Success      200 {object} vo.BaseResponseWrapper "挂载解除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的附件 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "附件不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "解除挂载时发生内部服务器错误"
// @Router       /api/v1/blog/attachments/{id} [delete]
func (ctrl *UploadController) DetachAttachment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的附件 ID 格式")
		return
	}
	if err := ctrl.uploadService.Detach(c.Request.Context(), id); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "附件不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "解除挂载失败: "+err.Error())
		return
	}
	response.RespondSuccess[any](c, nil, "挂载解除成功")
}

// ReceiveDirectUpload 处理本地存储后端的直传回传 PUT 请求。
// 仅在本地磁盘后端下注册；云端(COS)模式下字节直接上传到对象存储，不经过本服务。
// @Summary      接收本地直传的文件字节 (仅本地存储后端)
// @Description  申请直传时签出的本地上传地址指向本端点。请求需携带签名令牌与过期时间，令牌校验通过后字节落盘。
// @Tags         uploads (直传)
// @Accept       octet-stream
// @Produce      json
// @Param        key path string true "存储键"
// @Param        token query string true "签名令牌"
// @Param        expires query int true "令牌过期时间 (Unix 秒)"
// @Success      200 {object} vo.BaseResponseWrapper "上传成功"
// @Failure      401 {object} vo.BaseResponseWrapper "令牌无效或已过期"
// @Failure      500 {object} vo.BaseResponseWrapper "写入文件时发生内部服务器错误"
// @Router       /api/v1/blog/uploads/local/{key} [put]
func (ctrl *UploadController) ReceiveDirectUpload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	token := c.Query("token")
	expiresAt, err := strconv.ParseInt(c.Query("expires"), 10, 64)
	if err != nil || key == "" || token == "" {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "缺少或非法的直传参数")
		return
	}

	contentType := c.ContentType()
	serviceErr := ctrl.uploadService.ReceiveDirectUpload(
		c.Request.Context(), key, token, expiresAt,
		c.Request.Body, c.Request.ContentLength, contentType,
	)
	if serviceErr != nil {
		switch {
		case errors.Is(serviceErr, myErrors.ErrDirectUploadTokenInvalid):
			response.RespondError(c, http.StatusUnauthorized, response.ErrCodeClientUnauthorized, "直传令牌无效或已过期")
		case errors.Is(serviceErr, myErrors.ErrValidation):
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, serviceErr.Error())
		default:
			response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "接收上传失败: "+serviceErr.Error())
		}
		return
	}

	response.RespondSuccess[any](c, nil, "上传成功")
}

// RegisterRoutes 注册 UploadController 的路由
func (ctrl *UploadController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/uploads", ctrl.CreateDirectUpload)              // POST   /api/v1/blog/uploads
	group.PUT("/uploads/local/*key", ctrl.ReceiveDirectUpload)   // PUT    /api/v1/blog/uploads/local/*key
	group.GET("/attachments", ctrl.ListAttachments)              // GET    /api/v1/blog/attachments
	group.POST("/attachments/confirm", ctrl.ConfirmAttachment)   // POST   /api/v1/blog/attachments/confirm
	group.DELETE("/attachments/:id", ctrl.DetachAttachment)      // DELETE /api/v1/blog/attachments/:id
}
