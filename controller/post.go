package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/service"
)

// PostController 定义帖子控制器的结构体
type PostController struct {
	postService service.PostService
}

// NewPostController 构造函数，用于创建 PostController 实例
func NewPostController(postService service.PostService) *PostController {
	return &PostController{postService: postService}
}

// CreatePost 处理创建帖子的 HTTP 请求，可同时上传图片。
// 图片是部分失败语义：帖子保存成功即返回 200，单张图片的失败
// 体现在响应的 image_warnings 中，客户端据此提示重试。
// @Summary      创建新帖子 (独立表单字段及图片)
// @Description  使用提供的详情（作为独立表单字段）和图片文件创建一个新帖子。请求体应为 multipart/form-data。图片上传失败不影响帖子保存，失败信息在响应的 image_warnings 中返回。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Param        title formData string true "帖子标题" maxLength(255)
// @Param        content formData string true "帖子内容"
// @Param        author_name formData string true "作者名" maxLength(50)
// @Param        published formData bool false "是否发布" default(false)
// @Param        images formData file false "帖子图片文件 (可多选)"
// @Success      200 {object} vo.PostDetailResponseWrapper "帖子创建成功（可能携带图片告警）"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      500 {object} vo.BaseResponseWrapper "创建帖子时发生内部服务器错误"
// @Router       /api/v1/blog/posts [post]
func (ctrl *PostController) CreatePost(c *gin.Context) {
	// 1. 解析 Multipart Form，超出内存上限的部分落临时磁盘文件
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "解析表单数据失败: "+err.Error())
		return
	}

	// 2. 绑定 DTO 数据 (来自独立的表单字段)
	var req dto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	// 3. 获取图片文件部分，"images" 是前端上传文件时使用的字段名
	var imageFiles = c.Request.MultipartForm.File["images"]

	// 4. 调用服务层处理
	postDetailVO, serviceErr := ctrl.postService.CreatePost(c.Request.Context(), &req, imageFiles)
	if serviceErr != nil {
		if errors.Is(serviceErr, myErrors.ErrValidation) {
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, serviceErr.Error())
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "创建帖子失败: "+serviceErr.Error())
		return
	}

	response.RespondSuccess(c, postDetailVO, "帖子创建成功")
}

// GetPostDetail 处理获取帖子详情的 HTTP 请求
// @Summary      获取指定ID的帖子详情 (公开)
// @Description  通过帖子的 ID 检索帖子详情，包含评论与可解析的图片附件。引用已失效的图片会被静默跳过，不会导致本接口报错。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Success      200 {object} vo.PostDetailResponseWrapper "帖子详情检索成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "检索帖子详情时发生内部服务器错误"
// @Router       /api/v1/blog/posts/{id} [get]
func (ctrl *PostController) GetPostDetail(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	detail, err := ctrl.postService.GetPostByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "检索帖子详情失败: "+err.Error())
		return
	}

	response.RespondSuccess(c, detail, "帖子详情检索成功")
}

// ListPosts 处理获取已发布帖子列表的 HTTP 请求
// @Summary      获取已发布帖子列表 (公开)
// @Description  返回全部已发布的帖子，按创建时间倒序排列。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Success      200 {object} vo.PostListResponseWrapper "帖子列表检索成功"
// @Failure      500 {object} vo.BaseResponseWrapper "检索帖子列表时发生内部服务器错误"
// @Router       /api/v1/blog/posts [get]
func (ctrl *PostController) ListPosts(c *gin.Context) {
	posts, err := ctrl.postService.ListPublishedPosts(c.Request.Context())
	if err != nil {
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "检索帖子列表失败: "+err.Error())
		return
	}
	response.RespondSuccess(c, posts, "帖子列表检索成功")
}

// UpdatePost 处理更新帖子的 HTTP 请求，可追加上传图片。
// @Summary      更新指定ID的帖子
// @Description  更新帖子的标题/内容/发布状态（均可选），并可追加图片文件。请求体应为 multipart/form-data。图片语义同创建接口。
// @Tags         posts (帖子)
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Param        title formData string false "帖子标题" maxLength(255)
// @Param        content formData string false "帖子内容"
// @Param        published formData bool false "是否发布"
// @Param        images formData file false "追加的图片文件 (可多选)"
// @Success      200 {object} vo.PostDetailResponseWrapper "帖子更新成功（可能携带图片告警）"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "更新帖子时发生内部服务器错误"
// @Router       /api/v1/blog/posts/{id} [put]
func (ctrl *PostController) UpdatePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "解析表单数据失败: "+err.Error())
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}
	imageFiles := c.Request.MultipartForm.File["images"]

	detail, serviceErr := ctrl.postService.UpdatePost(c.Request.Context(), id, &req, imageFiles)
	if serviceErr != nil {
		switch {
		case errors.Is(serviceErr, commonerrors.ErrRepoNotFound):
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在")
		case errors.Is(serviceErr, myErrors.ErrValidation):
			response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, serviceErr.Error())
		default:
			response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "更新帖子失败: "+serviceErr.Error())
		}
		return
	}

	response.RespondSuccess(c, detail, "帖子更新成功")
}

// DeletePost 处理删除帖子的 HTTP 请求
// @Summary      删除指定ID的帖子
// @Description  软删除帖子，并在同一事务内级联删除其评论与图片挂载记录。图片文件本体由后台清扫任务统一回收。
// @Tags         posts (帖子)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Success      200 {object} vo.BaseResponseWrapper "帖子删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "删除帖子时发生内部服务器错误"
// @Router       /api/v1/blog/posts/{id} [delete]
func (ctrl *PostController) DeletePost(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}
	if err := ctrl.postService.DeletePost(c.Request.Context(), id); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "删除帖子失败: "+err.Error())
		return
	}
	response.RespondSuccess[any](c, nil, "帖子删除成功")
}

// RegisterRoutes 注册 PostController 的路由
func (ctrl *PostController) RegisterRoutes(group *gin.RouterGroup) {
	posts := group.Group("/posts")
	{
		posts.POST("", ctrl.CreatePost)       // POST   /api/v1/blog/posts
		posts.GET("", ctrl.ListPosts)         // GET    /api/v1/blog/posts
		posts.GET("/:id", ctrl.GetPostDetail) // GET    /api/v1/blog/posts/:id
		posts.PUT("/:id", ctrl.UpdatePost)    // PUT    /api/v1/blog/posts/:id
		posts.DELETE("/:id", ctrl.DeletePost) // DELETE /api/v1/blog/posts/:id
	}
}
