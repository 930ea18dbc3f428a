package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Xushengqwer/go-common/commonerrors"
	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/models/dto"
	"github.com/Xushengqwer/blog_service/service"
)

// CommentController 定义评论控制器的结构体
type CommentController struct {
	commentService service.CommentService
}

// NewCommentController 构造函数，用于创建 CommentController 实例
func NewCommentController(commentService service.CommentService) *CommentController {
	return &CommentController{commentService: commentService}
}

// CreateComment 处理创建评论的 HTTP 请求
// @Summary      在指定帖子下创建评论
// @Description  在帖子下添加一条评论。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Param        request body dto.CreateCommentRequest true "评论内容"
// @Success      200 {object} vo.CommentResponseWrapper "评论创建成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的请求负载"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "创建评论时发生内部服务器错误"
// @Router       /api/v1/blog/posts/{id}/comments [post]
func (ctrl *CommentController) CreateComment(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "绑定请求数据失败: "+err.Error())
		return
	}

	commentVO, serviceErr := ctrl.commentService.CreateComment(c.Request.Context(), postID, &req)
	if serviceErr != nil {
		if errors.Is(serviceErr, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "创建评论失败: "+serviceErr.Error())
		return
	}

	response.RespondSuccess(c, commentVO, "评论创建成功")
}

// ListComments 处理获取帖子评论列表的 HTTP 请求
// @Summary      获取指定帖子的评论列表
// @Description  返回帖子下的全部评论，按创建时间正序排列。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Param        id path uint64 true "帖子 ID" Format(uint64)
// @Success      200 {object} vo.CommentListResponseWrapper "评论列表检索成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的帖子 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "帖子不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "检索评论时发生内部服务器错误"
// @Router       /api/v1/blog/posts/{id}/comments [get]
func (ctrl *CommentController) ListComments(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的帖子 ID 格式")
		return
	}

	comments, serviceErr := ctrl.commentService.ListComments(c.Request.Context(), postID)
	if serviceErr != nil {
		if errors.Is(serviceErr, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "帖子不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "检索评论失败: "+serviceErr.Error())
		return
	}

	response.RespondSuccess(c, comments, "评论列表检索成功")
}

// DeleteComment 处理删除评论的 HTTP 请求
// @Summary      删除指定ID的评论
// @Description  软删除一条评论。
// @Tags         comments (评论)
// @Accept       json
// @Produce      json
// @Param        comment_id path uint64 true "评论 ID" Format(uint64)
// @Success      200 {object} vo.BaseResponseWrapper "评论删除成功"
// @Failure      400 {object} vo.BaseResponseWrapper "无效的评论 ID 格式"
// @Failure      404 {object} vo.BaseResponseWrapper "评论不存在"
// @Failure      500 {object} vo.BaseResponseWrapper "删除评论时发生内部服务器错误"
// @Router       /api/v1/blog/comments/{comment_id} [delete]
func (ctrl *CommentController) DeleteComment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("comment_id"), 10, 64)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, response.ErrCodeClientInvalidInput, "无效的评论 ID 格式")
		return
	}
	if err := ctrl.commentService.DeleteComment(c.Request.Context(), id); err != nil {
		if errors.Is(err, commonerrors.ErrRepoNotFound) {
			response.RespondError(c, http.StatusNotFound, response.ErrCodeClientResourceNotFound, "评论不存在")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "删除评论失败: "+err.Error())
		return
	}
	response.RespondSuccess[any](c, nil, "评论删除成功")
}

// RegisterRoutes 注册 CommentController 的路由
func (ctrl *CommentController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/posts/:id/comments", ctrl.CreateComment)     // POST   /api/v1/blog/posts/:id/comments
	group.GET("/posts/:id/comments", ctrl.ListComments)       // GET    /api/v1/blog/posts/:id/comments
	group.DELETE("/comments/:comment_id", ctrl.DeleteComment) // DELETE /api/v1/blog/comments/:comment_id
}
