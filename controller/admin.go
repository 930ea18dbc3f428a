package controller

import (
	"errors"
	"net/http"

	"github.com/Xushengqwer/go-common/response"
	"github.com/gin-gonic/gin"

	"github.com/Xushengqwer/blog_service/myErrors"
	"github.com/Xushengqwer/blog_service/service"
)

// AdminController 定义运维管理控制器的结构体
type AdminController struct {
	sweepService service.SweepService
}

// NewAdminController 构造函数，用于创建 AdminController 实例
func NewAdminController(sweepService service.SweepService) *AdminController {
	return &AdminController{sweepService: sweepService}
}

// TriggerSweep 处理手动触发附件一致性清扫的 HTTP 请求
// @Summary      手动触发附件一致性清扫 (管理)
// @Description  立即执行一轮附件清扫：回收没有任何挂载引用的文件（字节 + 台账行），并移除引用已失效的挂载记录。清扫幂等，重复触发是安全的；已有清扫在执行时返回 409。
// @Tags         admin (管理)
// @Accept       json
// @Produce      json
// @Success      200 {object} vo.SweepReportResponseWrapper "清扫完成，返回报告"
// @Failure      409 {object} vo.BaseResponseWrapper "已有清扫正在执行"
// @Failure      500 {object} vo.BaseResponseWrapper "清扫执行失败"
// @Router       /api/v1/blog/admin/cleanup [post]
func (ctrl *AdminController) TriggerSweep(c *gin.Context) {
	report, err := ctrl.sweepService.Sweep(c.Request.Context())
	if err != nil {
		if errors.Is(err, myErrors.ErrSweepInProgress) {
			response.RespondError(c, http.StatusConflict, response.ErrCodeClientInvalidInput, "已有一次清扫正在执行，请稍后重试")
			return
		}
		response.RespondError(c, http.StatusInternalServerError, response.ErrCodeServerInternal, "清扫执行失败: "+err.Error())
		return
	}
	response.RespondSuccess(c, report, "附件清扫完成")
}

// RegisterRoutes 注册 AdminController 的路由
func (ctrl *AdminController) RegisterRoutes(group *gin.RouterGroup) {
	admin := group.Group("/admin")
	{
		admin.POST("/cleanup", ctrl.TriggerSweep) // POST /api/v1/blog/admin/cleanup
	}
}
