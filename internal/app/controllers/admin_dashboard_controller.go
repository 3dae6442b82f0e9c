package controllers

import (
	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/domain/services/container"
	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
	"gatepulse-http-service/pkg/logger"
)

// InterfaceDashboardController 定义看板控制器接口
type InterfaceDashboardController interface {
	GetDashboard()
}

// DashboardController 管理看板控制器
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDashboardController 创建一个新的看板控制器
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc 返回一个处理看板请求的Gin处理函数
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "getDashboard":
			controller.GetDashboard()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetDashboard 获取管理看板数据
// @Summary      获取管理看板数据
// @Description  当日KPI统计、实时动态流和24小时到达趋势
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  services.DashboardResponse
// @Failure      500  {object}  response.Response
// @Router       /admin/dashboard [get]
// @Security     BearerAuth
func (c *DashboardController) GetDashboard() {
	dashboardService := c.Container.GetService("dashboard").(services.InterfaceDashboardService)

	data, err := dashboardService.GetDashboard(c.Ctx.Request.Context())
	if err != nil {
		logger.Error("看板数据查询失败: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrDashboardQuery, "Unable to fetch dashboard data.", nil)
		return
	}

	response.Success(c.Ctx, data)
}
