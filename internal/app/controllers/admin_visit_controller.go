package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/domain/services/container"
	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
	"gatepulse-http-service/pkg/logger"
)

// InterfaceAdminVisitController 定义管理端访客查询控制器接口
type InterfaceAdminVisitController interface {
	GetVisits()
}

// AdminVisitController 管理端访客查询控制器
type AdminVisitController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminVisitController 创建一个新的管理端访客查询控制器
func NewAdminVisitController(ctx *gin.Context, container *container.ServiceContainer) *AdminVisitController {
	return &AdminVisitController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAdminVisitFunc 返回一个处理管理端访客查询的Gin处理函数
func HandleAdminVisitFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminVisitController(ctx, container)

		switch method {
		case "getVisits":
			controller.GetVisits()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. GetVisits 查询访客记录
// @Summary      查询访客记录
// @Description  按关键词、状态、目的和时间范围过滤访客记录，按创建时间倒序
// @Tags         Admin
// @Produce      json
// @Param        q query string false "姓名或手机号关键词"
// @Param        status query string false "状态过滤, 默认all"
// @Param        purpose query string false "目的过滤, 默认all"
// @Param        range query string false "时间范围: all, today, 7d, 30d"
// @Param        limit query int false "返回条数, 1-500, 默认50"
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  response.Response
// @Router       /admin/visits [get]
// @Security     BearerAuth
func (c *AdminVisitController) GetVisits() {
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "50"))

	params := services.VisitQueryParams{
		Q:       c.Ctx.Query("q"),
		Status:  c.Ctx.DefaultQuery("status", "all"),
		Purpose: c.Ctx.DefaultQuery("purpose", "all"),
		Range:   c.Ctx.DefaultQuery("range", "all"),
		Limit:   limit,
	}

	visitService := c.Container.GetService("visit").(services.InterfaceVisitService)
	visits, err := visitService.QueryVisits(c.Ctx.Request.Context(), params)
	if err != nil {
		logger.Error("访客记录查询失败: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrVisitQuery, "Unable to fetch visit records.", nil)
		return
	}

	response.Success(c.Ctx, gin.H{"data": visits})
}
