package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/domain/models"
	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/domain/services/container"
	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
	"gatepulse-http-service/pkg/logger"
)

// InterfaceVisitController 定义访客登记控制器接口
type InterfaceVisitController interface {
	CreateVisit()
}

// VisitController 访客登记控制器
type VisitController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewVisitController 创建一个新的访客登记控制器
func NewVisitController(ctx *gin.Context, container *container.ServiceContainer) *VisitController {
	return &VisitController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleVisitFunc 返回一个处理访客登记请求的Gin处理函数
func HandleVisitFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewVisitController(ctx, container)

		switch method {
		case "createVisit":
			controller.CreateVisit()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. CreateVisit 提交访客登记
// @Summary      提交访客登记
// @Description  校验登记信息，保存自拍并创建访客记录
// @Tags         Visit
// @Accept       json
// @Produce      json
// @Param        payload body models.VisitPayload true "登记信息"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /visits [post]
func (c *VisitController) CreateVisit() {
	var payload models.VisitPayload
	if err := c.Ctx.ShouldBindJSON(&payload); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, "Invalid JSON payload.", nil)
		return
	}

	visitService := c.Container.GetService("visit").(services.InterfaceVisitService)
	record, err := visitService.CreateVisit(c.Ctx.Request.Context(), &payload)
	if err != nil {
		var validationErr *services.ValidationError
		var assetErr *services.AssetError

		switch {
		case errors.As(err, &validationErr):
			response.FailWithMessage(c.Ctx, code.ErrVisitValidation, validationErr.Error(), gin.H{
				"missing_fields": validationErr.Fields,
			})
		case errors.As(err, &assetErr):
			// 格式错误是客户端问题，上传失败是服务端问题
			if errors.Is(err, services.ErrMalformedDataURL) {
				response.FailWithMessage(c.Ctx, code.ErrSelfieMalformed, assetErr.Error(), nil)
			} else {
				response.FailWithMessage(c.Ctx, code.ErrSelfieUpload, assetErr.Error(), nil)
			}
		default:
			logger.Error("访客登记保存失败: %v", err)
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "Failed to save visit.", nil)
		}
		return
	}

	response.Success(c.Ctx, gin.H{"id": record.ID})
}
