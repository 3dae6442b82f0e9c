package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/domain/services/container"
	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
)

// InterfaceFileController 定义文件访问控制器接口
type InterfaceFileController interface {
	ServeSelfie()
}

// FileController 自拍文件访问控制器
type FileController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewFileController 创建一个新的文件访问控制器
func NewFileController(ctx *gin.Context, container *container.ServiceContainer) *FileController {
	return &FileController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleFileFunc 返回一个处理文件访问请求的Gin处理函数
func HandleFileFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewFileController(ctx, container)

		switch method {
		case "serveSelfie":
			controller.ServeSelfie()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. ServeSelfie 提供自拍文件访问
// @Summary      访问访客自拍
// @Description  公共桶直接访问，私有桶要求有效的限时签名
// @Tags         File
// @Produce      image/jpeg
// @Param        name path string true "对象名"
// @Param        expires query int false "签名过期时间戳"
// @Param        sig query string false "HMAC签名"
// @Success      200
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /files/visitor-selfies/{name} [get]
func (c *FileController) ServeSelfie() {
	objectName := c.Ctx.Param("name")
	storageService := c.Container.GetService("storage").(services.InterfaceStorageService)

	// 私有桶要求签名
	if !storageService.PublicAccess() {
		expires, err := strconv.ParseInt(c.Ctx.Query("expires"), 10, 64)
		if err != nil || !storageService.VerifySignature(objectName, expires, c.Ctx.Query("sig")) {
			response.Fail(c.Ctx, code.ErrSelfieSignature, nil)
			return
		}
	}

	path, err := storageService.ObjectPath(objectName)
	if err != nil {
		response.NotFound(c.Ctx, "自拍文件不存在")
		return
	}

	c.Ctx.File(path)
}
