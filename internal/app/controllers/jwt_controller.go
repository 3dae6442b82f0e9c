package controllers

import (
	"github.com/gin-gonic/gin"

	"gatepulse-http-service/internal/domain/services"
	"gatepulse-http-service/internal/domain/services/container"
	"gatepulse-http-service/internal/error/code"
	"gatepulse-http-service/internal/error/response"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Login()
}

// JWTController 认证控制器
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController 创建一个新的认证控制器
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Admin@123"`
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}

// 1. Login 管理员登录
// @Summary      管理员登录
// @Description  校验用户名密码并签发JWT令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        payload body LoginRequest true "登录信息"
// @Success      200  {object}  services.LoginResult
// @Failure      401  {object}  response.Response
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.Fail(c.Ctx, code.ErrBind, nil)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUserPasswordIncorrect, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, result)
}
