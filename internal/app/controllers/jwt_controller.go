package controllers

import (
	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
)

// InterfaceJWTController 定义认证控制器接口
type InterfaceJWTController interface {
	Register()
	Login()
	Refresh()
}

// JWTController 处理注册与令牌请求
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

// RegisterRequest 表示注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=150" example:"ann"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
	Email    string `json:"email" binding:"omitempty,email,max=254" example:"ann@example.com"`
}

// RegisterData 表示注册成功后返回的数据
type RegisterData struct {
	Success  bool   `json:"success" example:"true"`
	Username string `json:"username" example:"ann"`
}

// LoginRequest 表示登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"admin123"`
}

// RefreshRequest 表示刷新令牌请求
type RefreshRequest struct {
	Refresh string `json:"refresh" binding:"required" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// RefreshData 表示刷新后返回的访问令牌
type RefreshData struct {
	Access string `json:"access" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
}

// Register 注册新账户
// @Summary      注册账户
// @Description  创建普通账户，用户名必须唯一
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "注册信息"
// @Success      201  {object}  response.Response{data=RegisterData}
// @Failure      400  {object}  ValidationErrorResponse
// @Router       /auth/register/ [post]
func (c *JWTController) Register() {
	var req RegisterRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	userService := c.Container.GetService("user").(services.InterfaceUserService)
	user, err := userService.Register(c.Ctx.Request.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		handleServiceError(c.Ctx, err, "注册账户")
		return
	}

	response.Created(c.Ctx, RegisterData{Success: true, Username: user.Username})
}

// Login 处理用户登录请求
// @Summary      获取令牌
// @Description  使用用户名和密码换取访问令牌和刷新令牌
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录凭证"
// @Success      200  {object}  response.Response{data=services.TokenPair}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login/ [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	pair, err := jwtService.Login(c.Ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		handleServiceError(c.Ctx, err, "登录")
		return
	}

	response.Success(c.Ctx, pair)
}

// Refresh 使用刷新令牌换取新的访问令牌
// @Summary      刷新令牌
// @Description  刷新令牌必须有效且对应的用户仍处于启用状态
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "刷新令牌"
// @Success      200  {object}  response.Response{data=RefreshData}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/refresh/ [post]
func (c *JWTController) Refresh() {
	var req RefreshRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	access, err := jwtService.Refresh(c.Ctx.Request.Context(), req.Refresh)
	if err != nil {
		handleServiceError(c.Ctx, err, "刷新令牌")
		return
	}

	response.Success(c.Ctx, RefreshData{Access: access})
}

// HandleJWTFunc 返回一个处理认证请求的Gin处理函数
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "register":
			controller.Register()
		case "login":
			controller.Login()
		case "refresh":
			controller.Refresh()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}
