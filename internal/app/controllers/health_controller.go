package controllers

import (
	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct{}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController() *HealthCheckController {
	return &HealthCheckController{}
}

// Ping 健康检查端点
// @Summary      健康检查
// @Description  服务存活检查，无需认证
// @Tags         Health
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /health/ [get]
func (h *HealthCheckController) Ping(c *gin.Context) {
	response.Success(c, gin.H{
		"message": "Server is up!",
	})
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(method string) gin.HandlerFunc {
	controller := NewHealthCheckController()
	return func(ctx *gin.Context) {
		switch method {
		case "ping":
			controller.Ping(ctx)
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}
