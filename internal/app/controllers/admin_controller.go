package controllers

import (
	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
)

// AdminController 管理员控制器
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController 创建一个新的管理员控制器
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetSummary 获取住户与照片统计
// @Summary      统计概览
// @Description  仅员工可用
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=services.Summary}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /admin/summary/ [get]
func (c *AdminController) GetSummary() {
	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)

	summary, err := adminService.GetSummary(c.Ctx.Request.Context())
	if err != nil {
		handleServiceError(c.Ctx, err, "获取统计信息")
		return
	}

	response.Success(c.Ctx, summary)
}

// HandleAdminFunc 返回一个处理管理员请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "getSummary":
			controller.GetSummary()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}
