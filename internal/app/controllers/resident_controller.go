package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/app/serializers"
	"resident-directory-service/internal/domain/models"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
)

// InterfaceResidentController 定义居民控制器接口
type InterfaceResidentController interface {
	GetResidents()
	GetResident()
	CreateResident()
	UpdateResident()
	PatchResident()
	DeleteResident()
}

// ResidentController 处理居民相关的请求
type ResidentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewResidentController 创建一个新的居民控制器
func NewResidentController(ctx *gin.Context, container *container.ServiceContainer) *ResidentController {
	return &ResidentController{
		Ctx:       ctx,
		Container: container,
	}
}

// ResidentRequest 表示创建或整体更新居民的请求
type ResidentRequest struct {
	FirstName string    `json:"first_name" binding:"required,max=120" example:"Ann"`
	LastName  string    `json:"last_name" binding:"required,max=120" example:"Lee"`
	Apartment string    `json:"apartment" binding:"required,max=50" example:"4B"`
	Phone     string    `json:"phone" binding:"required,max=50" example:"555-0100"`
	Email     string    `json:"email" binding:"required,email,max=254" example:"ann@example.com"`
	DOB       DateField `json:"dob" swaggertype:"string" example:"1990-04-01"`
	Notes     *string   `json:"notes" example:"Has a dog"`
	IsActive  *bool     `json:"is_active" example:"true"`
}

// PatchResidentRequest 表示部分更新居民的请求，未提供的字段保持不变
type PatchResidentRequest struct {
	FirstName *string   `json:"first_name" binding:"omitempty,min=1,max=120" example:"Ann"`
	LastName  *string   `json:"last_name" binding:"omitempty,min=1,max=120" example:"Lee"`
	Apartment *string   `json:"apartment" binding:"omitempty,min=1,max=50" example:"4B"`
	Phone     *string   `json:"phone" binding:"omitempty,min=1,max=50" example:"555-0100"`
	Email     *string   `json:"email" binding:"omitempty,email,max=254" example:"ann@example.com"`
	DOB       DateField `json:"dob" swaggertype:"string" example:"1990-04-01"`
	Notes     *string   `json:"notes" example:"Has a dog"`
	IsActive  *bool     `json:"is_active" example:"false"`
}

func (c *ResidentController) serializer() *serializers.Serializer {
	return serializers.New(c.Ctx, c.Container.GetStorage())
}

func (c *ResidentController) service() services.InterfaceResidentService {
	return c.Container.GetService("resident").(services.InterfaceResidentService)
}

// GetResidents 获取居民列表
// @Summary      获取居民列表
// @Description  按姓、名排序的分页列表；q 对姓名、门牌、电话、邮箱做不区分大小写的模糊匹配
// @Tags         Resident
// @Produce      json
// @Param        q query string false "搜索关键字"
// @Param        apartment query string false "门牌号，精确匹配"
// @Param        is_active query string false "1/true/yes 为启用，其他值为停用"
// @Param        page query int false "页码，默认为1"
// @Param        page_size query int false "每页条数，默认为10，最大100"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.ResidentPage}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "无效的页码"
// @Router       /residents/ [get]
func (c *ResidentController) GetResidents() {
	page, ok := parsePagination(c.Ctx)
	if !ok {
		response.NotFound(c.Ctx, code.ErrInvalidPage)
		return
	}

	filter := services.ResidentFilter{
		Query:     c.Ctx.Query("q"),
		Apartment: c.Ctx.Query("apartment"),
	}
	if v, present := c.Ctx.GetQuery("is_active"); present {
		active := truthy(v)
		filter.IsActive = &active
	}

	residents, total, err := c.service().ListResidents(c.Ctx.Request.Context(), filter, page)
	if err != nil {
		handleServiceError(c.Ctx, err, "获取居民列表")
		return
	}

	meta := models.NewPaginationResult(total, page.Page, page.PageSize)
	response.Success(c.Ctx, c.serializer().ResidentPage(residents, meta))
}

// GetResident 获取单个居民
// @Summary      获取居民详情
// @Description  包含主照片地址和全部照片
// @Tags         Resident
// @Produce      json
// @Param        id path int true "居民ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.ResidentResponse}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id}/ [get]
func (c *ResidentController) GetResident() {
	id, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	resident, err := c.service().GetResidentByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err, "获取居民信息")
		return
	}

	response.Success(c.Ctx, c.serializer().Resident(resident))
}

// CreateResident 创建新居民
// @Summary      创建居民
// @Description  notes 默认为空，is_active 默认为 true
// @Tags         Resident
// @Accept       json
// @Produce      json
// @Param        request body ResidentRequest true "居民信息"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=serializers.ResidentResponse}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /residents/ [post]
func (c *ResidentController) CreateResident() {
	var req ResidentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}
	dob, err := req.DOB.Parse()
	if err != nil {
		response.ValidationError(c.Ctx, response.FieldErrors{"dob": "日期格式错误，应为 YYYY-MM-DD"})
		return
	}

	resident := &models.Resident{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Apartment: req.Apartment,
		Phone:     req.Phone,
		Email:     req.Email,
		DOB:       dob,
		IsActive:  true,
	}
	if req.Notes != nil {
		resident.Notes = *req.Notes
	}
	if req.IsActive != nil {
		resident.IsActive = *req.IsActive
	}

	if err := c.service().CreateResident(c.Ctx.Request.Context(), resident); err != nil {
		handleServiceError(c.Ctx, err, "创建居民")
		return
	}

	response.Created(c.Ctx, c.serializer().Resident(resident))
}

// UpdateResident 整体更新居民信息
// @Summary      更新居民
// @Description  必填字段必须全部提供；未提供的可选字段保持不变
// @Tags         Resident
// @Accept       json
// @Produce      json
// @Param        id path int true "居民ID"
// @Param        request body ResidentRequest true "居民信息"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.ResidentResponse}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id}/ [put]
func (c *ResidentController) UpdateResident() {
	id, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	var req ResidentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	updates := map[string]interface{}{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"apartment":  req.Apartment,
		"phone":      req.Phone,
		"email":      req.Email,
	}
	if !c.applyOptional(updates, req.DOB, req.Notes, req.IsActive) {
		return
	}

	c.update(id, updates)
}

// PatchResident 部分更新居民信息
// @Summary      部分更新居民
// @Description  只更新请求中提供的字段
// @Tags         Resident
// @Accept       json
// @Produce      json
// @Param        id path int true "居民ID"
// @Param        request body PatchResidentRequest true "需要更新的字段"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.ResidentResponse}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id}/ [patch]
func (c *ResidentController) PatchResident() {
	id, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	var req PatchResidentRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	updates := map[string]interface{}{}
	for column, value := range map[string]*string{
		"first_name": req.FirstName,
		"last_name":  req.LastName,
		"apartment":  req.Apartment,
		"phone":      req.Phone,
		"email":      req.Email,
	} {
		if value != nil {
			updates[column] = *value
		}
	}
	if !c.applyOptional(updates, req.DOB, req.Notes, req.IsActive) {
		return
	}

	c.update(id, updates)
}

// applyOptional 写入提供了的可选字段，日期非法时返回 false 并已写出响应
func (c *ResidentController) applyOptional(updates map[string]interface{}, dob DateField, notes *string, isActive *bool) bool {
	if dob.Set {
		parsed, err := dob.Parse()
		if err != nil {
			response.ValidationError(c.Ctx, response.FieldErrors{"dob": "日期格式错误，应为 YYYY-MM-DD"})
			return false
		}
		updates["dob"] = parsed
	}
	if notes != nil {
		updates["notes"] = *notes
	}
	if isActive != nil {
		updates["is_active"] = *isActive
	}
	return true
}

func (c *ResidentController) update(id uint, updates map[string]interface{}) {
	resident, err := c.service().UpdateResident(c.Ctx.Request.Context(), id, updates)
	if err != nil {
		handleServiceError(c.Ctx, err, "更新居民")
		return
	}
	response.Success(c.Ctx, c.serializer().Resident(resident))
}

// DeleteResident 删除居民
// @Summary      删除居民
// @Description  仅员工可用，同时删除该居民的全部照片
// @Tags         Resident
// @Param        id path int true "居民ID"
// @Security     BearerAuth
// @Success      204  "删除成功"
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id}/ [delete]
func (c *ResidentController) DeleteResident() {
	id, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	if err := c.service().DeleteResident(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err, "删除居民")
		return
	}

	response.NoContent(c.Ctx)
}

// parsePagination 解析分页参数；page 非正整数时返回 false，page_size 非法时使用默认值
func parsePagination(ctx *gin.Context) (models.PaginationQuery, bool) {
	q := models.PaginationQuery{Page: 1, PageSize: models.DefaultPageSize}

	if v, ok := ctx.GetQuery("page"); ok {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return q, false
		}
		q.Page = page
	}
	if v := ctx.Query("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil && size > 0 {
			q.PageSize = size
		}
	}
	if q.PageSize > models.MaxPageSize {
		q.PageSize = models.MaxPageSize
	}
	return q, true
}

// HandleResidentFunc 返回一个处理居民请求的Gin处理函数
func HandleResidentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewResidentController(ctx, container)

		switch method {
		case "getResidents":
			controller.GetResidents()
		case "getResident":
			controller.GetResident()
		case "createResident":
			controller.CreateResident()
		case "updateResident":
			controller.UpdateResident()
		case "patchResident":
			controller.PatchResident()
		case "deleteResident":
			controller.DeleteResident()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}
