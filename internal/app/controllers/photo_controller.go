package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/app/serializers"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/domain/services/container"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
)

// multipart 表单除文件外的额外开销
const multipartOverhead = 1 << 20

// InterfacePhotoController 定义照片控制器接口
type InterfacePhotoController interface {
	GetResidentPhotos()
	UploadPhoto()
	GetPhoto()
	UpdatePhoto()
	DeletePhoto()
	SetPrimary()
}

// PhotoController 处理照片相关的请求
type PhotoController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPhotoController 创建一个新的照片控制器
func NewPhotoController(ctx *gin.Context, container *container.ServiceContainer) *PhotoController {
	return &PhotoController{
		Ctx:       ctx,
		Container: container,
	}
}

// UpdatePhotoRequest 更新照片请求
type UpdatePhotoRequest struct {
	IsPrimary *bool `json:"is_primary" example:"true"`
}

func (c *PhotoController) serializer() *serializers.Serializer {
	return serializers.New(c.Ctx, c.Container.GetStorage())
}

func (c *PhotoController) service() services.InterfacePhotoService {
	return c.Container.GetService("photo").(services.InterfacePhotoService)
}

// GetResidentPhotos 获取住户的照片列表
// @Summary      获取住户照片
// @Description  按上传时间倒序返回
// @Tags         Photo
// @Produce      json
// @Param        id path int true "居民ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]serializers.PhotoResponse}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /residents/{id}/photos/ [get]
func (c *PhotoController) GetResidentPhotos() {
	residentID, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	photos, err := c.service().ListPhotos(c.Ctx.Request.Context(), residentID)
	if err != nil {
		handleServiceError(c.Ctx, err, "获取照片列表")
		return
	}

	response.Success(c.Ctx, c.serializer().Photos(photos))
}

// UploadPhoto 上传住户照片
// @Summary      上传照片
// @Description  multipart 表单上传，is_primary 为真时同一住户的其他主照片会被取消
// @Tags         Photo
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path int true "居民ID"
// @Param        image formData file true "图片文件 (JPEG/PNG/GIF)"
// @Param        is_primary formData bool false "是否设为主照片"
// @Security     BearerAuth
// @Success      201  {object}  response.Response{data=serializers.PhotoResponse}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      413  {object}  ErrorResponse
// @Router       /residents/{id}/photos/ [post]
func (c *PhotoController) UploadPhoto() {
	residentID, ok := parseID(c.Ctx, "id", code.ErrResidentNotFound)
	if !ok {
		return
	}

	maxSize := c.Container.GetConfig().MaxUploadSize
	if maxSize > 0 {
		c.Ctx.Request.Body = http.MaxBytesReader(c.Ctx.Writer, c.Ctx.Request.Body, maxSize+multipartOverhead)
	}

	fileHeader, err := c.Ctx.FormFile("image")
	if err != nil {
		if isBodyTooLarge(err) {
			response.Fail(c.Ctx, code.ErrPhotoTooLarge, nil)
			return
		}
		response.ValidationError(c.Ctx, response.FieldErrors{"image": "该字段是必填项"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.ValidationError(c.Ctx, response.FieldErrors{"image": "无法读取上传的文件"})
		return
	}
	defer file.Close()

	photo, err := c.service().UploadPhoto(c.Ctx.Request.Context(), residentID, services.PhotoUpload{
		Filename:  fileHeader.Filename,
		Size:      fileHeader.Size,
		Content:   file,
		IsPrimary: truthy(c.Ctx.PostForm("is_primary")),
	})
	if err != nil {
		handleServiceError(c.Ctx, err, "上传照片")
		return
	}

	response.Created(c.Ctx, c.serializer().Photo(photo))
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// GetPhoto 获取照片详情
// @Summary      获取照片
// @Tags         Photo
// @Produce      json
// @Param        id path int true "照片ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.PhotoResponse}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /photos/{id}/ [get]
func (c *PhotoController) GetPhoto() {
	id, ok := parseID(c.Ctx, "id", code.ErrPhotoNotFound)
	if !ok {
		return
	}

	photo, err := c.service().GetPhotoByID(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err, "获取照片")
		return
	}

	response.Success(c.Ctx, c.serializer().Photo(photo))
}

// UpdatePhoto 更新照片
// @Summary      更新照片
// @Description  目前只支持修改 is_primary
// @Tags         Photo
// @Accept       json
// @Produce      json
// @Param        id path int true "照片ID"
// @Param        request body UpdatePhotoRequest true "更新内容"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.PhotoResponse}
// @Failure      400  {object}  ValidationErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /photos/{id}/ [patch]
func (c *PhotoController) UpdatePhoto() {
	id, ok := parseID(c.Ctx, "id", code.ErrPhotoNotFound)
	if !ok {
		return
	}

	var req UpdatePhotoRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(c.Ctx, err, &req)
		return
	}

	photo, err := c.service().UpdatePhoto(c.Ctx.Request.Context(), id, req.IsPrimary)
	if err != nil {
		handleServiceError(c.Ctx, err, "更新照片")
		return
	}

	response.Success(c.Ctx, c.serializer().Photo(photo))
}

// DeletePhoto 删除照片
// @Summary      删除照片
// @Tags         Photo
// @Param        id path int true "照片ID"
// @Security     BearerAuth
// @Success      204  "删除成功"
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /photos/{id}/ [delete]
func (c *PhotoController) DeletePhoto() {
	id, ok := parseID(c.Ctx, "id", code.ErrPhotoNotFound)
	if !ok {
		return
	}

	if err := c.service().DeletePhoto(c.Ctx.Request.Context(), id); err != nil {
		handleServiceError(c.Ctx, err, "删除照片")
		return
	}

	response.NoContent(c.Ctx)
}

// SetPrimary 将照片设为主照片
// @Summary      设为主照片
// @Description  幂等操作；同一住户的其他照片会被取消主照片标记
// @Tags         Photo
// @Produce      json
// @Param        id path int true "照片ID"
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=serializers.PhotoResponse}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /photos/{id}/set_primary/ [post]
func (c *PhotoController) SetPrimary() {
	id, ok := parseID(c.Ctx, "id", code.ErrPhotoNotFound)
	if !ok {
		return
	}

	photo, err := c.service().SetPrimary(c.Ctx.Request.Context(), id)
	if err != nil {
		handleServiceError(c.Ctx, err, "设置主照片")
		return
	}

	response.Success(c.Ctx, c.serializer().Photo(photo))
}

// HandlePhotoFunc 返回一个处理照片请求的Gin处理函数
func HandlePhotoFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPhotoController(ctx, container)

		switch method {
		case "getResidentPhotos":
			controller.GetResidentPhotos()
		case "uploadPhoto":
			controller.UploadPhoto()
		case "getPhoto":
			controller.GetPhoto()
		case "updatePhoto":
			controller.UpdatePhoto()
		case "deletePhoto":
			controller.DeletePhoto()
		case "setPrimary":
			controller.SetPrimary()
		default:
			response.FailWithMessage(ctx, code.ErrBind, "无效的方法", nil)
		}
	}
}
