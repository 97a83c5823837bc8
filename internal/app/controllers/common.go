package controllers

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resident-directory-service/internal/app/middleware"
	"resident-directory-service/internal/domain/services"
	"resident-directory-service/internal/error/code"
	"resident-directory-service/internal/error/response"
	"resident-directory-service/pkg/logger"
)

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"103000"`
	Message string      `json:"message" example:"住户不存在"`
	Data    interface{} `json:"data"`
}

// ValidationErrorResponse 表示字段校验失败的响应，data 为字段到错误信息的映射
type ValidationErrorResponse struct {
	Code    int               `json:"code" example:"100003"`
	Message string            `json:"message" example:"请求参数验证错误"`
	Data    map[string]string `json:"data"`
}

const dateLayout = "2006-01-02"

// DateField 可选的日期字段，区分未提供、null 和具体日期
type DateField struct {
	Set bool
	Raw *string
}

// UnmarshalJSON 接受 "YYYY-MM-DD"、空字符串或 null
func (d *DateField) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Raw = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(""), Field: "dob"}
	}
	d.Raw = &s
	return nil
}

// Parse 返回日期，null 或空字符串返回 nil
func (d DateField) Parse() (*time.Time, error) {
	if d.Raw == nil || strings.TrimSpace(*d.Raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*d.Raw))
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseID 解析路径中的ID，非法ID视为资源不存在
func parseID(c *gin.Context, name string, notFound int) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		response.NotFound(c, notFound)
		return 0, false
	}
	return uint(id), true
}

// truthy 解析布尔型的查询/表单参数
func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// handleServiceError 将服务层错误映射为响应
func handleServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrResidentNotFound):
		response.NotFound(c, code.ErrResidentNotFound)
	case errors.Is(err, services.ErrPhotoNotFound):
		response.NotFound(c, code.ErrPhotoNotFound)
	case errors.Is(err, services.ErrInvalidPage):
		response.NotFound(c, code.ErrInvalidPage)
	case errors.Is(err, services.ErrUsernameTaken):
		response.Fail(c, code.ErrUserAlreadyExist, response.FieldErrors{"username": code.GetMessage(code.ErrUserAlreadyExist)})
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(c, code.ErrUserPasswordIncorrect)
	case errors.Is(err, services.ErrUserInactive):
		response.Unauthorized(c, code.ErrUserInactive)
	case errors.Is(err, services.ErrInvalidToken):
		response.Unauthorized(c, code.ErrTokenInvalid)
	case errors.Is(err, services.ErrInvalidImage):
		response.Fail(c, code.ErrPhotoInvalid, response.FieldErrors{"image": code.GetMessage(code.ErrPhotoInvalid)})
	case errors.Is(err, services.ErrImageTooLarge):
		response.Fail(c, code.ErrPhotoTooLarge, nil)
	default:
		logger.Error("%s失败: %v (request_id=%s)", action, err, middleware.GetRequestID(c))
		response.ServerError(c)
	}
}
