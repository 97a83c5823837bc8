package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"resident-directory-service/internal/error/code"
)

// Response 定义统一的响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// FieldErrors 字段名到错误消息的映射
type FieldErrors map[string]string

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrCreated,
		Message: code.GetMessage(code.ErrCreated),
		Data:    data,
	})
}

// NoContent 删除成功，无响应体
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode), data)
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.AbortWithStatusJSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// ValidationError 参数验证失败，data 为字段错误映射
func ValidationError(c *gin.Context, fields FieldErrors) {
	Fail(c, code.ErrValidation, fields)
}

// BindError 将绑定/验证错误转换为字段错误响应
func BindError(c *gin.Context, err error, obj interface{}) {
	ValidationError(c, TranslateBindError(err, obj))
}

// ServerError 服务器错误响应
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, errorCode int) {
	Fail(c, errorCode, nil)
}

// Unauthorized 未认证响应
func Unauthorized(c *gin.Context, errorCode int) {
	Fail(c, errorCode, nil)
}

// Forbidden 权限不足响应
func Forbidden(c *gin.Context) {
	Fail(c, code.ErrPermissionDenied, nil)
}

// TranslateBindError 把 validator 的错误转换为以 JSON 字段名为键的映射
func TranslateBindError(err error, obj interface{}) FieldErrors {
	fields := FieldErrors{}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			fields[jsonFieldName(obj, fe.StructField(), fe.Field())] = fieldMessage(fe)
		}
		return fields
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields[typeErr.Field] = fmt.Sprintf("必须是 %s 类型", typeErr.Type.String())
		return fields
	}

	fields["non_field_errors"] = "请求体格式错误"
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段是必填项"
	case "email":
		return "请输入有效的电子邮件地址"
	case "max":
		return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
	case "min":
		return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
	case "datetime":
		return fmt.Sprintf("日期格式错误，应为 %s", fe.Param())
	default:
		return fmt.Sprintf("校验失败: %s", fe.Tag())
	}
}

// jsonFieldName 根据结构体字段查找 json 标签名
func jsonFieldName(obj interface{}, structField, fallback string) string {
	if obj == nil {
		return fallback
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return fallback
	}
	f, ok := t.FieldByName(structField)
	if !ok {
		return fallback
	}
	for _, tagKey := range []string{"json", "form"} {
		if tag := f.Tag.Get(tagKey); tag != "" && tag != "-" {
			return strings.Split(tag, ",")[0]
		}
	}
	return fallback
}
