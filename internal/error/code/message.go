package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:          "成功",
	ErrCreated:          "创建成功",
	ErrUnknown:          "未知错误",
	ErrBind:             "请求参数绑定错误",
	ErrValidation:       "请求参数验证错误",
	ErrTokenInvalid:     "无效的认证令牌",
	ErrTooManyRequests:  "请求频率过高，请稍后再试",
	ErrNotAuthenticated: "未提供认证信息",
	ErrPermissionDenied: "没有执行该操作的权限",
	ErrInvalidPage:      "无效的页码",

	// 用户相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserAlreadyExist:      "用户名已存在",
	ErrUserPasswordIncorrect: "用户名或密码错误",
	ErrUserInactive:          "用户已停用",

	// 住户相关错误码
	ErrResidentNotFound: "住户不存在",

	// 照片相关错误码
	ErrPhotoNotFound: "照片不存在",
	ErrPhotoInvalid:  "上传的文件不是有效的图片",
	ErrPhotoTooLarge: "上传文件过大",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:          StatusOK,
	ErrCreated:          StatusCreated,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrTooManyRequests:  StatusTooManyRequests,
	ErrNotAuthenticated: StatusUnauthorized,
	ErrPermissionDenied: StatusForbidden,
	ErrInvalidPage:      StatusNotFound,

	// 用户相关错误码
	ErrUserNotFound:          StatusUnauthorized,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrUserInactive:          StatusUnauthorized,

	// 住户相关错误码
	ErrResidentNotFound: StatusNotFound,

	// 照片相关错误码
	ErrPhotoNotFound: StatusNotFound,
	ErrPhotoInvalid:  StatusBadRequest,
	ErrPhotoTooLarge: StatusRequestEntityTooLarge,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
