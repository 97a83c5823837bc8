package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusCreated - 201: 已创建.
	StatusCreated = 201
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusRequestEntityTooLarge - 413: 上传文件过大.
	StatusRequestEntityTooLarge = 413
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
	// ErrNotAuthenticated - 401: 未提供认证信息.
	ErrNotAuthenticated
	// ErrPermissionDenied - 403: 权限不足.
	ErrPermissionDenied
	// ErrInvalidPage - 404: 页码无效.
	ErrInvalidPage
	// ErrCreated - 201: 已创建.
	ErrCreated
)

// 用户相关错误码 (101xxx).
const (
	// ErrUserNotFound - 401: 令牌对应的用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: 用户已存在.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: 用户名或密码错误.
	ErrUserPasswordIncorrect
	// ErrUserInactive - 401: 用户已停用.
	ErrUserInactive
)

// 住户相关错误码 (103xxx).
const (
	// ErrResidentNotFound - 404: 住户不存在.
	ErrResidentNotFound int = iota + 103000
)

// 照片相关错误码 (106xxx).
const (
	// ErrPhotoNotFound - 404: 照片不存在.
	ErrPhotoNotFound int = iota + 106000
	// ErrPhotoInvalid - 400: 上传的文件不是有效图片.
	ErrPhotoInvalid
	// ErrPhotoTooLarge - 413: 上传文件过大.
	ErrPhotoTooLarge
)
