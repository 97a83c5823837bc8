package services

import "errors"

// 服务层错误，控制器据此映射业务错误码
var (
	ErrResidentNotFound   = errors.New("居民不存在")
	ErrPhotoNotFound      = errors.New("照片不存在")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUsernameTaken      = errors.New("用户名已存在")
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUserInactive       = errors.New("用户已被禁用")
	ErrInvalidToken       = errors.New("无效的令牌")
	ErrInvalidPage        = errors.New("无效的页码")
	ErrInvalidImage       = errors.New("上传的文件不是有效的图片")
	ErrImageTooLarge      = errors.New("上传的文件过大")
)
